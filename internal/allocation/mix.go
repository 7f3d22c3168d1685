// internal/allocation/mix.go
package allocation

import (
	"errors"
	"math"
	"sort"

	"github.com/woodlandforecast/backend-go/internal/domain"
	"github.com/woodlandforecast/backend-go/pkg/logger"
)

// ErrEmptySales is returned when the sales input table has no rows.
var ErrEmptySales = errors.New("allocation: sales table is empty")

// MixStats reports rows excluded while inferring the product mix.
type MixStats struct {
	WindowRows    int
	UnmappedRows  int
	ZeroSalesSKUs int
}

// InferProductMix derives, per SKU, the fractional contribution of each
// downstream product over a trailing window of windowDays ending at the
// latest sales date. Weights are rounded to 3 decimals and sum to 1.0 per
// SKU; a SKU with zero windowed sales gets all-zero weights rather than a
// division error. Sales rows whose SKU has no master mapping are skipped
// and counted.
func InferProductMix(sales []domain.SalesRecord, master []domain.SKUMasterEntry, windowDays int) ([]domain.AllocationWeight, MixStats, error) {
	log := logger.Stage("sku_product_inference")

	if len(sales) == 0 {
		return nil, MixStats{}, ErrEmptySales
	}
	if windowDays <= 0 {
		windowDays = 30
	}

	products := make(map[string][]string, len(master))
	for _, m := range master {
		products[m.SKUID] = append(products[m.SKUID], m.ProductID)
	}

	maxDate := sales[0].Date
	for _, s := range sales {
		if s.Date.After(maxDate) {
			maxDate = s.Date
		}
	}
	windowStart := maxDate.AddDate(0, 0, -windowDays)

	type pairKey struct {
		sku     string
		product string
	}
	var stats MixStats
	units := make(map[pairKey]int)
	totals := make(map[string]int)
	for _, s := range sales {
		if s.Date.Before(windowStart) {
			continue
		}
		stats.WindowRows++
		mapped, ok := products[s.SKUID]
		if !ok {
			stats.UnmappedRows++
			continue
		}
		for _, product := range mapped {
			units[pairKey{s.SKUID, product}] += s.ActualSalesUnits
			totals[s.SKUID] += s.ActualSalesUnits
		}
	}

	pairs := make([]pairKey, 0, len(units))
	for k := range units {
		pairs = append(pairs, k)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].sku != pairs[j].sku {
			return pairs[i].sku < pairs[j].sku
		}
		return pairs[i].product < pairs[j].product
	})

	zeroSKUs := make(map[string]bool)
	weights := make([]domain.AllocationWeight, 0, len(pairs))
	for _, k := range pairs {
		weight := 0.0
		if totals[k.sku] > 0 {
			weight = round3(float64(units[k]) / float64(totals[k.sku]))
		} else {
			zeroSKUs[k.sku] = true
		}
		weights = append(weights, domain.AllocationWeight{
			SKUID:            k.sku,
			ProductID:        k.product,
			AllocationWeight: weight,
			WindowDays:       windowDays,
		})
	}
	stats.ZeroSalesSKUs = len(zeroSKUs)

	log.Info().
		Str("window_start", windowStart.Format("2006-01-02")).
		Int("window_rows", stats.WindowRows).
		Int("unmapped_rows", stats.UnmappedRows).
		Int("zero_sales_skus", stats.ZeroSalesSKUs).
		Int("weights", len(weights)).
		Msg("inferred product mix")

	return weights, stats, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
