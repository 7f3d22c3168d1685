// internal/allocation/disaggregate.go
package allocation

import (
	"errors"
	"math"
	"sort"

	"github.com/woodlandforecast/backend-go/internal/domain"
	"github.com/woodlandforecast/backend-go/pkg/logger"
)

// ErrEmptyForecast is returned when the forecast input table has no rows.
var ErrEmptyForecast = errors.New("allocation: forecast table is empty")

// DisaggregateStats reports forecast rows excluded during disaggregation.
type DisaggregateStats struct {
	// DroppedRows counts forecast rows whose SKU has no allocation weights.
	// A forecast-bearing SKU without allocation data is a data gap that
	// needs review, so the stage logs each affected SKU.
	DroppedRows int
	DroppedSKUs []string
}

// Disaggregate multiplies store-level SKU forecasts by product allocation
// weights, producing daily product-unit demand. Forecast rows whose SKU has
// no allocation weights are dropped and reported, never silently zeroed.
func Disaggregate(forecasts []domain.SKUForecast, weights []domain.AllocationWeight) ([]domain.SKUProductDemand, DisaggregateStats, error) {
	log := logger.Stage("sku_product_demand")

	if len(forecasts) == 0 {
		return nil, DisaggregateStats{}, ErrEmptyForecast
	}

	bySKU := make(map[string][]domain.AllocationWeight)
	for _, w := range weights {
		bySKU[w.SKUID] = append(bySKU[w.SKUID], w)
	}

	var stats DisaggregateStats
	dropped := make(map[string]bool)
	demand := make([]domain.SKUProductDemand, 0, len(forecasts))
	for _, f := range forecasts {
		ws, ok := bySKU[f.SKUID]
		if !ok {
			stats.DroppedRows++
			dropped[f.SKUID] = true
			continue
		}
		for _, w := range ws {
			units := int(math.Round(float64(f.ForecastUnits) * w.AllocationWeight))
			if units < 0 {
				units = 0
			}
			demand = append(demand, domain.SKUProductDemand{
				Date:         f.Date,
				SKUID:        f.SKUID,
				StoreID:      f.StoreID,
				ProductID:    w.ProductID,
				Horizon:      f.Horizon,
				ProductUnits: units,
			})
		}
	}

	for sku := range dropped {
		stats.DroppedSKUs = append(stats.DroppedSKUs, sku)
	}
	sort.Strings(stats.DroppedSKUs)
	for _, sku := range stats.DroppedSKUs {
		log.Warn().Str("sku_id", sku).Msg("forecast-bearing SKU has no allocation weights; rows dropped")
	}

	sort.Slice(demand, func(i, j int) bool {
		a, b := demand[i], demand[j]
		if a.Horizon != b.Horizon {
			return a.Horizon.Days() < b.Horizon.Days()
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.SKUID != b.SKUID {
			return a.SKUID < b.SKUID
		}
		if a.StoreID != b.StoreID {
			return a.StoreID < b.StoreID
		}
		return a.ProductID < b.ProductID
	})

	log.Info().
		Int("forecast_rows", len(forecasts)).
		Int("demand_rows", len(demand)).
		Int("dropped_rows", stats.DroppedRows).
		Msg("disaggregated SKU forecast to product demand")

	return demand, stats, nil
}
