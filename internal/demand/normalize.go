// internal/demand/normalize.go
package demand

import (
	"sort"
	"time"

	"github.com/woodlandforecast/backend-go/internal/domain"
	"github.com/woodlandforecast/backend-go/pkg/logger"
)

// Normalize aggregates disaggregated product demand into one daily series
// per product, summing across SKUs and stores. This is where store-level
// and SKU-level granularity is permanently lost.
func Normalize(rows []domain.SKUProductDemand) []domain.ProductDemand {
	log := logger.Stage("product_normalization")

	type groupKey struct {
		date    time.Time
		product string
		horizon domain.Horizon
	}
	sums := make(map[groupKey]int)
	for _, r := range rows {
		sums[groupKey{r.Date, r.ProductID, r.Horizon}] += r.ProductUnits
	}

	out := make([]domain.ProductDemand, 0, len(sums))
	for k, units := range sums {
		out = append(out, domain.ProductDemand{
			Date:         k.date,
			ProductID:    k.product,
			Horizon:      k.horizon,
			ProductUnits: units,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Horizon != b.Horizon {
			return a.Horizon.Days() < b.Horizon.Days()
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ProductID < b.ProductID
	})

	log.Info().
		Int("rows_in", len(rows)).
		Int("rows_out", len(out)).
		Msg("normalized product demand")

	return out
}
