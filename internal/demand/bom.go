// internal/demand/bom.go
package demand

import (
	"sort"

	"github.com/woodlandforecast/backend-go/internal/domain"
	"github.com/woodlandforecast/backend-go/pkg/logger"
)

// BOMStats reports products whose demand vanished during BOM expansion.
type BOMStats struct {
	// MissingBOMProducts lists products that carry forecast demand but have
	// no BOM entries. Their demand produces zero expanded rows; the gap is
	// surfaced for review rather than silently absorbed.
	MissingBOMProducts []string
}

// ExpandBOM joins each product-day demand row against every BOM entry for
// that product, producing one row per (date, product, raw_material)
// combination with the per-unit consumption rate attached.
func ExpandBOM(demand []domain.ProductDemand, bom []domain.BOMEntry) ([]domain.BOMExpandedRow, BOMStats) {
	log := logger.Stage("bom_mapping")

	byProduct := make(map[string][]domain.BOMEntry)
	for _, e := range bom {
		byProduct[e.ProductID] = append(byProduct[e.ProductID], e)
	}
	for product := range byProduct {
		entries := byProduct[product]
		sort.Slice(entries, func(i, j int) bool { return entries[i].RawMaterial < entries[j].RawMaterial })
	}

	var stats BOMStats
	missing := make(map[string]bool)
	expanded := make([]domain.BOMExpandedRow, 0, len(demand))
	for _, d := range demand {
		entries, ok := byProduct[d.ProductID]
		if !ok {
			missing[d.ProductID] = true
			continue
		}
		for _, e := range entries {
			expanded = append(expanded, domain.BOMExpandedRow{
				Date:               d.Date,
				ProductID:          d.ProductID,
				Horizon:            d.Horizon,
				ProductUnits:       d.ProductUnits,
				RawMaterial:        e.RawMaterial,
				MaterialType:       e.MaterialType,
				ConsumptionPerUnit: e.ConsumptionPerUnit,
			})
		}
	}

	sort.Slice(expanded, func(i, j int) bool {
		a, b := expanded[i], expanded[j]
		if a.Horizon != b.Horizon {
			return a.Horizon.Days() < b.Horizon.Days()
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		return a.RawMaterial < b.RawMaterial
	})

	for product := range missing {
		stats.MissingBOMProducts = append(stats.MissingBOMProducts, product)
	}
	sort.Strings(stats.MissingBOMProducts)
	for _, product := range stats.MissingBOMProducts {
		log.Warn().Str("product_id", product).Msg("product has demand but no BOM entries; demand dropped from explosion")
	}

	log.Info().
		Int("demand_rows", len(demand)).
		Int("expanded_rows", len(expanded)).
		Int("products_missing_bom", len(stats.MissingBOMProducts)).
		Msg("expanded product demand against BOM")

	return expanded, stats
}
