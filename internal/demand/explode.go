// internal/demand/explode.go
package demand

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/woodlandforecast/backend-go/internal/domain"
	"github.com/woodlandforecast/backend-go/pkg/logger"
)

var ErrEmptyExpandedBOM = errors.New("demand: expanded BOM table is empty")

type materialKey struct {
	date        time.Time
	rawMaterial string
	horizon     domain.Horizon
}

// Explode converts expanded BOM rows into daily raw material demand.
// Per-row consumption is product_units * consumption_per_unit, accumulated
// exactly in decimal; the total is rounded to whole units once per
// (date, raw_material, horizon) group after all contributions are summed.
func Explode(rows []domain.BOMExpandedRow) ([]domain.RawMaterialDemand, error) {
	log := logger.Stage("demand_explosion")

	if len(rows) == 0 {
		return nil, ErrEmptyExpandedBOM
	}

	totals := make(map[materialKey]decimal.Decimal)
	types := make(map[materialKey]string)
	for _, r := range rows {
		key := materialKey{date: r.Date, rawMaterial: r.RawMaterial, horizon: r.Horizon}
		contribution := r.ConsumptionPerUnit.Mul(decimal.NewFromInt(int64(r.ProductUnits)))
		totals[key] = totals[key].Add(contribution)
		types[key] = r.MaterialType
	}

	out := make([]domain.RawMaterialDemand, 0, len(totals))
	for key, total := range totals {
		out = append(out, domain.RawMaterialDemand{
			Date:                key.date,
			RawMaterial:         key.rawMaterial,
			MaterialType:        types[key],
			Horizon:             key.horizon,
			MaterialDemandUnits: total.Round(0).IntPart(),
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
		return a.RawMaterial < b.RawMaterial
	})

	log.Info().
		Int("expanded_rows", len(rows)).
		Int("material_rows", len(out)).
		Msg("exploded product demand into raw material demand")

	return out, nil
}
