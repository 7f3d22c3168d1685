// internal/inventory/reconcile.go
package inventory

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/woodlandforecast/backend-go/internal/domain"
	"github.com/woodlandforecast/backend-go/pkg/logger"
)

var ErrEmptyDemand = errors.New("inventory: raw material demand table is empty")

// ReconcileStats reports materials that carry forecast demand but have no
// ledger snapshot at or before the forecast window.
type ReconcileStats struct {
	MissingSnapshotMaterials []string
}

type snapshot struct {
	date             time.Time
	closingInventory decimal.Decimal
	safetyStock      decimal.Decimal
}

// Reconcile joins forecast raw material demand against a single static
// inventory snapshot per material: the most recent ledger entry dated at or
// before the earliest forecast day. The snapshot does not roll forward as
// demand is drawn down; running_inventory_balance compares the fixed starting
// stock against cumulative demand and reads as total headroom over the
// horizon, not a day-specific stock level. Materials without a snapshot keep
// null inventory columns.
func Reconcile(demand []domain.RawMaterialDemand, ledger []domain.LedgerEntry) ([]domain.ReconciliationRow, ReconcileStats, error) {
	log := logger.Stage("reconciliation")

	if len(demand) == 0 {
		return nil, ReconcileStats{}, ErrEmptyDemand
	}

	minForecastDate := demand[0].Date
	for _, d := range demand[1:] {
		if d.Date.Before(minForecastDate) {
			minForecastDate = d.Date
		}
	}

	snapshots := make(map[string]snapshot)
	for _, e := range ledger {
		if e.Date.After(minForecastDate) {
			continue
		}
		current, ok := snapshots[e.RawMaterial]
		if !ok || e.Date.After(current.date) {
			snapshots[e.RawMaterial] = snapshot{
				date:             e.Date,
				closingInventory: e.ClosingInventory,
				safetyStock:      e.SafetyStock,
			}
		}
	}

	missing := make(map[string]bool)
	rows := make([]domain.ReconciliationRow, 0, len(demand))
	for _, d := range demand {
		row := domain.ReconciliationRow{
			Date:                d.Date,
			RawMaterial:         d.RawMaterial,
			MaterialType:        d.MaterialType,
			Horizon:             d.Horizon,
			MaterialDemandUnits: d.MaterialDemandUnits,
		}
		if snap, ok := snapshots[d.RawMaterial]; ok {
			invDate := snap.date
			row.InventoryDate = &invDate
			row.ClosingInventory = decimal.NewNullDecimal(snap.closingInventory)
			row.SafetyStock = decimal.NewNullDecimal(snap.safetyStock)
			gap := snap.closingInventory.Sub(decimal.NewFromInt(d.MaterialDemandUnits))
			row.InventoryGapUnits = decimal.NewNullDecimal(gap)
		} else {
			missing[d.RawMaterial] = true
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Horizon != b.Horizon {
			return a.Horizon.Days() < b.Horizon.Days()
		}
		if a.RawMaterial != b.RawMaterial {
			return a.RawMaterial < b.RawMaterial
		}
		return a.Date.Before(b.Date)
	})

	var cumulative int64
	for i := range rows {
		if i == 0 || rows[i].Horizon != rows[i-1].Horizon || rows[i].RawMaterial != rows[i-1].RawMaterial {
			cumulative = 0
		}
		cumulative += rows[i].MaterialDemandUnits
		rows[i].CumulativeDemand = cumulative
		if rows[i].ClosingInventory.Valid {
			balance := rows[i].ClosingInventory.Decimal.Sub(decimal.NewFromInt(cumulative))
			rows[i].RunningInventoryBalance = decimal.NewNullDecimal(balance)
		}
	}

	var stats ReconcileStats
	for material := range missing {
		stats.MissingSnapshotMaterials = append(stats.MissingSnapshotMaterials, material)
	}
	sort.Strings(stats.MissingSnapshotMaterials)
	for _, material := range stats.MissingSnapshotMaterials {
		log.Warn().Str("raw_material", material).Msg("material has demand but no inventory snapshot; inventory columns left null")
	}

	log.Info().
		Int("demand_rows", len(demand)).
		Int("materials_with_snapshot", len(snapshots)).
		Int("materials_missing_snapshot", len(stats.MissingSnapshotMaterials)).
		Str("min_forecast_date", minForecastDate.Format("2006-01-02")).
		Msg("reconciled demand against inventory snapshot")

	return rows, stats, nil
}
