package inventory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woodlandforecast/backend-go/internal/domain"
)

func ledgerEntry(material string, d time.Time, closing, safety string) domain.LedgerEntry {
	return domain.LedgerEntry{
		InventoryMovement: domain.InventoryMovement{
			Date:             d,
			RawMaterial:      material,
			ClosingInventory: dec(closing),
			SafetyStock:      dec(safety),
		},
		CalculatedClosingInventory: dec(closing),
		ValidationStatus:           true,
	}
}

func materialDemand(material string, d time.Time, horizon domain.Horizon, units int64) domain.RawMaterialDemand {
	return domain.RawMaterialDemand{
		Date:                d,
		RawMaterial:         material,
		MaterialType:        "dry",
		Horizon:             horizon,
		MaterialDemandUnits: units,
	}
}

func TestReconcileEmptyDemand(t *testing.T) {
	_, _, err := Reconcile(nil, nil)
	require.ErrorIs(t, err, ErrEmptyDemand)
}

func TestReconcilePicksLatestSnapshotBeforeForecast(t *testing.T) {
	// Forecast starts at day 10. The day 12 entry must be ignored even
	// though it is newer.
	ledger := []domain.LedgerEntry{
		ledgerEntry("FLOUR", day(8), "100", "10"),
		ledgerEntry("FLOUR", day(9), "90", "10"),
		ledgerEntry("FLOUR", day(12), "50", "10"),
	}
	demand := []domain.RawMaterialDemand{
		materialDemand("FLOUR", day(10), domain.Horizon7Day, 20),
	}

	rows, _, err := Reconcile(demand, ledger)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NotNil(t, rows[0].InventoryDate)
	assert.Equal(t, day(9), *rows[0].InventoryDate)
	require.True(t, rows[0].ClosingInventory.Valid)
	assert.True(t, rows[0].ClosingInventory.Decimal.Equal(dec("90")))
	require.True(t, rows[0].InventoryGapUnits.Valid)
	assert.True(t, rows[0].InventoryGapUnits.Decimal.Equal(dec("70")))
}

func TestReconcileSnapshotIsStaticAcrossDates(t *testing.T) {
	ledger := []domain.LedgerEntry{
		ledgerEntry("FLOUR", day(9), "100", "10"),
	}
	demand := make([]domain.RawMaterialDemand, 0, 7)
	for i := 0; i < 7; i++ {
		demand = append(demand, materialDemand("FLOUR", day(10+i), domain.Horizon7Day, 10))
	}

	rows, _, err := Reconcile(demand, ledger)
	require.NoError(t, err)
	require.Len(t, rows, 7)

	for i, row := range rows {
		require.NotNil(t, row.InventoryDate)
		assert.Equal(t, day(9), *row.InventoryDate)
		assert.True(t, row.ClosingInventory.Decimal.Equal(dec("100")))
		// Cumulative demand accrues, running balance draws down.
		assert.Equal(t, int64(10*(i+1)), row.CumulativeDemand)
		require.True(t, row.RunningInventoryBalance.Valid)
		want := dec("100").Sub(decimal.NewFromInt(int64(10 * (i + 1))))
		assert.Truef(t, row.RunningInventoryBalance.Decimal.Equal(want), "day %d: %s", i, row.RunningInventoryBalance.Decimal)
	}
}

func TestReconcileCumulativeResetsPerMaterialAndHorizon(t *testing.T) {
	ledger := []domain.LedgerEntry{
		ledgerEntry("FLOUR", day(9), "100", "10"),
		ledgerEntry("SUGAR", day(9), "40", "5"),
	}
	demand := []domain.RawMaterialDemand{
		materialDemand("FLOUR", day(10), domain.Horizon7Day, 10),
		materialDemand("FLOUR", day(11), domain.Horizon7Day, 10),
		materialDemand("SUGAR", day(10), domain.Horizon7Day, 7),
		materialDemand("FLOUR", day(10), domain.Horizon30Day, 10),
	}

	rows, _, err := Reconcile(demand, ledger)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	// Sorted by (horizon, material, date): 7day FLOUR x2, 7day SUGAR, 30day FLOUR.
	assert.Equal(t, int64(10), rows[0].CumulativeDemand)
	assert.Equal(t, int64(20), rows[1].CumulativeDemand)
	assert.Equal(t, int64(7), rows[2].CumulativeDemand)
	assert.Equal(t, int64(10), rows[3].CumulativeDemand)
}

func TestReconcileMissingSnapshotPropagatesNulls(t *testing.T) {
	ledger := []domain.LedgerEntry{
		ledgerEntry("FLOUR", day(9), "100", "10"),
	}
	demand := []domain.RawMaterialDemand{
		materialDemand("FLOUR", day(10), domain.Horizon7Day, 10),
		materialDemand("SAFFRON", day(10), domain.Horizon7Day, 2),
	}

	rows, stats, err := Reconcile(demand, ledger)
	require.NoError(t, err)
	assert.Equal(t, []string{"SAFFRON"}, stats.MissingSnapshotMaterials)

	var saffron *domain.ReconciliationRow
	for i := range rows {
		if rows[i].RawMaterial == "SAFFRON" {
			saffron = &rows[i]
		}
	}
	require.NotNil(t, saffron)
	assert.Nil(t, saffron.InventoryDate)
	assert.False(t, saffron.ClosingInventory.Valid)
	assert.False(t, saffron.SafetyStock.Valid)
	assert.False(t, saffron.InventoryGapUnits.Valid)
	assert.False(t, saffron.RunningInventoryBalance.Valid)
	// Demand accounting still runs for the material.
	assert.Equal(t, int64(2), saffron.CumulativeDemand)
}
