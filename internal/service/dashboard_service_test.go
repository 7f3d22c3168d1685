package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woodlandforecast/backend-go/internal/dataset"
	"github.com/woodlandforecast/backend-go/internal/domain"
)

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func seedSnapshots(t *testing.T, store *dataset.Store) {
	t.Helper()

	date := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	invDate := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	risks := []domain.RiskRecord{
		{
			ReconciliationRow: domain.ReconciliationRow{
				Date: date, RawMaterial: "FLOUR", MaterialType: "dry", Horizon: domain.Horizon7Day,
				MaterialDemandUnits: 5, InventoryDate: &invDate,
				ClosingInventory: nullDec("100"), SafetyStock: nullDec("10"),
				InventoryGapUnits: nullDec("95"), CumulativeDemand: 5,
				RunningInventoryBalance: nullDec("95"),
			},
			InventoryRiskFlag: domain.RiskOverstock,
		},
		{
			ReconciliationRow: domain.ReconciliationRow{
				Date: date, RawMaterial: "SUGAR", MaterialType: "dry", Horizon: domain.Horizon7Day,
				MaterialDemandUnits: 8, InventoryDate: &invDate,
				ClosingInventory: nullDec("20"), SafetyStock: nullDec("10"),
				InventoryGapUnits: nullDec("12"), CumulativeDemand: 8,
				RunningInventoryBalance: nullDec("-4"),
			},
			InventoryRiskFlag: domain.RiskStockout,
		},
		{
			ReconciliationRow: domain.ReconciliationRow{
				Date: date, RawMaterial: "MILK", MaterialType: "wet", Horizon: domain.Horizon30Day,
				MaterialDemandUnits: 2, CumulativeDemand: 2,
			},
			InventoryRiskFlag: domain.RiskNoInventoryData,
		},
	}
	require.NoError(t, dataset.WriteRiskRecords(store.Path(dataset.FileRisk), risks))

	forecasts := []domain.SKUForecast{
		{Date: date, SKUID: "SKU-1", StoreID: "ST-1", Horizon: domain.Horizon7Day, ForecastUnits: 10},
		{Date: date.AddDate(0, 0, 1), SKUID: "SKU-1", StoreID: "ST-1", Horizon: domain.Horizon7Day, ForecastUnits: 12},
		{Date: date, SKUID: "SKU-2", StoreID: "ST-2", Horizon: domain.Horizon30Day, ForecastUnits: 3},
	}
	require.NoError(t, dataset.WriteSKUForecasts(store.Path(dataset.FileSKUForecast), forecasts))

	recRows := make([]domain.ReconciliationRow, 0, len(risks))
	for _, r := range risks {
		recRows = append(recRows, r.ReconciliationRow)
	}
	require.NoError(t, dataset.WriteReconciliationRows(store.Path(dataset.FileReconciliation), recRows))
}

func newTestService(t *testing.T) *DashboardService {
	store := dataset.NewStore(t.TempDir())
	seedSnapshots(t, store)
	return NewDashboardService(store, nil)
}

func TestGetSummary(t *testing.T) {
	svc := newTestService(t)

	summary, err := svc.GetSummary(context.Background(), &domain.DashboardFilter{})
	require.NoError(t, err)

	require.Len(t, summary.RiskDistribution, 3)
	total := 0
	pct := 0.0
	for _, slice := range summary.RiskDistribution {
		total += slice.Count
		pct += slice.Percentage
	}
	assert.Equal(t, 3, total)
	assert.InDelta(t, 100.0, pct, 0.1)

	// Only SUGAR has a negative running balance.
	require.Len(t, summary.Shortfalls, 1)
	assert.Equal(t, "SUGAR", summary.Shortfalls[0].RawMaterial)
	assert.Equal(t, "-4", summary.Shortfalls[0].WorstBalance)

	require.Len(t, summary.DemandByType, 2)
	assert.Equal(t, "dry", summary.DemandByType[0].MaterialType)
	assert.Equal(t, int64(13), summary.DemandByType[0].TotalUnits)
	assert.Equal(t, "wet", summary.DemandByType[1].MaterialType)

	require.Len(t, summary.Forecasts, 2)
	assert.Equal(t, domain.Horizon7Day, summary.Forecasts[0].Horizon)
	assert.Equal(t, 1, summary.Forecasts[0].SKUs)
	assert.Equal(t, int64(22), summary.Forecasts[0].TotalUnits)
}

func TestGetSummaryHorizonFilter(t *testing.T) {
	svc := newTestService(t)

	summary, err := svc.GetSummary(context.Background(), &domain.DashboardFilter{Horizon: "30day"})
	require.NoError(t, err)

	require.Len(t, summary.RiskDistribution, 1)
	assert.Equal(t, domain.RiskNoInventoryData, summary.RiskDistribution[0].Flag)
	assert.InDelta(t, 100.0, summary.RiskDistribution[0].Percentage, 0.001)
	assert.Empty(t, summary.Shortfalls)
}

func TestListRisksFilterAndPaging(t *testing.T) {
	svc := newTestService(t)

	records, total, err := svc.ListRisks(context.Background(), RiskQuery{Flag: string(domain.RiskStockout)})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, "SUGAR", records[0].RawMaterial)

	records, total, err = svc.ListRisks(context.Background(), RiskQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, records, 1)

	records, total, err = svc.ListRisks(context.Background(), RiskQuery{Page: 5, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, records)
}

func TestListReconciliation(t *testing.T) {
	svc := newTestService(t)

	rows, err := svc.ListReconciliation(context.Background(), "", "SUGAR")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "SUGAR", rows[0].RawMaterial)

	rows, err = svc.ListReconciliation(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
