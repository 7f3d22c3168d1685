package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woodlandforecast/backend-go/internal/domain"
)

func day(n int) time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// constantSales builds days of identical unit sales for one SKU at one store.
func constantSales(sku, store string, days, units int) []domain.SalesRecord {
	sales := make([]domain.SalesRecord, 0, days)
	for i := 0; i < days; i++ {
		sales = append(sales, domain.SalesRecord{
			Date:             day(i),
			SKUID:            sku,
			StoreID:          store,
			ActualSalesUnits: units,
		})
	}
	return sales
}

func TestGenerateEmptySales(t *testing.T) {
	_, err := Generate(context.Background(), nil, Config{})
	require.ErrorIs(t, err, ErrEmptySales)
}

func TestGenerateAllSKUsFail(t *testing.T) {
	// 5 days of history is below every sane minimum.
	_, err := Generate(context.Background(), constantSales("SKU-1", "ST-1", 5, 3), Config{MinHistoryDays: 30})
	require.ErrorIs(t, err, ErrAllSKUsFailed)
}

func TestGenerateSkipsShortHistorySKU(t *testing.T) {
	sales := constantSales("SKU-OK", "ST-1", 35, 10)
	sales = append(sales, constantSales("SKU-SHORT", "ST-1", 5, 10)...)

	result, err := Generate(context.Background(), sales, Config{MinHistoryDays: 30})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "SKU-SHORT", result.Failures[0].SKUID)
	for _, f := range result.Forecasts {
		assert.Equal(t, "SKU-OK", f.SKUID)
	}
}

func TestGenerateConstantSeries(t *testing.T) {
	result, err := Generate(context.Background(), constantSales("SKU-1", "ST-1", 35, 10), Config{MinHistoryDays: 30})
	require.NoError(t, err)

	// 7 + 30 forecast days for one SKU at one store.
	require.Len(t, result.Forecasts, 37)
	for _, f := range result.Forecasts {
		assert.Equal(t, 10, f.ForecastUnits)
		assert.Equal(t, "ST-1", f.StoreID)
	}
}

func TestGenerateHorizonCompleteness(t *testing.T) {
	sales := constantSales("SKU-1", "ST-A", 40, 8)
	sales = append(sales, constantSales("SKU-1", "ST-B", 40, 2)...)

	result, err := Generate(context.Background(), sales, Config{MinHistoryDays: 30})
	require.NoError(t, err)

	forecastStart := day(40)
	for _, horizon := range domain.Horizons {
		type group struct{ sku, store string }
		dates := make(map[group]map[time.Time]bool)
		for _, f := range result.Forecasts {
			if f.Horizon != horizon {
				continue
			}
			g := group{f.SKUID, f.StoreID}
			if dates[g] == nil {
				dates[g] = make(map[time.Time]bool)
			}
			dates[g][f.Date] = true
		}
		require.NotEmpty(t, dates)
		for g, ds := range dates {
			assert.Lenf(t, ds, horizon.Days(), "%s %s/%s", horizon, g.sku, g.store)
			for i := 0; i < horizon.Days(); i++ {
				assert.Truef(t, ds[forecastStart.AddDate(0, 0, i)], "%s missing day %d", horizon, i)
			}
		}
	}
}

func TestGenerateStoreAllocationFollowsHistoricalShare(t *testing.T) {
	// Store A sold 4x what store B sold, every day.
	sales := constantSales("SKU-1", "ST-A", 40, 8)
	sales = append(sales, constantSales("SKU-1", "ST-B", 40, 2)...)

	result, err := Generate(context.Background(), sales, Config{MinHistoryDays: 30})
	require.NoError(t, err)

	for _, f := range result.Forecasts {
		switch f.StoreID {
		case "ST-A":
			assert.Equal(t, 8, f.ForecastUnits)
		case "ST-B":
			assert.Equal(t, 2, f.ForecastUnits)
		default:
			t.Fatalf("unexpected store %s", f.StoreID)
		}
	}
}

func TestGenerateForecastsNonNegative(t *testing.T) {
	sales := make([]domain.SalesRecord, 0, 40)
	for i := 0; i < 40; i++ {
		units := 20 - i
		if units < 0 {
			units = 0
		}
		sales = append(sales, domain.SalesRecord{
			Date:             day(i),
			SKUID:            "SKU-1",
			StoreID:          "ST-1",
			ActualSalesUnits: units,
		})
	}

	result, err := Generate(context.Background(), sales, Config{MinHistoryDays: 30})
	require.NoError(t, err)
	for _, f := range result.Forecasts {
		assert.GreaterOrEqual(t, f.ForecastUnits, 0)
	}
}
