package allocation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woodlandforecast/backend-go/internal/domain"
)

func day(n int) time.Time {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestInferProductMixEmptySales(t *testing.T) {
	_, _, err := InferProductMix(nil, nil, 30)
	require.ErrorIs(t, err, ErrEmptySales)
}

func TestInferProductMixWeightsSumToOne(t *testing.T) {
	// SKU-1 maps to two products, so its windowed units split evenly.
	master := []domain.SKUMasterEntry{
		{SKUID: "SKU-1", ProductID: "P-A"},
		{SKUID: "SKU-1", ProductID: "P-B"},
	}
	sales := []domain.SalesRecord{
		{Date: day(0), SKUID: "SKU-1", StoreID: "ST-1", ActualSalesUnits: 6},
		{Date: day(1), SKUID: "SKU-1", StoreID: "ST-1", ActualSalesUnits: 4},
	}

	weights, stats, err := InferProductMix(sales, master, 30)
	require.NoError(t, err)
	require.Len(t, weights, 2)
	assert.Equal(t, 2, stats.WindowRows)

	sum := 0.0
	for _, w := range weights {
		assert.Equal(t, "SKU-1", w.SKUID)
		assert.Equal(t, 30, w.WindowDays)
		sum += w.AllocationWeight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestInferProductMixWindowExcludesOldSales(t *testing.T) {
	master := []domain.SKUMasterEntry{{SKUID: "SKU-1", ProductID: "P-A"}}
	sales := []domain.SalesRecord{
		// 60 days before the latest date, outside a 30 day window.
		{Date: day(0), SKUID: "SKU-1", StoreID: "ST-1", ActualSalesUnits: 100},
		{Date: day(60), SKUID: "SKU-1", StoreID: "ST-1", ActualSalesUnits: 5},
	}

	weights, stats, err := InferProductMix(sales, master, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.WindowRows)
	require.Len(t, weights, 1)
	assert.Equal(t, 1.0, weights[0].AllocationWeight)
}

func TestInferProductMixCountsUnmappedRows(t *testing.T) {
	master := []domain.SKUMasterEntry{{SKUID: "SKU-1", ProductID: "P-A"}}
	sales := []domain.SalesRecord{
		{Date: day(0), SKUID: "SKU-1", StoreID: "ST-1", ActualSalesUnits: 5},
		{Date: day(0), SKUID: "SKU-GHOST", StoreID: "ST-1", ActualSalesUnits: 5},
	}

	weights, stats, err := InferProductMix(sales, master, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.UnmappedRows)
	require.Len(t, weights, 1)
	assert.Equal(t, "SKU-1", weights[0].SKUID)
}

func TestInferProductMixZeroSalesSKU(t *testing.T) {
	master := []domain.SKUMasterEntry{{SKUID: "SKU-1", ProductID: "P-A"}}
	sales := []domain.SalesRecord{
		{Date: day(0), SKUID: "SKU-1", StoreID: "ST-1", ActualSalesUnits: 0},
	}

	weights, stats, err := InferProductMix(sales, master, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ZeroSalesSKUs)
	require.Len(t, weights, 1)
	assert.Equal(t, 0.0, weights[0].AllocationWeight)
}
