package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woodlandforecast/backend-go/internal/dataset"
	"github.com/woodlandforecast/backend-go/internal/domain"
	"github.com/woodlandforecast/backend-go/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := dataset.NewStore(t.TempDir())
	date := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	risks := []domain.RiskRecord{
		{
			ReconciliationRow: domain.ReconciliationRow{
				Date: date, RawMaterial: "FLOUR", MaterialType: "dry", Horizon: domain.Horizon7Day,
				MaterialDemandUnits:     5,
				ClosingInventory:        decimal.NewNullDecimal(decimal.RequireFromString("100")),
				SafetyStock:             decimal.NewNullDecimal(decimal.RequireFromString("10")),
				InventoryGapUnits:       decimal.NewNullDecimal(decimal.RequireFromString("95")),
				CumulativeDemand:        5,
				RunningInventoryBalance: decimal.NewNullDecimal(decimal.RequireFromString("95")),
			},
			InventoryRiskFlag: domain.RiskOverstock,
		},
	}
	require.NoError(t, dataset.WriteRiskRecords(store.Path(dataset.FileRisk), risks))
	require.NoError(t, dataset.WriteSKUForecasts(store.Path(dataset.FileSKUForecast), []domain.SKUForecast{
		{Date: date, SKUID: "SKU-1", StoreID: "ST-1", Horizon: domain.Horizon7Day, ForecastUnits: 10},
	}))
	require.NoError(t, dataset.WriteReconciliationRows(store.Path(dataset.FileReconciliation), []domain.ReconciliationRow{
		risks[0].ReconciliationRow,
	}))

	return NewRouter(&Services{
		DashboardService: service.NewDashboardService(store, nil),
	}, []string{"*"})
}

func get(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	w := get(t, newTestRouter(t), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDashboardSummaryEndpoint(t *testing.T) {
	w := get(t, newTestRouter(t), "/api/v1/dashboard/summary")
	require.Equal(t, http.StatusOK, w.Code)

	var summary domain.DashboardSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	require.Len(t, summary.RiskDistribution, 1)
	assert.Equal(t, domain.RiskOverstock, summary.RiskDistribution[0].Flag)
}

func TestDashboardSummaryRejectsBadHorizon(t *testing.T) {
	w := get(t, newTestRouter(t), "/api/v1/dashboard/summary?horizon=14day")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardRisksEndpoint(t *testing.T) {
	w := get(t, newTestRouter(t), "/api/v1/dashboard/risks?flag=OVERSTOCK_RISK")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data  []domain.RiskRecord `json:"data"`
		Total int                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "FLOUR", body.Data[0].RawMaterial)
}

func TestDashboardReconciliationEndpoint(t *testing.T) {
	w := get(t, newTestRouter(t), "/api/v1/dashboard/reconciliation?raw_material=FLOUR")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data  []domain.ReconciliationRow `json:"data"`
		Total int                        `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
}
