// internal/domain/tables.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Horizon tags forecast rows with their window length. The two values are a
// stable contract with dashboard consumers and must not change.
type Horizon string

const (
	Horizon7Day  Horizon = "7day"
	Horizon30Day Horizon = "30day"
)

// Horizons lists the supported forecast horizons in ascending order.
var Horizons = []Horizon{Horizon7Day, Horizon30Day}

// Days returns the horizon length in days.
func (h Horizon) Days() int {
	switch h {
	case Horizon7Day:
		return 7
	case Horizon30Day:
		return 30
	}
	return 0
}

// MaxHorizonDays is the longest supported horizon; the forecaster predicts
// this many steps once and slices shorter horizons from the same series.
const MaxHorizonDays = 30

// SalesRecord is one row of historical daily sales, the source of truth for
// all downstream demand inference.
type SalesRecord struct {
	Date             time.Time
	SKUID            string
	StoreID          string
	SalesChannel     string
	ActualSalesUnits int
}

// SKUMasterEntry maps a SKU to the product it sells as.
type SKUMasterEntry struct {
	SKUID     string
	ProductID string
}

// SKUForecast is one forecast day for one SKU at one store.
type SKUForecast struct {
	Date          time.Time `json:"date"`
	SKUID         string    `json:"sku_id"`
	StoreID       string    `json:"store_id"`
	Horizon       Horizon   `json:"forecast_horizon"`
	ForecastUnits int       `json:"forecast_units"`
}

// AllocationWeight is the inferred fractional contribution of a product to a
// SKU's sales over the trailing window. Weights for a SKU sum to 1.0 unless
// the SKU had no windowed sales, in which case they are all zero.
type AllocationWeight struct {
	SKUID            string
	ProductID        string
	AllocationWeight float64
	WindowDays       int
}

// SKUProductDemand is the disaggregator output. StoreID and SKUID are kept
// for traceability even though normalization discards them.
type SKUProductDemand struct {
	Date         time.Time
	SKUID        string
	StoreID      string
	ProductID    string
	Horizon      Horizon
	ProductUnits int
}

// ProductDemand is daily per-product demand aggregated across SKUs and stores.
type ProductDemand struct {
	Date         time.Time
	ProductID    string
	Horizon      Horizon
	ProductUnits int
}

// BOMEntry is static master data: one raw material consumed by one product.
type BOMEntry struct {
	ProductID          string
	RawMaterial        string
	MaterialType       string
	ConsumptionPerUnit decimal.Decimal
}

// BOMExpandedRow is a product-day row joined with one of its BOM entries.
type BOMExpandedRow struct {
	Date               time.Time
	ProductID          string
	Horizon            Horizon
	ProductUnits       int
	RawMaterial        string
	MaterialType       string
	ConsumptionPerUnit decimal.Decimal
}

// RawMaterialDemand is daily demand for one raw material, aggregated across
// all products. Units are rounded once, after aggregation.
type RawMaterialDemand struct {
	Date                time.Time
	RawMaterial         string
	MaterialType        string
	Horizon             Horizon
	MaterialDemandUnits int64
}

// InventoryMovement is one raw row of the material movement input table.
type InventoryMovement struct {
	Date             time.Time
	RawMaterial      string
	OpeningInventory decimal.Decimal
	InflowQuantity   decimal.Decimal
	ConsumedQuantity decimal.Decimal
	ClosingInventory decimal.Decimal
	SafetyStock      decimal.Decimal
}

// LedgerEntry is a validated movement row. ValidationStatus is false when the
// stored closing inventory disagrees with the recomputed value; the builder
// flags but never corrects.
type LedgerEntry struct {
	InventoryMovement
	CalculatedClosingInventory decimal.Decimal
	ValidationStatus           bool
}

// ReconciliationRow joins one demand day against the pre-forecast inventory
// snapshot for its material. InventoryDate is the same for every row of a run
// (the latest ledger date at or before the first forecast day). All
// inventory-derived columns are null when the material has no snapshot.
type ReconciliationRow struct {
	Date                    time.Time           `json:"date"`
	RawMaterial             string              `json:"raw_material"`
	MaterialType            string              `json:"material_type"`
	Horizon                 Horizon             `json:"forecast_horizon"`
	MaterialDemandUnits     int64               `json:"material_demand_units"`
	InventoryDate           *time.Time          `json:"inventory_date"`
	ClosingInventory        decimal.NullDecimal `json:"closing_inventory"`
	SafetyStock             decimal.NullDecimal `json:"safety_stock"`
	InventoryGapUnits       decimal.NullDecimal `json:"inventory_gap_units"`
	CumulativeDemand        int64               `json:"cumulative_demand"`
	RunningInventoryBalance decimal.NullDecimal `json:"running_inventory_balance"`
}

// RiskRecord is a reconciliation row with its classified risk flag.
type RiskRecord struct {
	ReconciliationRow
	InventoryRiskFlag RiskFlag `json:"inventory_risk_flag"`
}
