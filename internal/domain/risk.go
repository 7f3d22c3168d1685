// internal/domain/risk.go
package domain

// RiskFlag labels one raw-material-day with its supply risk level.
type RiskFlag string

const (
	RiskNoInventoryData RiskFlag = "NO_INVENTORY_DATA"
	RiskStockout        RiskFlag = "STOCKOUT_RISK"
	RiskDemandShortfall RiskFlag = "DEMAND_SHORTFALL_RISK"
	RiskLowStock        RiskFlag = "LOW_STOCK_RISK"
	RiskOverstock       RiskFlag = "OVERSTOCK_RISK"
	RiskNormal          RiskFlag = "NORMAL"
)

// RiskFlags lists every flag the classifier can emit, in severity order.
var RiskFlags = []RiskFlag{
	RiskNoInventoryData,
	RiskStockout,
	RiskDemandShortfall,
	RiskLowStock,
	RiskOverstock,
	RiskNormal,
}
