// internal/dataset/store.go
package dataset

import "path/filepath"

// Snapshot file names. These are a stable contract with the dashboard and
// ad-hoc query consumers; renaming one is a breaking change.
const (
	FileSKUDailySales        = "sku_daily_sales.csv"
	FileSKUMaster            = "sku_master.csv"
	FileSKUForecast          = "sku_daily_forecast.csv"
	FileSKUForecast7Day      = "sku_daily_forecast_7day.csv"
	FileSKUForecast30Day     = "sku_daily_forecast_30day.csv"
	FileSKUProductAllocation = "sku_product_allocation.csv"
	FileSKUProductDemand     = "sku_product_demand.csv"
	FileProductForecast      = "product_forecast.csv"
	FileProductBOM           = "product_bom.csv"
	FileProductBOMExpanded   = "product_bom_expanded.csv"
	FileRawMaterialDemand    = "raw_material_demand.csv"
	FileInventoryMovements   = "raw_material_inventory.csv"
	FileInventoryLedger      = "raw_material_inventory_ledger.csv"
	FileReconciliation       = "raw_material_reconciliation.csv"
	FileRisk                 = "raw_material_risk.csv"
)

// Store resolves snapshot table paths under a single datasets directory.
// Every stage reads and writes through a Store so that file-routed and
// in-memory pipeline runs share one notion of where tables live.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Path(file string) string {
	return filepath.Join(s.dir, file)
}
