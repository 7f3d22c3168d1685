// internal/dataset/readers.go
package dataset

import (
	"github.com/woodlandforecast/backend-go/internal/domain"
	"github.com/woodlandforecast/backend-go/pkg/logger"
)

// ReadStats reports how a table read went. Rows counts the rows returned;
// DroppedDates counts rows discarded because their date cell was unparseable.
type ReadStats struct {
	Rows         int
	DroppedDates int
}

func (s *ReadStats) logDrops(path string) {
	if s.DroppedDates > 0 {
		logger.Log.Warn().
			Str("file", path).
			Int("dropped", s.DroppedDates).
			Msg("dropped rows with unparseable dates")
	}
}

func parseHorizon(s string) (domain.Horizon, bool) {
	switch domain.Horizon(s) {
	case domain.Horizon7Day:
		return domain.Horizon7Day, true
	case domain.Horizon30Day:
		return domain.Horizon30Day, true
	}
	return "", false
}

// ReadSalesRecords loads the historical daily sales table.
func ReadSalesRecords(path string) ([]domain.SalesRecord, ReadStats, error) {
	t, err := readTable(path, "date", "sku_id", "store_id", "actual_sales_units")
	if err != nil {
		return nil, ReadStats{}, err
	}

	var stats ReadStats
	records := make([]domain.SalesRecord, 0, len(t.rows))
	for _, row := range t.rows {
		date, ok := ParseDate(t.get(row, "date"))
		if !ok {
			stats.DroppedDates++
			continue
		}
		records = append(records, domain.SalesRecord{
			Date:             date,
			SKUID:            t.get(row, "sku_id"),
			StoreID:          t.get(row, "store_id"),
			SalesChannel:     t.get(row, "sales_channel"),
			ActualSalesUnits: t.getInt(row, "actual_sales_units"),
		})
	}
	stats.Rows = len(records)
	stats.logDrops(path)
	return records, stats, nil
}

// ReadSKUMaster loads the static SKU to product mapping.
func ReadSKUMaster(path string) ([]domain.SKUMasterEntry, error) {
	t, err := readTable(path, "sku_id", "product_id")
	if err != nil {
		return nil, err
	}

	entries := make([]domain.SKUMasterEntry, 0, len(t.rows))
	for _, row := range t.rows {
		entries = append(entries, domain.SKUMasterEntry{
			SKUID:     t.get(row, "sku_id"),
			ProductID: t.get(row, "product_id"),
		})
	}
	return entries, nil
}

// ReadSKUForecasts loads a combined forecast snapshot.
func ReadSKUForecasts(path string) ([]domain.SKUForecast, ReadStats, error) {
	t, err := readTable(path, "date", "sku_id", "store_id", "forecast_horizon", "forecast_units")
	if err != nil {
		return nil, ReadStats{}, err
	}

	var stats ReadStats
	forecasts := make([]domain.SKUForecast, 0, len(t.rows))
	for _, row := range t.rows {
		date, ok := ParseDate(t.get(row, "date"))
		if !ok {
			stats.DroppedDates++
			continue
		}
		horizon, ok := parseHorizon(t.get(row, "forecast_horizon"))
		if !ok {
			continue
		}
		forecasts = append(forecasts, domain.SKUForecast{
			Date:          date,
			SKUID:         t.get(row, "sku_id"),
			StoreID:       t.get(row, "store_id"),
			Horizon:       horizon,
			ForecastUnits: t.getInt(row, "forecast_units"),
		})
	}
	stats.Rows = len(forecasts)
	stats.logDrops(path)
	return forecasts, stats, nil
}

// ReadAllocationWeights loads the SKU to product allocation snapshot.
func ReadAllocationWeights(path string) ([]domain.AllocationWeight, error) {
	t, err := readTable(path, "sku_id", "product_id", "allocation_weight")
	if err != nil {
		return nil, err
	}

	weights := make([]domain.AllocationWeight, 0, len(t.rows))
	for _, row := range t.rows {
		weights = append(weights, domain.AllocationWeight{
			SKUID:            t.get(row, "sku_id"),
			ProductID:        t.get(row, "product_id"),
			AllocationWeight: t.getFloat(row, "allocation_weight"),
			WindowDays:       t.getInt(row, "window_days"),
		})
	}
	return weights, nil
}

// ReadSKUProductDemand loads the disaggregated SKU product demand snapshot.
func ReadSKUProductDemand(path string) ([]domain.SKUProductDemand, ReadStats, error) {
	t, err := readTable(path, "date", "sku_id", "store_id", "product_id", "forecast_horizon", "product_units")
	if err != nil {
		return nil, ReadStats{}, err
	}

	var stats ReadStats
	rows := make([]domain.SKUProductDemand, 0, len(t.rows))
	for _, row := range t.rows {
		date, ok := ParseDate(t.get(row, "date"))
		if !ok {
			stats.DroppedDates++
			continue
		}
		horizon, ok := parseHorizon(t.get(row, "forecast_horizon"))
		if !ok {
			continue
		}
		rows = append(rows, domain.SKUProductDemand{
			Date:         date,
			SKUID:        t.get(row, "sku_id"),
			StoreID:      t.get(row, "store_id"),
			ProductID:    t.get(row, "product_id"),
			Horizon:      horizon,
			ProductUnits: t.getInt(row, "product_units"),
		})
	}
	stats.Rows = len(rows)
	stats.logDrops(path)
	return rows, stats, nil
}

// ReadProductDemand loads the normalized per-product forecast snapshot.
func ReadProductDemand(path string) ([]domain.ProductDemand, ReadStats, error) {
	t, err := readTable(path, "date", "product_id", "forecast_horizon", "product_units")
	if err != nil {
		return nil, ReadStats{}, err
	}

	var stats ReadStats
	rows := make([]domain.ProductDemand, 0, len(t.rows))
	for _, row := range t.rows {
		date, ok := ParseDate(t.get(row, "date"))
		if !ok {
			stats.DroppedDates++
			continue
		}
		horizon, ok := parseHorizon(t.get(row, "forecast_horizon"))
		if !ok {
			continue
		}
		rows = append(rows, domain.ProductDemand{
			Date:         date,
			ProductID:    t.get(row, "product_id"),
			Horizon:      horizon,
			ProductUnits: t.getInt(row, "product_units"),
		})
	}
	stats.Rows = len(rows)
	stats.logDrops(path)
	return rows, stats, nil
}

// ReadBOMEntries loads the bill-of-materials master table.
func ReadBOMEntries(path string) ([]domain.BOMEntry, error) {
	t, err := readTable(path, "product_id", "raw_material", "material_type", "consumption_per_unit")
	if err != nil {
		return nil, err
	}

	entries := make([]domain.BOMEntry, 0, len(t.rows))
	for _, row := range t.rows {
		entries = append(entries, domain.BOMEntry{
			ProductID:          t.get(row, "product_id"),
			RawMaterial:        t.get(row, "raw_material"),
			MaterialType:       t.get(row, "material_type"),
			ConsumptionPerUnit: t.getDecimal(row, "consumption_per_unit"),
		})
	}
	return entries, nil
}

// ReadBOMExpanded loads the BOM-expanded product demand snapshot.
func ReadBOMExpanded(path string) ([]domain.BOMExpandedRow, ReadStats, error) {
	t, err := readTable(path, "date", "product_id", "forecast_horizon", "product_units",
		"raw_material", "material_type", "consumption_per_unit")
	if err != nil {
		return nil, ReadStats{}, err
	}

	var stats ReadStats
	rows := make([]domain.BOMExpandedRow, 0, len(t.rows))
	for _, row := range t.rows {
		date, ok := ParseDate(t.get(row, "date"))
		if !ok {
			stats.DroppedDates++
			continue
		}
		horizon, ok := parseHorizon(t.get(row, "forecast_horizon"))
		if !ok {
			continue
		}
		rows = append(rows, domain.BOMExpandedRow{
			Date:               date,
			ProductID:          t.get(row, "product_id"),
			Horizon:            horizon,
			ProductUnits:       t.getInt(row, "product_units"),
			RawMaterial:        t.get(row, "raw_material"),
			MaterialType:       t.get(row, "material_type"),
			ConsumptionPerUnit: t.getDecimal(row, "consumption_per_unit"),
		})
	}
	stats.Rows = len(rows)
	stats.logDrops(path)
	return rows, stats, nil
}

// ReadRawMaterialDemand loads the exploded raw material demand snapshot.
func ReadRawMaterialDemand(path string) ([]domain.RawMaterialDemand, ReadStats, error) {
	t, err := readTable(path, "date", "raw_material", "material_type", "forecast_horizon", "material_demand_units")
	if err != nil {
		return nil, ReadStats{}, err
	}

	var stats ReadStats
	rows := make([]domain.RawMaterialDemand, 0, len(t.rows))
	for _, row := range t.rows {
		date, ok := ParseDate(t.get(row, "date"))
		if !ok {
			stats.DroppedDates++
			continue
		}
		horizon, ok := parseHorizon(t.get(row, "forecast_horizon"))
		if !ok {
			continue
		}
		rows = append(rows, domain.RawMaterialDemand{
			Date:                date,
			RawMaterial:         t.get(row, "raw_material"),
			MaterialType:        t.get(row, "material_type"),
			Horizon:             horizon,
			MaterialDemandUnits: t.getInt64(row, "material_demand_units"),
		})
	}
	stats.Rows = len(rows)
	stats.logDrops(path)
	return rows, stats, nil
}

// ReadInventoryMovements loads the raw material movement input table.
func ReadInventoryMovements(path string) ([]domain.InventoryMovement, ReadStats, error) {
	t, err := readTable(path, "date", "raw_material", "opening_inventory",
		"inflow_quantity", "consumed_quantity", "closing_inventory")
	if err != nil {
		return nil, ReadStats{}, err
	}

	var stats ReadStats
	movements := make([]domain.InventoryMovement, 0, len(t.rows))
	for _, row := range t.rows {
		date, ok := ParseDate(t.get(row, "date"))
		if !ok {
			stats.DroppedDates++
			continue
		}
		movements = append(movements, domain.InventoryMovement{
			Date:             date,
			RawMaterial:      t.get(row, "raw_material"),
			OpeningInventory: t.getDecimal(row, "opening_inventory"),
			InflowQuantity:   t.getDecimal(row, "inflow_quantity"),
			ConsumedQuantity: t.getDecimal(row, "consumed_quantity"),
			ClosingInventory: t.getDecimal(row, "closing_inventory"),
			SafetyStock:      t.getDecimal(row, "safety_stock"),
		})
	}
	stats.Rows = len(movements)
	stats.logDrops(path)
	return movements, stats, nil
}

// ReadLedgerEntries loads the validated inventory ledger snapshot.
func ReadLedgerEntries(path string) ([]domain.LedgerEntry, ReadStats, error) {
	t, err := readTable(path, "date", "raw_material", "opening_inventory",
		"inflow_quantity", "consumed_quantity", "closing_inventory",
		"calculated_closing_inventory", "inventory_validation_status")
	if err != nil {
		return nil, ReadStats{}, err
	}

	var stats ReadStats
	entries := make([]domain.LedgerEntry, 0, len(t.rows))
	for _, row := range t.rows {
		date, ok := ParseDate(t.get(row, "date"))
		if !ok {
			stats.DroppedDates++
			continue
		}
		entries = append(entries, domain.LedgerEntry{
			InventoryMovement: domain.InventoryMovement{
				Date:             date,
				RawMaterial:      t.get(row, "raw_material"),
				OpeningInventory: t.getDecimal(row, "opening_inventory"),
				InflowQuantity:   t.getDecimal(row, "inflow_quantity"),
				ConsumedQuantity: t.getDecimal(row, "consumed_quantity"),
				ClosingInventory: t.getDecimal(row, "closing_inventory"),
				SafetyStock:      t.getDecimal(row, "safety_stock"),
			},
			CalculatedClosingInventory: t.getDecimal(row, "calculated_closing_inventory"),
			ValidationStatus:           t.getBool(row, "inventory_validation_status"),
		})
	}
	stats.Rows = len(entries)
	stats.logDrops(path)
	return entries, stats, nil
}

// ReadReconciliationRows loads the supply-demand reconciliation snapshot.
func ReadReconciliationRows(path string) ([]domain.ReconciliationRow, ReadStats, error) {
	t, err := readTable(path, "date", "raw_material", "material_type", "forecast_horizon",
		"material_demand_units", "cumulative_demand")
	if err != nil {
		return nil, ReadStats{}, err
	}

	var stats ReadStats
	rows := make([]domain.ReconciliationRow, 0, len(t.rows))
	for _, row := range t.rows {
		date, ok := ParseDate(t.get(row, "date"))
		if !ok {
			stats.DroppedDates++
			continue
		}
		horizon, ok := parseHorizon(t.get(row, "forecast_horizon"))
		if !ok {
			continue
		}
		rec := domain.ReconciliationRow{
			Date:                    date,
			RawMaterial:             t.get(row, "raw_material"),
			MaterialType:            t.get(row, "material_type"),
			Horizon:                 horizon,
			MaterialDemandUnits:     t.getInt64(row, "material_demand_units"),
			ClosingInventory:        t.getNullDecimal(row, "closing_inventory"),
			SafetyStock:             t.getNullDecimal(row, "safety_stock"),
			InventoryGapUnits:       t.getNullDecimal(row, "inventory_gap_units"),
			CumulativeDemand:        t.getInt64(row, "cumulative_demand"),
			RunningInventoryBalance: t.getNullDecimal(row, "running_inventory_balance"),
		}
		if invDate, ok := ParseDate(t.get(row, "inventory_date")); ok {
			rec.InventoryDate = &invDate
		}
		rows = append(rows, rec)
	}
	stats.Rows = len(rows)
	stats.logDrops(path)
	return rows, stats, nil
}

// ReadRiskRecords loads the classified risk snapshot.
func ReadRiskRecords(path string) ([]domain.RiskRecord, ReadStats, error) {
	rows, stats, err := ReadReconciliationRows(path)
	if err != nil {
		return nil, stats, err
	}

	t, err := readTable(path, "inventory_risk_flag")
	if err != nil {
		return nil, stats, err
	}

	records := make([]domain.RiskRecord, 0, len(rows))
	i := 0
	for _, row := range t.rows {
		if _, ok := ParseDate(t.get(row, "date")); !ok {
			continue
		}
		if _, ok := parseHorizon(t.get(row, "forecast_horizon")); !ok {
			continue
		}
		records = append(records, domain.RiskRecord{
			ReconciliationRow: rows[i],
			InventoryRiskFlag: domain.RiskFlag(t.get(row, "inventory_risk_flag")),
		})
		i++
	}
	return records, stats, nil
}
