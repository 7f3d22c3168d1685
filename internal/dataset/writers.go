// internal/dataset/writers.go
package dataset

import (
	"strconv"

	"github.com/woodlandforecast/backend-go/internal/domain"
)

// WriteSKUForecasts writes the combined forecast snapshot.
func WriteSKUForecasts(path string, forecasts []domain.SKUForecast) error {
	header := []string{"date", "sku_id", "store_id", "forecast_horizon", "forecast_units"}
	rows := make([][]string, 0, len(forecasts))
	for _, f := range forecasts {
		rows = append(rows, []string{
			f.Date.Format(DateLayout),
			f.SKUID,
			f.StoreID,
			string(f.Horizon),
			strconv.Itoa(f.ForecastUnits),
		})
	}
	return writeTable(path, header, rows)
}

// WriteSKUForecastsByHorizon writes a per-horizon forecast snapshot,
// keeping the same columns as the combined file.
func WriteSKUForecastsByHorizon(path string, forecasts []domain.SKUForecast, horizon domain.Horizon) error {
	filtered := make([]domain.SKUForecast, 0, len(forecasts))
	for _, f := range forecasts {
		if f.Horizon == horizon {
			filtered = append(filtered, f)
		}
	}
	return WriteSKUForecasts(path, filtered)
}

// WriteAllocationWeights writes the SKU to product allocation snapshot.
func WriteAllocationWeights(path string, weights []domain.AllocationWeight) error {
	header := []string{"sku_id", "product_id", "allocation_weight", "window_days"}
	rows := make([][]string, 0, len(weights))
	for _, w := range weights {
		rows = append(rows, []string{
			w.SKUID,
			w.ProductID,
			strconv.FormatFloat(w.AllocationWeight, 'f', 3, 64),
			strconv.Itoa(w.WindowDays),
		})
	}
	return writeTable(path, header, rows)
}

// WriteSKUProductDemand writes the disaggregated demand snapshot.
func WriteSKUProductDemand(path string, demand []domain.SKUProductDemand) error {
	header := []string{"date", "sku_id", "store_id", "product_id", "forecast_horizon", "product_units"}
	rows := make([][]string, 0, len(demand))
	for _, d := range demand {
		rows = append(rows, []string{
			d.Date.Format(DateLayout),
			d.SKUID,
			d.StoreID,
			d.ProductID,
			string(d.Horizon),
			strconv.Itoa(d.ProductUnits),
		})
	}
	return writeTable(path, header, rows)
}

// WriteProductDemand writes the normalized product forecast snapshot.
func WriteProductDemand(path string, demand []domain.ProductDemand) error {
	header := []string{"date", "product_id", "forecast_horizon", "product_units"}
	rows := make([][]string, 0, len(demand))
	for _, d := range demand {
		rows = append(rows, []string{
			d.Date.Format(DateLayout),
			d.ProductID,
			string(d.Horizon),
			strconv.Itoa(d.ProductUnits),
		})
	}
	return writeTable(path, header, rows)
}

// WriteBOMExpanded writes the BOM-expanded demand snapshot.
func WriteBOMExpanded(path string, rows []domain.BOMExpandedRow) error {
	header := []string{"date", "product_id", "forecast_horizon", "product_units",
		"raw_material", "material_type", "consumption_per_unit"}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Date.Format(DateLayout),
			r.ProductID,
			string(r.Horizon),
			strconv.Itoa(r.ProductUnits),
			r.RawMaterial,
			r.MaterialType,
			r.ConsumptionPerUnit.String(),
		})
	}
	return writeTable(path, header, out)
}

// WriteRawMaterialDemand writes the exploded raw material demand snapshot.
func WriteRawMaterialDemand(path string, demand []domain.RawMaterialDemand) error {
	header := []string{"date", "raw_material", "material_type", "forecast_horizon", "material_demand_units"}
	rows := make([][]string, 0, len(demand))
	for _, d := range demand {
		rows = append(rows, []string{
			d.Date.Format(DateLayout),
			d.RawMaterial,
			d.MaterialType,
			string(d.Horizon),
			strconv.FormatInt(d.MaterialDemandUnits, 10),
		})
	}
	return writeTable(path, header, rows)
}

// WriteLedgerEntries writes the validated inventory ledger snapshot.
func WriteLedgerEntries(path string, entries []domain.LedgerEntry) error {
	header := []string{"date", "raw_material", "opening_inventory", "inflow_quantity",
		"consumed_quantity", "closing_inventory", "safety_stock",
		"calculated_closing_inventory", "inventory_validation_status"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Date.Format(DateLayout),
			e.RawMaterial,
			e.OpeningInventory.String(),
			e.InflowQuantity.String(),
			e.ConsumedQuantity.String(),
			e.ClosingInventory.String(),
			e.SafetyStock.String(),
			e.CalculatedClosingInventory.String(),
			strconv.FormatBool(e.ValidationStatus),
		})
	}
	return writeTable(path, header, rows)
}

func reconciliationRecord(r domain.ReconciliationRow) []string {
	return []string{
		r.Date.Format(DateLayout),
		r.RawMaterial,
		r.MaterialType,
		string(r.Horizon),
		strconv.FormatInt(r.MaterialDemandUnits, 10),
		formatNullDate(r.InventoryDate),
		formatNullDecimal(r.ClosingInventory),
		formatNullDecimal(r.SafetyStock),
		formatNullDecimal(r.InventoryGapUnits),
		strconv.FormatInt(r.CumulativeDemand, 10),
		formatNullDecimal(r.RunningInventoryBalance),
	}
}

var reconciliationHeader = []string{"date", "raw_material", "material_type", "forecast_horizon",
	"material_demand_units", "inventory_date", "closing_inventory", "safety_stock",
	"inventory_gap_units", "cumulative_demand", "running_inventory_balance"}

// WriteReconciliationRows writes the supply-demand reconciliation snapshot.
func WriteReconciliationRows(path string, rows []domain.ReconciliationRow) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, reconciliationRecord(r))
	}
	return writeTable(path, reconciliationHeader, out)
}

// WriteRiskRecords writes the classified risk snapshot.
func WriteRiskRecords(path string, records []domain.RiskRecord) error {
	header := append(append([]string{}, reconciliationHeader...), "inventory_risk_flag")
	out := make([][]string, 0, len(records))
	for _, r := range records {
		out = append(out, append(reconciliationRecord(r.ReconciliationRow), string(r.InventoryRiskFlag)))
	}
	return writeTable(path, header, out)
}
