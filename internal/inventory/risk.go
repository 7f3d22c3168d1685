// internal/inventory/risk.go
package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/woodlandforecast/backend-go/internal/domain"
	"github.com/woodlandforecast/backend-go/pkg/logger"
)

var overstockFactor = decimal.NewFromFloat(1.5)

// ClassifyRisk labels every reconciliation row with exactly one risk flag.
// Rules are evaluated in order and the first match wins; the conditions
// overlap so the ordering is load-bearing. A null safety stock disables the
// rules that reference it rather than raising an error.
func ClassifyRisk(rows []domain.ReconciliationRow) []domain.RiskRecord {
	log := logger.Stage("risk_classification")

	out := make([]domain.RiskRecord, 0, len(rows))
	counts := make(map[domain.RiskFlag]int)
	for _, row := range rows {
		flag := classifyRow(row)
		counts[flag]++
		out = append(out, domain.RiskRecord{ReconciliationRow: row, InventoryRiskFlag: flag})
	}

	flags := make([]domain.RiskFlag, 0, len(counts))
	for flag := range counts {
		flags = append(flags, flag)
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i] < flags[j] })
	event := log.Info().Int("rows", len(out))
	for _, flag := range flags {
		event = event.Int(string(flag), counts[flag])
	}
	event.Msg("classified inventory risk")

	return out
}

func classifyRow(row domain.ReconciliationRow) domain.RiskFlag {
	if !row.ClosingInventory.Valid {
		return domain.RiskNoInventoryData
	}
	closing := row.ClosingInventory.Decimal
	if row.RunningInventoryBalance.Valid && row.RunningInventoryBalance.Decimal.IsNegative() {
		return domain.RiskStockout
	}
	if !closing.IsPositive() {
		return domain.RiskStockout
	}
	if row.InventoryGapUnits.Valid && row.InventoryGapUnits.Decimal.IsNegative() {
		return domain.RiskDemandShortfall
	}
	if row.SafetyStock.Valid {
		safety := row.SafetyStock.Decimal
		if closing.LessThan(safety) {
			return domain.RiskLowStock
		}
		if row.RunningInventoryBalance.Valid && row.RunningInventoryBalance.Decimal.LessThan(safety) {
			return domain.RiskLowStock
		}
		if safety.IsPositive() && closing.GreaterThan(safety.Mul(overstockFactor)) {
			return domain.RiskOverstock
		}
	}
	return domain.RiskNormal
}
