// Package pipeline sequences the batch stages over a shared dataset store.
// An end-to-end run passes tables between stages in memory while still
// writing every output snapshot; a single stage run reads its inputs back
// from the snapshots so stages can be re-run independently. Both modes
// produce identical output tables.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/woodlandforecast/backend-go/internal/allocation"
	"github.com/woodlandforecast/backend-go/internal/config"
	"github.com/woodlandforecast/backend-go/internal/dataset"
	"github.com/woodlandforecast/backend-go/internal/demand"
	"github.com/woodlandforecast/backend-go/internal/domain"
	"github.com/woodlandforecast/backend-go/internal/forecast"
	"github.com/woodlandforecast/backend-go/internal/inventory"
	"github.com/woodlandforecast/backend-go/pkg/logger"
)

// StageResult summarizes one completed stage run.
type StageResult struct {
	Stage      string        `json:"stage"`
	OutputRows int           `json:"output_rows"`
	Duration   time.Duration `json:"duration"`
	Warnings   int           `json:"warnings"`
}

// Runner executes pipeline stages against one dataset directory.
type Runner struct {
	store *dataset.Store
	cfg   config.PipelineConfig
}

func NewRunner(store *dataset.Store, cfg config.PipelineConfig) *Runner {
	return &Runner{store: store, cfg: cfg}
}

// state carries stage outputs through an end-to-end run so downstream
// stages consume them directly instead of re-reading the snapshots. A
// fresh (empty) state makes every stage fall back to the files.
type state struct {
	forecasts      []domain.SKUForecast
	weights        []domain.AllocationWeight
	skuDemand      []domain.SKUProductDemand
	productDemand  []domain.ProductDemand
	expanded       []domain.BOMExpandedRow
	materialDemand []domain.RawMaterialDemand
	ledger         []domain.LedgerEntry
	reconciliation []domain.ReconciliationRow
}

// stageOrder is the full cascade in dependency order.
var stageOrder = []string{
	"sku_forecast",
	"product_allocation",
	"demand_disaggregation",
	"product_normalization",
	"bom_mapping",
	"demand_explosion",
	"inventory_ledger",
	"reconciliation",
	"risk_classification",
}

// RunAll executes every stage in dependency order, handing tables to the
// next stage in memory and stopping at the first fatal stage error.
func (r *Runner) RunAll(ctx context.Context) ([]StageResult, error) {
	st := &state{}
	results := make([]StageResult, 0, len(stageOrder))
	for _, stage := range stageOrder {
		res, err := r.runStage(ctx, stage, st)
		if err != nil {
			return results, fmt.Errorf("stage %s: %w", stage, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// RunStage executes a single named stage, reading its inputs from the
// dataset snapshots.
func (r *Runner) RunStage(ctx context.Context, stage string) (StageResult, error) {
	return r.runStage(ctx, stage, &state{})
}

func (r *Runner) runStage(ctx context.Context, stage string, st *state) (StageResult, error) {
	start := time.Now()
	var (
		rows     int
		warnings int
		err      error
	)
	switch stage {
	case "sku_forecast":
		rows, warnings, err = r.runForecast(ctx, st)
	case "product_allocation":
		rows, warnings, err = r.runAllocation(st)
	case "demand_disaggregation":
		rows, warnings, err = r.runDisaggregation(st)
	case "product_normalization":
		rows, warnings, err = r.runNormalization(st)
	case "bom_mapping":
		rows, warnings, err = r.runBOMMapping(st)
	case "demand_explosion":
		rows, warnings, err = r.runExplosion(st)
	case "inventory_ledger":
		rows, warnings, err = r.runLedger(st)
	case "reconciliation":
		rows, warnings, err = r.runReconciliation(st)
	case "risk_classification":
		rows, warnings, err = r.runRisk(st)
	default:
		return StageResult{}, fmt.Errorf("unknown stage %q", stage)
	}
	if err != nil {
		return StageResult{}, err
	}

	res := StageResult{
		Stage:      stage,
		OutputRows: rows,
		Duration:   time.Since(start),
		Warnings:   warnings,
	}
	stageLog := logger.Stage(stage)
	stageLog.Info().
		Int("output_rows", res.OutputRows).
		Int("warnings", res.Warnings).
		Dur("duration", res.Duration).
		Msg("stage complete")
	return res, nil
}

// Stages lists the runnable stage names in dependency order.
func Stages() []string {
	out := make([]string, len(stageOrder))
	copy(out, stageOrder)
	return out
}

func (r *Runner) runForecast(ctx context.Context, st *state) (int, int, error) {
	sales, stats, err := dataset.ReadSalesRecords(r.store.Path(dataset.FileSKUDailySales))
	if err != nil {
		return 0, 0, err
	}
	result, err := forecast.Generate(ctx, sales, forecast.Config{
		MinHistoryDays: r.cfg.MinHistoryDays,
		Workers:        r.cfg.ForecastWorkers,
	})
	if err != nil {
		return 0, 0, err
	}
	if err := dataset.WriteSKUForecasts(r.store.Path(dataset.FileSKUForecast), result.Forecasts); err != nil {
		return 0, 0, err
	}
	if err := dataset.WriteSKUForecastsByHorizon(r.store.Path(dataset.FileSKUForecast7Day), result.Forecasts, "7day"); err != nil {
		return 0, 0, err
	}
	if err := dataset.WriteSKUForecastsByHorizon(r.store.Path(dataset.FileSKUForecast30Day), result.Forecasts, "30day"); err != nil {
		return 0, 0, err
	}
	st.forecasts = result.Forecasts
	return len(result.Forecasts), result.Failed + stats.DroppedDates, nil
}

func (r *Runner) runAllocation(st *state) (int, int, error) {
	sales, stats, err := dataset.ReadSalesRecords(r.store.Path(dataset.FileSKUDailySales))
	if err != nil {
		return 0, 0, err
	}
	master, err := dataset.ReadSKUMaster(r.store.Path(dataset.FileSKUMaster))
	if err != nil {
		return 0, 0, err
	}
	weights, mixStats, err := allocation.InferProductMix(sales, master, r.cfg.WindowDays)
	if err != nil {
		return 0, 0, err
	}
	if err := dataset.WriteAllocationWeights(r.store.Path(dataset.FileSKUProductAllocation), weights); err != nil {
		return 0, 0, err
	}
	st.weights = weights
	return len(weights), mixStats.UnmappedRows + stats.DroppedDates, nil
}

func (r *Runner) runDisaggregation(st *state) (int, int, error) {
	warnings := 0
	forecasts := st.forecasts
	if forecasts == nil {
		var stats dataset.ReadStats
		var err error
		forecasts, stats, err = dataset.ReadSKUForecasts(r.store.Path(dataset.FileSKUForecast))
		if err != nil {
			return 0, 0, err
		}
		warnings += stats.DroppedDates
	}
	weights := st.weights
	if weights == nil {
		var err error
		weights, err = dataset.ReadAllocationWeights(r.store.Path(dataset.FileSKUProductAllocation))
		if err != nil {
			return 0, 0, err
		}
	}
	rows, disStats, err := allocation.Disaggregate(forecasts, weights)
	if err != nil {
		return 0, 0, err
	}
	if err := dataset.WriteSKUProductDemand(r.store.Path(dataset.FileSKUProductDemand), rows); err != nil {
		return 0, 0, err
	}
	st.skuDemand = rows
	return len(rows), warnings + disStats.DroppedRows, nil
}

func (r *Runner) runNormalization(st *state) (int, int, error) {
	warnings := 0
	rows := st.skuDemand
	if rows == nil {
		var stats dataset.ReadStats
		var err error
		rows, stats, err = dataset.ReadSKUProductDemand(r.store.Path(dataset.FileSKUProductDemand))
		if err != nil {
			return 0, 0, err
		}
		warnings += stats.DroppedDates
	}
	normalized := demand.Normalize(rows)
	if err := dataset.WriteProductDemand(r.store.Path(dataset.FileProductForecast), normalized); err != nil {
		return 0, 0, err
	}
	st.productDemand = normalized
	return len(normalized), warnings, nil
}

func (r *Runner) runBOMMapping(st *state) (int, int, error) {
	warnings := 0
	productDemand := st.productDemand
	if productDemand == nil {
		var stats dataset.ReadStats
		var err error
		productDemand, stats, err = dataset.ReadProductDemand(r.store.Path(dataset.FileProductForecast))
		if err != nil {
			return 0, 0, err
		}
		warnings += stats.DroppedDates
	}
	bom, err := dataset.ReadBOMEntries(r.store.Path(dataset.FileProductBOM))
	if err != nil {
		return 0, 0, err
	}
	expanded, bomStats := demand.ExpandBOM(productDemand, bom)
	if err := dataset.WriteBOMExpanded(r.store.Path(dataset.FileProductBOMExpanded), expanded); err != nil {
		return 0, 0, err
	}
	st.expanded = expanded
	return len(expanded), warnings + len(bomStats.MissingBOMProducts), nil
}

func (r *Runner) runExplosion(st *state) (int, int, error) {
	warnings := 0
	expanded := st.expanded
	if expanded == nil {
		var stats dataset.ReadStats
		var err error
		expanded, stats, err = dataset.ReadBOMExpanded(r.store.Path(dataset.FileProductBOMExpanded))
		if err != nil {
			return 0, 0, err
		}
		warnings += stats.DroppedDates
	}
	materialDemand, err := demand.Explode(expanded)
	if err != nil {
		return 0, 0, err
	}
	if err := dataset.WriteRawMaterialDemand(r.store.Path(dataset.FileRawMaterialDemand), materialDemand); err != nil {
		return 0, 0, err
	}
	st.materialDemand = materialDemand
	return len(materialDemand), warnings, nil
}

func (r *Runner) runLedger(st *state) (int, int, error) {
	movements, stats, err := dataset.ReadInventoryMovements(r.store.Path(dataset.FileInventoryMovements))
	if err != nil {
		return 0, 0, err
	}
	entries, err := inventory.BuildLedger(movements)
	if err != nil {
		return 0, 0, err
	}
	if err := dataset.WriteLedgerEntries(r.store.Path(dataset.FileInventoryLedger), entries); err != nil {
		return 0, 0, err
	}
	mismatches := 0
	for _, e := range entries {
		if !e.ValidationStatus {
			mismatches++
		}
	}
	st.ledger = entries
	return len(entries), mismatches + stats.DroppedDates, nil
}

func (r *Runner) runReconciliation(st *state) (int, int, error) {
	warnings := 0
	materialDemand := st.materialDemand
	if materialDemand == nil {
		var stats dataset.ReadStats
		var err error
		materialDemand, stats, err = dataset.ReadRawMaterialDemand(r.store.Path(dataset.FileRawMaterialDemand))
		if err != nil {
			return 0, 0, err
		}
		warnings += stats.DroppedDates
	}
	ledger := st.ledger
	if ledger == nil {
		var stats dataset.ReadStats
		var err error
		ledger, stats, err = dataset.ReadLedgerEntries(r.store.Path(dataset.FileInventoryLedger))
		if err != nil {
			return 0, 0, err
		}
		warnings += stats.DroppedDates
	}
	rows, recStats, err := inventory.Reconcile(materialDemand, ledger)
	if err != nil {
		return 0, 0, err
	}
	if err := dataset.WriteReconciliationRows(r.store.Path(dataset.FileReconciliation), rows); err != nil {
		return 0, 0, err
	}
	st.reconciliation = rows
	return len(rows), warnings + len(recStats.MissingSnapshotMaterials), nil
}

func (r *Runner) runRisk(st *state) (int, int, error) {
	warnings := 0
	rows := st.reconciliation
	if rows == nil {
		var stats dataset.ReadStats
		var err error
		rows, stats, err = dataset.ReadReconciliationRows(r.store.Path(dataset.FileReconciliation))
		if err != nil {
			return 0, 0, err
		}
		warnings += stats.DroppedDates
	}
	records := inventory.ClassifyRisk(rows)
	if err := dataset.WriteRiskRecords(r.store.Path(dataset.FileRisk), records); err != nil {
		return 0, 0, err
	}
	return len(records), warnings, nil
}
