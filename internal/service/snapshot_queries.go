package service

import (
	"context"

	"github.com/woodlandforecast/backend-go/internal/dataset"
	"github.com/woodlandforecast/backend-go/internal/domain"
)

// RiskQuery filters and pages the risk record listing.
type RiskQuery struct {
	Horizon     string
	Flag        string
	RawMaterial string
	Page        int
	PageSize    int
}

func (q RiskQuery) withDefaults() RiskQuery {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 50
	}
	return q
}

// ListRisks returns one page of classified risk rows plus the total match
// count before paging.
func (s *DashboardService) ListRisks(ctx context.Context, query RiskQuery) ([]domain.RiskRecord, int, error) {
	query = query.withDefaults()

	records, _, err := dataset.ReadRiskRecords(s.store.Path(dataset.FileRisk))
	if err != nil {
		return nil, 0, err
	}

	matched := records[:0:0]
	for _, r := range records {
		if query.Horizon != "" && string(r.Horizon) != query.Horizon {
			continue
		}
		if query.Flag != "" && string(r.InventoryRiskFlag) != query.Flag {
			continue
		}
		if query.RawMaterial != "" && r.RawMaterial != query.RawMaterial {
			continue
		}
		matched = append(matched, r)
	}

	total := len(matched)
	start := (query.Page - 1) * query.PageSize
	if start >= total {
		return []domain.RiskRecord{}, total, nil
	}
	end := start + query.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// ListReconciliation returns reconciliation rows, optionally narrowed to one
// material and horizon. Rows come back in snapshot order, which is sorted by
// (horizon, material, date).
func (s *DashboardService) ListReconciliation(ctx context.Context, horizon, rawMaterial string) ([]domain.ReconciliationRow, error) {
	rows, _, err := dataset.ReadReconciliationRows(s.store.Path(dataset.FileReconciliation))
	if err != nil {
		return nil, err
	}

	if horizon == "" && rawMaterial == "" {
		return rows, nil
	}

	matched := rows[:0:0]
	for _, r := range rows {
		if horizon != "" && string(r.Horizon) != horizon {
			continue
		}
		if rawMaterial != "" && r.RawMaterial != rawMaterial {
			continue
		}
		matched = append(matched, r)
	}
	return matched, nil
}
