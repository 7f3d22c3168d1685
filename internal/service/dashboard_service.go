package service

import (
	"context"
	"math"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/woodlandforecast/backend-go/internal/cache"
	"github.com/woodlandforecast/backend-go/internal/dataset"
	"github.com/woodlandforecast/backend-go/internal/domain"
)

// DashboardService computes presentation KPIs over the current snapshot
// tables. It reads files on every uncached request; the snapshot files are
// small enough that the cache is a latency knob, not a correctness one.
type DashboardService struct {
	store *dataset.Store
	cache cache.DashboardSummaryCache
}

func NewDashboardService(store *dataset.Store, cacheImpl cache.DashboardSummaryCache) *DashboardService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &DashboardService{store: store, cache: cacheImpl}
}

func (s *DashboardService) GetSummary(ctx context.Context, filter *domain.DashboardFilter) (*domain.DashboardSummary, error) {
	if summary, ok, err := s.cache.GetSummary(ctx, filter); err == nil && ok {
		return summary, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("dashboard: cache get summary failed")
	}

	summary, err := s.buildSummary(filter)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetSummary(ctx, filter, summary); err != nil {
		log.Warn().Err(err).Msg("dashboard: cache set summary failed")
	}

	return summary, nil
}

// InvalidateCache drops every cached dashboard payload. Called after a
// pipeline run replaces the snapshot files.
func (s *DashboardService) InvalidateCache(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

func (s *DashboardService) buildSummary(filter *domain.DashboardFilter) (*domain.DashboardSummary, error) {
	horizon := domain.Horizon("")
	if filter != nil {
		horizon = domain.Horizon(filter.Horizon)
	}

	risks, _, err := dataset.ReadRiskRecords(s.store.Path(dataset.FileRisk))
	if err != nil {
		return nil, err
	}
	forecasts, _, err := dataset.ReadSKUForecasts(s.store.Path(dataset.FileSKUForecast))
	if err != nil {
		return nil, err
	}

	return &domain.DashboardSummary{
		RiskDistribution: riskDistribution(risks, horizon),
		Shortfalls:       materialShortfalls(risks, horizon),
		DemandByType:     demandByType(risks, horizon),
		Forecasts:        forecastSummaries(forecasts, horizon),
	}, nil
}

func riskDistribution(records []domain.RiskRecord, horizon domain.Horizon) []domain.RiskSlice {
	counts := make(map[domain.RiskFlag]int)
	total := 0
	for _, r := range records {
		if horizon != "" && r.Horizon != horizon {
			continue
		}
		counts[r.InventoryRiskFlag]++
		total++
	}

	slices := make([]domain.RiskSlice, 0, len(domain.RiskFlags))
	for _, flag := range domain.RiskFlags {
		count := counts[flag]
		if count == 0 {
			continue
		}
		pct := 0.0
		if total > 0 {
			pct = math.Round(float64(count)/float64(total)*10000) / 100
		}
		slices = append(slices, domain.RiskSlice{Flag: flag, Count: count, Percentage: pct})
	}
	return slices
}

type shortfallKey struct {
	material string
	horizon  domain.Horizon
}

func materialShortfalls(records []domain.RiskRecord, horizon domain.Horizon) []domain.MaterialShortfall {
	agg := make(map[shortfallKey]*domain.MaterialShortfall)
	worst := make(map[shortfallKey]decimal.Decimal)
	for _, r := range records {
		if horizon != "" && r.Horizon != horizon {
			continue
		}
		if !r.RunningInventoryBalance.Valid || !r.RunningInventoryBalance.Decimal.IsNegative() {
			continue
		}
		key := shortfallKey{material: r.RawMaterial, horizon: r.Horizon}
		entry, ok := agg[key]
		if !ok {
			entry = &domain.MaterialShortfall{
				RawMaterial:    r.RawMaterial,
				MaterialType:   r.MaterialType,
				Horizon:        r.Horizon,
				FirstShortDate: r.Date.Format(dataset.DateLayout),
			}
			agg[key] = entry
			worst[key] = r.RunningInventoryBalance.Decimal
		}
		if r.RunningInventoryBalance.Decimal.LessThan(worst[key]) {
			worst[key] = r.RunningInventoryBalance.Decimal
		}
		entry.TotalDemand += r.MaterialDemandUnits
	}

	out := make([]domain.MaterialShortfall, 0, len(agg))
	for key, entry := range agg {
		entry.WorstBalance = worst[key].String()
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Horizon != out[j].Horizon {
			return out[i].Horizon.Days() < out[j].Horizon.Days()
		}
		return out[i].RawMaterial < out[j].RawMaterial
	})
	return out
}

type typeKey struct {
	materialType string
	horizon      domain.Horizon
}

func demandByType(records []domain.RiskRecord, horizon domain.Horizon) []domain.MaterialTypeDemand {
	totals := make(map[typeKey]int64)
	for _, r := range records {
		if horizon != "" && r.Horizon != horizon {
			continue
		}
		totals[typeKey{materialType: r.MaterialType, horizon: r.Horizon}] += r.MaterialDemandUnits
	}

	out := make([]domain.MaterialTypeDemand, 0, len(totals))
	for key, total := range totals {
		out = append(out, domain.MaterialTypeDemand{
			MaterialType: key.materialType,
			Horizon:      key.horizon,
			TotalUnits:   total,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Horizon != out[j].Horizon {
			return out[i].Horizon.Days() < out[j].Horizon.Days()
		}
		return out[i].MaterialType < out[j].MaterialType
	})
	return out
}

func forecastSummaries(forecasts []domain.SKUForecast, horizon domain.Horizon) []domain.ForecastSummary {
	type acc struct {
		skus   map[string]bool
		stores map[string]bool
		units  int64
		start  string
		end    string
	}
	byHorizon := make(map[domain.Horizon]*acc)
	for _, f := range forecasts {
		if horizon != "" && f.Horizon != horizon {
			continue
		}
		a, ok := byHorizon[f.Horizon]
		if !ok {
			a = &acc{skus: make(map[string]bool), stores: make(map[string]bool)}
			byHorizon[f.Horizon] = a
		}
		a.skus[f.SKUID] = true
		a.stores[f.StoreID] = true
		a.units += int64(f.ForecastUnits)
		date := f.Date.Format(dataset.DateLayout)
		if a.start == "" || date < a.start {
			a.start = date
		}
		if date > a.end {
			a.end = date
		}
	}

	out := make([]domain.ForecastSummary, 0, len(byHorizon))
	for _, h := range domain.Horizons {
		a, ok := byHorizon[h]
		if !ok {
			continue
		}
		out = append(out, domain.ForecastSummary{
			Horizon:    h,
			SKUs:       len(a.skus),
			Stores:     len(a.stores),
			TotalUnits: a.units,
			StartDate:  a.start,
			EndDate:    a.end,
		})
	}
	return out
}
