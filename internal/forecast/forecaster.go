// internal/forecast/forecaster.go
package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/woodlandforecast/backend-go/internal/domain"
	"github.com/woodlandforecast/backend-go/pkg/logger"
)

// Config controls the forecasting stage.
type Config struct {
	// MinHistoryDays is the minimum number of distinct historical days a SKU
	// needs to qualify for forecasting.
	MinHistoryDays int
	// Workers bounds the number of concurrent model fits.
	Workers int
	// Horizons to emit; defaults to the standard 7 and 30 day windows.
	Horizons []domain.Horizon
}

func (c Config) withDefaults() Config {
	if c.MinHistoryDays <= 0 {
		c.MinHistoryDays = 30
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if len(c.Horizons) == 0 {
		c.Horizons = domain.Horizons
	}
	return c
}

// SKUFailure records one SKU that was skipped during forecasting.
type SKUFailure struct {
	SKUID string
	Err   error
}

// Result is the forecasting stage output: the fully materialized forecast
// table plus per-SKU success and failure accounting.
type Result struct {
	Forecasts []domain.SKUForecast
	Processed int
	Failed    int
	Failures  []SKUFailure
}

var (
	// ErrEmptySales is returned when the input sales table has no rows.
	ErrEmptySales = errors.New("forecast: sales table is empty")
	// ErrAllSKUsFailed is returned when not a single SKU produced a forecast.
	ErrAllSKUsFailed = errors.New("forecast: no SKU produced a forecast")
	// errShortHistory marks SKUs below the data-sufficiency threshold.
	errShortHistory = errors.New("insufficient history")
)

type skuSeries struct {
	skuID  string
	values []float64 // daily units summed across stores, chronological
}

type storeShare struct {
	storeID string
	weight  float64
}

type fitOutcome struct {
	forecast []float64
	err      error
}

// Generate runs the SKU forecasting stage: per-SKU seasonal model fits over
// store-aggregated daily units, followed by store allocation via historical
// sales shares. Individual SKU failures are recorded and skipped; the stage
// only fails when the input is empty or every SKU fails.
func Generate(ctx context.Context, sales []domain.SalesRecord, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	log := logger.Stage("sku_forecast")

	if len(sales) == 0 {
		return nil, ErrEmptySales
	}

	lastDate := sales[0].Date
	for _, s := range sales {
		if s.Date.After(lastDate) {
			lastDate = s.Date
		}
	}
	forecastStart := lastDate.AddDate(0, 0, 1)

	series := buildSeries(sales)
	shares := buildStoreShares(sales)

	log.Info().
		Int("rows", len(sales)).
		Int("skus", len(series)).
		Str("history_end", lastDate.Format("2006-01-02")).
		Str("forecast_start", forecastStart.Format("2006-01-02")).
		Msg("starting forecast run")

	outcomes := make([]fitOutcome, len(series))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range series {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = fitSKU(series[i], cfg.MinHistoryDays)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("forecast run aborted: %w", err)
	}

	result := &Result{}
	for i, s := range series {
		if outcomes[i].err != nil {
			result.Failed++
			result.Failures = append(result.Failures, SKUFailure{SKUID: s.skuID, Err: outcomes[i].err})
			if !errors.Is(outcomes[i].err, errShortHistory) {
				log.Warn().Str("sku_id", s.skuID).Err(outcomes[i].err).Msg("forecast failed for SKU")
			}
			continue
		}
		result.Processed++
		result.Forecasts = append(result.Forecasts,
			allocate(s.skuID, outcomes[i].forecast, shares[s.skuID], forecastStart, cfg.Horizons)...)
	}

	if result.Processed == 0 {
		return nil, ErrAllSKUsFailed
	}

	sortForecasts(result.Forecasts)

	log.Info().
		Int("processed", result.Processed).
		Int("failed", result.Failed).
		Int("rows_out", len(result.Forecasts)).
		Msg("forecast run completed")

	return result, nil
}

func fitSKU(s skuSeries, minHistoryDays int) fitOutcome {
	if len(s.values) < minHistoryDays {
		return fitOutcome{err: fmt.Errorf("%w: %d days", errShortHistory, len(s.values))}
	}
	model, err := Fit(s.values)
	if err != nil {
		return fitOutcome{err: err}
	}
	return fitOutcome{forecast: model.Forecast(domain.MaxHorizonDays)}
}

// buildSeries aggregates sales across stores into one chronological daily
// series per SKU, ordered by SKU for deterministic output.
func buildSeries(sales []domain.SalesRecord) []skuSeries {
	type dayKey struct {
		sku  string
		date time.Time
	}
	daily := make(map[dayKey]float64)
	for _, s := range sales {
		daily[dayKey{s.SKUID, s.Date}] += float64(s.ActualSalesUnits)
	}

	dates := make(map[string][]time.Time)
	for k := range daily {
		dates[k.sku] = append(dates[k.sku], k.date)
	}

	skus := make([]string, 0, len(dates))
	for sku := range dates {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	series := make([]skuSeries, 0, len(skus))
	for _, sku := range skus {
		ds := dates[sku]
		sort.Slice(ds, func(i, j int) bool { return ds[i].Before(ds[j]) })
		values := make([]float64, len(ds))
		for i, d := range ds {
			values[i] = daily[dayKey{sku, d}]
		}
		series = append(series, skuSeries{skuID: sku, values: values})
	}
	return series
}

// buildStoreShares computes each store's historical share of a SKU's total
// units, ordered by store for deterministic output.
func buildStoreShares(sales []domain.SalesRecord) map[string][]storeShare {
	type pairKey struct {
		sku   string
		store string
	}
	totals := make(map[pairKey]float64)
	skuTotals := make(map[string]float64)
	for _, s := range sales {
		totals[pairKey{s.SKUID, s.StoreID}] += float64(s.ActualSalesUnits)
		skuTotals[s.SKUID] += float64(s.ActualSalesUnits)
	}

	shares := make(map[string][]storeShare)
	for k, units := range totals {
		weight := 0.0
		if skuTotals[k.sku] > 0 {
			weight = units / skuTotals[k.sku]
		}
		shares[k.sku] = append(shares[k.sku], storeShare{storeID: k.store, weight: weight})
	}
	for sku := range shares {
		sort.Slice(shares[sku], func(i, j int) bool {
			return shares[sku][i].storeID < shares[sku][j].storeID
		})
	}
	return shares
}

// allocate splits a SKU-level daily forecast across stores for each horizon.
func allocate(skuID string, forecast []float64, shares []storeShare, start time.Time, horizons []domain.Horizon) []domain.SKUForecast {
	var rows []domain.SKUForecast
	for _, horizon := range horizons {
		days := horizon.Days()
		if days > len(forecast) {
			days = len(forecast)
		}
		for day := 0; day < days; day++ {
			date := start.AddDate(0, 0, day)
			for _, share := range shares {
				rows = append(rows, domain.SKUForecast{
					Date:          date,
					SKUID:         skuID,
					StoreID:       share.storeID,
					Horizon:       horizon,
					ForecastUnits: int(math.Round(forecast[day] * share.weight)),
				})
			}
		}
	}
	return rows
}

func sortForecasts(rows []domain.SKUForecast) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Horizon != b.Horizon {
			return a.Horizon.Days() < b.Horizon.Days()
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.SKUID != b.SKUID {
			return a.SKUID < b.SKUID
		}
		return a.StoreID < b.StoreID
	})
}
