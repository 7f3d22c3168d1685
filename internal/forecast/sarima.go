// internal/forecast/sarima.go
package forecast

import (
	"errors"
	"math"
)

// seasonalPeriod is the weekly cycle length of daily retail sales.
const seasonalPeriod = 7

var (
	// ErrInsufficientData is returned when a series is too short to
	// difference at the weekly seasonal lag.
	ErrInsufficientData = errors.New("forecast: series too short for seasonal differencing")
	// ErrFitDiverged is returned when the coefficient search fails to
	// produce finite residuals.
	ErrFitDiverged = errors.New("forecast: model fit diverged")
)

// Model is a seasonal ARIMA(1,1,1)(1,1,1)7 model fitted by conditional
// least squares. The order is fixed: one regular and one seasonal
// difference remove trend and weekly cycle, and a single AR/MA pair at
// both lags captures what remains.
type Model struct {
	phi    float64 // AR(1)
	theta  float64 // MA(1)
	seasAR float64 // seasonal AR at lag 7
	seasMA float64 // seasonal MA at lag 7

	history []float64 // original series
	diffed  []float64 // (1-B)(1-B^7) applied to history
	resid   []float64 // in-sample residuals at the fitted coefficients
}

// Fit estimates model coefficients for the given series. The series is the
// chronologically ordered daily unit count for a single SKU. Fit errors are
// per-SKU conditions; callers skip the SKU and continue.
func Fit(series []float64) (*Model, error) {
	if len(series) < 2*seasonalPeriod+2 {
		return nil, ErrInsufficientData
	}

	diffed := difference(series)

	objective := func(x []float64) float64 {
		phi, theta, seasAR, seasMA := bound(x[0]), bound(x[1]), bound(x[2]), bound(x[3])
		resid := residuals(diffed, phi, theta, seasAR, seasMA, nil)
		sse := 0.0
		for _, e := range resid {
			sse += e * e
		}
		return sse
	}

	best, ok := nelderMead(objective, []float64{0, 0, 0, 0}, 0.5, 400, 1e-9)
	if !ok {
		return nil, ErrFitDiverged
	}

	m := &Model{
		phi:     bound(best[0]),
		theta:   bound(best[1]),
		seasAR:  bound(best[2]),
		seasMA:  bound(best[3]),
		history: append([]float64(nil), series...),
		diffed:  diffed,
	}
	m.resid = residuals(diffed, m.phi, m.theta, m.seasAR, m.seasMA, nil)
	for _, e := range m.resid {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return nil, ErrFitDiverged
		}
	}
	return m, nil
}

// Forecast predicts the next steps values on the original scale, clipped to
// be non-negative.
func (m *Model) Forecast(steps int) []float64 {
	n := len(m.diffed)

	// Extend the differenced series recursively with future shocks at zero.
	w := append(append([]float64(nil), m.diffed...), make([]float64, steps)...)
	eps := append(append([]float64(nil), m.resid...), make([]float64, steps)...)
	for k := 0; k < steps; k++ {
		t := n + k
		w[t] = m.phi*at(w, t-1) +
			m.seasAR*at(w, t-seasonalPeriod) -
			m.phi*m.seasAR*at(w, t-seasonalPeriod-1) +
			m.theta*at(eps, t-1) +
			m.seasMA*at(eps, t-seasonalPeriod) +
			m.theta*m.seasMA*at(eps, t-seasonalPeriod-1)
		eps[t] = 0
	}

	// Undo both differences: w_t = y_t - y_{t-1} - y_{t-7} + y_{t-8}.
	h := len(m.history)
	y := append(append([]float64(nil), m.history...), make([]float64, steps)...)
	out := make([]float64, steps)
	for k := 0; k < steps; k++ {
		t := h + k
		y[t] = w[n+k] + y[t-1] + y[t-seasonalPeriod] - y[t-seasonalPeriod-1]
		out[k] = math.Max(0, y[t])
	}
	return out
}

// difference applies one regular and one seasonal difference.
func difference(series []float64) []float64 {
	first := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		first[i-1] = series[i] - series[i-1]
	}
	out := make([]float64, len(first)-seasonalPeriod)
	for i := seasonalPeriod; i < len(first); i++ {
		out[i-seasonalPeriod] = first[i] - first[i-seasonalPeriod]
	}
	return out
}

// residuals computes the conditional one-step residuals of the multiplicative
// ARMA recursion over the differenced series, treating pre-sample values as
// zero. When buf is large enough it is reused to avoid per-iteration allocs.
func residuals(w []float64, phi, theta, seasAR, seasMA float64, buf []float64) []float64 {
	eps := buf
	if cap(eps) < len(w) {
		eps = make([]float64, len(w))
	} else {
		eps = eps[:len(w)]
	}
	for t := range w {
		eps[t] = w[t] -
			phi*at(w, t-1) -
			seasAR*at(w, t-seasonalPeriod) +
			phi*seasAR*at(w, t-seasonalPeriod-1) -
			theta*at(eps, t-1) -
			seasMA*at(eps, t-seasonalPeriod) -
			theta*seasMA*at(eps, t-seasonalPeriod-1)
	}
	return eps
}

// at reads a series value, returning zero before the sample start.
func at(s []float64, i int) float64 {
	if i < 0 {
		return 0
	}
	return s[i]
}

// bound maps an unconstrained optimizer coordinate into (-0.98, 0.98),
// keeping the forecast recursion numerically stable.
func bound(x float64) float64 {
	return 0.98 * math.Tanh(x)
}
