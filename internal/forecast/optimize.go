// internal/forecast/optimize.go
package forecast

import (
	"math"
	"sort"
)

// nelderMead minimizes f starting from x0 with the given initial simplex
// step. It returns the best point found and whether the search stayed
// finite. The implementation is the textbook downhill simplex with standard
// reflection/expansion/contraction/shrink coefficients; the coefficient
// space here is four-dimensional and well behaved, so nothing fancier is
// needed.
func nelderMead(f func([]float64) float64, x0 []float64, step float64, maxIter int, tol float64) ([]float64, bool) {
	const (
		alpha = 1.0 // reflection
		gamma = 2.0 // expansion
		rho   = 0.5 // contraction
		sigma = 0.5 // shrink
	)

	dim := len(x0)
	type vertex struct {
		x []float64
		f float64
	}

	eval := func(x []float64) (float64, bool) {
		v := f(x)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}

	simplex := make([]vertex, dim+1)
	base, ok := eval(x0)
	if !ok {
		return nil, false
	}
	simplex[0] = vertex{x: append([]float64(nil), x0...), f: base}
	for i := 0; i < dim; i++ {
		x := append([]float64(nil), x0...)
		x[i] += step
		fx, ok := eval(x)
		if !ok {
			return nil, false
		}
		simplex[i+1] = vertex{x: x, f: fx}
	}

	for iter := 0; iter < maxIter; iter++ {
		sort.Slice(simplex, func(i, j int) bool { return simplex[i].f < simplex[j].f })

		if simplex[dim].f-simplex[0].f < tol {
			break
		}

		// Centroid of all vertices except the worst.
		centroid := make([]float64, dim)
		for _, v := range simplex[:dim] {
			for j := range centroid {
				centroid[j] += v.x[j] / float64(dim)
			}
		}

		worst := simplex[dim]
		reflected := make([]float64, dim)
		for j := range reflected {
			reflected[j] = centroid[j] + alpha*(centroid[j]-worst.x[j])
		}
		fr, ok := eval(reflected)
		if !ok {
			return nil, false
		}

		switch {
		case fr < simplex[0].f:
			expanded := make([]float64, dim)
			for j := range expanded {
				expanded[j] = centroid[j] + gamma*(reflected[j]-centroid[j])
			}
			if fe, ok := eval(expanded); ok && fe < fr {
				simplex[dim] = vertex{x: expanded, f: fe}
			} else {
				simplex[dim] = vertex{x: reflected, f: fr}
			}
		case fr < simplex[dim-1].f:
			simplex[dim] = vertex{x: reflected, f: fr}
		default:
			contracted := make([]float64, dim)
			for j := range contracted {
				contracted[j] = centroid[j] + rho*(worst.x[j]-centroid[j])
			}
			fc, ok := eval(contracted)
			if !ok {
				return nil, false
			}
			if fc < worst.f {
				simplex[dim] = vertex{x: contracted, f: fc}
			} else {
				// Shrink toward the best vertex.
				for i := 1; i <= dim; i++ {
					for j := range simplex[i].x {
						simplex[i].x[j] = simplex[0].x[j] + sigma*(simplex[i].x[j]-simplex[0].x[j])
					}
					fx, ok := eval(simplex[i].x)
					if !ok {
						return nil, false
					}
					simplex[i].f = fx
				}
			}
		}
	}

	sort.Slice(simplex, func(i, j int) bool { return simplex[i].f < simplex[j].f })
	return simplex[0].x, true
}
