// Package optimize holds a coordinate descent pattern search and its two uses: tuning lens
// aspheric coefficients and fitting Fermi-Dirac edge profiles.
package optimize

import "math"

// Param is one scalar the search may move. Params with the same Group share a step size.
type Param struct {
	Get   func() float64
	Set   func(float64)
	Group int
}

// Search minimizes an error function by probing one Param at a time. Every middle pass
// resets each group step to Steps[group]; within a middle pass a group step is divided by
// 10 whenever one of its params moves by less than MinStep.
type Search struct {
	Steps                []float64
	MinStep              float64
	Outer, Middle, Inner int
}

// Loop bounds used by both optimizers.
const (
	DefaultOuter  = 15
	DefaultMiddle = 15
	DefaultInner  = 15
)

// Minimize runs the full fixed schedule; it never stops early.
func (s Search) Minimize(params []Param, errFn func() float64) {
	steps := make([]float64, len(s.Steps))
	for range s.Outer {
		for range s.Middle {
			copy(steps, s.Steps)
			for range s.Inner {
				for _, p := range params {
					move := probe(p, steps[p.Group], errFn)
					p.Set(p.Get() + move)
					if math.Abs(move) < s.MinStep {
						steps[p.Group] /= 10
					}
				}
			}
		}
	}
}

// probe returns -step or +step when that lowers the error, else 0. The param is restored.
func probe(p Param, step float64, errFn func() float64) float64 {
	base := p.Get()
	center := errFn()
	p.Set(base + step)
	right := errFn()
	p.Set(base - step)
	left := errFn()
	p.Set(base)

	if left < center {
		return -step
	}
	if right < center {
		return step
	}
	return 0
}
