package optimize

import (
	"math"

	"github.com/bob-anderson-ok/LensPSF/lens"
	"gonum.org/v1/gonum/floats"
)

// Target names one lens coefficient the optimizer may change.
type Target int

const (
	FrontConic Target = iota
	FrontAd
	FrontAe
	BackConic
	BackAd
	BackAe
	numTargets
)

func (t Target) String() string {
	switch t {
	case FrontConic:
		return "front conic"
	case FrontAd:
		return "front ad"
	case FrontAe:
		return "front ae"
	case BackConic:
		return "back conic"
	case BackAd:
		return "back ad"
	case BackAe:
		return "back ae"
	}
	return "unknown"
}

// Targets is a set of Target.
type Targets uint8

// NewTargets returns the set holding ts.
func NewTargets(ts ...Target) Targets {
	var s Targets
	for _, t := range ts {
		s |= 1 << t
	}
	return s
}

// Has reports whether t is in the set.
func (s Targets) Has(t Target) bool { return s&(1<<t) != 0 }

// Step groups shared by the front and back surfaces.
const (
	conicGroup = iota
	adGroup
	aeGroup
)

// LensSearch is the schedule OptiLens uses.
var LensSearch = Search{
	Steps:   []float64{conicGroup: 0.6, adGroup: 3.1e-7, aeGroup: 1.1e-9},
	MinStep: 1e-15,
	Outer:   DefaultOuter,
	Middle:  DefaultMiddle,
	Inner:   DefaultInner,
}

func (t Target) field(l *lens.Lens) (*float64, int) {
	switch t {
	case FrontConic:
		return &l.Front.K, conicGroup
	case FrontAd:
		return &l.Front.AD, adGroup
	case FrontAe:
		return &l.Front.AE, aeGroup
	case BackConic:
		return &l.Back.K, conicGroup
	case BackAd:
		return &l.Back.AD, adGroup
	case BackAe:
		return &l.Back.AE, aeGroup
	}
	return nil, 0
}

// OptiLens returns a copy of l with the targeted coefficients tuned to minimize the RMS
// image height of axial rays at heights y·diameter/2 for each y in rayYs.
func OptiLens(rayYs []float64, l lens.Lens, targets Targets) lens.Lens {
	return LensSearch.OptiLens(rayYs, l, targets)
}

// OptiLens is the package OptiLens with the schedule s.
func (s Search) OptiLens(rayYs []float64, l lens.Lens, targets Targets) lens.Lens {
	rays := make([]lens.Ray, len(rayYs))
	for i, y := range rayYs {
		rays[i] = lens.Ray{P: lens.Vector3D{Y: y * l.Diameter / 2}, E: lens.Axis}
	}

	var params []Param
	for t := FrontConic; t < numTargets; t++ {
		if !targets.Has(t) {
			continue
		}
		f, group := t.field(&l)
		params = append(params, Param{
			Get:   func() float64 { return *f },
			Set:   func(v float64) { *f = v },
			Group: group,
		})
	}
	if len(params) == 0 {
		return l
	}
	s.Minimize(params, func() float64 { return RayError(l, rays) })
	return l
}

// RayError is the RMS image height of rays traced with no refocus.
func RayError(l lens.Lens, rays []lens.Ray) float64 {
	if len(rays) == 0 {
		return 0
	}
	ys := make([]float64, len(rays))
	for i, r := range rays {
		ys[i] = lens.TraceRay(r, l, 0).P.Y
	}
	return math.Sqrt(floats.Dot(ys, ys) / float64(len(ys)))
}
