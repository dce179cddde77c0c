package lens

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidLens is wrapped by Validate for every rejected field.
var ErrInvalidLens = errors.New("invalid lens parameters")

// Lens is a single element described by two surfaces, a center thickness and one index.
// NIndex must exceed 1 for meaningful refraction; the focal length equations do not check it.
type Lens struct {
	Diameter      float64 `json:"diameter"`
	ClearAperture float64 `json:"clear_aperture"`
	CT            float64 `json:"ct"`
	NIndex        float64 `json:"n_index"`
	Front         Side    `json:"front"`
	Back          Side    `json:"back"`
}

// EFL is the thick-lens effective focal length.
func (l Lens) EFL() float64 {
	c1 := l.Front.Curvature()
	c2 := l.Back.Curvature()
	n := l.NIndex
	return 1 / ((n - 1) * (c1 - c2 + (n-1)*l.CT*c1*c2/n))
}

// BFL is the back focal length, EFL less the rear principal plane offset.
func (l Lens) BFL() float64 {
	efl := l.EFL()
	return efl - (l.NIndex-1)*l.Front.Curvature()*efl*l.CT/l.NIndex
}

// ImagePlane is the axial position of the flat image plane for a given refocus.
func (l Lens) ImagePlane(refocus float64) float64 {
	return l.CT + l.BFL() + refocus
}

// Validate reports geometry that the trace cannot give meaning to. It is used at the
// boundary; the tracer itself never calls it.
func (l Lens) Validate() error {
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"diameter", l.Diameter}, {"clear_aperture", l.ClearAperture}, {"ct", l.CT}, {"n_index", l.NIndex},
		{"front.r", l.Front.R}, {"front.k", l.Front.K}, {"front.ad", l.Front.AD}, {"front.ae", l.Front.AE},
		{"back.r", l.Back.R}, {"back.k", l.Back.K}, {"back.ad", l.Back.AD}, {"back.ae", l.Back.AE},
	} {
		if !finite(f.v) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidLens, f.name)
		}
	}
	if l.Diameter <= 0 {
		return fmt.Errorf("%w: diameter must be positive, got %g", ErrInvalidLens, l.Diameter)
	}
	if l.CT <= 0 {
		return fmt.Errorf("%w: center thickness must be positive, got %g", ErrInvalidLens, l.CT)
	}
	if l.NIndex <= 1 {
		return fmt.Errorf("%w: n_index must exceed 1, got %g", ErrInvalidLens, l.NIndex)
	}
	if efl := l.EFL(); !finite(efl) {
		return fmt.Errorf("%w: focal length is not finite", ErrInvalidLens)
	}
	return nil
}

func (l Lens) String() string {
	return fmt.Sprintf("Lens{D=%g CA=%g CT=%g n=%g front=%+v back=%+v}",
		l.Diameter, l.ClearAperture, l.CT, l.NIndex, l.Front, l.Back)
}
