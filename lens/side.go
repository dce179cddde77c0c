package lens

import "math"

// SurfaceType is derived from a Side's coefficients and never stored.
type SurfaceType int

const (
	Plane SurfaceType = iota
	Sphere
	Asphere
)

func (t SurfaceType) String() string {
	switch t {
	case Plane:
		return "plane"
	case Sphere:
		return "sphere"
	case Asphere:
		return "asphere"
	}
	return "unknown"
}

// Side is one lens surface.
type Side struct {
	R  float64 `json:"r"`  // radius of curvature, 0 for flat
	K  float64 `json:"k"`  // conic constant
	AD float64 `json:"ad"` // 4th order aspheric coefficient
	AE float64 `json:"ae"` // 6th order aspheric coefficient
}

// Curvature is 1/R, or 0 when R is exactly 0.
func (s Side) Curvature() float64 {
	if s.R == 0 {
		return 0
	}
	return 1 / s.R
}

// Type classifies the surface from magnitude thresholds on its coefficients.
func (s Side) Type() SurfaceType {
	noAspheric := math.Abs(s.AD) < 1e-20 && math.Abs(s.AE) < 1e-20
	switch {
	case math.Abs(s.R) < 0.01 && math.Abs(s.K) < 1e-8 && noAspheric:
		return Plane
	case noAspheric:
		return Sphere
	default:
		return Asphere
	}
}
