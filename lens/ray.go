package lens

import "math"

// Ray is a position and a unit direction.
type Ray struct {
	P Vector3D // position
	E Vector3D // unit direction
}

// AOILSA returns the angle between the ray direction and the optical axis (radians) and the
// longitudinal aberration implied by the ray's transverse height at its current position.
func (r Ray) AOILSA() (aoi, lsa float64) {
	aoi = math.Acos(r.E.Dot(Axis))
	lsa = -math.Sqrt(r.P.TransverseRadiusSq()) / math.Tan(aoi)
	return aoi, lsa
}
