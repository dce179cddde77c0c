// Package wavefront estimates optical path difference from closely spaced ray traces.
package wavefront

import (
	"math"

	"github.com/bob-anderson-ok/LensPSF/lens"
)

// Rays with a transverse radius squared below this are on axis and carry no aberration.
const axialRadiusSq = 1e-10

// CalcOPD returns the OPD in waves of the ray starting at p0 along e0. Lens dimensions
// are in mm and wavelength in microns; the factor 1000 converts between them.
func CalcOPD(p0, e0 lens.Vector3D, l lens.Lens, wavelength, refocus float64) float64 {
	opd, _, _ := opdAndImage(p0, e0, l, wavelength, refocus)
	return opd
}

// opdAndImage also returns the ray at the refocused image plane and its LSA.
//
// The LSA of the sample ray and of a ray at 1/sqrt(2) of its height fit
// lsa(r²) = a·r² + b·r⁴; the OPD is the integral of that defocus expansion.
func opdAndImage(p0, e0 lens.Vector3D, l lens.Lens, wavelength, refocus float64) (float64, lens.Ray, float64) {
	rsq := p0.TransverseRadiusSq()
	if rsq < axialRadiusSq {
		return 0, lens.Ray{P: lens.Vector3D{Z: l.ImagePlane(refocus)}, E: lens.Axis}, 0
	}
	rsqsq := rsq * rsq
	p1 := lens.Vector3D{X: p0.X / math.Sqrt2, Y: p0.Y / math.Sqrt2, Z: p0.Z}

	aoiM, lsaM := lens.TraceRay(lens.Ray{P: p0, E: e0}, l, 0).AOILSA()
	_, lsaZ := lens.TraceRay(lens.Ray{P: p1, E: e0}, l, 0).AOILSA()
	final := lens.TraceRay(lens.Ray{P: p0, E: e0}, l, refocus)
	_, lsaF := final.AOILSA()

	a := (4*lsaZ - lsaM) / rsq
	b := (2*lsaM - 4*lsaZ) / rsqsq
	sin := math.Sin(aoiM)
	opd := 1000 * (sin * sin / 2) * (refocus - a*rsq/2 - b*rsqsq/3) / wavelength
	return opd, final, lsaF
}
