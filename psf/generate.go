package psf

import (
	"math"

	"github.com/bob-anderson-ok/LensPSF/lens"
)

// Generate renders the normalized PSF core of a lens illuminated over a disk of
// sourceRadius. The reference field uses the mask for both amplitude and phase; a constant
// phase does not change its intensity.
func Generate(l lens.Lens, p Pupil, wavelength, sourceRadius, refocus float64) ([][]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	phase, mask := samplePupil(l, p.Grid, wavelength, sourceRadius, refocus, uniform)
	full, err := Render(Field(phase, mask, p.Total), Field(mask, mask, p.Total))
	if err != nil {
		return nil, err
	}
	return SliceCore(full, p.Core), nil
}

// GenerateLine renders the PSF midline for a uniformly illuminated pupil.
func GenerateLine(l lens.Lens, p Pupil, wavelength, sourceRadius, refocus float64) ([]float64, error) {
	return generateLine(l, p, wavelength, sourceRadius, refocus, uniform)
}

// GenerateGaussianLine renders the PSF midline for a Gaussian beam whose intensity falls
// to 1/e² at e2Radius, truncated at sourceRadius.
func GenerateGaussianLine(l lens.Lens, p Pupil, wavelength, sourceRadius, e2Radius, refocus float64) ([]float64, error) {
	e2sq := e2Radius * e2Radius
	gauss := func(r2 float64) float64 { return math.Exp(-r2 / e2sq) }
	return generateLine(l, p, wavelength, sourceRadius, refocus, gauss)
}

func generateLine(l lens.Lens, p Pupil, wavelength, sourceRadius, refocus float64, weight func(float64) float64) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	phase, mask := samplePupil(l, p.Grid, wavelength, sourceRadius, refocus, weight)
	return RenderMidline(Field(phase, mask, p.Total), Field(zeros(p.Grid), mask, p.Total), p.Grid)
}

// PixelScale is the image plane spacing (mm) between PSF samples. wavelength is in
// microns, efl and halfDiameter in mm.
func PixelScale(wavelength, efl, halfDiameter float64, p Pupil) float64 {
	return (wavelength / 1000 * efl) / (2 * halfDiameter) / (float64(p.Total) / float64(p.Grid))
}
