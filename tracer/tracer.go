// Package tracer is the boundary in front of the optics packages. Its entry points validate
// their inputs, return flat output buffers, and turn internal panics into ErrPanic.
package tracer

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/bob-anderson-ok/LensPSF/extsource"
	"github.com/bob-anderson-ok/LensPSF/internal/workpool"
	"github.com/bob-anderson-ok/LensPSF/lens"
	"github.com/bob-anderson-ok/LensPSF/optimize"
	"github.com/bob-anderson-ok/LensPSF/psf"
)

// ErrPanic wraps a panic recovered inside an entry point.
var ErrPanic = errors.New("internal fault")

func guard(op string, start time.Time, err *error) {
	if r := recover(); r != nil {
		Logger().Warn("recovered panic", "op", op, "panic", r)
		*err = fmt.Errorf("%s: %w: %v", op, ErrPanic, r)
		return
	}
	Logger().Debug("done", "op", op, "elapsed", time.Since(start), "err", *err)
}

// TraceRequest describes a random fan a fiber source sends through a lens.
type TraceRequest struct {
	NumRays      int
	NumAngles    int
	FiberRadius  float64
	SourceRadius float64
	Refocus      float64
	Lens         lens.Lens
	Seed         int64
}

// TraceResult holds x, y, z triples of positions and directions at the image plane.
type TraceResult struct {
	P []float64
	E []float64
}

// RunRaytrace traces NumRays·NumAngles random rays.
func RunRaytrace(req TraceRequest) (res TraceResult, err error) {
	defer guard("runRaytrace", time.Now(), &err)
	if err := req.Lens.Validate(); err != nil {
		return res, err
	}
	if req.NumRays < 1 || req.NumAngles < 1 {
		return res, fmt.Errorf("%d rays x %d angles: %w", req.NumRays, req.NumAngles, lens.ErrInvalidLens)
	}
	Logger().Debug("runRaytrace", "rays", req.NumRays, "angles", req.NumAngles)

	rng := rand.New(rand.NewSource(req.Seed))
	in := lens.GenRandomRays(rng, req.NumRays, req.NumAngles, req.SourceRadius, req.FiberRadius/req.Lens.EFL())
	res.P = make([]float64, 3*len(in))
	res.E = make([]float64, 3*len(in))
	workpool.For(len(in), func(i int) {
		out := lens.TraceRay(in[i], req.Lens, req.Refocus)
		copy(res.P[3*i:], []float64{out.P.X, out.P.Y, out.P.Z})
		copy(res.E[3*i:], []float64{out.E.X, out.E.Y, out.E.Z})
	})
	return res, nil
}

// PSFRequest selects the lens, sampling and illumination of a PSF.
type PSFRequest struct {
	Lens         lens.Lens
	Pupil        psf.Pupil
	Wavelength   float64 // microns
	SourceRadius float64
	E2Radius     float64 // Gaussian 1/e² radius, GenGaussLine only
	Refocus      float64
}

func (req PSFRequest) validate() error {
	if err := req.Lens.Validate(); err != nil {
		return err
	}
	if !(req.Wavelength > 0) || !(req.SourceRadius > 0) {
		return fmt.Errorf("wavelength %g, source radius %g: %w", req.Wavelength, req.SourceRadius, lens.ErrInvalidLens)
	}
	return req.Pupil.Validate()
}

// GenPSF returns the normalized PSF core, row major.
func GenPSF(req PSFRequest) (data []float64, err error) {
	defer guard("genPSF", time.Now(), &err)
	if err := req.validate(); err != nil {
		return nil, err
	}
	Logger().Debug("genPSF", "grid", req.Pupil.Grid, "total", req.Pupil.Total, "core", req.Pupil.Core)
	core, err := psf.Generate(req.Lens, req.Pupil, req.Wavelength, req.SourceRadius, req.Refocus)
	if err != nil {
		return nil, err
	}
	data = make([]float64, 0, req.Pupil.Core*req.Pupil.Core)
	for _, row := range core {
		data = append(data, row...)
	}
	return data, nil
}

// GenPSFLine returns the PSF midline of a uniformly filled pupil.
func GenPSFLine(req PSFRequest) (data []float64, err error) {
	defer guard("genPSFLine", time.Now(), &err)
	if err := req.validate(); err != nil {
		return nil, err
	}
	Logger().Debug("genPSFLine", "grid", req.Pupil.Grid, "total", req.Pupil.Total)
	return psf.GenerateLine(req.Lens, req.Pupil, req.Wavelength, req.SourceRadius, req.Refocus)
}

// GenGaussLine returns the PSF midline of a Gaussian beam.
func GenGaussLine(req PSFRequest) (data []float64, err error) {
	defer guard("genGaussLine", time.Now(), &err)
	if err := req.validate(); err != nil {
		return nil, err
	}
	if !(req.E2Radius > 0) {
		return nil, fmt.Errorf("e2 radius %g: %w", req.E2Radius, lens.ErrInvalidLens)
	}
	Logger().Debug("genGaussLine", "grid", req.Pupil.Grid, "total", req.Pupil.Total, "e2", req.E2Radius)
	return psf.GenerateGaussianLine(req.Lens, req.Pupil, req.Wavelength, req.SourceRadius, req.E2Radius, req.Refocus)
}

// ExtSrcResult is a mirrored extended source profile.
type ExtSrcResult struct {
	X, Y   []float64
	Errors int
}

// RunExtSrcTrace images a fiber through the lens; see extsource.Run.
func RunExtSrcTrace(l lens.Lens, p extsource.Params, seed int64) (res ExtSrcResult, err error) {
	defer guard("runExtSrcTrace", time.Now(), &err)
	if err := l.Validate(); err != nil {
		return res, err
	}
	Logger().Debug("runExtSrcTrace", "rays", p.NumRays*p.NumAngles, "bins", p.Bins)
	r, err := extsource.Run(l, p, rand.New(rand.NewSource(seed)))
	if err != nil {
		return res, err
	}
	if r.Errors > 0 {
		Logger().Debug("rays outside histogram", "count", r.Errors)
	}
	return ExtSrcResult{X: r.X, Y: r.Y, Errors: r.Errors}, nil
}

// OptimizeLens tunes the targeted coefficients of l; see optimize.OptiLens.
func OptimizeLens(rayHeights []float64, l lens.Lens, targets optimize.Targets) (out lens.Lens, err error) {
	defer guard("optimizeLens", time.Now(), &err)
	if err := l.Validate(); err != nil {
		return l, err
	}
	Logger().Debug("optimizeLens", "rays", len(rayHeights), "targets", fmt.Sprintf("%06b", targets))
	return optimize.OptiLens(rayHeights, l, targets), nil
}

func checkSamples(xs, ys []float64, r50 float64) error {
	if len(xs) != len(ys) || len(xs) == 0 {
		return fmt.Errorf("fermi fit: %d xs and %d ys", len(xs), len(ys))
	}
	if r50 == 0 || math.IsNaN(r50) {
		return fmt.Errorf("fermi fit: r50 guess %g", r50)
	}
	return nil
}

// FitFermiDirac returns the fitted Fermi-Dirac curve at xs.
func FitFermiDirac(xs, ys []float64, beta, r50, peak float64) (fit []float64, err error) {
	defer guard("fitFermiDirac", time.Now(), &err)
	if err := checkSamples(xs, ys, r50); err != nil {
		return nil, err
	}
	return optimize.FitFermiDirac(xs, ys, beta, r50, peak), nil
}

// FermiDiracCoefficients returns the fitted beta, r50 and peak.
func FermiDiracCoefficients(xs, ys []float64, beta, r50, peak float64) (b, r, p float64, err error) {
	defer guard("fermiDiracCoefficients", time.Now(), &err)
	if err := checkSamples(xs, ys, r50); err != nil {
		return 0, 0, 0, err
	}
	b, r, p = optimize.FermiDiracCoefficients(xs, ys, beta, r50, peak)
	return b, r, p, nil
}
