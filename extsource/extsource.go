// Package extsource images an extended (fiber) source through a lens with random rays and
// reduces the scattered image plane hits to a radial intensity profile.
package extsource

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/bob-anderson-ok/LensPSF/internal/workpool"
	"github.com/bob-anderson-ok/LensPSF/lens"
	"github.com/bob-anderson-ok/LensPSF/optimize"
	"gonum.org/v1/gonum/floats"
)

// Profiles whose peak exceeds this are smoothed with a Fermi-Dirac fit when asked.
const fermiThreshold = 0.6

// Fermi-Dirac starting guesses for a profile normalized to unit peak.
const (
	fermiBeta = 20.0
	fermiR50  = 0.1
	fermiPeak = 1.0
)

var ErrInvalidParams = errors.New("invalid extended source parameters")

// Params describes one extended source run.
type Params struct {
	NumRays      int     // ray start points in the pupil
	NumAngles    int     // directions per start point
	FiberRadius  float64 // mm
	SourceRadius float64 // pupil half aperture, mm
	Refocus      float64
	Bins         int     // histogram bins per axis, odd
	Multiplier   float64 // histogram half width in fiber radii
	UseFermi     bool
}

func (p Params) validate() error {
	switch {
	case p.NumRays < 1 || p.NumAngles < 1:
		return fmt.Errorf("%w: %d rays x %d angles", ErrInvalidParams, p.NumRays, p.NumAngles)
	case p.Bins < 3:
		return fmt.Errorf("%w: %d bins", ErrInvalidParams, p.Bins)
	case !(p.FiberRadius > 0) || !(p.SourceRadius > 0) || !(p.Multiplier > 0):
		return fmt.Errorf("%w: fiber %g, source %g, multiplier %g", ErrInvalidParams, p.FiberRadius, p.SourceRadius, p.Multiplier)
	}
	return nil
}

// Result is a profile mirrored about the axis.
type Result struct {
	X, Y   []float64
	Errors int // hits that fell outside the histogram
}

// Run traces NumRays·NumAngles random rays from a fiber at the focus of l and returns the
// image plane profile.
func Run(l lens.Lens, p Params, rng *rand.Rand) (Result, error) {
	if err := p.validate(); err != nil {
		return Result{}, err
	}
	efl := l.EFL()
	if math.IsNaN(efl) || math.IsInf(efl, 0) || efl == 0 {
		return Result{}, fmt.Errorf("%w: efl %g", ErrInvalidParams, efl)
	}

	in := lens.GenRandomRays(rng, p.NumRays, p.NumAngles, p.SourceRadius, p.FiberRadius/efl)
	xy := make([]float64, 2*len(in))
	workpool.For(len(in), func(i int) {
		out := lens.TraceRay(in[i], l, p.Refocus)
		xy[2*i] = out.P.X
		xy[2*i+1] = out.P.Y
	})

	n := float64(p.Bins)
	m := p.Multiplier
	cellSize := p.FiberRadius * m * 2 / (n - 1)
	// Normalizes a uniformly filled fiber image to unit intensity.
	vscale := (math.Pi * (n - 1) / (2 * m)) * ((n-1)/(2*m) - 1/math.Sqrt2)

	grid, errs := Histogram(xy, p.FiberRadius, p.Bins, m)
	xs, ys := Cull(grid, cellSize, vscale, len(in))
	if p.UseFermi && len(ys) > 0 && floats.Max(ys) > fermiThreshold {
		ys = optimize.FitFermiDirac(xs, ys, fermiBeta, fermiR50, fermiPeak)
	}
	x, y := Mirror(xs, ys)
	return Result{X: x, Y: y, Errors: errs}, nil
}

// Histogram bins interleaved (x, y) hits into a bins by bins grid spanning
// ±multiplier·fiberRadius; rows follow x and columns y. Hits outside the span are counted
// and dropped.
func Histogram(xy []float64, fiberRadius float64, bins int, multiplier float64) ([][]float64, int) {
	maxXY := multiplier * fiberRadius
	minXY := -maxXY
	binSize := 2 * maxXY / float64(bins-1)

	grid := make([][]float64, bins)
	for i := range grid {
		grid[i] = make([]float64, bins)
	}
	errs := 0
	for i := 0; i+1 < len(xy); i += 2 {
		row := math.Floor((xy[i] - minXY) / binSize)
		col := math.Floor((xy[i+1] - minXY) / binSize)
		if row >= 0 && row < float64(bins) && col >= 0 && col < float64(bins) {
			grid[int(row)][int(col)]++
		} else {
			errs++
		}
	}
	return grid, errs
}

// Cull averages the center row and column of grid, folds the result about the center and
// scales by vscale/totalRays. It returns len(grid)/2 radial samples spaced by cellSize.
func Cull(grid [][]float64, cellSize, vscale float64, totalRays int) (xs, ys []float64) {
	size := len(grid[0])
	cpt := size / 2
	line := make([]float64, size)
	for i := range line {
		line[i] = vscale * (grid[i][cpt] + grid[cpt][i]) / (2 * float64(totalRays))
	}
	xs = make([]float64, cpt)
	ys = make([]float64, cpt)
	for i := range cpt {
		xs[i] = cellSize * float64(i)
		ys[i] = (line[cpt-i] + line[cpt+i]) / 2
	}
	return xs, ys
}

// Mirror reflects a profile sampled from the axis outward to negative x. The first sample
// is kept once.
func Mirror(xs, ys []float64) ([]float64, []float64) {
	if len(xs) == 0 {
		return nil, nil
	}
	n := len(xs)
	x := make([]float64, 2*n-1)
	y := make([]float64, 2*n-1)
	mid := n - 1
	for i := range n {
		x[mid+i], y[mid+i] = xs[i], ys[i]
		x[mid-i], y[mid-i] = -xs[i], ys[i]
	}
	x[mid] = xs[0]
	return x, y
}
