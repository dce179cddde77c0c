package wavefront

import (
	"math"

	"github.com/bob-anderson-ok/LensPSF/internal/workpool"
	"github.com/bob-anderson-ok/LensPSF/lens"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Sample is one grid point of a wavefront map.
type Sample struct {
	In    lens.Ray
	Out   lens.Ray
	OPD   float64
	LSA   float64
	IX    int  // column in the sampling grid
	IY    int  // row in the sampling grid
	Valid bool // inside the aperture
}

// Stats summarizes the finite OPDs of the valid samples.
type Stats struct {
	MinOPD float64
	MaxOPD float64
	RMS    float64 // sample standard deviation
	Count  int
}

// GenerateSamples lays an n by n grid over a square of half width halfAperture, row major,
// top row first (y = +halfAperture). Samples inside the aperture circle are valid.
func GenerateSamples(halfAperture float64, n int) []Sample {
	samples := make([]Sample, 0, n*n)
	step := 0.0
	if n > 1 {
		step = 2 * halfAperture / float64(n-1)
	}
	diag := halfAperture * halfAperture
	for row := range n {
		y := halfAperture - float64(row)*step
		for col := range n {
			x := -halfAperture + float64(col)*step
			samples = append(samples, Sample{
				In:    lens.Ray{P: lens.Vector3D{X: x, Y: y}, E: lens.Axis},
				IX:    col,
				IY:    row,
				Valid: diag > x*x+y*y,
			})
		}
	}
	return samples
}

// TraceSamples fills Out, LSA and OPD of every valid sample in place and returns their
// statistics. Invalid samples are left untouched. The caller must not read or write
// samples until TraceSamples returns.
func TraceSamples(samples []Sample, l lens.Lens, wavelength, refocus float64) Stats {
	workpool.For(len(samples), func(i int) {
		s := &samples[i]
		if !s.Valid {
			return
		}
		s.OPD, s.Out, s.LSA = opdAndImage(s.In.P, s.In.E, l, wavelength, refocus)
	})

	opds := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.Valid && !math.IsNaN(s.OPD) {
			opds = append(opds, s.OPD)
		}
	}
	return summarize(opds)
}

func summarize(opds []float64) Stats {
	st := Stats{MinOPD: 1e20, MaxOPD: -1e20, Count: len(opds)}
	if len(opds) == 0 {
		return st
	}
	st.MinOPD = floats.Min(opds)
	st.MaxOPD = floats.Max(opds)
	if len(opds) > 1 {
		st.RMS = stat.StdDev(opds, nil)
	}
	return st
}

// Map reshapes traced samples into a grid indexed [IY][IX]; invalid cells hold fill.
func Map(samples []Sample, n int, fill float64) [][]float64 {
	m := make([][]float64, n)
	for row := range m {
		m[row] = make([]float64, n)
		for col := range m[row] {
			m[row][col] = fill
		}
	}
	for _, s := range samples {
		if s.Valid && s.IY < n && s.IX < n {
			m[s.IY][s.IX] = s.OPD
		}
	}
	return m
}
