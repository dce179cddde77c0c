package psf

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/bob-anderson-ok/LensPSF/internal/workpool"
	"github.com/bob-anderson-ok/LensPSF/lens"
	"github.com/bob-anderson-ok/LensPSF/wavefront"
)

// Pupil describes how a PSF is sampled.
type Pupil struct {
	Grid  int // pupil samples across the source diameter
	Total int // padded transform size, a power of two
	Core  int // side of the returned PSF core
}

// Validate checks the sizes against each other.
func (p Pupil) Validate() error {
	if err := CheckGridSize(p.Total); err != nil {
		return err
	}
	if p.Grid < 2 || p.Grid > p.Total {
		return fmt.Errorf("pupil grid %d must be in [2, %d]: %w", p.Grid, p.Total, ErrGridSize)
	}
	if p.Core < 1 || p.Core > p.Total {
		return fmt.Errorf("core %d must be in [1, %d]: %w", p.Core, p.Total, ErrGridSize)
	}
	return nil
}

// Field places mask·exp(i·phase) in the middle of a total by total zero grid.
func Field(phase, mask [][]float64, total int) [][]complex128 {
	data := makeComplex2D(total, total)
	if len(mask) == 0 {
		return data
	}
	start := (total - len(mask[0])) / 2
	for r, row := range mask {
		for c, m := range row {
			data[start+r][start+c] = complex(m, 0) * cmplx.Exp(complex(0, phase[r][c]))
		}
	}
	return data
}

// SliceCore returns the centered core by core block of data.
func SliceCore(data [][]float64, core int) [][]float64 {
	startRow := (len(data) - core) / 2
	startCol := (len(data[0]) - core) / 2
	out := make([][]float64, core)
	for r := range out {
		out[r] = make([]float64, core)
		copy(out[r], data[startRow+r][startCol:startCol+core])
	}
	return out
}

// samplePupil fills the phase (2π·OPD) and mask grids over the source disk. weight gives
// the amplitude at squared radius r2 inside the disk.
func samplePupil(l lens.Lens, grid int, wavelength, sourceRadius, refocus float64, weight func(r2 float64) float64) (phase, mask [][]float64) {
	phase = make([][]float64, grid)
	mask = make([][]float64, grid)
	diag := sourceRadius * sourceRadius
	step := 2 * sourceRadius / float64(grid-1)
	workpool.For(grid, func(row int) {
		ph := make([]float64, grid)
		ms := make([]float64, grid)
		y := sourceRadius - float64(row)*step
		for col := range grid {
			x := -sourceRadius + float64(col)*step
			r2 := x*x + y*y
			if r2 < diag {
				opd := wavefront.CalcOPD(lens.Vector3D{X: x, Y: y}, lens.Axis, l, wavelength, refocus)
				ph[col] = 2 * math.Pi * opd
				ms[col] = weight(r2)
			}
		}
		phase[row] = ph
		mask[row] = ms
	})
	return phase, mask
}

func uniform(float64) float64 { return 1 }

func zeros(n int) [][]float64 {
	z := make([][]float64, n)
	for i := range z {
		z[i] = make([]float64, n)
	}
	return z
}
