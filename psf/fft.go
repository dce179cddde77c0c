// Package psf computes diffraction point spread functions from pupil fields with a
// radix-2 FFT, and convolves them with extended sources.
package psf

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/bob-anderson-ok/LensPSF/internal/workpool"
	"gonum.org/v1/gonum/floats"
)

// Supported side lengths of a square transform grid.
const (
	MinGridSize = 64
	MaxGridSize = 16384
)

var (
	ErrGridSize     = errors.New("grid size is not a power of two in [64, 16384]")
	ErrGridMismatch = errors.New("field and reference grids differ in size")
)

// CheckGridSize reports whether n can be used as the side of a transform grid.
func CheckGridSize(n int) error {
	if n < MinGridSize || n > MaxGridSize || n&(n-1) != 0 {
		return fmt.Errorf("%d: %w", n, ErrGridSize)
	}
	return nil
}

// transform holds the bit reversal and per stage twiddle tables of one grid size.
type transform struct {
	n   int
	rev []int
	rot [][]complex128
}

func newTransform(n int) *transform {
	m := bits.TrailingZeros(uint(n))
	t := &transform{n: n, rev: make([]int, n), rot: make([][]complex128, m)}
	for i := range n {
		old, r := i, 0
		for range m {
			r = r<<1 | old&1
			old >>= 1
		}
		t.rev[i] = r
	}
	for stage := range m {
		half := 1 << stage
		angle := math.Pi / float64(half)
		wr, wi := math.Cos(angle), math.Sin(angle)
		ur, ui := 1.0, 0.0
		rot := make([]complex128, half)
		for k := range rot {
			rot[k] = complex(ur, ui)
			ur, ui = ur*wr-ui*wi, ur*wi+ui*wr
		}
		t.rot[stage] = rot
	}
	return t
}

// fft transforms data in place and divides every element by n.
func (t *transform) fft(data []complex128) {
	n := t.n
	for i, s := range t.rev {
		if s > i {
			data[i], data[s] = data[s], data[i]
		}
	}
	tn := 1
	for _, rot := range t.rot {
		tm := tn
		tn <<= 1
		for i := range tm {
			w := rot[i]
			for even := i; even < n; even += tn {
				odd := even + tm
				c := data[odd] * w
				data[odd] = data[even] - c
				data[even] += c
			}
		}
	}
	scale := complex(1/float64(n), 0)
	for i := range data {
		data[i] *= scale
	}
}

// fft2d transforms every row and then every column of grid in place.
func (t *transform) fft2d(grid [][]complex128) {
	workpool.For(t.n, func(row int) {
		t.fft(grid[row])
	})
	workpool.For(t.n, func(col int) {
		buf := make([]complex128, t.n)
		for i := range buf {
			buf[i] = grid[i][col]
		}
		t.fft(buf)
		for i := range buf {
			grid[i][col] = buf[i]
		}
	})
}

// shift swaps quadrants so the zero frequency term moves to the grid center.
func shift(q [][]complex128) [][]complex128 {
	rows := len(q)
	cols := len(q[0])
	s := makeComplex2D(rows, cols)
	mid := cols / 2
	for r := range rows {
		for c := mid; c < cols; c++ {
			s[r][c-mid] = q[r][c]
			s[r][c] = q[r][c-mid]
		}
	}
	t := makeComplex2D(rows, cols)
	mid = rows / 2
	for r := mid; r < rows; r++ {
		for c := range cols {
			t[r-mid][c] = s[r][c]
			t[r][c] = s[r-mid][c]
		}
	}
	return t
}

func power(z complex128) float64 {
	return real(z * complex(real(z), -imag(z)))
}

func intensity(q [][]complex128) [][]float64 {
	out := make([][]float64, len(q))
	for r, row := range q {
		out[r] = make([]float64, len(row))
		for c, z := range row {
			out[r][c] = power(z)
		}
	}
	return out
}

func maxValue(m [][]float64) float64 {
	peak := math.Inf(-1)
	for _, row := range m {
		peak = math.Max(peak, floats.Max(row))
	}
	return peak
}

func checkPair(data, ref [][]complex128) error {
	n := len(data)
	if err := CheckGridSize(n); err != nil {
		return err
	}
	if len(ref) != n {
		return ErrGridMismatch
	}
	for i := range n {
		if len(data[i]) != n || len(ref[i]) != n {
			return ErrGridMismatch
		}
	}
	return nil
}

// Render returns the centered intensity of data normalized by the peak intensity of ref.
// Both grids are transformed in place.
func Render(data, ref [][]complex128) ([][]float64, error) {
	if err := checkPair(data, ref); err != nil {
		return nil, err
	}
	t := newTransform(len(data))
	t.fft2d(data)
	t.fft2d(ref)

	out := intensity(shift(data))
	peak := maxValue(intensity(shift(ref)))
	for _, row := range out {
		floats.Scale(1/peak, row)
	}
	return out, nil
}

// RenderMidline returns 2·(width/2)+1 intensities read outward in both directions from the origin
// along row 0 of the unshifted transform, left half first. The normalization is the larger
// of the two corner intensities on row 0 of the reference. Both grids are transformed in place.
func RenderMidline(data, ref [][]complex128, width int) ([]float64, error) {
	if err := checkPair(data, ref); err != nil {
		return nil, err
	}
	half := width / 2
	if half < 1 || half >= len(data) {
		return nil, fmt.Errorf("midline width %d for grid %d: %w", width, len(data), ErrGridSize)
	}
	t := newTransform(len(data))
	t.fft2d(ref)
	last := len(ref) - 1
	peak := math.Max(power(ref[0][0]), power(ref[0][last]))

	t.fft2d(data)
	line := make([]float64, 0, 2*half+1)
	for i := half; i >= 1; i-- {
		line = append(line, power(data[0][i])/peak)
	}
	for i := 0; i <= half; i++ {
		line = append(line, power(data[0][i])/peak)
	}
	return line, nil
}

func makeComplex2D(h, w int) [][]complex128 {
	m := make([][]complex128, h)
	for i := range m {
		m[i] = make([]complex128, w)
	}
	return m
}
