package psf

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// PaddingMode selects how the image is extended past its edges before convolving.
type PaddingMode int

const (
	PadZeros PaddingMode = iota
	PadReflect
	PadReplicate
	PadCircular
)

var paddingNames = [...]string{
	PadZeros:     "zeros",
	PadReflect:   "reflect",
	PadReplicate: "replicate",
	PadCircular:  "circular",
}

func (m PaddingMode) String() string {
	if m < 0 || int(m) >= len(paddingNames) {
		return fmt.Sprintf("PaddingMode(%d)", int(m))
	}
	return paddingNames[m]
}

// ParsePaddingMode returns the mode whose String is name.
func ParsePaddingMode(name string) (PaddingMode, error) {
	for m, n := range paddingNames {
		if n == name {
			return PaddingMode(m), nil
		}
	}
	return 0, fmt.Errorf("unknown padding mode %q", name)
}

// SourceDisk builds a centered uniform disk of the given radius sampled at spacing, with a
// one pixel border, normalized to unit sum. radius and spacing share units.
func SourceDisk(radius, spacing float64) [][]float64 {
	width := int(math.Ceil(2 * radius / spacing))
	// Odd width keeps the disk centered on a pixel.
	if width%2 == 0 {
		width++
	}
	width += 2
	disk := make([][]float64, width)
	center := width / 2
	sum := 0.0
	for row := range width {
		disk[row] = make([]float64, width)
		for col := range width {
			dr, dc := float64(row-center), float64(col-center)
			if math.Sqrt(dr*dr+dc*dc)*spacing <= radius {
				disk[row][col] = 1
				sum++
			}
		}
	}
	for _, row := range disk {
		for col := range row {
			row[col] /= sum
		}
	}
	return disk
}

// Convolve convolves image with a centered kernel and returns a result the size of image,
// extending the image past its edges by replicating the edge pixels.
func Convolve(image, kernel [][]float64) ([][]float64, error) {
	return ConvolvePadded(image, kernel, PadReplicate)
}

// ConvolvePadded is Convolve with a chosen edge policy.
func ConvolvePadded(image, kernel [][]float64, pad PaddingMode) ([][]float64, error) {
	H, W, err := rectSize(image)
	if err != nil {
		return nil, err
	}
	Kh, Kw, err := rectSize(kernel)
	if err != nil {
		return nil, err
	}
	if H == 0 || W == 0 || Kh == 0 || Kw == 0 {
		return nil, errors.New("empty image or kernel")
	}

	// The FFT grid must hold the full linear convolution.
	FH := nextPow2(H + Kh - 1)
	FW := nextPow2(W + Kw - 1)

	A := makeComplex2D(FH, FW)
	B := makeComplex2D(FH, FW)

	// Grid indices past the wrap point stand for negative offsets into the padding.
	wrapY := FH - (Kh - 1 - Kh/2)
	wrapX := FW - (Kw - 1 - Kw/2)
	for y := range FH {
		sy := y
		if y >= wrapY {
			sy = y - FH
		}
		for x := range FW {
			sx := x
			if x >= wrapX {
				sx = x - FW
			}
			A[y][x] = complex(sample2D(image, sy, sx, pad), 0)
		}
	}
	// The kernel center goes to (0,0).
	for y := range Kh {
		for x := range Kw {
			B[(y-Kh/2+FH)%FH][(x-Kw/2+FW)%FW] = complex(kernel[y][x], 0)
		}
	}

	fft2InPlace(A, true)
	fft2InPlace(B, true)
	for y := range FH {
		for x := range FW {
			A[y][x] *= B[y][x]
		}
	}
	fft2InPlace(A, false)

	// Gonum transforms are unnormalized: forward then inverse multiplies by FH*FW.
	scale := float64(FH * FW)
	out := make([][]float64, H)
	for y := range H {
		out[y] = make([]float64, W)
		for x := range W {
			out[y][x] = cleanZero(real(A[y][x]) / scale)
		}
	}
	return out, nil
}

func fft2InPlace(a [][]complex128, forward bool) {
	h := len(a)
	w := len(a[0])

	rowFFT := fourier.NewCmplxFFT(w)
	colFFT := fourier.NewCmplxFFT(h)

	for y := range h {
		if forward {
			rowFFT.Coefficients(a[y], a[y])
		} else {
			rowFFT.Sequence(a[y], a[y])
		}
	}

	col := make([]complex128, h)
	for x := range w {
		for y := range h {
			col[y] = a[y][x]
		}
		if forward {
			colFFT.Coefficients(col, col)
		} else {
			colFFT.Sequence(col, col)
		}
		for y := range h {
			a[y][x] = col[y]
		}
	}
}

func sample2D(img [][]float64, y, x int, mode PaddingMode) float64 {
	H := len(img)
	W := len(img[0])

	if 0 <= y && y < H && 0 <= x && x < W {
		return img[y][x]
	}

	switch mode {
	case PadReplicate:
		return img[clamp(y, 0, H-1)][clamp(x, 0, W-1)]
	case PadReflect:
		return img[reflectIndex(y, H)][reflectIndex(x, W)]
	case PadCircular:
		return img[mod(y, H)][mod(x, W)]
	}
	return 0
}

func rectSize(m [][]float64) (h, w int, err error) {
	h = len(m)
	if h == 0 {
		return 0, 0, nil
	}
	w = len(m[0])
	for i := 1; i < h; i++ {
		if len(m[i]) != w {
			return 0, 0, errors.New("ragged matrix")
		}
	}
	return h, w, nil
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func mod(i, n int) int {
	r := i % n
	if r < 0 {
		r += n
	}
	return r
}

// reflectIndex reflects without repeating edge pixels: ... 2 1 0 1 2 3 4 3 2 1 0 1 ...
func reflectIndex(i, n int) int {
	if n <= 1 {
		return 0
	}
	period := 2*n - 2
	i = mod(i, period)
	if i >= n {
		i = period - i
	}
	return i
}

func cleanZero(x float64) float64 {
	if math.Abs(x) < 1e-15 {
		return 0
	}
	return x
}
