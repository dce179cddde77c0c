package psf

import (
	"errors"
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/dsp/fourier"
)

func TestCheckGridSize(t *testing.T) {
	for _, n := range []int{64, 128, 1024, 16384} {
		if err := CheckGridSize(n); err != nil {
			t.Errorf("%d: %v", n, err)
		}
	}
	for _, n := range []int{0, 32, 100, 32768} {
		if err := CheckGridSize(n); !errors.Is(err, ErrGridSize) {
			t.Errorf("%d: got %v, want ErrGridSize", n, err)
		}
	}
}

func TestFFTMatchesGonumSequence(t *testing.T) {
	const n = 64
	rng := rand.New(rand.NewSource(3))
	in := make([]complex128, n)
	for i := range in {
		in[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	want := fourier.NewCmplxFFT(n).Sequence(nil, in)

	got := append([]complex128(nil), in...)
	newTransform(n).fft(got)
	for i := range got {
		if cmplx.Abs(got[i]-want[i]/n) > 1e-12 {
			t.Fatalf("element %d: got %v, want %v", i, got[i], want[i]/n)
		}
	}
}

func TestImpulseGivesFlatMagnitude(t *testing.T) {
	const n = 64
	grid := makeComplex2D(n, n)
	grid[0][0] = 1
	newTransform(n).fft2d(grid)
	want := 1.0 / (n * n)
	for r, row := range grid {
		for c, z := range row {
			if math.Abs(cmplx.Abs(z)-want) > 1e-15 {
				t.Fatalf("|X[%d][%d]| = %g, want %g", r, c, cmplx.Abs(z), want)
			}
		}
	}
}

func TestShiftCentersOrigin(t *testing.T) {
	q := makeComplex2D(4, 4)
	q[0][0] = 1
	q[3][3] = 2
	s := shift(q)
	if s[2][2] != 1 || s[1][1] != 2 {
		t.Fatalf("shifted = %v", s)
	}
}

func disk(n int) (phase, mask [][]float64) {
	phase = zeros(n)
	mask = zeros(n)
	c := float64(n-1) / 2
	for r := range n {
		for col := range n {
			if math.Hypot(float64(r)-c, float64(col)-c) < c {
				mask[r][col] = 1
			}
		}
	}
	return phase, mask
}

func TestRenderReferencePeaksAtOne(t *testing.T) {
	_, mask := disk(16)
	out, err := Render(Field(mask, mask, 64), Field(mask, mask, 64))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(out[32][32]-1) > 1e-12 {
		t.Fatalf("center = %g, want 1", out[32][32])
	}
	if math.Abs(maxValue(out)-1) > 1e-12 {
		t.Fatalf("peak = %g, want 1", maxValue(out))
	}
}

func TestRenderAberrationLowersPeak(t *testing.T) {
	phase, mask := disk(16)
	c := 7.5
	for r := range phase {
		for col := range phase[r] {
			phase[r][col] = 0.05 * (math.Pow(float64(r)-c, 2) + math.Pow(float64(col)-c, 2))
		}
	}
	out, err := Render(Field(phase, mask, 64), Field(mask, mask, 64))
	if err != nil {
		t.Fatal(err)
	}
	if p := maxValue(out); !(p < 1 && p > 0) {
		t.Fatalf("aberrated peak = %g, want in (0, 1)", p)
	}
}

func TestRenderRejectsBadGrids(t *testing.T) {
	if _, err := Render(makeComplex2D(60, 60), makeComplex2D(60, 60)); !errors.Is(err, ErrGridSize) {
		t.Fatalf("got %v, want ErrGridSize", err)
	}
	if _, err := Render(makeComplex2D(64, 64), makeComplex2D(128, 128)); !errors.Is(err, ErrGridMismatch) {
		t.Fatalf("got %v, want ErrGridMismatch", err)
	}
}

func TestRenderMidline(t *testing.T) {
	phase, mask := disk(16)
	line, err := RenderMidline(Field(phase, mask, 64), Field(zeros(16), mask, 64), 16)
	if err != nil {
		t.Fatal(err)
	}
	if len(line) != 17 {
		t.Fatalf("got %d points, want 17", len(line))
	}
	if math.Abs(line[8]-1) > 1e-12 {
		t.Fatalf("center = %g, want 1", line[8])
	}
	for i := range line {
		if line[i] != line[len(line)-1-i] {
			t.Fatalf("line not symmetric at %d", i)
		}
	}
	if _, err := RenderMidline(Field(phase, mask, 64), Field(zeros(16), mask, 64), 1); !errors.Is(err, ErrGridSize) {
		t.Fatalf("width 1: got %v", err)
	}
}
