package extsource

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/bob-anderson-ok/LensPSF/lens"
)

func TestMirror(t *testing.T) {
	x, y := Mirror([]float64{0, 1}, []float64{5, 7})
	wantX := []float64{-1, 0, 1}
	wantY := []float64{7, 5, 7}
	for i := range wantX {
		if x[i] != wantX[i] || y[i] != wantY[i] {
			t.Fatalf("got x=%v y=%v, want x=%v y=%v", x, y, wantX, wantY)
		}
	}
	if math.Signbit(x[1]) {
		t.Fatal("center x is negative zero")
	}
	if x, y := Mirror(nil, nil); x != nil || y != nil {
		t.Fatal("empty input should give empty output")
	}
}

func TestHistogramCountsOutliers(t *testing.T) {
	// Five bins of width 0.5 starting at -1.
	xy := []float64{
		0, 0,
		0.1, 0.1,
		-0.99, 0.99,
		1.6, 0,
		0, -1.01,
	}
	grid, errs := Histogram(xy, 0.5, 5, 2)
	if errs != 2 {
		t.Fatalf("errors = %d, want 2", errs)
	}
	if grid[2][2] != 2 || grid[0][3] != 1 {
		t.Fatalf("grid = %v", grid)
	}
}

func TestCull(t *testing.T) {
	grid := [][]float64{
		{0, 0, 1, 0, 0},
		{0, 0, 2, 0, 0},
		{3, 4, 6, 4, 1},
		{0, 0, 2, 0, 0},
		{0, 0, 3, 0, 0},
	}
	xs, ys := Cull(grid, 0.5, 4, 2)
	// vscale/(2·totalRays) is 1, so the center line is [4 6 12 6 4].
	want := []float64{12, 6}
	if len(xs) != 2 || xs[0] != 0 || xs[1] != 0.5 {
		t.Fatalf("xs = %v", xs)
	}
	for i := range want {
		if ys[i] != want[i] {
			t.Fatalf("ys = %v, want %v", ys, want)
		}
	}
}

func TestRunImagesFiber(t *testing.T) {
	l := lens.Lens{Diameter: 25, ClearAperture: 24, CT: 5, NIndex: 1.5, Front: lens.Side{R: 50}}
	p := Params{
		NumRays:      2000,
		NumAngles:    20,
		FiberRadius:  0.05,
		SourceRadius: 1,
		Bins:         41,
		Multiplier:   2,
	}
	res, err := Run(l, p, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	if res.Errors != 0 {
		t.Fatalf("%d hits outside the histogram", res.Errors)
	}
	if len(res.X) != 39 || len(res.Y) != 39 {
		t.Fatalf("got %d points, want 39", len(res.X))
	}
	mid := 19
	for i := 1; i <= mid; i++ {
		if res.X[mid-i] != -res.X[mid+i] || res.Y[mid-i] != res.Y[mid+i] {
			t.Fatalf("profile not mirrored at %d", i)
		}
	}
	// Inside the fiber image the profile is flat near 1; well outside it is dark.
	sum := 0.0
	for i := 0; i < 8; i++ {
		sum += res.Y[mid+i]
	}
	if avg := sum / 8; math.Abs(avg-1) > 0.2 {
		t.Fatalf("core average %g, want about 1", avg)
	}
	for i := 13; i <= mid; i++ {
		if res.Y[mid+i] != 0 {
			t.Fatalf("y at %g = %g, want 0", res.X[mid+i], res.Y[mid+i])
		}
	}

	p.UseFermi = true
	fit, err := Run(l, p, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range fit.Y {
		if v > 1 {
			t.Fatalf("fitted y[%d] = %g above 1", i, v)
		}
	}
}

func TestRunValidates(t *testing.T) {
	l := lens.Lens{Diameter: 25, CT: 5, NIndex: 1.5, Front: lens.Side{R: 50}}
	_, err := Run(l, Params{NumRays: 1, NumAngles: 1, FiberRadius: 1, SourceRadius: 1, Bins: 1, Multiplier: 1}, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("got %v, want ErrInvalidParams", err)
	}
	flat := lens.Lens{Diameter: 25, CT: 5, NIndex: 1.5}
	_, err = Run(flat, Params{NumRays: 1, NumAngles: 1, FiberRadius: 1, SourceRadius: 1, Bins: 5, Multiplier: 1}, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("flat plate: got %v", err)
	}
}
