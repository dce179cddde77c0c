package optimize

import (
	"math"
	"testing"

	"github.com/bob-anderson-ok/LensPSF/lens"
)

func TestMinimizeQuadratic(t *testing.T) {
	x := 0.0
	s := Search{Steps: []float64{0.7}, MinStep: 1e-12, Outer: DefaultOuter, Middle: DefaultMiddle, Inner: DefaultInner}
	s.Minimize([]Param{{
		Get: func() float64 { return x },
		Set: func(v float64) { x = v },
	}}, func() float64 { return (x - 3) * (x - 3) })
	if math.Abs(x-3) > 1e-4 {
		t.Fatalf("x = %g, want 3", x)
	}
}

func TestProbeRestoresParam(t *testing.T) {
	x := 1.0
	p := Param{Get: func() float64 { return x }, Set: func(v float64) { x = v }}
	// A flat error has no better neighbor.
	if move := probe(p, 0.5, func() float64 { return 2 }); move != 0 {
		t.Fatalf("move = %g, want 0", move)
	}
	if x != 1 {
		t.Fatalf("x = %g after probe, want 1", x)
	}
	if move := probe(p, 0.5, func() float64 { return x }); move != -0.5 {
		t.Fatalf("move = %g, want -0.5", move)
	}
}

func TestTargets(t *testing.T) {
	s := NewTargets(FrontConic, BackAe)
	if !s.Has(FrontConic) || !s.Has(BackAe) || s.Has(FrontAd) {
		t.Fatalf("set %08b", s)
	}
	if BackAd.String() != "back ad" {
		t.Fatalf("String() = %q", BackAd.String())
	}
}

func planoConvex() lens.Lens {
	return lens.Lens{Diameter: 25, ClearAperture: 24, CT: 5, NIndex: 1.5, Front: lens.Side{R: 50}}
}

func TestOptiLensWithoutTargetsIsIdentity(t *testing.T) {
	l := planoConvex()
	l.Back = lens.Side{R: -400, K: 0.3, AD: 1e-7, AE: -2e-10}
	if got := OptiLens([]float64{0.5, 1}, l, 0); got != l {
		t.Fatalf("got %+v, want %+v", got, l)
	}
}

func TestOptiLensReducesRayError(t *testing.T) {
	l := planoConvex()
	heights := []float64{0.2, 0.4, 0.6, 0.8, 1.0}
	rays := make([]lens.Ray, len(heights))
	for i, y := range heights {
		rays[i] = lens.Ray{P: lens.Vector3D{Y: y * l.Diameter / 2}, E: lens.Axis}
	}
	before := RayError(l, rays)

	got := OptiLens(heights, l, NewTargets(FrontConic, FrontAd))
	after := RayError(got, rays)
	if !(after < before/100) {
		t.Fatalf("rms %g -> %g, want a hundredfold drop", before, after)
	}
	if !(got.Front.K < 0) {
		t.Fatalf("front conic %g, want a prolate correction", got.Front.K)
	}
	if got.Back != l.Back || got.Front.AE != 0 || got.Front.R != l.Front.R {
		t.Fatalf("untargeted fields changed: %+v", got)
	}
	if l.Front.K != 0 {
		t.Fatalf("input lens was modified")
	}
}

func TestFermiDirac(t *testing.T) {
	if v := FermiDirac(0.1, 20, 0.1, 1); math.Abs(v-0.5) > 1e-15 {
		t.Fatalf("value at r50 = %g, want 0.5", v)
	}
	if FermiDirac(-0.05, 20, 0.1, 1) != FermiDirac(0.05, 20, 0.1, 1) {
		t.Fatal("profile is not even in x")
	}
}

func fermiSamples() (xs, ys []float64) {
	for i := 0; i <= 50; i++ {
		x := float64(i) * 0.3 / 50
		xs = append(xs, x)
		ys = append(ys, FermiDirac(x, 20, 0.1, 1))
	}
	return xs, ys
}

func TestFermiDiracCoefficientsRecoverModel(t *testing.T) {
	xs, ys := fermiSamples()
	b, r, p := FermiDiracCoefficients(xs, ys, 18, 0.09, 0.95)
	for _, c := range []struct {
		name      string
		got, want float64
	}{
		{"beta", b, 20},
		{"r50", r, 0.1},
		{"peak", p, 1},
	} {
		if math.Abs(c.got-c.want) > 0.01*c.want {
			t.Errorf("%s = %g, want %g", c.name, c.got, c.want)
		}
	}
}

func TestFitFermiDiracClampsAtOne(t *testing.T) {
	xs, ys := fermiSamples()
	for i := range ys {
		ys[i] *= 1.2
	}
	fit := FitFermiDirac(xs, ys, 18, 0.09, 0.95)
	if len(fit) != len(xs) {
		t.Fatalf("got %d values", len(fit))
	}
	if fit[0] != 1 {
		t.Fatalf("fit[0] = %g, want the clamp value 1", fit[0])
	}
	if !(fit[50] < 0.01) {
		t.Fatalf("tail = %g", fit[50])
	}
}
