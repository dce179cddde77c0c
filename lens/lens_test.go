package lens

import (
	"errors"
	"math"
	"testing"
)

func planoConvex() Lens {
	return Lens{
		Diameter:      25,
		ClearAperture: 24,
		CT:            5,
		NIndex:        1.5,
		Front:         Side{R: 50},
		Back:          Side{},
	}
}

func TestCurvatureAndType(t *testing.T) {
	flat := Side{}
	if flat.Curvature() != 0 {
		t.Fatalf("curvature of r=0 should be exactly 0, got %g", flat.Curvature())
	}
	if flat.Type() != Plane {
		t.Fatalf("r=0 surface should be a plane, got %s", flat.Type())
	}
	if got := (Side{R: 50}).Curvature(); got != 0.02 {
		t.Fatalf("curvature of r=50 = %g", got)
	}
	cases := []struct {
		s    Side
		want SurfaceType
	}{
		{Side{R: 0.005}, Plane},
		{Side{R: 0, K: -1}, Sphere},
		{Side{R: 50, K: -0.6}, Sphere},
		{Side{R: 50, AD: 1e-7}, Asphere},
		{Side{R: 0, AE: 1e-9}, Asphere},
	}
	for _, c := range cases {
		if got := c.s.Type(); got != c.want {
			t.Errorf("%+v: type %s, want %s", c.s, got, c.want)
		}
	}
}

func TestFocalLengths(t *testing.T) {
	l := planoConvex()
	if efl := l.EFL(); math.Abs(efl-100) > 1e-9 {
		t.Fatalf("EFL = %.12g, want 100", efl)
	}
	if bfl := l.BFL(); math.Abs(bfl-(100-10.0/3)) > 1e-9 {
		t.Fatalf("BFL = %.12g, want 96.6667", bfl)
	}
}

func TestValidate(t *testing.T) {
	if err := planoConvex().Validate(); err != nil {
		t.Fatalf("valid lens rejected: %v", err)
	}
	bad := []func(*Lens){
		func(l *Lens) { l.NIndex = 1 },
		func(l *Lens) { l.CT = 0 },
		func(l *Lens) { l.Diameter = -1 },
		func(l *Lens) { l.Front.K = math.NaN() },
		func(l *Lens) { l.Front.R = 0 }, // flat/flat has no focus
	}
	for i, mutate := range bad {
		l := planoConvex()
		mutate(&l)
		if err := l.Validate(); !errors.Is(err, ErrInvalidLens) {
			t.Errorf("case %d: expected ErrInvalidLens, got %v", i, err)
		}
	}
}
