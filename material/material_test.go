package material

import (
	"errors"
	"math"
	"testing"
)

func TestKnownIndices(t *testing.T) {
	cases := []struct {
		name string
		w    float64
		want float64
		tol  float64
	}{
		{"BK7", 0.5876, 1.5168, 1e-4},
		{"FusedSilica", 0.5876, 1.4585, 1e-4},
		{"CaF2", 0.5876, 1.4338, 1e-3},
		{"GaAs", 2.5, 3.3256, 1e-12},
		{"GaAs", 3.5, (3.3169 + 3.3069) / 2, 1e-12},
		{"ge", 10.0, 4.0033 + (10.0-9.72)/(11.04-9.72)*(4.0025-4.0033), 1e-12},
	}
	for _, c := range cases {
		m, err := Lookup(c.name)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		n, err := m.Index(c.w)
		if err != nil {
			t.Fatalf("%s at %g: %v", c.name, c.w, err)
		}
		if math.Abs(n-c.want) > c.tol {
			t.Errorf("%s at %g um: n = %.6f, want %.6f", c.name, c.w, n, c.want)
		}
	}
}

func TestRangeAndUnknown(t *testing.T) {
	m, _ := Lookup("BK7")
	if _, err := m.Index(5); !errors.Is(err, ErrWavelengthRange) {
		t.Fatalf("expected ErrWavelengthRange, got %v", err)
	}
	if _, err := Lookup("unobtainium"); !errors.Is(err, ErrUnknownMaterial) {
		t.Fatalf("expected ErrUnknownMaterial, got %v", err)
	}
}

func TestZemaxGlassRoundTrip(t *testing.T) {
	for _, name := range []string{"BK7", "FusedSilica", "CaF2", "Ge", "ZnSe"} {
		glass, err := ZemaxGlass(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		m, err := FromZemaxGlass(glass)
		if err != nil {
			t.Fatalf("%s -> %s: %v", name, glass, err)
		}
		if m.Name != name {
			t.Errorf("%s -> %s -> %s", name, glass, m.Name)
		}
	}
	if len(Names()) != len(catalog) || Names()[0] != "BK7" {
		t.Fatalf("Names() = %v", Names())
	}
}
