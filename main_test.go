package main

import (
	"math"
	"strings"
	"testing"

	json "github.com/KevinWang15/go-json5"

	"github.com/bob-anderson-ok/LensPSF/optimize"
	"github.com/bob-anderson-ok/LensPSF/psf"
)

func parseTable(t *testing.T, src string) map[string]interface{} {
	t.Helper()
	var table map[string]interface{}
	if err := json.Unmarshal([]byte(src), &table); err != nil {
		t.Fatalf("json5: %v", err)
	}
	return table
}

const minimalDesign = `{
  lens: { diameter: 25, ct: 5, n_index: 1.5, front: { r: 50 } },
  wavelength_um: 0.5876,
}`

func TestValidateDefaults(t *testing.T) {
	var d Design
	if msg, ok := validateJsonFileAndFillDesign(parseTable(t, minimalDesign), &d); !ok {
		t.Fatal(msg)
	}
	if d.Lens.ClearAperture != 25 {
		t.Errorf("clear aperture defaults to the diameter, got %g", d.Lens.ClearAperture)
	}
	if d.SourceKind != sourceUniform || d.WindowSizePixels != 500 || d.OutputFolder != "." {
		t.Errorf("defaults: kind %q window %d folder %q", d.SourceKind, d.WindowSizePixels, d.OutputFolder)
	}
	if d.Pupil.Total != 512 || d.Extended.Bins != 41 || d.Seed != 1 {
		t.Errorf("defaults: %+v %+v seed %d", d.Pupil, d.Extended, d.Seed)
	}
	if d.FiberPadding != psf.PadReplicate {
		t.Errorf("fiber padding defaults to replicate, got %v", d.FiberPadding)
	}
	if d.Targets != 0 {
		t.Errorf("no optimizer targets expected, got %b", d.Targets)
	}
}

func TestValidateFullDesign(t *testing.T) {
	src := `{
  title: "test",
  lens: { diameter: 25, clear_aperture: 20, ct: 5, material: "BK7", front: { r: 50, k: -0.5 }, back: { r: -200, ad: 1e-7 } },
  wavelength_um: 0.5876,
  source: { kind: "gaussian", e2_half_diameter: 6, fiber_radius: 0.01, fiber_padding: "reflect" },
  optimize: { front_conic: true, back_ae: true, ray_heights: [0.5, 1] },
  psf: { pupil_grid: 32, total_grid: 256, core_grid: 64 },
  extended: { seed: 42 },
  analysis: { fan_points: 11 },
}`
	var d Design
	if msg, ok := validateJsonFileAndFillDesign(parseTable(t, src), &d); !ok {
		t.Fatal(msg)
	}
	if d.Material != "BK7" || d.Lens.Front.K != -0.5 || d.Lens.Back.R != -200 || d.Lens.Back.AD != 1e-7 {
		t.Errorf("lens = %+v, material %q", d.Lens, d.Material)
	}
	if d.FiberPadding != psf.PadReflect || d.FiberRadius != 0.01 {
		t.Errorf("fiber %g padding %v", d.FiberRadius, d.FiberPadding)
	}
	if want := optimize.NewTargets(optimize.FrontConic, optimize.BackAe); d.Targets != want {
		t.Errorf("targets = %b, want %b", d.Targets, want)
	}
	if len(d.RayHeights) != 2 || d.RayHeights[1] != 1 {
		t.Errorf("ray heights = %v", d.RayHeights)
	}
	if d.Pupil.Grid != 32 || d.Pupil.Total != 256 || d.Pupil.Core != 64 || d.Seed != 42 || d.FanPoints != 11 {
		t.Errorf("pupil %+v seed %d fan %d", d.Pupil, d.Seed, d.FanPoints)
	}
}

func TestValidateRejects(t *testing.T) {
	for _, c := range []struct {
		name, src, want string
	}{
		{"no lens", `{ wavelength_um: 0.5 }`, "lens: not found"},
		{"wrong type", `{ lens: { diameter: "25", ct: 5, n_index: 1.5 }, wavelength_um: 0.5 }`, "lens.diameter: is not a float64"},
		{"no index", `{ lens: { diameter: 25, ct: 5 }, wavelength_um: 0.5 }`, "lens.n_index"},
		{"no wavelength", `{ lens: { diameter: 25, ct: 5, n_index: 1.5 } }`, "wavelength_um"},
		{"both lens sources", `{ path_to_zemax_file: "a.zmx", lens: { diameter: 25, ct: 5, n_index: 1.5 } }`, "not both"},
		{"bad source", `{ lens: { diameter: 25, ct: 5, n_index: 1.5 }, wavelength_um: 0.5, source: { kind: "laser" } }`, "source.kind"},
		{"fiber padding", `{ lens: { diameter: 25, ct: 5, n_index: 1.5 }, wavelength_um: 0.5, source: { fiber_padding: "mirror" } }`, "source.fiber_padding"},
		{"gaussian without e2", `{ lens: { diameter: 25, ct: 5, n_index: 1.5 }, wavelength_um: 0.5, source: { kind: "gaussian" } }`, "e2_half_diameter"},
		{"grid not power of two", `{ lens: { diameter: 25, ct: 5, n_index: 1.5 }, wavelength_um: 0.5, psf: { total_grid: 500 } }`, "psf:"},
		{"fractional grid", `{ lens: { diameter: 25, ct: 5, n_index: 1.5 }, wavelength_um: 0.5, psf: { core_grid: 10.5 } }`, "psf.core_grid: is not an integer"},
		{"ray height", `{ lens: { diameter: 25, ct: 5, n_index: 1.5 }, wavelength_um: 0.5, optimize: { ray_heights: [0.5, 2] } }`, "ray_heights"},
		{"optimizer flag", `{ lens: { diameter: 25, ct: 5, n_index: 1.5 }, wavelength_um: 0.5, optimize: { front_ad: 1 } }`, "optimize.front_ad: is not a bool"},
	} {
		var d Design
		msg, ok := validateJsonFileAndFillDesign(parseTable(t, c.src), &d)
		if ok {
			t.Errorf("%s: accepted", c.name)
			continue
		}
		if !strings.Contains(msg, c.want) {
			t.Errorf("%s: msg %q, want it to mention %q", c.name, msg, c.want)
		}
	}
}

func TestZemaxDesignNeedsNoWavelength(t *testing.T) {
	var d Design
	if msg, ok := validateJsonFileAndFillDesign(parseTable(t, `{ path_to_zemax_file: "lens.zmx" }`), &d); !ok {
		t.Fatal(msg)
	}
}

func TestMatrixToGray16Data(t *testing.T) {
	img, err := MatrixToGray16Data([][]float64{{0, 1, 20}, {math.NaN(), -1, 0.5}}, gray16Scale)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range []struct {
		x, y int
		want uint16
	}{
		{0, 0, 0}, {1, 0, 4000}, {2, 0, 65535}, {0, 1, 0}, {1, 1, 0}, {2, 1, 2000},
	} {
		if got := img.Gray16At(c.x, c.y).Y; got != c.want {
			t.Errorf("(%d,%d) = %d, want %d", c.x, c.y, got, c.want)
		}
	}
	if _, err := MatrixToGray16Data([][]float64{{1}, {1, 2}}, 1); err == nil {
		t.Error("ragged matrix accepted")
	}
}

func TestMatrixToGrayViewPercentile(t *testing.T) {
	m := maskOutside([][]float64{{-1, 0, 1}, {2, 3, 4}}, -1)
	img, err := MatrixToGrayViewPercentile(m, 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if img.GrayAt(0, 0).Y != 0 || img.GrayAt(1, 0).Y != 0 || img.GrayAt(2, 1).Y != 255 {
		t.Fatalf("stretch: %v %v %v", img.GrayAt(0, 0), img.GrayAt(1, 0), img.GrayAt(2, 1))
	}
	if got := img.GrayAt(1, 1).Y; got != 191 {
		t.Fatalf("value 3 maps to %d, want 191", got)
	}
	if _, err := MatrixToGrayViewPercentile(m, 50, 10); err == nil {
		t.Fatal("inverted percentiles accepted")
	}
}

func TestReshape1DTo2D(t *testing.T) {
	m, err := Reshape1DTo2D([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if m[1][0] != 4 || len(m[0]) != 3 {
		t.Fatalf("m = %v", m)
	}
	if _, err := Reshape1DTo2D([]float64{1}, 2, 2); err == nil {
		t.Fatal("size mismatch accepted")
	}
}
