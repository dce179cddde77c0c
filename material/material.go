// Package material resolves the single refractive index of a lens from a named optical
// material at the design wavelength.
package material

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/interp"
)

var (
	ErrUnknownMaterial = errors.New("material not found")
	ErrWavelengthRange = errors.New("wavelength outside material range")
)

// Material is a named dispersion model valid between MinWavelength and MaxWavelength (um).
type Material struct {
	Name          string
	MinWavelength float64
	MaxWavelength float64
	Source        string
	index         func(w float64) float64
}

// Index returns the refractive index at wavelength w in microns.
func (m Material) Index(w float64) (float64, error) {
	if w < m.MinWavelength || w > m.MaxWavelength {
		return 0, fmt.Errorf("%w: %g um for %s (min %g, max %g)",
			ErrWavelengthRange, w, m.Name, m.MinWavelength, m.MaxWavelength)
	}
	return m.index(w), nil
}

// Schott form: n² = 1 + Σ B w²/(w² - C)
func schott(b1, c1, b2, c2, b3, c3 float64) func(float64) float64 {
	return func(w float64) float64 {
		w2 := w * w
		return math.Sqrt(1 + b1*w2/(w2-c1) + b2*w2/(w2-c2) + b3*w2/(w2-c3))
	}
}

// Sellmeier with squared pole wavelengths: n² = 1 + Σ B w²/(w² - L²)
func sellmeier(b1, l1, b2, l2, b3, l3 float64) func(float64) float64 {
	return schott(b1, l1*l1, b2, l2*l2, b3, l3*l3)
}

// CdTe: n² = A + B w²/(w² - C) + D w²/(w² - E)
func twoTerm(a, b, c, d, e float64) func(float64) float64 {
	return func(w float64) float64 {
		w2 := w * w
		return math.Sqrt(a + b*w2/(w2-c) + d*w2/(w2-e))
	}
}

// Diamond: n² = 1 + B1 w²/(w² - L1²) + B2 w²/(w² - L2²)
func twoPole(b1, l1, b2, l2 float64) func(float64) float64 {
	return func(w float64) float64 {
		w2 := w * w
		return math.Sqrt(1 + b1*w2/(w2-l1*l1) + b2*w2/(w2-l2*l2))
	}
}

// table interpolates measured (wavelength, index) pairs piecewise linearly.
func table(ws, ns []float64) func(float64) float64 {
	var pl interp.PiecewiseLinear
	if err := pl.Fit(ws, ns); err != nil {
		panic(fmt.Sprintf("material table: %v", err))
	}
	return pl.Predict
}

var catalog = map[string]Material{
	"BK7": {Name: "BK7", MinWavelength: 0.3, MaxWavelength: 2.5, Source: "Schott Cat.",
		index: schott(1.03961212, 6.00069867e-3, 2.31792344e-1, 2.00179144e-2, 1.01046945, 1.03560653e2)},
	"FusedSilica": {Name: "FusedSilica", MinWavelength: 0.21, MaxWavelength: 3.71, Source: "Malitson 1965",
		index: sellmeier(0.6961663, 0.0684043, 0.4079426, 0.1162414, 0.8974794, 9.896161)},
	"ZnSe": {Name: "ZnSe", MinWavelength: 0.5, MaxWavelength: 22, Source: "II-VI Researched",
		index: sellmeier(4.3809835, 0.19656967, 0.5445451, 0.3854439, 2.889225, 47.0210925)},
	"BaF2": {Name: "BaF2", MinWavelength: 0.1345, MaxWavelength: 15, Source: "Unknown",
		index: sellmeier(0.643356, 0.057789, 0.506762, 0.10968, 3.8261, 46.3864)},
	"CaF2": {Name: "CaF2", MinWavelength: 0.125, MaxWavelength: 12, Source: "Unknown",
		index: sellmeier(0.5675888, 0.050263605, 0.4710914, 0.1003909, 3.8484723, 34.64904)},
	"Silicon": {Name: "Silicon", MinWavelength: 1.36, MaxWavelength: 11, Source: "Handbook of Optics, 3rd ed., Vol. 4",
		index: sellmeier(10.6684293, 0.301516485, 0.003043475, 1.13475115, 1.54133408, 1104.0)},
	"CdTe": {Name: "CdTe", MinWavelength: 1, MaxWavelength: 30, Source: "Dodge and Malitson",
		index: twoTerm(3.7575, 3.4632, 0.1866, 6.238, 9273.0)},
	"Diamond": {Name: "Diamond", MinWavelength: 0.225, MaxWavelength: 100, Source: "refractiveindex.info",
		index: twoPole(4.3356, 0.106, 0.3306, 0.175)},
	"GaAs": {Name: "GaAs", MinWavelength: 2.5, MaxWavelength: 14, Source: "Unknown",
		index: table(
			[]float64{2.5, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14},
			[]float64{3.3256, 3.3169, 3.3069, 3.301, 3.2963, 3.2923, 3.2878, 3.283, 3.277, 3.2725, 3.2666, 3.2589, 3.2509})},
	"Ge": {Name: "Ge", MinWavelength: 2.0581, MaxWavelength: 13.02, Source: "Melles Griot catalogue",
		index: table(
			[]float64{2.0581, 2.1526, 2.3126, 2.4374, 2.577, 2.7144, 2.998, 3.3033, 4.258, 4.866, 6.238, 8.66, 9.72, 11.04, 12.2, 13.02},
			[]float64{4.1018, 4.0919, 4.0785, 4.0709, 4.0608, 4.0554, 4.0452, 4.0372, 4.0217, 4.0167, 4.0095, 4.0043, 4.0033, 4.0025, 4.002, 4.0018})},
	"ThF4": {Name: "ThF4", MinWavelength: 0.3, MaxWavelength: 25, Source: "collected estimates",
		index: table(
			[]float64{0.3, 3.8, 5.3, 10.6, 14, 16, 25},
			[]float64{1.58, 1.5, 1.49, 1.35, 1.32, 1.3, 1.28})},
}

// Names lists the catalog in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for n := range catalog {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup finds a material by name, ignoring case.
func Lookup(name string) (Material, error) {
	for n, m := range catalog {
		if strings.EqualFold(n, name) {
			return m, nil
		}
	}
	return Material{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
}

var zemaxGlass = map[string]string{
	"n-bk7":     "BK7",
	"f_silica":  "FusedSilica",
	"silica":    "FusedSilica",
	"znse":      "ZnSe",
	"baf2":      "BaF2",
	"caf2":      "CaF2",
	"silicon":   "Silicon",
	"cdte":      "CdTe",
	"gaas":      "GaAs",
	"germanium": "Ge",
	"ge_long":   "Ge",
	"ge_old":    "Ge",
}

// FromZemaxGlass maps a Zemax GLAS name onto the catalog.
func FromZemaxGlass(glass string) (Material, error) {
	name, ok := zemaxGlass[strings.ToLower(glass)]
	if !ok {
		return Material{}, fmt.Errorf("%w: glass %q", ErrUnknownMaterial, glass)
	}
	return catalog[name], nil
}

// ZemaxGlass is the GLAS name written for a catalog material.
func ZemaxGlass(name string) (string, error) {
	switch m, err := Lookup(name); {
	case err != nil:
		return "", err
	case m.Name == "BK7":
		return "N-BK7", nil
	case m.Name == "FusedSilica":
		return "F_SILICA", nil
	case m.Name == "Ge":
		return "GERMANIUM", nil
	default:
		return strings.ToUpper(m.Name), nil
	}
}
