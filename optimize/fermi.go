package optimize

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// FermiSearch is the schedule of the Fermi-Dirac fit; the steps are beta, r50 and peak.
var FermiSearch = Search{
	Steps:   []float64{1, 0.01, 1},
	MinStep: 1e-5,
	Outer:   DefaultOuter,
	Middle:  DefaultMiddle,
	Inner:   DefaultInner,
}

// FermiDirac is an edge profile that falls to peak/2 at |x| = r50 with steepness beta.
func FermiDirac(x, beta, r50, peak float64) float64 {
	return peak / (1 + math.Exp(beta*(math.Abs(x)/r50-1)))
}

func fermiCurve(xs []float64, beta, r50, peak float64, dst []float64) []float64 {
	for i, x := range xs {
		dst[i] = FermiDirac(x, beta, r50, peak)
	}
	return dst
}

// FermiDiracCoefficients fits (beta, r50, peak) to the samples starting from the guesses.
func FermiDiracCoefficients(xs, ys []float64, beta, r50, peak float64) (float64, float64, float64) {
	return FermiSearch.FermiDiracCoefficients(xs, ys, beta, r50, peak)
}

// FermiDiracCoefficients is the package function with the schedule s.
func (s Search) FermiDiracCoefficients(xs, ys []float64, beta, r50, peak float64) (float64, float64, float64) {
	model := make([]float64, len(xs))
	coef := [3]float64{beta, r50, peak}
	params := make([]Param, len(coef))
	for i := range coef {
		params[i] = Param{
			Get:   func() float64 { return coef[i] },
			Set:   func(v float64) { coef[i] = v },
			Group: i,
		}
	}
	s.Minimize(params, func() float64 {
		return floats.Distance(ys, fermiCurve(xs, coef[0], coef[1], coef[2], model), 2)
	})
	return coef[0], coef[1], coef[2]
}

// FitFermiDirac fits the samples and returns the fitted curve at xs, clamped to at most 1.
func FitFermiDirac(xs, ys []float64, beta, r50, peak float64) []float64 {
	b, r, p := FermiDiracCoefficients(xs, ys, beta, r50, peak)
	fit := fermiCurve(xs, b, r, p, make([]float64, len(xs)))
	for i, v := range fit {
		fit[i] = math.Min(v, 1)
	}
	return fit
}
