package wavefront

import (
	"math"

	"github.com/bob-anderson-ok/LensPSF/lens"
)

// ErrorStat summarizes OPD along one radius of the lens.
type ErrorStat struct {
	Peak    float64
	Valley  float64
	PV      float64
	Average float64
	RMS     float64 // root mean square about zero
}

// RadialErrorStats evaluates the OPD of axial rays at heights y·diameter/2 for each
// fractional height y in ys.
func RadialErrorStats(ys []float64, l lens.Lens, wavelength, refocus float64) ErrorStat {
	es := ErrorStat{Peak: -1e20, Valley: 1e20}
	if len(ys) == 0 {
		return es
	}
	var sum, sumsq float64
	for _, y := range ys {
		w := CalcOPD(lens.Vector3D{Y: y * l.Diameter / 2}, lens.Axis, l, wavelength, refocus)
		es.Peak = math.Max(es.Peak, w)
		es.Valley = math.Min(es.Valley, w)
		sum += w
		sumsq += w * w
	}
	n := float64(len(ys))
	es.PV = es.Peak - es.Valley
	es.Average = sum / n
	es.RMS = math.Sqrt(sumsq / n)
	return es
}
