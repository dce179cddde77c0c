package analysis

import (
	"math"
	"sort"

	"github.com/bob-anderson-ok/LensPSF/internal/workpool"
	"github.com/bob-anderson-ok/LensPSF/lens"
	"github.com/bob-anderson-ok/LensPSF/wavefront"
)

func opdAt(l lens.Lens, x, y, wavelength, refocus float64) float64 {
	return wavefront.CalcOPD(lens.Vector3D{X: x, Y: y}, lens.Axis, l, wavelength, refocus)
}

// RadialWFE returns the peak to valley OPD over n+1 heights from the axis to halfCA.
func RadialWFE(l lens.Lens, refocus, halfCA float64, n int, wavelength float64) float64 {
	if n < 1 {
		return 0
	}
	lo, hi := 1e20, -1e20
	for i := 0; i <= n; i++ {
		w := opdAt(l, 0, halfCA*float64(i)/float64(n), wavelength, refocus)
		lo = math.Min(lo, w)
		hi = math.Max(hi, w)
	}
	return hi - lo
}

// WFEMap returns an n by n OPD map over the clear aperture. Cells outside the aperture hold -1.
func WFEMap(l lens.Lens, refocus, halfCA float64, n int, wavelength float64) ([][]float64, error) {
	if err := checkGrid(n); err != nil {
		return nil, err
	}
	inc := 2 * halfCA / float64(n-1)
	diag := halfCA * halfCA * apertureSlack
	m := make([][]float64, n)
	workpool.For(n, func(row int) {
		line := make([]float64, n)
		x := -halfCA + float64(row)*inc
		for col := range line {
			y := -halfCA + float64(col)*inc
			if diag > x*x+y*y {
				line[col] = opdAt(l, x, y, wavelength, refocus)
			} else {
				line[col] = -1
			}
		}
		m[row] = line
	})
	return m, nil
}

// WavefrontLine is an OPD cross section through the pupil along x.
type WavefrontLine struct {
	Positions []float64
	OPD       []float64
	Min, Max  float64
}

// GenWavefrontLine samples the OPD along x from -halfCA to halfCA with n points.
func GenWavefrontLine(l lens.Lens, halfCA float64, n int, wavelength, refocus float64) (WavefrontLine, error) {
	line := WavefrontLine{Min: 1e20, Max: -1e20}
	if err := checkGrid(n); err != nil {
		return line, err
	}
	inc := 2 * halfCA / float64(n-1)
	for i := range n {
		x := -halfCA + float64(i)*inc
		w := opdAt(l, x, 0, wavelength, refocus)
		line.Positions = append(line.Positions, x)
		line.OPD = append(line.OPD, w)
		line.Min = math.Min(line.Min, w)
		line.Max = math.Max(line.Max, w)
	}
	return line, nil
}

// WFEData returns the radial OPD profile mirrored to negative heights, sorted by height.
func WFEData(l lens.Lens, refocus, halfCA float64, n int, wavelength float64) ([]Point, error) {
	if efl := l.EFL(); math.IsNaN(efl) || math.IsInf(efl, 0) {
		return nil, ErrInfiniteEFL
	}
	if err := checkGrid(n); err != nil {
		return nil, err
	}
	step := halfCA / float64(n-1)
	data := make([]Point, 0, 2*n-1)
	for i := range n {
		y := float64(i) * step
		w := opdAt(l, 0, y, wavelength, refocus)
		data = append(data, Point{X: y, Y: w})
		if i != 0 {
			data = append(data, Point{X: -y, Y: w})
		}
	}
	sort.Slice(data, func(i, j int) bool { return data[i].X < data[j].X })
	return data, nil
}
