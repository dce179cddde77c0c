package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/bob-anderson-ok/LensPSF/lens"
)

// ErrInfiniteEFL reports a lens without a finite focal length.
var ErrInfiniteEFL = errors.New("lens does not have a finite EFL")

func traceAxial(l lens.Lens, x, y, refocus float64) lens.Ray {
	return lens.TraceRay(lens.Ray{P: lens.Vector3D{X: x, Y: y}, E: lens.Axis}, l, refocus)
}

// LSA traces n axial rays at heights 0..halfCA and returns (input height, image height) pairs.
func LSA(l lens.Lens, refocus, halfCA float64, n int) []Point {
	if n < 2 {
		return nil
	}
	inc := halfCA / float64(n-1)
	data := make([]Point, n)
	for i := range data {
		y := float64(i) * inc
		data[i] = Point{X: y, Y: traceAxial(l, 0, y, refocus).P.Y}
	}
	return data
}

// TSA is LSA mirrored through the origin, sorted by input height.
func TSA(l lens.Lens, refocus, halfCA float64, n int) ([]Point, error) {
	if efl := l.EFL(); math.IsNaN(efl) || math.IsInf(efl, 0) {
		return nil, ErrInfiniteEFL
	}
	half := LSA(l, refocus, halfCA, n)
	data := make([]Point, 0, 2*len(half))
	for i, p := range half {
		data = append(data, p)
		if i != 0 {
			data = append(data, Point{X: -p.X, Y: -p.Y})
		}
	}
	sort.Slice(data, func(i, j int) bool { return data[i].X < data[j].X })
	return data, nil
}

// MaxRadius returns half the spread of image heights along a full-diameter y fan.
func MaxRadius(l lens.Lens, refocus, halfCA float64, n int) float64 {
	if n < 2 {
		return 0
	}
	inc := 2 * halfCA / float64(n-1)
	lo, hi := 1e20, -1e20
	for i := range n {
		y := traceAxial(l, 0, -halfCA+float64(i)*inc, refocus).P.Y
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}
	return (hi - lo) / 2
}

// RadialRMSError traces rays at fractional heights raySet·halfCA and summarizes their
// image heights. A nil raySet uses DefaultRaySet.
func RadialRMSError(l lens.Lens, refocus, halfCA float64, raySet []float64) BasicStats {
	if raySet == nil {
		raySet = DefaultRaySet
	}
	ys := make([]float64, len(raySet))
	for i, frac := range raySet {
		ys[i] = traceAxial(l, 0, frac*halfCA, refocus).P.Y
	}
	return basicStats(ys)
}

func checkGrid(n int) error {
	if n < 2 {
		return fmt.Errorf("grid of %d points: need at least 2", n)
	}
	return nil
}
