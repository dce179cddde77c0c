// Package analysis derives geometric and wavefront diagnostics of a lens from ray traces.
package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// BasicStats summarizes a set of values.
type BasicStats struct {
	Min     float64
	Max     float64
	PV      float64
	Average float64
	RMS     float64 // root mean square about zero
}

// Point is one (x, y) sample of an analysis curve.
type Point struct {
	X, Y float64
}

// DefaultRaySet are the fractional pupil heights used for the radial error.
var DefaultRaySet = []float64{0, 0.15, 0.3, 0.45, 0.6, 0.7, 0.8, 0.875, 0.925, 0.975, 1.0}

func basicStats(values []float64) BasicStats {
	if len(values) == 0 {
		return BasicStats{Min: 1e20, Max: -1e20}
	}
	bs := BasicStats{
		Min:     floats.Min(values),
		Max:     floats.Max(values),
		Average: stat.Mean(values, nil),
	}
	bs.PV = bs.Max - bs.Min
	bs.RMS = math.Sqrt(floats.Dot(values, values) / float64(len(values)))
	return bs
}
