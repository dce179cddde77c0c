// Package focusplot provides functions for extracting intensity profiles from PSF images,
// locating their half-maximum crossings, plotting profiles, fans and spot diagrams, and
// drawing the profile cut on display images.
package focusplot

import (
	"errors"
	"fmt"
	"math"
)

// PathPoint is a sample along a cut in image pixels, with its distance from the cut start.
type PathPoint struct {
	X                 float64
	Y                 float64
	DistanceFromStart float64
}

// Point is a single value of an extracted profile.
type Point struct {
	Distance  float64 // from the middle of the cut, in pixelScale units
	Intensity float64
}

// Cut is a straight line through a square image. The line passes OffsetPixels from the
// image center, which is pixel Size/2 on both axes.
type Cut struct {
	AngleDegrees float64 // measured CCW from the image y axis; 90 is a horizontal cut
	OffsetPixels float64
	Size         int
}

// Segment is the part of a Cut inside the image.
type Segment struct {
	StartX, StartY float64
	EndX, EndY     float64
}

// Length in pixels.
func (s Segment) Length() float64 {
	return math.Hypot(s.EndX-s.StartX, s.EndY-s.StartY)
}

type annotatedPoint struct {
	X, Y     float64
	Position string // "top", "bottom", "left", or "right"
}

// ErrNoIntersection is returned when the cut misses the image.
var ErrNoIntersection = errors.New("line does not intersect square")

// Segment clips the cut to the image. The start is the end reached first when walking the
// line in the direction (sin θ, cos θ).
func (c Cut) Segment() (Segment, error) {
	if c.Size < 2 {
		return Segment{}, fmt.Errorf("cut through a %d pixel image: %w", c.Size, ErrNoIntersection)
	}
	center := float64(c.Size / 2)
	halfW := float64(min(c.Size/2, c.Size-1-c.Size/2))
	theta := c.AngleDegrees * math.Pi / 180.0

	p1, p2, dx, dy, err := squareIntersections(2*halfW, theta, c.OffsetPixels)
	if err != nil {
		return Segment{}, fmt.Errorf("cut at %g degrees, offset %g: %w", c.AngleDegrees, c.OffsetPixels, err)
	}
	if p1.X*dx+p1.Y*dy > p2.X*dx+p2.Y*dy {
		p1, p2 = p2, p1
	}
	return Segment{
		StartX: p1.X + center, StartY: p1.Y + center,
		EndX: p2.X + center, EndY: p2.Y + center,
	}, nil
}

// squareIntersections finds where a line meets a square of width w centered at the origin.
// theta is the line angle measured CCW from the y axis (radians) and d the perpendicular
// distance from the origin. It also returns the line direction (dx, dy).
func squareIntersections(w, theta, d float64) (annotatedPoint, annotatedPoint, float64, float64, error) {
	halfW := w / 2.0

	dx := math.Sin(theta)
	dy := math.Cos(theta)

	// Normal, rotated 90° CW from the direction
	nx := dy
	ny := -dx

	x0 := d * nx
	y0 := d * ny

	var intersections []annotatedPoint

	if math.Abs(dx) > 1e-12 {
		t := (halfW - x0) / dx
		y := y0 + t*dy
		if y >= -halfW && y <= halfW {
			intersections = append(intersections, annotatedPoint{halfW, y, "right"})
		}
		t = (-halfW - x0) / dx
		y = y0 + t*dy
		if y >= -halfW && y <= halfW {
			intersections = append(intersections, annotatedPoint{-halfW, y, "left"})
		}
	}

	if math.Abs(dy) > 1e-12 {
		t := (halfW - y0) / dy
		x := x0 + t*dx
		if x >= -halfW && x <= halfW {
			intersections = append(intersections, annotatedPoint{x, halfW, "bottom"})
		}
		t = (-halfW - y0) / dy
		x = x0 + t*dx
		if x >= -halfW && x <= halfW {
			intersections = append(intersections, annotatedPoint{x, -halfW, "top"})
		}
	}

	// Corners are found twice
	intersections = removeDuplicatePoints(intersections, 1e-9)

	if len(intersections) < 2 {
		return annotatedPoint{}, annotatedPoint{}, dx, dy, ErrNoIntersection
	}
	return intersections[0], intersections[1], dx, dy, nil
}

func removeDuplicatePoints(pts []annotatedPoint, tol float64) []annotatedPoint {
	var result []annotatedPoint
	for _, p := range pts {
		duplicate := false
		for _, r := range result {
			if math.Abs(p.X-r.X) < tol && math.Abs(p.Y-r.Y) < tol {
				duplicate = true
				break
			}
		}
		if !duplicate {
			result = append(result, p)
		}
	}
	return result
}

// Samples places points along the segment at 1-pixel intervals, both ends included.
func (s Segment) Samples() []PathPoint {
	pathLength := s.Length()
	if pathLength == 0 {
		return []PathPoint{{X: s.StartX, Y: s.StartY}}
	}
	dXPerStep := (s.EndX - s.StartX) / pathLength
	dYPerStep := (s.EndY - s.StartY) / pathLength

	n := int(math.Round(pathLength))
	points := make([]PathPoint, 0, n+1)
	for i := 0; i <= n; i++ {
		k := float64(i)
		points = append(points, PathPoint{
			X:                 s.StartX + k*dXPerStep,
			Y:                 s.StartY + k*dYPerStep,
			DistanceFromStart: k * math.Hypot(dXPerStep, dYPerStep),
		})
	}
	return points
}

// Samples clips the cut and samples it; see Segment.Samples.
func (c Cut) Samples() ([]PathPoint, error) {
	seg, err := c.Segment()
	if err != nil {
		return nil, err
	}
	return seg.Samples(), nil
}

// interpolate performs bilinear interpolation on a square matrix, clamping to its edges.
func interpolate(matrix [][]float64, x, y float64) float64 {
	n := len(matrix)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return matrix[0][0]
	}

	x = math.Max(0, math.Min(x, float64(n-1)-1e-9))
	y = math.Max(0, math.Min(y, float64(n-1)-1e-9))

	x0 := int(x)
	y0 := int(y)
	xFrac := x - float64(x0)
	yFrac := y - float64(y0)

	v0 := matrix[y0][x0]*(1-xFrac) + matrix[y0][x0+1]*xFrac
	v1 := matrix[y0+1][x0]*(1-xFrac) + matrix[y0+1][x0+1]*xFrac
	return v0*(1-yFrac) + v1*yFrac
}

// Profile samples matrix along the cut. Distances are measured from the middle of the cut
// and scaled by pixelScale, so a cut through the center has its zero at the PSF peak.
func Profile(matrix [][]float64, cut Cut, pixelScale float64) ([]Point, error) {
	if len(matrix) != cut.Size {
		return nil, fmt.Errorf("cut for a %d pixel image applied to %d rows", cut.Size, len(matrix))
	}
	seg, err := cut.Segment()
	if err != nil {
		return nil, err
	}
	mid := seg.Length() / 2
	samples := seg.Samples()
	profile := make([]Point, len(samples))
	for i, pt := range samples {
		profile[i] = Point{
			Distance:  (pt.DistanceFromStart - mid) * pixelScale,
			Intensity: interpolate(matrix, pt.X, pt.Y),
		}
	}
	return profile, nil
}

// FWHM returns the distances where the profile crosses half its maximum, linearly
// interpolated between samples, and the width between the outermost crossings. The width
// is 0 with fewer than two crossings.
func FWHM(profile []Point) (crossings []float64, width float64) {
	if len(profile) < 2 {
		return nil, 0
	}
	peak := profile[0].Intensity
	for _, p := range profile[1:] {
		peak = math.Max(peak, p.Intensity)
	}
	half := peak / 2
	for i := 1; i < len(profile); i++ {
		a, b := profile[i-1], profile[i]
		if (a.Intensity < half) == (b.Intensity < half) {
			continue
		}
		f := (half - a.Intensity) / (b.Intensity - a.Intensity)
		crossings = append(crossings, a.Distance+f*(b.Distance-a.Distance))
	}
	if len(crossings) < 2 {
		return crossings, 0
	}
	return crossings, crossings[len(crossings)-1] - crossings[0]
}
