package analysis

import (
	"math"

	"github.com/bob-anderson-ok/LensPSF/lens"
)

// Slightly enlarges the aperture so the cardinal grid points on its edge are kept.
const apertureSlack = 1.0001

// SpotDiagram traces an n by n grid of axial rays over the clear aperture and returns the
// rays that land on the image plane.
func SpotDiagram(l lens.Lens, refocus, halfCA float64, n int) ([]lens.Ray, error) {
	if err := checkGrid(n); err != nil {
		return nil, err
	}
	inc := 2 * halfCA / float64(n-1)
	diag := halfCA * halfCA * apertureSlack
	var spots []lens.Ray
	for row := range n {
		for col := range n {
			x := -halfCA + float64(row)*inc
			y := -halfCA + float64(col)*inc
			if diag > x*x+y*y {
				spots = append(spots, traceAxial(l, x, y, refocus))
			}
		}
	}
	return spots, nil
}

// RMSSpotSize summarizes the radial distance of each spot from the axis.
func RMSSpotSize(spots []lens.Ray) BasicStats {
	radii := make([]float64, len(spots))
	for i, r := range spots {
		radii[i] = math.Sqrt(r.P.TransverseRadiusSq())
	}
	return basicStats(radii)
}
