package lens

import (
	"math"
	"math/rand"
)

// GenRandomRays draws numRays positions uniformly inside a disk of radius halfAperture and,
// for each, numAngles directions whose transverse components are uniform inside a disk of
// radius halfAngle. Sampling is by rejection in both spaces.
func GenRandomRays(rng *rand.Rand, numRays, numAngles int, halfAperture, halfAngle float64) []Ray {
	rays := make([]Ray, 0, numRays*numAngles)
	uniform := func(h float64) float64 { return (2*rng.Float64() - 1) * h }

	diag := halfAperture * halfAperture
	angleDiag := halfAngle * halfAngle
	for range numRays {
		x, y := uniform(halfAperture), uniform(halfAperture)
		for x*x+y*y > diag {
			x, y = uniform(halfAperture), uniform(halfAperture)
		}
		base := Vector3D{x, y, 0}
		for range numAngles {
			dx, dy := uniform(halfAngle), uniform(halfAngle)
			for dx*dx+dy*dy > angleDiag {
				dx, dy = uniform(halfAngle), uniform(halfAngle)
			}
			rays = append(rays, Ray{P: base, E: Vector3D{dx, dy, math.Sqrt(1 - dx*dx - dy*dy)}})
		}
	}
	return rays
}
