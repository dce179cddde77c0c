// Package lens models a single refractive lens (two optionally aspheric surfaces, a center
// thickness and one refractive index) and traces rays through it.
package lens

import "math"

// Vector3D is an (x, y, z) value. All methods return new values.
type Vector3D struct {
	X, Y, Z float64
}

// Axis is the propagation direction of an on-axis collimated beam.
var Axis = Vector3D{0, 0, 1}

func (a Vector3D) Add(b Vector3D) Vector3D     { return Vector3D{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vector3D) Sub(b Vector3D) Vector3D     { return Vector3D{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (v Vector3D) Scale(s float64) Vector3D    { return Vector3D{v.X * s, v.Y * s, v.Z * s} }
func (v Vector3D) Divide(s float64) Vector3D   { return Vector3D{v.X / s, v.Y / s, v.Z / s} }
func (a Vector3D) Dot(b Vector3D) float64      { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (v Vector3D) Length() float64             { return math.Sqrt(v.Dot(v)) }
func (v Vector3D) TransverseRadiusSq() float64 { return v.X*v.X + v.Y*v.Y }

// Normalize returns a unit-length copy of v. A zero vector is returned unchanged.
func (v Vector3D) Normalize() Vector3D {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Divide(l)
}
