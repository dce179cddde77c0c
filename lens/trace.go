package lens

import "math"

// Radii at or below this magnitude are treated as flat when computing sag.
const sagFlatRadius = 0.001

// Tracer propagates rays through a Lens. The zero value is not useful; use DefaultTracer
// or set both fields.
type Tracer struct {
	// MaxIterations bounds the fixed-point surface intersection. The last estimate is
	// accepted when the bound is reached.
	MaxIterations int
	// Tolerance is the distance between successive estimates that ends the iteration.
	Tolerance float64
}

// DefaultTracer reproduces the reference numerical behavior.
var DefaultTracer = Tracer{MaxIterations: 10, Tolerance: 1e-4}

// TraceRay traces r through l with DefaultTracer.
func TraceRay(r Ray, l Lens, refocus float64) Ray {
	return DefaultTracer.Trace(r, l, refocus)
}

// Trace refracts r at the front surface (vertex at z=0), then at the back surface (vertex
// at z=CT), and carries it to the flat image plane at CT+BFL+refocus.
func (t Tracer) Trace(r Ray, l Lens, refocus float64) Ray {
	p2 := t.TranslateToSurface(r.P, r.E, l.Front, 0)
	n2 := Slope(p2, l.Front)
	e2 := Refract(r.E, n2, 1, l.NIndex)

	p3 := t.TranslateToSurface(p2, e2, l.Back, l.CT)
	n3 := Slope(Vector3D{p3.X, p3.Y, p3.Z - l.CT}, l.Back)
	e3 := Refract(e2, n3, l.NIndex, 1)

	return Ray{P: TranslateToFlat(p3, e3, l.ImagePlane(refocus)), E: e3}
}

// TranslateToSurface moves p along e until it meets side s whose vertex sits at z = plane.
func (t Tracer) TranslateToSurface(p, e Vector3D, s Side, plane float64) Vector3D {
	if s.Type() == Plane {
		return TranslateToFlat(p, e, plane)
	}
	u := (Sag(p.X, p.Y, s) + plane - p.Z) / e.Z
	prev := p
	next := p.Add(e.Scale(u))
	for range t.MaxIterations {
		if prev.Sub(next).Length() <= t.Tolerance {
			break
		}
		prev = next
		u = (Sag(prev.X, prev.Y, s) + plane - p.Z) / e.Z
		next = p.Add(e.Scale(u))
	}
	return next
}

// TranslateToFlat solves the line/plane intersection with the plane z = plane.
func TranslateToFlat(p, e Vector3D, plane float64) Vector3D {
	u := (plane - p.Z) / e.Z
	return p.Add(e.Scale(u))
}

// Sag is the axial height of s at (x, y). When the conic square root has a negative
// argument only the aspheric polynomial is returned.
func Sag(x, y float64, s Side) float64 {
	c := 0.0
	if math.Abs(s.R) > sagFlatRadius {
		c = 1 / s.R
	}
	r2 := x*x + y*y
	poly := s.AD*r2*r2 + s.AE*r2*r2*r2
	disc := 1 - (1+s.K)*c*c*r2
	if disc < 0 {
		return poly
	}
	return c*r2/(1+math.Sqrt(disc)) + poly
}

// Slope is the unit surface normal of s at p, with p expressed relative to the vertex.
func Slope(p Vector3D, s Side) Vector3D {
	c := s.Curvature()
	r := p.X*p.X + p.Y*p.Y
	q0 := p.Z - s.AD*r*r - s.AE*r*r*r
	q1 := -4*s.AD*r - 6*s.AE*r*r
	g := -c - c*(s.K+1)*q1*q0 + q1
	n := Vector3D{p.X * g, p.Y * g, 1 - c*(s.K+1)*q0}
	return n.Divide(n.Length())
}

// Refract applies the vector form of Snell's law going from index nIn to nOut. A negative
// discriminant (total internal reflection) is not guarded and yields NaN components.
func Refract(e, n Vector3D, nIn, nOut float64) Vector3D {
	b := 2 * e.Dot(n)
	c := 1 - (nOut*nOut)/(nIn*nIn)
	t := (-b + math.Sqrt(b*b-4*c)) / 2
	ep := e.Add(n.Scale(t))
	return ep.Divide(ep.Length())
}
