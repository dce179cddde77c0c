package lens

import (
	"math"
	"testing"
)

func TestVectorOps(t *testing.T) {
	v := Vector3D{1, 2, 3}
	w := Vector3D{-1, 0.5, 2}

	if got := v.Add(w); got != (Vector3D{0, 2.5, 5}) {
		t.Fatalf("Add mismatch: %+v", got)
	}
	if got := v.Sub(w); got != (Vector3D{2, 1.5, 1}) {
		t.Fatalf("Sub mismatch: %+v", got)
	}
	if got := v.Scale(3); got != (Vector3D{3, 6, 9}) {
		t.Fatalf("Scale mismatch: %+v", got)
	}
	if got := v.Divide(2); got != (Vector3D{0.5, 1, 1.5}) {
		t.Fatalf("Divide mismatch: %+v", got)
	}
	if got := v.Dot(w); got != 1*(-1)+2*0.5+3*2 {
		t.Fatalf("Dot mismatch: %g", got)
	}
	if got := v.Length(); math.Abs(got-math.Sqrt(14)) > 1e-12 {
		t.Fatalf("Length mismatch: %.12g", got)
	}
	if got := v.Normalize().Length(); math.Abs(got-1) > 1e-12 {
		t.Fatalf("Normalize not unit: %.12g", got)
	}
	if got := (Vector3D{}).Normalize(); got != (Vector3D{}) {
		t.Fatalf("zero vector should normalize to itself, got %+v", got)
	}
}

func TestVectorOpsDoNotAlias(t *testing.T) {
	v := Vector3D{1, 1, 1}
	_ = v.Add(Vector3D{5, 5, 5})
	_ = v.Scale(10)
	if v != (Vector3D{1, 1, 1}) {
		t.Fatalf("receiver modified: %+v", v)
	}
}

func TestAOILSA(t *testing.T) {
	// A ray 1 unit off axis heading back to the axis at 45 degrees crosses it 1 unit later.
	r := Ray{P: Vector3D{0, 1, 0}, E: Vector3D{0, -1, 1}.Normalize()}
	aoi, lsa := r.AOILSA()
	if math.Abs(aoi-math.Pi/4) > 1e-12 {
		t.Fatalf("aoi = %g, want pi/4", aoi)
	}
	if math.Abs(lsa+1) > 1e-12 {
		t.Fatalf("lsa = %g, want -1", lsa)
	}
}
