package psf

import (
	"math"
	"testing"
)

func ramp(h, w int) [][]float64 {
	m := make([][]float64, h)
	for y := range m {
		m[y] = make([]float64, w)
		for x := range m[y] {
			m[y][x] = float64(y*w + x)
		}
	}
	return m
}

func TestConvolveWithDeltaIsIdentity(t *testing.T) {
	img := ramp(5, 7)
	delta := [][]float64{{0, 0, 0}, {0, 1, 0}, {0, 0, 0}}
	out, err := Convolve(img, delta)
	if err != nil {
		t.Fatal(err)
	}
	for y := range img {
		for x := range img[y] {
			if math.Abs(out[y][x]-img[y][x]) > 1e-9 {
				t.Fatalf("out[%d][%d] = %g, want %g", y, x, out[y][x], img[y][x])
			}
		}
	}
}

func TestConvolveShiftedDelta(t *testing.T) {
	img := ramp(4, 4)
	// A delta right of center samples the pixel to the left.
	k := [][]float64{{0, 0, 0}, {0, 0, 1}, {0, 0, 0}}
	out, err := ConvolvePadded(img, k, PadZeros)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(out[1][2]-img[1][1]) > 1e-9 || math.Abs(out[1][0]) > 1e-9 {
		t.Fatalf("got %v", out)
	}
}

func TestConvolveReplicateKeepsConstant(t *testing.T) {
	img := make([][]float64, 6)
	for y := range img {
		img[y] = []float64{3, 3, 3, 3, 3, 3}
	}
	out, err := Convolve(img, SourceDisk(2, 1))
	if err != nil {
		t.Fatal(err)
	}
	for y := range out {
		for x := range out[y] {
			if math.Abs(out[y][x]-3) > 1e-9 {
				t.Fatalf("out[%d][%d] = %g, want 3", y, x, out[y][x])
			}
		}
	}
	zeroPadded, _ := ConvolvePadded(img, SourceDisk(2, 1), PadZeros)
	if !(zeroPadded[0][0] < 3) {
		t.Fatalf("zero padded corner = %g, want below 3", zeroPadded[0][0])
	}
}

func TestSourceDisk(t *testing.T) {
	d := SourceDisk(2, 1)
	if len(d) != 7 || len(d[0]) != 7 {
		t.Fatalf("disk is %dx%d, want 7x7", len(d), len(d[0]))
	}
	sum := 0.0
	for _, row := range d {
		for _, v := range row {
			sum += v
		}
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("sum = %g", sum)
	}
	if d[3][3] == 0 || d[0][0] != 0 || d[3][1] == 0 || d[3][0] != 0 {
		t.Fatalf("disk = %v", d)
	}
}

func TestReflectIndex(t *testing.T) {
	want := []int{2, 1, 0, 1, 2, 3, 4, 3, 2, 1, 0}
	for i, w := range want {
		if got := reflectIndex(i-2, 5); got != w {
			t.Fatalf("reflectIndex(%d) = %d, want %d", i-2, got, w)
		}
	}
}

func TestConvolvePaddingModes(t *testing.T) {
	img := [][]float64{{1, 2, 3, 4}, {1, 2, 3, 4}}
	// Kernel center at column 1, so out[x] = img[x+1] and the last column reads the padding.
	k := [][]float64{{1, 0, 0}}
	for _, c := range []struct {
		mode PaddingMode
		edge float64
	}{
		{PadZeros, 0}, {PadReflect, 3}, {PadReplicate, 4}, {PadCircular, 1},
	} {
		out, err := ConvolvePadded(img, k, c.mode)
		if err != nil {
			t.Fatalf("%v: %v", c.mode, err)
		}
		for _, row := range out {
			for x, want := range []float64{2, 3, 4, c.edge} {
				if math.Abs(row[x]-want) > 1e-9 {
					t.Fatalf("%v: out = %v, want edge %g", c.mode, out, c.edge)
				}
			}
		}
	}
}

func TestParsePaddingMode(t *testing.T) {
	for _, m := range []PaddingMode{PadZeros, PadReflect, PadReplicate, PadCircular} {
		got, err := ParsePaddingMode(m.String())
		if err != nil || got != m {
			t.Fatalf("ParsePaddingMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParsePaddingMode("mirror"); err == nil {
		t.Fatal("unknown mode accepted")
	}
}
