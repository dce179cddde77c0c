package zemax

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/bob-anderson-ok/LensPSF/lens"
)

// Conic constants at or below this magnitude are not written.
const conicEpsilon = 1e-5

const header = `MODE SEQ
UNIT MM X W X CM MR CPMM
ENPD %v
ENVD 20 1 0
GFAC 0 0
GCAT SCHOTT MISC INFRARED
RAIM 0 0 1 1 0 0 0 0 0 1
FTYP 0 0 1 1 0 0 0 1
WAVM 1 %v 1
PWAV 1
POLS 1 0 1 0 0 1 0
GLRS 1 0
LUID 4
SURF 0
  TYPE STANDARD
  CURV 0.0
  DISZ INFINITY
`

// Write emits a sequential prescription of l: object, front surface (the stop), back
// surface, a slab at the back focus and the image. glass names the lens material in Zemax
// terms and may be empty.
func Write(w io.Writer, l lens.Lens, halfDiameter, wavelength float64, glass string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, header, 2*halfDiameter, wavelength)
	fmt.Fprintln(bw, "SURF 1")
	writeSide(bw, l.Front, halfDiameter, l.CT, true, glass)
	fmt.Fprintln(bw, "SURF 2")
	writeSide(bw, l.Back, halfDiameter, 0, false, "")
	fmt.Fprintf(bw, "SURF 3\n  TYPE STANDARD\n  CURV 0.0\n  SLAB 4\n  DISZ %v\n  MAZH 0 0\n", l.BFL())
	fmt.Fprint(bw, "SURF 4\n  TYPE STANDARD\n  CURV 0.0\n  DISZ 0\n")
	return bw.Flush()
}

func writeSide(w io.Writer, s lens.Side, halfDiameter, thickness float64, stop bool, glass string) {
	if stop {
		fmt.Fprintln(w, "  STOP")
	}
	if s.Type() == lens.Asphere {
		fmt.Fprintln(w, "  TYPE EVENASPH")
	} else {
		fmt.Fprintln(w, "  TYPE STANDARD")
	}
	fmt.Fprintf(w, "  CURV %v\n", s.Curvature())
	if math.Abs(s.K) > conicEpsilon {
		fmt.Fprintf(w, "  CONI %v\n", s.K)
	}
	if s.Type() == lens.Asphere {
		fmt.Fprintln(w, "  PARM 1 0")
		fmt.Fprintf(w, "  PARM 2 %v\n", s.AD)
		fmt.Fprintf(w, "  PARM 3 %v\n", s.AE)
	}
	fmt.Fprintf(w, "  DIAM %v 1 0 0\n", halfDiameter)
	fmt.Fprintf(w, "  MEMA %v 1 0 0\n", halfDiameter)
	fmt.Fprintf(w, "  DISZ %v\n", thickness)
	if glass != "" {
		fmt.Fprintf(w, "  GLAS %s\n", glass)
	}
}
