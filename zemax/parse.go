// Package zemax reads and writes the sequential lens prescriptions of Zemax .zmx files.
//
// Only two-surface singlets are understood: the lens is taken from surfaces 1 and 2, and
// aspheres may use the 4th and 6th order even terms only.
package zemax

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrNoWavelengths      = errors.New("zemax file lists no wavelengths")
	ErrUnsupportedAsphere = errors.New("asphere order not supported")
	ErrUnknownSurfaceType = errors.New("surface type not recognized")
	ErrTooFewSurfaces     = errors.New("zemax file needs object, front and back surfaces")
)

// Surface is one SURF block.
type Surface struct {
	Index     int
	Type      string
	Curvature float64
	Conic     float64
	AD, AE    float64
	DistanceZ float64 // +Inf for INFINITY
	HalfDiam  float64
	Glass     string
	Coating   string

	parms map[int]float64
}

// Design is the part of a .zmx file that describes a singlet.
type Design struct {
	Name                  string
	Units                 string
	EntrancePupilHalfDiam float64
	GlassCatalog          string
	HalfDiam              float64 // larger of the surface 1 and 2 half diameters
	Wavelengths           []float64
	PrimaryWavelength     int // index into Wavelengths
	Surfaces              []Surface
}

// PrimaryWavelengthUm returns the primary wavelength, or the first one when PWAV is out of range.
func (d *Design) PrimaryWavelengthUm() float64 {
	if d.PrimaryWavelength >= 0 && d.PrimaryWavelength < len(d.Wavelengths) {
		return d.Wavelengths[d.PrimaryWavelength]
	}
	return d.Wavelengths[0]
}

// Parse reads a .zmx file. UTF-16 files with a byte order mark are decoded; anything else
// is read as UTF-8.
func Parse(r io.Reader) (*Design, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	d := &Design{}
	var block []string

	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		s, err := parseSurface(block)
		if err != nil {
			return err
		}
		d.Surfaces = append(d.Surfaces, s)
		block = nil
		return nil
	}

	sc := bufio.NewScanner(decoded)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if block != nil && strings.HasPrefix(line, "  ") {
			block = append(block, strings.TrimSpace(line))
			continue
		}
		switch fields[0] {
		case "NAME":
			d.Name = restOfLine(line)
		case "UNIT":
			d.Units = field(fields, 1)
		case "ENPD":
			d.EntrancePupilHalfDiam = number(field(fields, 1)) / 2
		case "GCAT":
			d.GlassCatalog = restOfLine(line)
		case "WAVM":
			d.Wavelengths = append(d.Wavelengths, number(field(fields, 2)))
		case "PWAV":
			n, _ := strconv.Atoi(field(fields, 1))
			d.PrimaryWavelength = n - 1
		case "SURF":
			if err := flush(); err != nil {
				return nil, err
			}
			block = []string{line}
		default:
			// Not needed for a singlet.
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading zemax file: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if len(d.Wavelengths) == 0 {
		return nil, ErrNoWavelengths
	}
	if len(d.Surfaces) < 3 {
		return nil, fmt.Errorf("%w: found %d", ErrTooFewSurfaces, len(d.Surfaces))
	}
	d.HalfDiam = math.Max(d.Surfaces[1].HalfDiam, d.Surfaces[2].HalfDiam)
	return d, nil
}

func parseSurface(lines []string) (Surface, error) {
	s := Surface{parms: map[int]float64{}}
	for _, line := range lines {
		fields := strings.Fields(line)
		switch fields[0] {
		case "SURF":
			s.Index, _ = strconv.Atoi(field(fields, 1))
		case "TYPE":
			s.Type = field(fields, 1)
		case "CURV":
			s.Curvature = number(field(fields, 1))
		case "CONI":
			s.Conic = number(field(fields, 1))
		case "PARM":
			if n, err := strconv.Atoi(field(fields, 1)); err == nil {
				s.parms[n] = number(field(fields, 2))
			}
		case "DISZ":
			if field(fields, 1) == "INFINITY" {
				s.DistanceZ = math.Inf(1)
			} else {
				s.DistanceZ = number(field(fields, 1))
			}
		case "GLAS":
			s.Glass = field(fields, 1)
		case "DIAM":
			s.HalfDiam = number(field(fields, 1))
		case "COAT":
			s.Coating = field(fields, 1)
		}
	}

	switch s.Type {
	case "STANDARD":
	case "EVENASPH":
		// PARM 1 is the r² term, PARM 2 the r⁴ term and PARM 3 the r⁶ term. Only the
		// last two have a place in a Side.
		for n, v := range s.parms {
			if n != 2 && n != 3 && v != 0 {
				return s, fmt.Errorf("surface %d: PARM %d = %g: %w", s.Index, n, v, ErrUnsupportedAsphere)
			}
		}
		s.AD = s.parms[2]
		s.AE = s.parms[3]
	default:
		return s, fmt.Errorf("surface %d: %q: %w", s.Index, s.Type, ErrUnknownSurfaceType)
	}
	return s, nil
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

func restOfLine(line string) string {
	_, rest, _ := strings.Cut(line, " ")
	return strings.TrimSpace(rest)
}

// number parses a Zemax float; malformed values read as 0 like missing ones.
func number(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
