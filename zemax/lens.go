package zemax

import (
	"github.com/bob-anderson-ok/LensPSF/lens"
	"github.com/bob-anderson-ok/LensPSF/material"
)

func side(s Surface) lens.Side {
	r := 0.0
	if s.Curvature != 0 {
		r = 1 / s.Curvature
	}
	return lens.Side{R: r, K: s.Conic, AD: s.AD, AE: s.AE}
}

// Lens builds the singlet of surfaces 1 and 2. The index comes from the surface 1 glass
// at the primary wavelength when the glass is known, otherwise defaultIndex is used.
func (d *Design) Lens(defaultIndex float64) lens.Lens {
	front, back := d.Surfaces[1], d.Surfaces[2]
	l := lens.Lens{
		Diameter:      2 * d.HalfDiam,
		ClearAperture: 2 * d.HalfDiam,
		CT:            front.DistanceZ,
		NIndex:        defaultIndex,
		Front:         side(front),
		Back:          side(back),
	}
	if d.EntrancePupilHalfDiam > 0 && d.EntrancePupilHalfDiam < d.HalfDiam {
		l.ClearAperture = 2 * d.EntrancePupilHalfDiam
	}
	if m, err := material.FromZemaxGlass(front.Glass); err == nil {
		if n, err := m.Index(d.PrimaryWavelengthUm()); err == nil {
			l.NIndex = n
		}
	}
	return l
}
