package main

import (
	"fmt"
	"time"

	"github.com/bob-anderson-ok/LensPSF/analysis"
	"github.com/bob-anderson-ok/LensPSF/focusplot"
	"github.com/bob-anderson-ok/LensPSF/lens"
	"gonum.org/v1/plot"
)

const (
	plotWidthPx  = 1200
	plotHeightPx = 500
)

type namedPlot struct {
	file  string
	title string
	build func() (*plot.Plot, error)
}

func pointsXY(pts []analysis.Point) (xs, ys []float64) {
	xs = make([]float64, len(pts))
	ys = make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

// analysisPlots lists the geometric and wavefront plots of l over its clear aperture.
func analysisPlots(l lens.Lens, d *Design) []namedPlot {
	halfCA := l.ClearAperture / 2
	return []namedPlot{
		{file: "lsa.png", title: "Longitudinal ray fan", build: func() (*plot.Plot, error) {
			xs, ys := pointsXY(analysis.LSA(l, d.Refocus, halfCA, d.FanPoints))
			return focusplot.PlotXY("Image height vs pupil height", "pupil height (mm)", "image height (mm)", xs, ys, true)
		}},
		{file: "tsa.png", title: "Transverse ray fan", build: func() (*plot.Plot, error) {
			pts, err := analysis.TSA(l, d.Refocus, halfCA, d.FanPoints)
			if err != nil {
				return nil, err
			}
			xs, ys := pointsXY(pts)
			return focusplot.PlotXY("Transverse ray aberration", "pupil height (mm)", "image height (mm)", xs, ys, false)
		}},
		{file: "wavefront.png", title: "Wavefront", build: func() (*plot.Plot, error) {
			line, err := analysis.GenWavefrontLine(l, halfCA, d.FanPoints, d.WavelengthUm, d.Refocus)
			if err != nil {
				return nil, err
			}
			title := fmt.Sprintf("Wavefront error along x (P-V %0.4f waves)", line.Max-line.Min)
			return focusplot.PlotXY(title, "pupil x (mm)", "OPD (waves)", line.Positions, line.OPD, false)
		}},
		{file: "spots.png", title: "Spot diagram", build: func() (*plot.Plot, error) {
			spots, err := analysis.SpotDiagram(l, d.Refocus, halfCA, d.SpotGrid)
			if err != nil {
				return nil, err
			}
			xs := make([]float64, len(spots))
			ys := make([]float64, len(spots))
			for i, s := range spots {
				xs[i], ys[i] = s.P.X, s.P.Y
			}
			rms := analysis.RMSSpotSize(spots).RMS
			return focusplot.PlotSpots(fmt.Sprintf("Spot diagram (RMS radius %0.3g mm)", rms), xs, ys)
		}},
	}
}

// writePlots renders every plot into the output folder.
func writePlots(d *Design, plots []namedPlot) error {
	for _, np := range plots {
		start := time.Now()
		p, err := np.build()
		if err != nil {
			return fmt.Errorf("%s: %w", np.file, err)
		}
		if err := focusplot.SavePlot(d.output(np.file), p, plotWidthPx, plotHeightPx); err != nil {
			return fmt.Errorf("writing of %q failed: %w", np.file, err)
		}
		fmt.Printf("Writing %s took %s\n", np.file, time.Since(start))
	}
	return nil
}

// profilePlot plots a PSF midline whose samples are spacing apart.
func profilePlot(line []float64, spacing float64, title string) namedPlot {
	return namedPlot{file: "psfLine.png", title: "PSF midline", build: func() (*plot.Plot, error) {
		half := len(line) / 2
		profile := make([]focusplot.Point, len(line))
		for i, v := range line {
			profile[i] = focusplot.Point{Distance: float64(i-half) * spacing, Intensity: v}
		}
		crossings, width := focusplot.FWHM(profile)
		return focusplot.PlotProfile(profile, crossings, fmt.Sprintf("%s (FWHM %0.3g um)", title, width), "image plane (um)")
	}}
}

func extendedPlot(xs, ys []float64) namedPlot {
	return namedPlot{file: "extended.png", title: "Extended source", build: func() (*plot.Plot, error) {
		return focusplot.PlotXY("Extended source profile", "image plane (mm)", "normalized intensity", xs, ys, true)
	}}
}
