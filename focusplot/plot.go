package focusplot

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	_ "gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	vgdraw "gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// StepTicks is a custom tick marker for plots with fixed step intervals.
type StepTicks struct {
	Step   float64
	Format string
}

func (t StepTicks) Ticks(min, max float64) []plot.Tick {
	if !(t.Step > 0) || math.IsInf(max-min, 0) {
		return nil
	}
	var ticks []plot.Tick
	start := math.Ceil(min/t.Step) * t.Step
	for v := start; v <= max+t.Step*1e-9; v += t.Step {
		ticks = append(ticks, plot.Tick{
			Value: v,
			Label: fmt.Sprintf(t.Format, v),
		})
	}
	return ticks
}

var (
	blue  = color.RGBA{B: 255, A: 255}
	red   = color.RGBA{R: 255, A: 255}
	black = color.RGBA{A: 255}
	gray  = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()

	for _, s := range []*text.Style{&p.Title.TextStyle, &p.X.Label.TextStyle, &p.Y.Label.TextStyle} {
		s.Font.Typeface = "Liberation"
		s.Font.Variant = "Sans"
		s.Font.Size = vg.Points(12)
	}
	for _, s := range []*text.Style{&p.X.Tick.Label, &p.Y.Tick.Label} {
		s.Font.Typeface = "Liberation"
		s.Font.Variant = "Sans"
		s.Font.Size = vg.Points(10)
	}

	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	return p
}

func dashed(l *plotter.Line, c color.Color) {
	l.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	l.Color = c
}

func zeroLine(p *plot.Plot, x0, x1 float64) error {
	hline, err := plotter.NewLine(plotter.XYs{{X: x0, Y: 0}, {X: x1, Y: 0}})
	if err != nil {
		return err
	}
	dashed(hline, black)
	p.Add(hline)
	return nil
}

// PlotProfile plots an intensity profile with red dashed markers at the given crossings,
// usually the ones FWHM returns.
func PlotProfile(profile []Point, crossings []float64, title, units string) (*plot.Plot, error) {
	if len(profile) < 2 {
		return nil, fmt.Errorf("profile has %d points", len(profile))
	}
	p := newPlot(title, units, "normalized intensity")
	p.Y.Min = -0.2
	p.Y.Max = 1.2

	first, last := profile[0].Distance, profile[len(profile)-1].Distance
	p.X.Tick.Marker = StepTicks{Step: math.Abs(last-first) / 20, Format: "%.3g"}
	p.Y.Tick.Marker = StepTicks{Step: 0.2, Format: "%.2f"}

	pts := make(plotter.XYs, len(profile))
	for i, pt := range profile {
		pts[i].X = pt.Distance
		pts[i].Y = pt.Intensity
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = blue
	p.Add(line)

	for _, x := range crossings {
		vline, err := plotter.NewLine(plotter.XYs{{X: x, Y: -0.1}, {X: x, Y: 1.1}})
		if err != nil {
			return nil, err
		}
		dashed(vline, red)
		p.Add(vline)
	}

	if err := zeroLine(p, first, last); err != nil {
		return nil, err
	}
	return p, nil
}

// PlotXY plots ys against xs as a named line, with a glyph at every sample when markers is set.
func PlotXY(title, xLabel, yLabel string, xs, ys []float64, markers bool) (*plot.Plot, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%d xs and %d ys", len(xs), len(ys))
	}
	if len(xs) == 0 {
		return nil, errors.New("nothing to plot")
	}
	p := newPlot(title, xLabel, yLabel)

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	if markers {
		linePoints, scatterPoints, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, err
		}
		linePoints.Color = blue
		linePoints.Width = vg.Points(1)
		scatterPoints.Shape = vgdraw.CircleGlyph{}
		scatterPoints.Radius = vg.Points(2)
		scatterPoints.Color = gray
		p.Add(linePoints, scatterPoints)
	} else {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = blue
		p.Add(line)
	}

	xmin, xmax, _, _ := plotter.XYRange(pts)
	if err := zeroLine(p, xmin, xmax); err != nil {
		return nil, err
	}
	return p, nil
}

// PlotSpots scatters the (x, y) image plane hits of a spot diagram on equal axes.
func PlotSpots(title string, xs, ys []float64) (*plot.Plot, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%d xs and %d ys", len(xs), len(ys))
	}
	p := newPlot(title, "x (mm)", "y (mm)")

	pts := make(plotter.XYs, len(xs))
	extent := 0.0
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
		extent = math.Max(extent, math.Max(math.Abs(xs[i]), math.Abs(ys[i])))
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyle.Shape = vgdraw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(1)
	scatter.GlyphStyle.Color = blue
	p.Add(scatter)

	if extent == 0 {
		extent = 1e-6
	}
	extent *= 1.05
	p.X.Min, p.X.Max = -extent, extent
	p.Y.Min, p.Y.Max = -extent, extent
	return p, nil
}

// Render draws p into an image of wPx by hPx pixels at 96 dpi.
func Render(p *plot.Plot, wPx, hPx float64) image.Image {
	const dpi = 96
	width := vg.Length(wPx) * vg.Inch / dpi
	height := vg.Length(hPx) * vg.Inch / dpi

	c := vgimg.New(width, height)
	dc := vgdraw.New(c)
	p.Draw(dc)
	return c.Image()
}

// SavePlot renders p and saves it to a PNG file.
func SavePlot(filename string, p *plot.Plot, wPx, hPx float64) error {
	return SaveImageToFile(filename, Render(p, wPx, hPx))
}
