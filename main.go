package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	json "github.com/KevinWang15/go-json5"

	"github.com/bob-anderson-ok/LensPSF/analysis"
	"github.com/bob-anderson-ok/LensPSF/extsource"
	"github.com/bob-anderson-ok/LensPSF/focusplot"
	"github.com/bob-anderson-ok/LensPSF/lens"
	"github.com/bob-anderson-ok/LensPSF/material"
	"github.com/bob-anderson-ok/LensPSF/optimize"
	"github.com/bob-anderson-ok/LensPSF/psf"
	"github.com/bob-anderson-ok/LensPSF/tracer"
	"github.com/bob-anderson-ok/LensPSF/wavefront"
	"github.com/bob-anderson-ok/LensPSF/zemax"
)

const version = "1_0_0"

const (
	sourceUniform  = "uniform"
	sourceGaussian = "gaussian"
	sourceExtended = "extended"
)

// Design is the parameter file after validation.
type Design struct {
	Title            string
	ShowInput        bool
	Verbose          bool
	WindowSizePixels int
	PathToZemaxFile  string
	OutputFolder     string
	WriteZemaxFile   string

	Lens         lens.Lens
	Material     string
	WavelengthUm float64
	Refocus      float64

	SourceKind     string
	SourceHalfDiam float64 // 0 fills the clear aperture
	E2HalfDiam     float64
	FiberRadius    float64
	FiberPadding   psf.PaddingMode

	Targets    optimize.Targets
	RayHeights []float64

	Pupil    psf.Pupil
	Extended extsource.Params
	Seed     int64

	FanPoints int
	SpotGrid  int
	WFEGrid   int
}

func (d *Design) output(name string) string {
	return filepath.Join(d.OutputFolder, name)
}

// Scale of the 16 bit PSF image: pixel value = 4000 × normalized intensity.
const gray16Scale = 4000

func main() {

	programStart := time.Now()

	args := os.Args

	if len(args) != 2 {
		fmt.Println("\n\tWrong number of arguments.\n\tUsage: LensPSF <parameter-file>")
		os.Exit(1)
	}

	path := args[1]

	// Read the Json5 (or Json) parameter file
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tAttempt to read input file %q failed: %w\n", path, err))
		os.Exit(2)
	}

	// Parse json(5) data into a generic container
	var jsonTable map[string]interface{}
	err = json.Unmarshal(data, &jsonTable)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tFormat error in file %q: %w\n", path, err))
		os.Exit(3)
	}

	var design Design
	msg, ok := validateJsonFileAndFillDesign(jsonTable, &design)
	if !ok {
		fmt.Println(msg)
		os.Exit(4)
	}

	// Check for user wanting printout of complete jsonTable
	if design.ShowInput {
		fmt.Printf("%s", "\nPrintout of  complete jsonTable contents...\n")
		fmt.Println(string(data))
	}

	if design.Verbose {
		tracer.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	fmt.Printf("\nVersion %s\n\n", version)

	l, err := buildLens(&design)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tConstruction of the lens failed: %w", err))
		os.Exit(5)
	}
	if err := l.Validate(); err != nil {
		fmt.Println(fmt.Errorf("\n\tThe lens is not usable: %w", err))
		os.Exit(6)
	}
	halfCA := l.ClearAperture / 2

	if design.Targets != 0 {
		start := time.Now()
		before := analysis.RadialRMSError(l, 0, halfCA, design.RayHeights).RMS
		l, err = tracer.OptimizeLens(design.RayHeights, l, design.Targets)
		if err != nil {
			fmt.Println(fmt.Errorf("\n\tLens optimization failed: %w", err))
			os.Exit(7)
		}
		after := analysis.RadialRMSError(l, 0, halfCA, design.RayHeights).RMS
		fmt.Printf("Optimization took %s: RMS ray error %0.4g mm -> %0.4g mm\n", time.Since(start), before, after)
	}

	fmt.Println(l)
	fmt.Printf("EFL is %0.4f mm, BFL is %0.4f mm\n", l.EFL(), l.BFL())

	if err := os.MkdirAll(design.OutputFolder, 0o755); err != nil {
		fmt.Println(fmt.Errorf("\n\tCreation of output folder %q failed: %w", design.OutputFolder, err))
		os.Exit(8)
	}

	// Geometric and wavefront summaries
	rayErr := analysis.RadialRMSError(l, design.Refocus, halfCA, nil)
	fmt.Printf("Radial ray error: RMS %0.4g mm, P-V %0.4g mm\n", rayErr.RMS, rayErr.PV)
	fmt.Printf("Radial wavefront P-V is %0.4f waves\n", analysis.RadialWFE(l, design.Refocus, halfCA, design.FanPoints, design.WavelengthUm))
	radial := wavefront.RadialErrorStats(analysis.DefaultRaySet, l, design.WavelengthUm, design.Refocus)
	fmt.Printf("Radial OPD: peak %0.4f, valley %0.4f, RMS %0.4f waves\n", radial.Peak, radial.Valley, radial.RMS)

	start := time.Now()
	samples := wavefront.GenerateSamples(halfCA, design.WFEGrid)
	gridStats := wavefront.TraceSamples(samples, l, design.WavelengthUm, design.Refocus)
	fmt.Printf("Pupil grid of %d rays: OPD RMS %0.4f waves, P-V %0.4f waves (%s)\n",
		gridStats.Count, gridStats.RMS, gridStats.MaxOPD-gridStats.MinOPD, time.Since(start))

	plots := analysisPlots(l, &design)
	if err := writePlots(&design, plots); err != nil {
		fmt.Println(fmt.Errorf("\n\tPlotting failed: %w", err))
		os.Exit(9)
	}

	sourceRadius := design.SourceHalfDiam
	if sourceRadius == 0 || sourceRadius > halfCA {
		sourceRadius = halfCA
	}
	req := tracer.PSFRequest{
		Lens:         l,
		Pupil:        design.Pupil,
		Wavelength:   design.WavelengthUm,
		SourceRadius: sourceRadius,
		E2Radius:     design.E2HalfDiam,
		Refocus:      design.Refocus,
	}

	start = time.Now()
	flat, err := tracer.GenPSF(req)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tPSF generation failed: %w", err))
		os.Exit(10)
	}
	core, err := Reshape1DTo2D(flat, design.Pupil.Core, design.Pupil.Core)
	if err != nil {
		fmt.Println(fmt.Errorf("reshape of PSF vector failed: %w", err))
		os.Exit(10)
	}
	fmt.Printf("Calculation of the %dx%d PSF took %s\n", design.Pupil.Total, design.Pupil.Total, time.Since(start))

	pixelUm := 1000 * psf.PixelScale(design.WavelengthUm, l.EFL(), sourceRadius, design.Pupil)
	fmt.Printf("PSF pixel scale is %0.4g um, Strehl ratio is %0.4f\n", pixelUm, core[design.Pupil.Core/2][design.Pupil.Core/2])

	if err := writePSFImages(&design, core, "psf8bit.png", "psf16bit.png"); err != nil {
		fmt.Println(err)
		os.Exit(11)
	}

	cut := focusplot.Cut{AngleDegrees: 90, Size: design.Pupil.Core}
	if profile, err := focusplot.Profile(core, cut, pixelUm); err == nil {
		_, width := focusplot.FWHM(profile)
		fmt.Printf("FWHM across the PSF core is %0.4g um\n", width)
	}

	start = time.Now()
	var line []float64
	lineTitle := "Uniform pupil PSF midline"
	if design.SourceKind == sourceGaussian {
		line, err = tracer.GenGaussLine(req)
		lineTitle = "Gaussian beam PSF midline"
	} else {
		line, err = tracer.GenPSFLine(req)
	}
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tPSF midline failed: %w", err))
		os.Exit(12)
	}
	fmt.Printf("Calculation of the PSF midline took %s\n", time.Since(start))
	extra := []namedPlot{profilePlot(line, pixelUm, lineTitle)}

	if design.FiberRadius > 0 {
		start = time.Now()
		disk := psf.SourceDisk(design.FiberRadius*1000, pixelUm)
		imaged, err := psf.ConvolvePadded(core, disk, design.FiberPadding)
		if err != nil {
			fmt.Println(fmt.Errorf("convolution of the PSF with the fiber disk failed: %w", err))
			os.Exit(13)
		}
		if err := writePSFImages(&design, imaged, "fiber8bit.png", "fiber16bit.png"); err != nil {
			fmt.Println(err)
			os.Exit(13)
		}
		fmt.Printf("Convolution of the PSF with a %dx%d fiber disk (%s padding) took %s\n",
			len(disk), len(disk), design.FiberPadding, time.Since(start))
	}

	wfeMap, err := analysis.WFEMap(l, design.Refocus, halfCA, design.WFEGrid, design.WavelengthUm)
	if err == nil {
		err = writeGray8(&design, maskOutside(wfeMap, -1), "wfeMap8bit.png")
	}
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tWavefront map failed: %w", err))
		os.Exit(14)
	}

	if design.SourceKind == sourceExtended {
		start = time.Now()
		p := design.Extended
		p.FiberRadius = design.FiberRadius
		p.SourceRadius = sourceRadius
		p.Refocus = design.Refocus
		res, err := tracer.RunExtSrcTrace(l, p, design.Seed)
		if err != nil {
			fmt.Println(fmt.Errorf("\n\tExtended source trace failed: %w", err))
			os.Exit(15)
		}
		fmt.Printf("Extended source trace of %d rays took %s (%d outside the histogram)\n",
			p.NumRays*p.NumAngles, time.Since(start), res.Errors)
		extra = append(extra, extendedPlot(res.X, res.Y))
	}

	if err := writePlots(&design, extra); err != nil {
		fmt.Println(fmt.Errorf("\n\tPlotting failed: %w", err))
		os.Exit(9)
	}
	plots = append(plots, extra...)

	if design.WriteZemaxFile != "" {
		if err := writeZemax(&design, l, sourceRadius); err != nil {
			fmt.Println(fmt.Errorf("\n\tWriting of %q failed: %w", design.WriteZemaxFile, err))
			os.Exit(16)
		}
	}

	fmt.Printf("\nTotal program run time is %s\n", time.Since(programStart))

	if design.WindowSizePixels > 0 {
		showWindows(&design, cut, plots)
	}
}

// buildLens reads the lens from the .zmx file or the inline table, resolving a named
// material at the design wavelength.
func buildLens(d *Design) (lens.Lens, error) {
	if d.PathToZemaxFile != "" {
		f, err := os.Open(d.PathToZemaxFile)
		if err != nil {
			return lens.Lens{}, err
		}
		defer f.Close()
		zd, err := zemax.Parse(f)
		if err != nil {
			return lens.Lens{}, fmt.Errorf("%s: %w", d.PathToZemaxFile, err)
		}
		if d.WavelengthUm == 0 {
			d.WavelengthUm = zd.PrimaryWavelengthUm()
		}
		l := zd.Lens(d.Lens.NIndex)
		if d.Title == "" {
			d.Title = zd.Name
		}
		if zd.Surfaces[1].Glass != "" {
			if m, err := material.FromZemaxGlass(zd.Surfaces[1].Glass); err == nil {
				d.Material = m.Name
			}
		}
		if l.NIndex <= 1 {
			return l, fmt.Errorf("glass %q has no catalog index at %g um", zd.Surfaces[1].Glass, d.WavelengthUm)
		}
		return l, nil
	}

	l := d.Lens
	if d.Material != "" {
		m, err := material.Lookup(d.Material)
		if err != nil {
			return l, err
		}
		if l.NIndex, err = m.Index(d.WavelengthUm); err != nil {
			return l, err
		}
		fmt.Printf("Index of %s at %g um is %0.5f (%s)\n", m.Name, d.WavelengthUm, l.NIndex, m.Source)
	}
	return l, nil
}

func writeGray8(d *Design, m [][]float64, name string) error {
	img, err := MatrixToGrayViewPercentile(m, 0.0, 100)
	if err != nil {
		return fmt.Errorf("creation of the display image failed: %w", err)
	}
	if err := focusplot.SaveImageToFile(d.output(name), img); err != nil {
		return fmt.Errorf("writing of %q failed: %w", name, err)
	}
	return nil
}

// writePSFImages writes the display (percentile stretch) and data (fixed scale) PNGs of m.
func writePSFImages(d *Design, m [][]float64, view, data string) error {
	if err := writeGray8(d, m, view); err != nil {
		return err
	}
	img, err := MatrixToGray16Data(m, gray16Scale)
	if err != nil {
		return fmt.Errorf("creation of %q failed: %w", data, err)
	}
	if err := focusplot.SaveImageToFile(d.output(data), img); err != nil {
		return fmt.Errorf("writing of %q failed: %w", data, err)
	}
	return nil
}

func writeZemax(d *Design, l lens.Lens, halfDiameter float64) (err error) {
	glass := ""
	if d.Material != "" {
		if glass, err = material.ZemaxGlass(d.Material); err != nil {
			return err
		}
	}
	f, err := os.Create(d.output(d.WriteZemaxFile))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return zemax.Write(f, l, halfDiameter, d.WavelengthUm, glass)
}

func showWindows(d *Design, cut focusplot.Cut, plots []namedPlot) {
	size := d.WindowSizePixels

	// We supply an ID (hopefully unique) because we may need to use the preferences API
	myApp := app.NewWithID("com.gmail.ok.anderson.bob.lenspsf")
	w := myApp.NewWindow(d.Title + " - PSF (8 bit grayscale png)")
	w.SetPadded(false)
	w.CenterOnScreen()
	w.Resize(fyne.Size{Height: float32(size), Width: float32(size)})

	img := canvas.NewImageFromFile(d.output("psf8bit.png"))
	img.FillMode = canvas.ImageFillContain
	img.Resize(fyne.NewSize(float32(size), float32(size)))

	// A red line shows the profile cut, with dots showing its direction (red to green)
	if seg, err := cut.Segment(); err == nil {
		scale := float32(size) / float32(cut.Size)
		line := canvas.NewLine(color.RGBA{R: 255, A: 255})
		line.Position1 = fyne.NewPos(float32(seg.StartX)*scale, float32(seg.StartY)*scale)
		line.Position2 = fyne.NewPos(float32(seg.EndX)*scale, float32(seg.EndY)*scale)
		line.StrokeWidth = 2

		dotSize := float32(10)
		startDot := placeDotAt(float32(seg.StartX)*scale, float32(seg.StartY)*scale, dotSize, color.RGBA{R: 255, A: 255})
		endDot := placeDotAt(float32(seg.EndX)*scale, float32(seg.EndY)*scale, dotSize, color.RGBA{G: 255, A: 255})
		w.SetContent(container.NewWithoutLayout(img, line, startDot, endDot))
	} else {
		w.SetContent(container.NewStack(img))
	}
	w.Show()

	for _, np := range plots {
		plotImg := canvas.NewImageFromFile(d.output(np.file))
		plotImg.FillMode = canvas.ImageFillContain
		plotImg.SetMinSize(fyne.NewSize(plotWidthPx, plotHeightPx))

		pw := myApp.NewWindow(np.title)
		pw.SetContent(container.NewCenter(plotImg))
		pw.Resize(fyne.NewSize(950, 550))
		pw.Show()
	}

	w.ShowAndRun()
}

func placeDotAt(x, y, diameter float32, col color.Color) *canvas.Circle {
	dot := canvas.NewCircle(col)
	dot.Resize(fyne.NewSize(diameter, diameter))
	dot.Move(fyne.NewPos(x-diameter/2, y-diameter/2))
	return dot
}
