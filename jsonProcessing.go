package main

import (
	"fmt"
	"strings"

	"github.com/bob-anderson-ok/LensPSF/analysis"
	"github.com/bob-anderson-ok/LensPSF/optimize"
	"github.com/bob-anderson-ok/LensPSF/psf"
)

func getLeafValue(jsonTable map[string]interface{}, path ...string) (interface{}, bool) {
	var cur interface{} = jsonTable
	for _, p := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// The read helpers leave dst untouched when the field is missing, so callers set the
// default first. A field of the wrong type is an error.

func readFloat(jsonTable map[string]interface{}, dst *float64, path ...string) (string, bool) {
	v, ok := getLeafValue(jsonTable, path...)
	if !ok {
		return "", true
	}
	f, ok := v.(float64)
	if !ok {
		return strings.Join(path, ".") + ": is not a float64", false
	}
	*dst = f
	return "", true
}

func readInt(jsonTable map[string]interface{}, dst *int, path ...string) (string, bool) {
	f := float64(*dst)
	if msg, ok := readFloat(jsonTable, &f, path...); !ok {
		return msg, false
	}
	if f != float64(int(f)) {
		return strings.Join(path, ".") + ": is not an integer", false
	}
	*dst = int(f)
	return "", true
}

func readBool(jsonTable map[string]interface{}, dst *bool, path ...string) (string, bool) {
	v, ok := getLeafValue(jsonTable, path...)
	if !ok {
		return "", true
	}
	b, ok := v.(bool)
	if !ok {
		return strings.Join(path, ".") + ": is not a bool", false
	}
	*dst = b
	return "", true
}

func readString(jsonTable map[string]interface{}, dst *string, path ...string) (string, bool) {
	v, ok := getLeafValue(jsonTable, path...)
	if !ok {
		return "", true
	}
	s, ok := v.(string)
	if !ok {
		return strings.Join(path, ".") + ": is not a string", false
	}
	*dst = s
	return "", true
}

func readFloats(jsonTable map[string]interface{}, dst *[]float64, path ...string) (string, bool) {
	v, ok := getLeafValue(jsonTable, path...)
	if !ok {
		return "", true
	}
	list, ok := v.([]interface{})
	if !ok {
		return strings.Join(path, ".") + ": is not an array", false
	}
	out := make([]float64, len(list))
	for i, item := range list {
		if out[i], ok = item.(float64); !ok {
			return fmt.Sprintf("%s[%d]: is not a float64", strings.Join(path, "."), i), false
		}
	}
	*dst = out
	return "", true
}

type reader func() (string, bool)

func firstFailure(readers ...reader) (string, bool) {
	for _, r := range readers {
		if msg, ok := r(); !ok {
			return msg, false
		}
	}
	return "", true
}

func validateJsonFileAndFillDesign(jsonTable map[string]interface{}, design *Design) (string, bool) {
	msg := "No problem found in json file" // Initialize msg to presumed success.

	// Defaults for everything that may be missing
	design.WindowSizePixels = 500
	design.OutputFolder = "."
	design.SourceKind = sourceUniform
	design.RayHeights = analysis.DefaultRaySet
	design.Pupil.Grid = 64
	design.Pupil.Total = 512
	design.Pupil.Core = 128
	design.Extended.NumRays = 2000
	design.Extended.NumAngles = 20
	design.Extended.Bins = 41
	design.Extended.Multiplier = 2
	design.Seed = 1
	design.FanPoints = 51
	design.SpotGrid = 21
	design.WFEGrid = 65

	t := jsonTable
	if m, ok := firstFailure(
		func() (string, bool) { return readString(t, &design.Title, "title") },
		func() (string, bool) { return readBool(t, &design.ShowInput, "show_input_bool") },
		func() (string, bool) { return readBool(t, &design.Verbose, "verbose_bool") },
		func() (string, bool) { return readInt(t, &design.WindowSizePixels, "window_size_pixels") },
		func() (string, bool) { return readString(t, &design.PathToZemaxFile, "path_to_zemax_file") },
		func() (string, bool) { return readString(t, &design.OutputFolder, "output_folder") },
		func() (string, bool) { return readString(t, &design.WriteZemaxFile, "write_zemax_file") },
		func() (string, bool) { return readFloat(t, &design.WavelengthUm, "wavelength_um") },
		func() (string, bool) { return readFloat(t, &design.Refocus, "refocus") },
	); !ok {
		return m, false
	}

	_, lensGiven := getLeafValue(t, "lens")
	if lensGiven {
		l := &design.Lens
		if m, ok := firstFailure(
			func() (string, bool) { return readFloat(t, &l.Diameter, "lens", "diameter") },
			func() (string, bool) { return readFloat(t, &l.ClearAperture, "lens", "clear_aperture") },
			func() (string, bool) { return readFloat(t, &l.CT, "lens", "ct") },
			func() (string, bool) { return readFloat(t, &l.NIndex, "lens", "n_index") },
			func() (string, bool) { return readString(t, &design.Material, "lens", "material") },
			func() (string, bool) { return readFloat(t, &l.Front.R, "lens", "front", "r") },
			func() (string, bool) { return readFloat(t, &l.Front.K, "lens", "front", "k") },
			func() (string, bool) { return readFloat(t, &l.Front.AD, "lens", "front", "ad") },
			func() (string, bool) { return readFloat(t, &l.Front.AE, "lens", "front", "ae") },
			func() (string, bool) { return readFloat(t, &l.Back.R, "lens", "back", "r") },
			func() (string, bool) { return readFloat(t, &l.Back.K, "lens", "back", "k") },
			func() (string, bool) { return readFloat(t, &l.Back.AD, "lens", "back", "ad") },
			func() (string, bool) { return readFloat(t, &l.Back.AE, "lens", "back", "ae") },
		); !ok {
			return m, false
		}
		if l.ClearAperture == 0 {
			l.ClearAperture = l.Diameter
		}
	}

	switch {
	case design.PathToZemaxFile != "" && lensGiven:
		msg = "lens: give either lens or path_to_zemax_file, not both"
		return msg, false
	case design.PathToZemaxFile == "" && !lensGiven:
		msg = "lens: not found (and no path_to_zemax_file given)"
		return msg, false
	case lensGiven:
		if design.Lens.Diameter <= 0 {
			msg = "lens.diameter: must be positive"
			return msg, false
		}
		if design.Lens.ClearAperture > design.Lens.Diameter {
			msg = "lens.clear_aperture: must not exceed lens.diameter"
			return msg, false
		}
		if design.Lens.CT <= 0 {
			msg = "lens.ct: must be positive"
			return msg, false
		}
		if design.Material == "" && design.Lens.NIndex <= 1 {
			msg = "lens.n_index: not found or not greater than 1 (and no lens.material given)"
			return msg, false
		}
		if design.WavelengthUm <= 0 {
			msg = "wavelength_um: not found or not positive"
			return msg, false
		}
	}
	// A .zmx design supplies its own wavelength when none is given.
	if design.WavelengthUm < 0 {
		msg = "wavelength_um: must be positive"
		return msg, false
	}

	padding := psf.PadReplicate.String()
	if m, ok := firstFailure(
		func() (string, bool) { return readString(t, &design.SourceKind, "source", "kind") },
		func() (string, bool) { return readFloat(t, &design.SourceHalfDiam, "source", "half_diameter") },
		func() (string, bool) { return readFloat(t, &design.E2HalfDiam, "source", "e2_half_diameter") },
		func() (string, bool) { return readFloat(t, &design.FiberRadius, "source", "fiber_radius") },
		func() (string, bool) { return readString(t, &padding, "source", "fiber_padding") },
	); !ok {
		return m, false
	}
	mode, err := psf.ParsePaddingMode(padding)
	if err != nil {
		msg = fmt.Sprintf("source.fiber_padding: %v", err)
		return msg, false
	}
	design.FiberPadding = mode
	switch design.SourceKind {
	case sourceUniform:
	case sourceGaussian:
		if design.E2HalfDiam <= 0 {
			msg = "source.e2_half_diameter: must be positive for a gaussian source"
			return msg, false
		}
	case sourceExtended:
		if design.FiberRadius <= 0 {
			msg = "source.fiber_radius: must be positive for an extended source"
			return msg, false
		}
	default:
		msg = fmt.Sprintf("source.kind: %q is not one of %q, %q or %q",
			design.SourceKind, sourceUniform, sourceGaussian, sourceExtended)
		return msg, false
	}
	if design.SourceHalfDiam < 0 {
		msg = "source.half_diameter: must not be negative"
		return msg, false
	}

	for target, key := range map[optimize.Target]string{
		optimize.FrontConic: "front_conic",
		optimize.FrontAd:    "front_ad",
		optimize.FrontAe:    "front_ae",
		optimize.BackConic:  "back_conic",
		optimize.BackAd:     "back_ad",
		optimize.BackAe:     "back_ae",
	} {
		var on bool
		if m, ok := readBool(t, &on, "optimize", key); !ok {
			return m, false
		}
		if on {
			design.Targets |= optimize.NewTargets(target)
		}
	}
	if m, ok := readFloats(t, &design.RayHeights, "optimize", "ray_heights"); !ok {
		return m, false
	}
	for _, y := range design.RayHeights {
		if y < 0 || y > 1 {
			msg = fmt.Sprintf("optimize.ray_heights: %g is outside [0, 1]", y)
			return msg, false
		}
	}

	seed := float64(design.Seed)
	if m, ok := firstFailure(
		func() (string, bool) { return readInt(t, &design.Pupil.Grid, "psf", "pupil_grid") },
		func() (string, bool) { return readInt(t, &design.Pupil.Total, "psf", "total_grid") },
		func() (string, bool) { return readInt(t, &design.Pupil.Core, "psf", "core_grid") },
		func() (string, bool) { return readInt(t, &design.Extended.NumRays, "extended", "num_rays") },
		func() (string, bool) { return readInt(t, &design.Extended.NumAngles, "extended", "num_angles") },
		func() (string, bool) { return readInt(t, &design.Extended.Bins, "extended", "bins") },
		func() (string, bool) { return readFloat(t, &design.Extended.Multiplier, "extended", "multiplier") },
		func() (string, bool) { return readBool(t, &design.Extended.UseFermi, "extended", "use_fermi") },
		func() (string, bool) { return readFloat(t, &seed, "extended", "seed") },
		func() (string, bool) { return readInt(t, &design.FanPoints, "analysis", "fan_points") },
		func() (string, bool) { return readInt(t, &design.SpotGrid, "analysis", "spot_grid") },
		func() (string, bool) { return readInt(t, &design.WFEGrid, "analysis", "wfe_grid") },
	); !ok {
		return m, false
	}
	design.Seed = int64(seed)

	if err := design.Pupil.Validate(); err != nil {
		msg = fmt.Sprintf("psf: %v", err)
		return msg, false
	}
	if design.FanPoints < 2 || design.SpotGrid < 2 || design.WFEGrid < 2 {
		msg = "analysis: fan_points, spot_grid and wfe_grid must all be at least 2"
		return msg, false
	}
	if design.WindowSizePixels < 0 {
		msg = "window_size_pixels: must not be negative"
		return msg, false
	}

	return msg, true
}
