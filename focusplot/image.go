package focusplot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
)

// LoadGray16PNG loads a 16-bit grayscale PNG image and returns it as a 2D float64 matrix.
// The scale parameter is used to convert pixel values back to intensity: intensity = pixelValue / scale.
func LoadGray16PNG(filename string, scale float64) (matrix [][]float64, err error) {
	img, err := LoadImageFromFile(filename)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	matrix = make([][]float64, bounds.Dy())
	for y := range matrix {
		matrix[y] = make([]float64, bounds.Dx())
		for x := range matrix[y] {
			c := img.At(x+bounds.Min.X, y+bounds.Min.Y)
			if gray, ok := c.(color.Gray16); ok {
				matrix[y][x] = float64(gray.Y) / scale
				continue
			}
			r, g, b, _ := c.RGBA()
			matrix[y][x] = float64((r+g+b)/3) / scale
		}
	}
	return matrix, nil
}

// DrawCutOnImage draws the segment as a red line with a red dot at the start and a green
// dot at the end. The source image is not modified.
func DrawCutOnImage(sourceImage image.Image, seg Segment) *image.RGBA {
	bounds := sourceImage.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, sourceImage, bounds.Min, draw.Src)

	drawLine(result, seg.StartX, seg.StartY, seg.EndX, seg.EndY, red)
	drawDot(result, seg.StartX, seg.StartY, 3, red)
	drawDot(result, seg.EndX, seg.EndY, 3, color.RGBA{G: 255, A: 255})
	return result
}

// drawLine walks from (x1, y1) to (x2, y2) with Bresenham steps, one pixel wide.
func drawLine(img *image.RGBA, x1, y1, x2, y2 float64, col color.Color) {
	dx := math.Abs(x2 - x1)
	dy := math.Abs(y2 - y1)
	sx := -1.0
	if x1 < x2 {
		sx = 1.0
	}
	sy := -1.0
	if y1 < y2 {
		sy = 1.0
	}
	err := dx - dy

	for {
		setPixel(img, int(x1), int(y1), col)
		if math.Abs(x1-x2) < 1 && math.Abs(y1-y2) < 1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func drawDot(img *image.RGBA, cx, cy float64, radius int, col color.Color) {
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= radius*radius {
				setPixel(img, int(cx)+x, int(cy)+y, col)
			}
		}
	}
}

func setPixel(img *image.RGBA, x, y int, col color.Color) {
	if (image.Point{x, y}).In(img.Bounds()) {
		img.Set(x, y, col)
	}
}

// LoadImageFromFile loads any PNG image file.
func LoadImageFromFile(filename string) (img image.Image, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	img, err = png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}
	return img, nil
}

// SaveImageToFile saves an image to a PNG file.
func SaveImageToFile(filename string, img image.Image) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return png.Encode(f, img)
}
