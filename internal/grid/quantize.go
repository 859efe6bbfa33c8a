package grid

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"

	// Formats beyond what imaging registers.
	_ "golang.org/x/image/webp"
)

// ErrImageDecode is returned when input bytes are not a supported raster image.
var ErrImageDecode = errors.New("decode image")

// Options controls how luminance maps onto levels.
type Options struct {
	// InvertLuminance quantizes 255-v instead of v, so dark pixels become
	// the busiest days.
	InvertLuminance bool
}

// LevelFor maps a luminance value onto [0, Levels-1] linearly.
func LevelFor(v uint8) uint8 {
	return uint8(int(v) * Levels / 256)
}

// Quantize decodes data and reduces it to a Grid.
func Quantize(data []byte, opts Options) (Grid, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return Grid{}, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return QuantizeImage(img, opts), nil
}

// Load reads the image at path and quantizes it.
func Load(path string, opts Options) (Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Grid{}, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return Quantize(data, opts)
}

// QuantizeImage converts img to grayscale, resamples it to Weeks x DaysPerWeek
// with a Lanczos filter and maps every pixel to a level.
func QuantizeImage(img image.Image, opts Options) Grid {
	gray := imaging.Grayscale(img)
	if opts.InvertLuminance {
		gray = imaging.Invert(gray)
	}
	small := imaging.Resize(gray, Weeks, DaysPerWeek, imaging.Lanczos)

	var g Grid
	if small.Rect.Dx() != Weeks || small.Rect.Dy() != DaysPerWeek {
		// Empty source.
		return g
	}
	for y := range DaysPerWeek {
		for x := range Weeks {
			// Grayscale output has R == G == B.
			v := small.Pix[y*small.Stride+x*4]
			g[y][x] = LevelFor(v)
		}
	}
	return g
}
