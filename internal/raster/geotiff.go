// Package raster reads single-band raster files from local storage.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"golang.org/x/image/tiff"
)

// FileFormatError indicates a raster file that exists but cannot be decoded.
// There is no recovery path: re-reading a corrupt file will not self-heal, so
// callers should surface this to the boundary rather than retry.
type FileFormatError struct {
	Path string
	Err  error
}

func (e *FileFormatError) Error() string {
	return fmt.Sprintf("unreadable raster file %s: %v", e.Path, e.Err)
}

func (e *FileFormatError) Unwrap() error {
	return e.Err
}

// ReadBand1 reads the first band of a TIFF raster into a row-major slice of
// raw (unscaled) samples, returning the sample data and the grid dimensions.
// The file must exist; missing-file handling belongs to the caller.
func ReadBand1(path string) ([]float64, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		return nil, 0, 0, &FileFormatError{Path: path, Err: err}
	}

	bounds := img.Bounds()
	rows := bounds.Dy()
	cols := bounds.Dx()
	samples := make([]float64, 0, rows*cols)

	switch px := img.(type) {
	case *image.Gray16:
		// Fast path for the usual 16-bit single-band encoding. Pix is
		// big-endian per pixel.
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			i := px.PixOffset(bounds.Min.X, y)
			for x := 0; x < cols; x++ {
				raw := uint16(px.Pix[i])<<8 | uint16(px.Pix[i+1])
				samples = append(samples, float64(raw))
				i += 2
			}
		}
	case *image.Gray:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			i := px.PixOffset(bounds.Min.X, y)
			for x := 0; x < cols; x++ {
				samples = append(samples, float64(px.Pix[i]))
				i++
			}
		}
	default:
		// Fall back on a grayscale conversion for other pixel layouts.
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
				samples = append(samples, float64(g.Y))
			}
		}
	}

	return samples, rows, cols, nil
}
