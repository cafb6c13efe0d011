package raster

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/tiff"
)

func TestReadBand1Gray16(t *testing.T) {
	raw := []uint16{0, 5000, 60000, 65535, 1, 9999}
	img := image.NewGray16(image.Rect(0, 0, 3, 2))
	for i, v := range raw {
		img.SetGray16(i%3, i/3, color.Gray16{Y: v})
	}

	path := filepath.Join(t.TempDir(), "band.tif")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating test file: %v", err)
	}
	if err := tiff.Encode(f, img, nil); err != nil {
		t.Fatalf("encoding test file: %v", err)
	}
	f.Close()

	samples, rows, cols, err := ReadBand1(path)
	if err != nil {
		t.Fatalf("ReadBand1 failed: %v", err)
	}
	if rows != 2 || cols != 3 {
		t.Fatalf("dimensions = %dx%d, expected 2x3", rows, cols)
	}
	for i, v := range raw {
		if samples[i] != float64(v) {
			t.Errorf("samples[%d] = %v, expected %v", i, samples[i], float64(v))
		}
	}
}

func TestReadBand1Missing(t *testing.T) {
	_, _, _, err := ReadBand1(filepath.Join(t.TempDir(), "nope.tif"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	var formatErr *FileFormatError
	if errors.As(err, &formatErr) {
		t.Fatal("missing file must not be reported as a format error")
	}
}

func TestReadBand1Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.tif")
	if err := os.WriteFile(path, []byte{0xde, 0xad, 0xbe, 0xef}, 0o644); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	_, _, _, err := ReadBand1(path)
	var formatErr *FileFormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FileFormatError, got %v", err)
	}
	if formatErr.Path != path {
		t.Errorf("error path = %q, expected %q", formatErr.Path, path)
	}
}
