package sif

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/tlaw6500/cropsif/internal/raster"
	"github.com/tlaw6500/cropsif/pkg/config"
	"go.uber.org/zap"
)

// GridLoader loads one snapshot for a (year, day-of-year) key. The boolean
// result is false when no source file exists for the key; that is a routine
// outcome, not an error. Implementations must be safe for concurrent use.
type GridLoader interface {
	Load(year, doy int) (*Grid, bool, error)
}

// Loader reads raw rasters from the archive, applies the dataset scale
// factor, and masks samples outside the physical validity bounds.
// Load is a pure function of its key and the on-disk content, so results
// are safe to memoize.
type Loader struct {
	dataset config.DatasetData
	logger  *zap.SugaredLogger
}

// NewLoader creates a Loader for the configured raster archive.
func NewLoader(dataset config.DatasetData, logger *zap.SugaredLogger) *Loader {
	return &Loader{
		dataset: dataset,
		logger:  logger,
	}
}

// FilePath returns the deterministic archive path for a key, e.g.
// <directory>/GOSIF_2012201.tif for year 2012, day 201.
func (l *Loader) FilePath(year, doy int) string {
	name := fmt.Sprintf("%s_%d%03d%s", l.dataset.Prefix, year, doy, l.dataset.Extension)
	return filepath.Join(l.dataset.Directory, name)
}

// Load reads the snapshot for (year, doy). A missing file returns
// (nil, false, nil). An existing but undecodable file returns a
// raster.FileFormatError.
func (l *Loader) Load(year, doy int) (*Grid, bool, error) {
	path := l.FilePath(year, doy)

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Debugf("no raster for year=%d doy=%d (%s)", year, doy, path)
			return nil, false, nil
		}
		return nil, false, err
	}

	raw, rows, cols, err := raster.ReadBand1(path)
	if err != nil {
		return nil, false, err
	}

	values := make([]float64, len(raw))
	for i, v := range raw {
		scaled := v * l.dataset.ScaleFactor
		// Domain sanity filter: SIF is a bounded physical quantity, so
		// anything at or outside the bounds is no-data. Both bounds are
		// exclusive.
		if scaled > l.dataset.ValidMin && scaled < l.dataset.ValidMax {
			values[i] = scaled
		} else {
			values[i] = math.NaN()
		}
	}

	grid, err := NewGrid(rows, cols, values)
	if err != nil {
		return nil, false, err
	}

	l.logger.Debugf("loaded raster year=%d doy=%d: %dx%d, %d valid samples",
		year, doy, rows, cols, grid.ValidCount())
	return grid, true, nil
}
