// Package sif implements the SIF anomaly-analysis pipeline: loading scaled,
// validity-masked fluorescence grids from the raster archive and reducing
// them to time series, anomaly maps, and stress classifications.
package sif

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Grid is one spatial snapshot of SIF samples over the study area.
// Samples are stored row-major; NaN marks a no-data sample, which every
// statistic on the grid excludes. A Grid is never mutated after creation.
type Grid struct {
	Rows   int
	Cols   int
	Values []float64
}

// NewGrid builds a grid from row-major sample data.
func NewGrid(rows, cols int, values []float64) (*Grid, error) {
	if len(values) != rows*cols {
		return nil, fmt.Errorf("grid dimensions %dx%d require %d samples, got %d",
			rows, cols, rows*cols, len(values))
	}
	return &Grid{Rows: rows, Cols: cols, Values: values}, nil
}

// At returns the sample at row r, column c.
func (g *Grid) At(r, c int) float64 {
	return g.Values[r*g.Cols+c]
}

// SameShape reports whether two grids have identical spatial dimensions.
func (g *Grid) SameShape(o *Grid) bool {
	return g.Rows == o.Rows && g.Cols == o.Cols
}

// ValidCount returns the number of samples carrying data.
func (g *Grid) ValidCount() int {
	n := 0
	for _, v := range g.Values {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Mean returns the arithmetic mean over all valid samples, or NaN when the
// grid holds no valid samples at all.
func (g *Grid) Mean() float64 {
	valid := make([]float64, 0, len(g.Values))
	for _, v := range g.Values {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return math.NaN()
	}
	return stat.Mean(valid, nil)
}
