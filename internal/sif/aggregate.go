package sif

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Point is one entry of a spatial-mean time series. Valid is false when the
// source raster was absent or held no valid samples; Mean is NaN in that
// case and the point should be rendered as a gap.
type Point struct {
	DayOfYear int
	Mean      float64
	Valid     bool
}

// TimeSeries is an ordered sequence of spatial means for one year, one
// entry per requested day-of-year.
type TimeSeries []Point

// ShapeMismatchError indicates a comparison between grids whose spatial
// dimensions disagree. This is a caller error, not recoverable inside the
// pipeline.
type ShapeMismatchError struct {
	ARows, ACols int
	BRows, BCols int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("grid shape mismatch: %dx%d vs %dx%d",
		e.ARows, e.ACols, e.BRows, e.BCols)
}

// AnomalySummary is the scalar percent difference between two grid-level
// means. Valid is false when either side had no valid samples, in which
// case Percent is NaN rather than a silent Inf.
type AnomalySummary struct {
	Percent float64
	Valid   bool
}

// Aggregator reduces loaded grids to time series and pairwise comparisons.
type Aggregator struct {
	loader GridLoader
	logger *zap.SugaredLogger
}

// NewAggregator creates an Aggregator on top of a grid loader.
func NewAggregator(loader GridLoader, logger *zap.SugaredLogger) *Aggregator {
	return &Aggregator{
		loader: loader,
		logger: logger,
	}
}

// BuildTimeSeries loads each requested day-of-year for a year, in order,
// and reduces every grid to its masked spatial mean. Absent files and
// all-invalid grids produce invalid points; the output always has exactly
// one point per requested day. A hard load failure (unreadable file)
// aborts the whole series.
func (a *Aggregator) BuildTimeSeries(year int, doys []int) (TimeSeries, error) {
	series := make(TimeSeries, 0, len(doys))
	for _, doy := range doys {
		grid, found, err := a.loader.Load(year, doy)
		if err != nil {
			return nil, fmt.Errorf("time series for %d aborted at doy %d: %w", year, doy, err)
		}
		if !found {
			series = append(series, Point{DayOfYear: doy, Mean: math.NaN()})
			continue
		}
		mean := grid.Mean()
		series = append(series, Point{
			DayOfYear: doy,
			Mean:      mean,
			Valid:     !math.IsNaN(mean),
		})
	}
	return series, nil
}

// Snapshot loads a single grid, exposing the loader's Absent semantics.
func (a *Aggregator) Snapshot(year, doy int) (*Grid, bool, error) {
	return a.loader.Load(year, doy)
}

// CompareSnapshots computes the sample-wise percent-anomaly map of grid a
// against baseline grid b, plus the summary percent between the two
// grid-level means. The grids must have identical shapes.
//
// Per-pixel anomalies are (a-b)/b*100 wherever both samples are valid;
// any other sample is no-data. The summary uses grid-level means, not an
// average of per-pixel anomalies (the two are numerically different).
func CompareSnapshots(a, b *Grid) (*Grid, AnomalySummary, error) {
	if !a.SameShape(b) {
		return nil, AnomalySummary{}, &ShapeMismatchError{
			ARows: a.Rows, ACols: a.Cols,
			BRows: b.Rows, BCols: b.Cols,
		}
	}

	values := make([]float64, len(a.Values))
	for i := range values {
		av, bv := a.Values[i], b.Values[i]
		if math.IsNaN(av) || math.IsNaN(bv) {
			values[i] = math.NaN()
			continue
		}
		values[i] = (av - bv) / bv * 100
	}
	anomaly := &Grid{Rows: a.Rows, Cols: a.Cols, Values: values}

	meanA, meanB := a.Mean(), b.Mean()
	summary := AnomalySummary{Percent: math.NaN()}
	if !math.IsNaN(meanA) && !math.IsNaN(meanB) {
		summary.Percent = (meanA - meanB) / meanB * 100
		summary.Valid = true
	}

	return anomaly, summary, nil
}
