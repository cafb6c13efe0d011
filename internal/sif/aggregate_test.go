package sif

import (
	"errors"
	"math"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/tlaw6500/cropsif/pkg/config"
)

// fakeLoader serves grids from memory, keyed by (year, doy).
type fakeLoader struct {
	grids map[rasterKey]*Grid
	err   error

	mu    sync.Mutex
	calls int
}

func (f *fakeLoader) Load(year, doy int) (*Grid, bool, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, false, f.err
	}
	grid, ok := f.grids[rasterKey{year: year, doy: doy}]
	return grid, ok, nil
}

func uniformGrid(t *testing.T, rows, cols int, value float64) *Grid {
	t.Helper()
	values := make([]float64, rows*cols)
	for i := range values {
		values[i] = value
	}
	grid, err := NewGrid(rows, cols, values)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	return grid
}

func TestCompareSnapshotsSelf(t *testing.T) {
	grid := uniformGrid(t, 2, 2, 0.5)

	anomaly, summary, err := CompareSnapshots(grid, grid)
	if err != nil {
		t.Fatalf("CompareSnapshots failed: %v", err)
	}
	for i, v := range anomaly.Values {
		if v != 0 {
			t.Errorf("anomaly[%d] = %v, expected 0", i, v)
		}
	}
	if !summary.Valid || summary.Percent != 0 {
		t.Errorf("summary = %+v, expected valid 0%%", summary)
	}
	if level := Classify(summary.Percent, config.DefaultThresholds); level != StressNormal {
		t.Errorf("Classify(0) = %v, expected NORMAL", level)
	}
}

func TestCompareSnapshotsShapeMismatch(t *testing.T) {
	a := uniformGrid(t, 10, 10, 0.5)
	b := uniformGrid(t, 5, 5, 0.5)

	_, _, err := CompareSnapshots(a, b)
	var mismatch *ShapeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ShapeMismatchError, got %v", err)
	}
}

func TestCompareSnapshotsDrought(t *testing.T) {
	a := uniformGrid(t, 2, 2, 0.5)
	b := uniformGrid(t, 2, 2, 1.0)

	anomaly, summary, err := CompareSnapshots(a, b)
	if err != nil {
		t.Fatalf("CompareSnapshots failed: %v", err)
	}
	for i, v := range anomaly.Values {
		if math.Abs(v-(-50.0)) > 1e-9 {
			t.Errorf("anomaly[%d] = %v, expected -50", i, v)
		}
	}
	if !summary.Valid || math.Abs(summary.Percent-(-50.0)) > 1e-9 {
		t.Errorf("summary percent = %v, expected -50", summary.Percent)
	}
	if level := Classify(summary.Percent, config.DefaultThresholds); level != StressSevere {
		t.Errorf("Classify(-50) = %v, expected SEVERE", level)
	}
}

func TestCompareSnapshotsNoDataPropagation(t *testing.T) {
	a := uniformGrid(t, 2, 2, 0.5)
	a.Values[1] = math.NaN()
	b := uniformGrid(t, 2, 2, 1.0)

	anomaly, summary, err := CompareSnapshots(a, b)
	if err != nil {
		t.Fatalf("CompareSnapshots failed: %v", err)
	}
	if !math.IsNaN(anomaly.Values[1]) {
		t.Errorf("anomaly at masked position = %v, expected no-data", anomaly.Values[1])
	}
	for _, i := range []int{0, 2, 3} {
		if math.Abs(anomaly.Values[i]-(-50.0)) > 1e-9 {
			t.Errorf("anomaly[%d] = %v, expected -50", i, anomaly.Values[i])
		}
	}
	// The masked sample is excluded from a's grid-level mean, so the
	// summary is still exactly -50.
	if math.Abs(summary.Percent-(-50.0)) > 1e-9 {
		t.Errorf("summary percent = %v, expected -50", summary.Percent)
	}
}

func TestCompareSnapshotsAllInvalidBaseline(t *testing.T) {
	a := uniformGrid(t, 2, 2, 0.5)
	b := uniformGrid(t, 2, 2, math.NaN())

	_, summary, err := CompareSnapshots(a, b)
	if err != nil {
		t.Fatalf("CompareSnapshots failed: %v", err)
	}
	if summary.Valid {
		t.Error("summary against all-invalid baseline should not be valid")
	}
	if !math.IsNaN(summary.Percent) {
		t.Errorf("summary percent = %v, expected NaN", summary.Percent)
	}
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		percent  float64
		expected StressLevel
	}{
		{-50.0, StressSevere},
		{-25.001, StressSevere},
		{-25.0, StressModerate}, // cutoffs are strict less-than
		{-24.999, StressModerate},
		{-15.0, StressMild},
		{-5.001, StressMild},
		{-5.0, StressNormal},
		{0.0, StressNormal},
		{12.5, StressNormal},
	}

	for _, tt := range tests {
		if got := Classify(tt.percent, config.DefaultThresholds); got != tt.expected {
			t.Errorf("Classify(%v) = %v, expected %v", tt.percent, got, tt.expected)
		}
	}
}

func TestStressLevelString(t *testing.T) {
	if StressSevere.String() != "SEVERE" || StressNormal.String() != "NORMAL" {
		t.Errorf("unexpected level names: %v %v", StressSevere, StressNormal)
	}
}

func TestBuildTimeSeries(t *testing.T) {
	loader := &fakeLoader{grids: map[rasterKey]*Grid{
		{year: 2012, doy: 177}: uniformGrid(t, 2, 2, 0.4),
		{year: 2012, doy: 193}: uniformGrid(t, 2, 2, 0.6),
		// doy 185 absent
	}}
	agg := NewAggregator(loader, zap.NewNop().Sugar())

	doys := []int{177, 185, 193}
	series, err := agg.BuildTimeSeries(2012, doys)
	if err != nil {
		t.Fatalf("BuildTimeSeries failed: %v", err)
	}

	if len(series) != len(doys) {
		t.Fatalf("series length = %d, expected %d", len(series), len(doys))
	}
	for i, doy := range doys {
		if series[i].DayOfYear != doy {
			t.Errorf("series[%d].DayOfYear = %d, expected %d (order must be preserved)",
				i, series[i].DayOfYear, doy)
		}
	}

	if !series[0].Valid || math.Abs(series[0].Mean-0.4) > 1e-9 {
		t.Errorf("series[0] = %+v, expected valid mean 0.4", series[0])
	}
	if series[1].Valid || !math.IsNaN(series[1].Mean) {
		t.Errorf("series[1] = %+v, expected missing point", series[1])
	}
	if !series[2].Valid || math.Abs(series[2].Mean-0.6) > 1e-9 {
		t.Errorf("series[2] = %+v, expected valid mean 0.6", series[2])
	}
}

func TestBuildTimeSeriesAllInvalidGrid(t *testing.T) {
	loader := &fakeLoader{grids: map[rasterKey]*Grid{
		{year: 2012, doy: 177}: uniformGrid(t, 2, 2, math.NaN()),
	}}
	agg := NewAggregator(loader, zap.NewNop().Sugar())

	series, err := agg.BuildTimeSeries(2012, []int{177})
	if err != nil {
		t.Fatalf("BuildTimeSeries failed: %v", err)
	}
	if series[0].Valid {
		t.Error("point over an all-invalid grid should not be valid")
	}
}

func TestBuildTimeSeriesPropagatesHardFailure(t *testing.T) {
	loader := &fakeLoader{err: errors.New("disk on fire")}
	agg := NewAggregator(loader, zap.NewNop().Sugar())

	if _, err := agg.BuildTimeSeries(2012, []int{177}); err == nil {
		t.Fatal("expected load failure to propagate")
	}
}
