package sif

import (
	"math"
	"testing"
)

func TestNewGrid(t *testing.T) {
	if _, err := NewGrid(2, 3, make([]float64, 6)); err != nil {
		t.Errorf("NewGrid(2, 3, 6 samples) returned error: %v", err)
	}
	if _, err := NewGrid(2, 3, make([]float64, 5)); err == nil {
		t.Error("NewGrid(2, 3, 5 samples) should have failed")
	}
}

func TestGridMean(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name       string
		values     []float64
		expected   float64
		expectNaN  bool
		validCount int
	}{
		{
			name:       "all valid",
			values:     []float64{0.4, 0.6, 0.5, 0.5},
			expected:   0.5,
			validCount: 4,
		},
		{
			name:       "no-data excluded from mean",
			values:     []float64{0.4, nan, 0.6, nan},
			expected:   0.5,
			validCount: 2,
		},
		{
			name:       "all no-data",
			values:     []float64{nan, nan, nan, nan},
			expectNaN:  true,
			validCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := NewGrid(2, 2, tt.values)
			if err != nil {
				t.Fatalf("NewGrid failed: %v", err)
			}

			mean := grid.Mean()
			if tt.expectNaN {
				if !math.IsNaN(mean) {
					t.Errorf("Mean() = %v, expected NaN", mean)
				}
			} else if math.Abs(mean-tt.expected) > 1e-9 {
				t.Errorf("Mean() = %v, expected %v", mean, tt.expected)
			}

			if got := grid.ValidCount(); got != tt.validCount {
				t.Errorf("ValidCount() = %d, expected %d", got, tt.validCount)
			}
		})
	}
}

func TestGridAt(t *testing.T) {
	grid, err := NewGrid(2, 3, []float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	if got := grid.At(0, 2); got != 3 {
		t.Errorf("At(0,2) = %v, expected 3", got)
	}
	if got := grid.At(1, 0); got != 4 {
		t.Errorf("At(1,0) = %v, expected 4", got)
	}
}

func TestSameShape(t *testing.T) {
	a, _ := NewGrid(10, 10, make([]float64, 100))
	b, _ := NewGrid(5, 5, make([]float64, 25))
	c, _ := NewGrid(10, 10, make([]float64, 100))

	if a.SameShape(b) {
		t.Error("10x10 and 5x5 reported same shape")
	}
	if !a.SameShape(c) {
		t.Error("two 10x10 grids reported different shapes")
	}
}
