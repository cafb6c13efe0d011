package sif

import (
	"math"

	"github.com/tlaw6500/cropsif/pkg/config"
)

// StressLevel is the categorical crop-stress severity derived from a
// summary anomaly percent.
type StressLevel int

const (
	StressNormal StressLevel = iota
	StressMild
	StressModerate
	StressSevere
)

func (s StressLevel) String() string {
	switch s {
	case StressSevere:
		return "SEVERE"
	case StressModerate:
		return "MODERATE"
	case StressMild:
		return "MILD"
	default:
		return "NORMAL"
	}
}

// Classify maps a summary anomaly percent onto a stress level. Cutoffs are
// evaluated most-severe first with strict less-than comparisons, so an
// anomaly sitting exactly on a cutoff falls into the less severe bucket.
// A NaN anomaly classifies as normal; callers should check summary validity
// before relying on the level.
func Classify(percent float64, t config.StressThresholds) StressLevel {
	switch {
	case math.IsNaN(percent):
		return StressNormal
	case percent < t.Severe:
		return StressSevere
	case percent < t.Moderate:
		return StressModerate
	case percent < t.Mild:
		return StressMild
	default:
		return StressNormal
	}
}
