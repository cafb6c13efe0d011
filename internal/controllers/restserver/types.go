package restserver

import (
	"math"

	"github.com/tlaw6500/cropsif/internal/sif"
)

// gridPayload carries a grid over the wire. No-data samples are encoded as
// JSON nulls, since NaN is not representable in JSON.
type gridPayload struct {
	Rows   int        `json:"rows"`
	Cols   int        `json:"cols"`
	Values []*float64 `json:"values"`
}

type snapshotResponse struct {
	Year       int         `json:"year"`
	DayOfYear  int         `json:"day_of_year"`
	Label      string      `json:"label,omitempty"`
	Grid       gridPayload `json:"grid"`
	Mean       *float64    `json:"mean"`
	ValidCount int         `json:"valid_count"`
}

type timeSeriesPoint struct {
	DayOfYear int      `json:"day_of_year"`
	Label     string   `json:"label,omitempty"`
	Mean      *float64 `json:"mean"`
}

type timeSeriesResponse struct {
	Year   int               `json:"year"`
	Points []timeSeriesPoint `json:"points"`
}

type anomalyResponse struct {
	DayOfYear      int         `json:"day_of_year"`
	Label          string      `json:"label,omitempty"`
	ComparisonYear int         `json:"comparison_year"`
	BaselineYear   int         `json:"baseline_year"`
	Map            gridPayload `json:"map"`
	ComparisonMean *float64    `json:"comparison_mean"`
	BaselineMean   *float64    `json:"baseline_mean"`
	SummaryPercent *float64    `json:"summary_percent"`
	StressLevel    string      `json:"stress_level"`
}

type statsRow struct {
	DayOfYear      int      `json:"day_of_year"`
	Label          string   `json:"label,omitempty"`
	BaselineMean   *float64 `json:"baseline_mean"`
	ComparisonMean *float64 `json:"comparison_mean"`
	AnomalyPercent *float64 `json:"anomaly_percent"`
}

type statsResponse struct {
	ComparisonYear int        `json:"comparison_year"`
	BaselineYear   int        `json:"baseline_year"`
	Rows           []statsRow `json:"rows"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// nullable converts a possibly-NaN scalar to a JSON-encodable pointer.
func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// gridToPayload converts a grid for the wire, mapping NaN samples to null.
func gridToPayload(g *sif.Grid) gridPayload {
	values := make([]*float64, len(g.Values))
	for i := range g.Values {
		values[i] = nullable(g.Values[i])
	}
	return gridPayload{Rows: g.Rows, Cols: g.Cols, Values: values}
}
