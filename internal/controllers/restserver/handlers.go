package restserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tlaw6500/cropsif/internal/raster"
	"github.com/tlaw6500/cropsif/internal/sif"
	"github.com/tlaw6500/cropsif/pkg/responseformat"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, req *http.Request, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

// yearParam parses and validates the year query parameter against the two
// study years
func (h *Handlers) yearParam(req *http.Request) (int, error) {
	raw := req.URL.Query().Get("year")
	if raw == "" {
		return 0, fmt.Errorf("year parameter is required")
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid year: %q", raw)
	}
	return year, h.validateYear(year)
}

func (h *Handlers) validateYear(year int) error {
	study := h.controller.study
	if year != study.ComparisonYear && year != study.BaselineYear {
		return fmt.Errorf("year %d is not part of the study (%d or %d)",
			year, study.ComparisonYear, study.BaselineYear)
	}
	return nil
}

// doyParam parses and validates the doy query parameter against the
// configured observation dates
func (h *Handlers) doyParam(req *http.Request) (int, error) {
	raw := req.URL.Query().Get("doy")
	if raw == "" {
		return 0, fmt.Errorf("doy parameter is required")
	}
	doy, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid doy: %q", raw)
	}
	return doy, h.validateDOY(doy)
}

func (h *Handlers) validateDOY(doy int) error {
	if !h.controller.studyDays[doy] {
		return fmt.Errorf("doy %d is not an observation date for this study", doy)
	}
	return nil
}

// loadGrid fetches a snapshot and translates pipeline outcomes to HTTP:
// absent data is a 404, an unreadable file is a 500 with a readable
// message. Returns nil when a response has already been written.
func (h *Handlers) loadGrid(w http.ResponseWriter, req *http.Request, year, doy int) *sif.Grid {
	grid, found, err := h.controller.aggregator.Snapshot(year, doy)
	if err != nil {
		var formatErr *raster.FileFormatError
		if errors.As(err, &formatErr) {
			h.controller.logger.Errorf("raster decode failed: %v", err)
			h.writeError(w, req, http.StatusInternalServerError,
				fmt.Sprintf("raster file for %d doy %d is unreadable", year, doy))
			return nil
		}
		h.controller.logger.Errorf("raster load failed: %v", err)
		h.writeError(w, req, http.StatusInternalServerError, "raster load failed")
		return nil
	}
	if !found {
		h.writeError(w, req, http.StatusNotFound,
			fmt.Sprintf("no data for year %d doy %d", year, doy))
		return nil
	}
	return grid
}

// GetSnapshot handles requests for a single scaled, masked SIF grid
func (h *Handlers) GetSnapshot(w http.ResponseWriter, req *http.Request) {
	year, err := h.yearParam(req)
	if err != nil {
		h.writeError(w, req, http.StatusBadRequest, err.Error())
		return
	}
	doy, err := h.doyParam(req)
	if err != nil {
		h.writeError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	grid := h.loadGrid(w, req, year, doy)
	if grid == nil {
		return
	}

	h.formatter.WriteResponse(w, req, snapshotResponse{
		Year:       year,
		DayOfYear:  doy,
		Label:      h.controller.study.DayLabels[doy],
		Grid:       gridToPayload(grid),
		Mean:       nullable(grid.Mean()),
		ValidCount: grid.ValidCount(),
	}, nil)
}

// GetTimeSeries handles requests for the per-year series of spatial means
func (h *Handlers) GetTimeSeries(w http.ResponseWriter, req *http.Request) {
	year, err := h.yearParam(req)
	if err != nil {
		h.writeError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	series, err := h.controller.aggregator.BuildTimeSeries(year, h.controller.study.DaysOfYear)
	if err != nil {
		h.controller.logger.Errorf("time series failed: %v", err)
		h.writeError(w, req, http.StatusInternalServerError, "time series computation failed")
		return
	}

	points := make([]timeSeriesPoint, len(series))
	for i, p := range series {
		points[i] = timeSeriesPoint{
			DayOfYear: p.DayOfYear,
			Label:     h.controller.study.DayLabels[p.DayOfYear],
			Mean:      nullable(p.Mean),
		}
	}

	h.formatter.WriteResponse(w, req, timeSeriesResponse{Year: year, Points: points}, nil)
}

// GetAnomaly handles requests for the comparison-vs-baseline anomaly map
// and its summary classification
func (h *Handlers) GetAnomaly(w http.ResponseWriter, req *http.Request) {
	doy, err := h.doyParam(req)
	if err != nil {
		h.writeError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	study := h.controller.study
	comparison := h.loadGrid(w, req, study.ComparisonYear, doy)
	if comparison == nil {
		return
	}
	baseline := h.loadGrid(w, req, study.BaselineYear, doy)
	if baseline == nil {
		return
	}

	anomaly, summary, err := sif.CompareSnapshots(comparison, baseline)
	if err != nil {
		h.controller.logger.Errorf("snapshot comparison failed: %v", err)
		h.writeError(w, req, http.StatusInternalServerError, err.Error())
		return
	}

	level := sif.Classify(summary.Percent, study.Thresholds)

	h.formatter.WriteResponse(w, req, anomalyResponse{
		DayOfYear:      doy,
		Label:          study.DayLabels[doy],
		ComparisonYear: study.ComparisonYear,
		BaselineYear:   study.BaselineYear,
		Map:            gridToPayload(anomaly),
		ComparisonMean: nullable(comparison.Mean()),
		BaselineMean:   nullable(baseline.Mean()),
		SummaryPercent: nullable(summary.Percent),
		StressLevel:    level.String(),
	}, nil)
}

// GetStats handles requests for the per-date statistics table covering the
// whole observation window
func (h *Handlers) GetStats(w http.ResponseWriter, req *http.Request) {
	study := h.controller.study

	comparisonSeries, err := h.controller.aggregator.BuildTimeSeries(study.ComparisonYear, study.DaysOfYear)
	if err != nil {
		h.controller.logger.Errorf("stats failed: %v", err)
		h.writeError(w, req, http.StatusInternalServerError, "statistics computation failed")
		return
	}
	baselineSeries, err := h.controller.aggregator.BuildTimeSeries(study.BaselineYear, study.DaysOfYear)
	if err != nil {
		h.controller.logger.Errorf("stats failed: %v", err)
		h.writeError(w, req, http.StatusInternalServerError, "statistics computation failed")
		return
	}

	rows := make([]statsRow, len(study.DaysOfYear))
	for i, doy := range study.DaysOfYear {
		row := statsRow{
			DayOfYear:      doy,
			Label:          study.DayLabels[doy],
			ComparisonMean: nullable(comparisonSeries[i].Mean),
			BaselineMean:   nullable(baselineSeries[i].Mean),
		}
		if comparisonSeries[i].Valid && baselineSeries[i].Valid {
			pct := (comparisonSeries[i].Mean - baselineSeries[i].Mean) / baselineSeries[i].Mean * 100
			row.AnomalyPercent = nullable(pct)
		}
		rows[i] = row
	}

	h.formatter.WriteResponse(w, req, statsResponse{
		ComparisonYear: study.ComparisonYear,
		BaselineYear:   study.BaselineYear,
		Rows:           rows,
	}, nil)
}

// pathInt extracts a numeric path variable; the route patterns guarantee
// the value parses
func pathInt(req *http.Request, name string) int {
	v, _ := strconv.Atoi(mux.Vars(req)[name])
	return v
}

// GetSnapshotPNG renders one snapshot as a green-ramp PNG over the fixed
// display range
func (h *Handlers) GetSnapshotPNG(w http.ResponseWriter, req *http.Request) {
	year := pathInt(req, "year")
	doy := pathInt(req, "doy")
	if err := h.validateYear(year); err != nil {
		h.writeError(w, req, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validateDOY(doy); err != nil {
		h.writeError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	grid := h.loadGrid(w, req, year, doy)
	if grid == nil {
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, renderSnapshot(grid, snapshotDisplayMin, snapshotDisplayMax)); err != nil {
		h.controller.logger.Errorf("PNG encode failed: %v", err)
	}
}

// GetAnomalyPNG renders the anomaly map as a diverging red-to-green PNG
func (h *Handlers) GetAnomalyPNG(w http.ResponseWriter, req *http.Request) {
	doy := pathInt(req, "doy")
	if err := h.validateDOY(doy); err != nil {
		h.writeError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	study := h.controller.study
	comparison := h.loadGrid(w, req, study.ComparisonYear, doy)
	if comparison == nil {
		return
	}
	baseline := h.loadGrid(w, req, study.BaselineYear, doy)
	if baseline == nil {
		return
	}

	anomaly, _, err := sif.CompareSnapshots(comparison, baseline)
	if err != nil {
		h.controller.logger.Errorf("snapshot comparison failed: %v", err)
		h.writeError(w, req, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, renderAnomaly(anomaly, anomalyDisplayLimit)); err != nil {
		h.controller.logger.Errorf("PNG encode failed: %v", err)
	}
}
