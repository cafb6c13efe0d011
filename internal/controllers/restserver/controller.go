// Package restserver serves the CropSIF dashboard: an embedded web page
// plus the JSON/PNG API it draws from.
package restserver

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tlaw6500/cropsif/internal/log"
	"github.com/tlaw6500/cropsif/internal/observability"
	"github.com/tlaw6500/cropsif/internal/sif"
	"github.com/tlaw6500/cropsif/pkg/config"
)

var (
	//go:embed all:assets
	content embed.FS
)

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	study      config.StudyData
	Server     http.Server
	FS         *fs.FS
	aggregator *sif.Aggregator
	metrics    *observability.Metrics
	logger     *zap.SugaredLogger
	handlers   *Handlers
	studyDays  map[int]bool
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, rc config.RESTServerData, aggregator *sif.Aggregator, metrics *observability.Metrics, logger *zap.SugaredLogger) (*Controller, error) {
	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		aggregator: aggregator,
		metrics:    metrics,
		logger:     logger,
	}

	study, err := configProvider.GetStudy()
	if err != nil {
		return nil, fmt.Errorf("error loading study configuration: %v", err)
	}
	ctrl.study = *study

	if len(ctrl.study.DaysOfYear) == 0 {
		return nil, fmt.Errorf("no observation dates configured - at least one day-of-year is required")
	}
	ctrl.studyDays = make(map[int]bool, len(ctrl.study.DaysOfYear))
	for _, doy := range ctrl.study.DaysOfYear {
		ctrl.studyDays[doy] = true
	}

	// If a DefaultListenAddr was not provided, listen on all interfaces
	if ctrl.restConfig.DefaultListenAddr == "" {
		logger.Info("rest.default_listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		ctrl.restConfig.DefaultListenAddr = "0.0.0.0"
	}

	// Set default HTTP port if not specified
	if ctrl.restConfig.HTTPPort == 0 {
		logger.Info("rest.http_port not provided; defaulting to 8080")
		ctrl.restConfig.HTTPPort = 8080
	}

	// Create handlers
	ctrl.handlers = NewHandlers(ctrl)

	// Set up embedded filesystem for assets
	assetsFS, _ := fs.Sub(fs.FS(content), "assets")
	ctrl.FS = &assetsFS

	// Set up router
	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", ctrl.restConfig.DefaultListenAddr, ctrl.restConfig.HTTPPort)
	ctrl.Server.Handler = router

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.restConfig.TLSCertPath != "" && c.restConfig.TLSKeyPath != "" {
			if err := c.Server.ListenAndServeTLS(c.restConfig.TLSCertPath, c.restConfig.TLSKeyPath); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	// Request ID, access logging, and latency observation for every route
	router.Use(c.requestMiddleware)

	// JSON API endpoints
	router.HandleFunc("/api/snapshot", c.handlers.GetSnapshot)
	router.HandleFunc("/api/timeseries", c.handlers.GetTimeSeries)
	router.HandleFunc("/api/anomaly", c.handlers.GetAnomaly)
	router.HandleFunc("/api/stats", c.handlers.GetStats)

	// Rendered map endpoints
	router.HandleFunc("/api/map/{year:[0-9]+}/{doy:[0-9]+}.png", c.handlers.GetSnapshotPNG)
	router.HandleFunc("/api/anomaly/{doy:[0-9]+}.png", c.handlers.GetAnomalyPNG)

	router.Handle("/metrics", promhttp.Handler())

	// Static file serving (index.html and friends)
	router.PathPrefix("/").Handler(http.FileServer(http.FS(*c.FS)))

	return router
}

// statusRecorder captures the response status for access logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestMiddleware tags each request with an ID, logs it, and feeds the
// duration histogram keyed by route template
func (c *Controller) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(recorder, r)
		duration := time.Since(start)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		c.metrics.HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
		c.logger.Debugw("request served",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration_ms", duration.Milliseconds(),
			"remote_addr", r.RemoteAddr,
		)
	})
}
