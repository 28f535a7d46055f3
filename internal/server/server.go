// Package server exposes the leaderboard over a read-only JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mwiater/nvsbench/internal/images"
	"github.com/mwiater/nvsbench/internal/leaderboard"
	"github.com/mwiater/nvsbench/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// Server serves one immutable leaderboard snapshot.
type Server struct {
	board    *leaderboard.Board
	provider images.Provider
	registry *prometheus.Registry
	metrics  *metrics
	engine   *gin.Engine
}

type metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	imageFailures prometheus.Counter
	records       prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nvsbench",
			Name:      "http_requests_total",
			Help:      "API requests by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nvsbench",
			Name:      "http_request_duration_seconds",
			Help:      "API request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		imageFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nvsbench",
			Name:      "image_failures_total",
			Help:      "Image comparison lookups that failed.",
		}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nvsbench",
			Name:      "records",
			Help:      "Records in the served snapshot.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.imageFailures, m.records)
	return m
}

// New builds a server over board. provider may be nil, in which case
// /api/images always fails.
func New(board *leaderboard.Board, provider images.Provider) *Server {
	reg := prometheus.NewRegistry()
	s := &Server{
		board:    board,
		provider: provider,
		registry: reg,
		metrics:  newMetrics(reg),
	}
	s.metrics.records.Set(float64(board.Len()))
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe())

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.GET("/datasets", s.handleDatasets)
	api.GET("/methods", s.handleMethods)
	api.GET("/records", s.handleRecords)
	api.GET("/leaderboard", s.handleLeaderboard)
	api.GET("/plot", s.handlePlot)
	api.GET("/images", s.handleImages)
	return r
}

// observe records request metrics and logs each request.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		code := strconv.Itoa(c.Writer.Status())
		elapsed := time.Since(start)
		s.metrics.requests.WithLabelValues(route, code).Inc()
		s.metrics.duration.WithLabelValues(route).Observe(elapsed.Seconds())
		logging.LogEvent("[HTTP] %s %s -> %s (%s)", c.Request.Method, c.Request.URL.RequestURI(), code, elapsed)
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.LogEvent("[HTTP] listening on %s (%d records)", addr, s.board.Len())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
