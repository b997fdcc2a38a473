package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/coverline/pkg/config"
	"github.com/wonny/coverline/pkg/logger"
)

// ⭐ SSOT: every Prometheus collector is declared here
var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coverline_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	lifecycleEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coverline_lifecycle_events_total",
			Help: "Quote and policy lifecycle transitions by product and outcome",
		},
		[]string{"product", "event", "outcome"},
	)
	quotedPremium = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coverline_quoted_total_premium_dollars",
			Help:    "Total premium of created quotes",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10),
		},
		[]string{"product"},
	)
)

// ObserveRequest records one HTTP request
func ObserveRequest(method, route string, status int, duration time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordLifecycle counts a lifecycle transition (e.g. product=auto event=renew outcome=renewed)
func RecordLifecycle(product, event, outcome string) {
	lifecycleEvents.WithLabelValues(product, event, outcome).Inc()
}

// ObserveQuotedPremium records a quote's total premium expressed in cents
func ObserveQuotedPremium(product string, cents int64) {
	quotedPremium.WithLabelValues(product).Observe(float64(cents) / 100)
}

// Server exposes /metrics on its own port
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
}

// NewServer creates the metrics endpoint server
func NewServer(cfg *config.Config, log *logger.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.MetricsPort,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: log,
	}
}

// Start serves metrics until Shutdown is called
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting metrics server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}
	return nil
}

// Shutdown stops the metrics server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
