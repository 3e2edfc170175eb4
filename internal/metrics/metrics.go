// Package metrics exposes Prometheus instrumentation for the signal
// pipeline and a small HTTP server for /metrics and /healthz.
package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Metrics holds all Prometheus metrics for the signal engine.
type Metrics struct {
	BarsProcessed   prometheus.Counter
	CandlesAccepted prometheus.Counter
	CandlesDeduped  prometheus.Counter

	SetupsDetected    *prometheus.CounterVec // labels: kind
	SignalsEmitted    *prometheus.CounterVec // labels: instrument, side
	SignalsSuppressed *prometheus.CounterVec // labels: reason

	OrdersBuilt    *prometheus.CounterVec // labels: symbol
	OrdersRejected *prometheus.CounterVec // labels: reason

	EvaluateDur prometheus.Histogram
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		BarsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sigengine_bars_processed_total",
			Help: "Bars fed into the pipeline",
		}),
		CandlesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sigengine_candles_accepted_total",
			Help: "Candle boundaries accepted for processing",
		}),
		CandlesDeduped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sigengine_candles_deduped_total",
			Help: "Candle boundaries suppressed as duplicates",
		}),
		SetupsDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigengine_setups_detected_total",
			Help: "Completed crossing setups found",
		}, []string{"kind"}),
		SignalsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigengine_signals_emitted_total",
			Help: "Signal candidates emitted",
		}, []string{"instrument", "side"}),
		SignalsSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigengine_signals_suppressed_total",
			Help: "Evaluations ending without a signal (market_closed, rate_limited, no_setup)",
		}, []string{"reason"}),
		OrdersBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigengine_orders_built_total",
			Help: "Orders passing all broker constraints",
		}, []string{"symbol"}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigengine_orders_rejected_total",
			Help: "Orders rejected by the constraint engine",
		}, []string{"reason"}),
		EvaluateDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sigengine_evaluate_duration_seconds",
			Help:    "Full pipeline evaluation latency per candle",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
	}

	prometheus.MustRegister(
		m.BarsProcessed,
		m.CandlesAccepted,
		m.CandlesDeduped,
		m.SetupsDetected,
		m.SignalsEmitted,
		m.SignalsSuppressed,
		m.OrdersBuilt,
		m.OrdersRejected,
		m.EvaluateDur,
	)

	return m
}

// HealthStatus represents the engine's health for the /healthz probe.
type HealthStatus struct {
	mu sync.RWMutex

	LastBarTime time.Time `json:"last_bar_time"`
	BarsSeen    int64     `json:"bars_seen"`
	StartedAt   time.Time `json:"started_at"`
}

// NewHealthStatus creates a health tracker.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

// Observe records a processed bar.
func (h *HealthStatus) Observe(barTime time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastBarTime = barTime
	h.BarsSeen++
}

// ServeHTTP writes the health snapshot as JSON.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	snapshot := struct {
		LastBarTime time.Time `json:"last_bar_time"`
		BarsSeen    int64     `json:"bars_seen"`
		StartedAt   time.Time `json:"started_at"`
	}{h.LastBarTime, h.BarsSeen, h.StartedAt}
	h.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&snapshot)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
	log  zerolog.Logger
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus, log zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		addr: addr,
		srv:  &http.Server{Addr: addr, Handler: mux},
		log:  log.With().Str("component", "metrics").Logger(),
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("metrics server listening")
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			s.log.Error().Err(err).Msg("metrics server error")
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
