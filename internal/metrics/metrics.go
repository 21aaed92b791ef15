// internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "atelier"

// Metrics holds the HTTP and production workflow collectors. A nil *Metrics
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Workflow metrics
	StageTransitions     *prometheus.CounterVec
	StageMutationErrors  *prometheus.CounterVec
	ProductsRecalculated *prometheus.CounterVec
	RecalculationRuns    *prometheus.CounterVec
	RecalculationTime    *prometheus.HistogramVec
	StageConfigUpdates   *prometheus.CounterVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	m.StageTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_transitions_total",
			Help:      "Production stage mutations by operation and resulting stage",
		},
		[]string{"operation", "stage"},
	)

	m.StageMutationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_mutation_errors_total",
			Help:      "Rejected or failed production stage mutations",
		},
		[]string{"operation", "reason"},
	)

	m.ProductsRecalculated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_products_recalculated_total",
			Help:      "Products whose schedule was recalculated, by outcome",
		},
		[]string{"status"},
	)

	m.RecalculationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_recalculation_runs_total",
			Help:      "Schedule recalculation runs by selector kind and outcome",
		},
		[]string{"selector", "status"},
	)

	m.RecalculationTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "schedule_recalculation_duration_seconds",
			Help:      "Schedule recalculation run duration in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"selector"},
	)

	m.StageConfigUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_config_updates_total",
			Help:      "Stage configuration updates by stage",
		},
		[]string{"stage"},
	)

	m.CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.StageTransitions,
		m.StageMutationErrors,
		m.ProductsRecalculated,
		m.RecalculationRuns,
		m.RecalculationTime,
		m.StageConfigUpdates,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns an HTTP handler for metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) IncInFlight() {
	if m != nil {
		m.HTTPRequestsInFlight.Inc()
	}
}

func (m *Metrics) DecInFlight() {
	if m != nil {
		m.HTTPRequestsInFlight.Dec()
	}
}

// RecordStageTransition counts a committed lifecycle mutation landing on stage.
func (m *Metrics) RecordStageTransition(operation, stage string) {
	if m == nil {
		return
	}
	m.StageTransitions.WithLabelValues(operation, stage).Inc()
}

func (m *Metrics) RecordStageMutationError(operation, reason string) {
	if m == nil {
		return
	}
	m.StageMutationErrors.WithLabelValues(operation, reason).Inc()
}

// RecordRecalculation records one recalculation run and its per-product outcomes.
func (m *Metrics) RecordRecalculation(selector string, recalculated, failed int, interrupted bool, duration time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	switch {
	case interrupted:
		status = "interrupted"
	case failed > 0:
		status = "partial"
	}
	m.RecalculationRuns.WithLabelValues(selector, status).Inc()
	m.RecalculationTime.WithLabelValues(selector).Observe(duration.Seconds())
	m.ProductsRecalculated.WithLabelValues("success").Add(float64(recalculated))
	m.ProductsRecalculated.WithLabelValues("error").Add(float64(failed))
}

func (m *Metrics) RecordStageConfigUpdate(stage string) {
	if m == nil {
		return
	}
	m.StageConfigUpdates.WithLabelValues(stage).Inc()
}

func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
