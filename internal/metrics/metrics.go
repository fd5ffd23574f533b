package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry holds only momentflow collectors so a push does not carry Go
// runtime metrics of the CLI process.
var Registry = prometheus.NewRegistry()

var (
	// Outbound requests by method and status class
	RequestsTotal *prometheus.CounterVec

	// Status probes by observed outcome
	ProbesTotal *prometheus.CounterVec

	// Terminal poller outcomes
	PollOutcomesTotal *prometheus.CounterVec

	// Pipeline stage duration
	StageDuration *prometheus.HistogramVec
)

func init() {
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "momentflow",
			Subsystem: "transport",
			Name:      "requests_total",
			Help:      "Total outbound requests to the media service",
		},
		[]string{"method", "status"},
	)

	ProbesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "momentflow",
			Subsystem: "media",
			Name:      "probes_total",
			Help:      "Status probes by outcome (observed status or transient)",
		},
		[]string{"outcome"},
	)

	PollOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "momentflow",
			Subsystem: "media",
			Name:      "poll_outcomes_total",
			Help:      "Readiness poller terminal states",
		},
		[]string{"state"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "momentflow",
			Subsystem: "ingest",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"stage", "status"},
	)

	Registry.MustRegister(RequestsTotal, ProbesTotal, PollOutcomesTotal, StageDuration)
}

// StatusClass buckets an HTTP status for the RequestsTotal label.
func StatusClass(code int) string {
	if code == 0 {
		return "network_error"
	}
	return fmt.Sprintf("%dxx", code/100)
}

// Push sends the registry to a Prometheus Pushgateway under the given job.
func Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
