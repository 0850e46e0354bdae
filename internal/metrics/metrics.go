package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	globalMetrics *Metrics
	globalMu      sync.RWMutex
)

// Metrics holds all Prometheus metrics for the gateway
type Metrics struct {
	// Tool invocation counters
	ToolCallsTotal          *prometheus.CounterVec
	ToolCallDurationSeconds *prometheus.HistogramVec

	// Remote API error counter, labeled by upstream status code
	RemoteErrorsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		ToolCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailchimp_mcp_tool_calls_total",
				Help: "Total number of tool invocations",
			},
			[]string{"tool", "outcome"},
		),
		ToolCallDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mailchimp_mcp_tool_call_duration_seconds",
				Help:    "Tool invocation duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"tool"},
		),
		RemoteErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailchimp_mcp_remote_errors_total",
				Help: "Total number of Mailchimp API error responses",
			},
			[]string{"status"},
		),

		registry: reg,
	}

	// Register all metrics
	reg.MustRegister(
		m.ToolCallsTotal,
		m.ToolCallDurationSeconds,
		m.RemoteErrorsTotal,
	)

	return m
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SetGlobal sets the global metrics instance
func SetGlobal(m *Metrics) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalMetrics = m
}

// Global returns the global metrics instance
func Global() *Metrics {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalMetrics
}

// ObserveToolCall records one tool invocation. Safe to call when no
// global instance is set (the stdio adapter runs without metrics).
func ObserveToolCall(tool, outcome string, seconds float64) {
	m := Global()
	if m != nil {
		m.ToolCallsTotal.WithLabelValues(tool, outcome).Inc()
		m.ToolCallDurationSeconds.WithLabelValues(tool).Observe(seconds)
	}
}

// IncRemoteError increments the remote error counter
func IncRemoteError(status string) {
	m := Global()
	if m != nil {
		m.RemoteErrorsTotal.WithLabelValues(status).Inc()
	}
}
