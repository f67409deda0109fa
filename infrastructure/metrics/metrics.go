// Package metrics counts tool calls, resolutions and rounds for one run and
// writes them in the Prometheus text format when the run finishes.
package metrics

import (
	"time"

	"signup_automation/domain/interfaces"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "signup"

// Recorder owns a private registry so tests and repeated runs never collide
type Recorder struct {
	registry        *prometheus.Registry
	toolInvocations *prometheus.CounterVec
	toolDuration    *prometheus.HistogramVec
	resolutions     *prometheus.CounterVec
	rounds          prometheus.Counter
}

// New - creates a recorder with all collectors registered
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		toolInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_invocations_total",
			Help:      "Tool invocations by tool and outcome.",
		}, []string{"tool", "outcome"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "Wall time spent inside each tool.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"tool"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Successful element resolutions by strategy.",
		}, []string{"strategy"}),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Decision rounds executed.",
		}),
	}

	r.registry.MustRegister(r.toolInvocations, r.toolDuration, r.resolutions, r.rounds)
	return r
}

func (r *Recorder) ObserveTool(tool string, ok bool, d time.Duration) {
	r.ToolInvocations(tool, ok).Inc()
	r.toolDuration.WithLabelValues(tool).Observe(d.Seconds())
}

func (r *Recorder) ObserveResolution(strategy string) {
	r.resolutions.WithLabelValues(strategy).Inc()
}

func (r *Recorder) ObserveRound() {
	r.rounds.Inc()
}

// ToolInvocations returns the invocation counter for one tool and outcome
func (r *Recorder) ToolInvocations(tool string, ok bool) prometheus.Counter {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	return r.toolInvocations.WithLabelValues(tool, outcome)
}

// Resolutions returns the counter for one resolution strategy
func (r *Recorder) Resolutions(strategy string) prometheus.Counter {
	return r.resolutions.WithLabelValues(strategy)
}

// Rounds returns the round counter
func (r *Recorder) Rounds() prometheus.Counter {
	return r.rounds
}

// Gatherer exposes the registry, mainly for tests
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile - writes every collected metric to path
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

var _ interfaces.Metrics = (*Recorder)(nil)
