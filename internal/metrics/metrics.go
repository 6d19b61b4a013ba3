// Package metrics exposes Prometheus counters for compilations.
//
// Metrics are registered on a caller-supplied registry rather than the
// global default so that tests and embedded uses do not collide.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "pathq"

// Metrics holds the compilation metrics.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Compilations counts finished compilations by result ("ok" or "error").
	Compilations *prometheus.CounterVec

	// Errors counts failed compilations by error code.
	Errors *prometheus.CounterVec

	// Criteria counts compiled criteria.
	Criteria prometheus.Counter

	// Variables counts variables bound by compiled queries, root excluded.
	Variables prometheus.Counter

	// Duration measures compilation latency.
	Duration prometheus.Histogram

	// BatchJobs counts jobs submitted to the batch engine.
	BatchJobs prometheus.Counter
}

// New creates the metrics and registers them on reg.
// A nil reg creates unregistered metrics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Compilations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "compilations_total",
				Help:      "Total number of compilations by result",
			},
			[]string{"result"},
		),
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "compile_errors_total",
				Help:      "Total number of failed compilations by error code",
			},
			[]string{"code"},
		),
		Criteria: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "criteria_total",
			Help:      "Total number of compiled criteria",
		}),
		Variables: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "variables_total",
			Help:      "Total number of variables bound by compiled queries",
		}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "compile_duration_seconds",
			Help:      "Duration of compilations in seconds",
			// Compilations are in-memory; buckets run from microseconds up.
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		BatchJobs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "batch_jobs_total",
			Help:      "Total number of jobs submitted to the batch engine",
		}),
	}
}

// ObserveSuccess records a successful compilation.
func (m *Metrics) ObserveSuccess(criteria, variables int, d time.Duration) {
	if m == nil {
		return
	}
	m.Compilations.WithLabelValues("ok").Inc()
	m.Criteria.Add(float64(criteria))
	m.Variables.Add(float64(variables))
	m.Duration.Observe(d.Seconds())
}

// ObserveFailure records a failed compilation.
func (m *Metrics) ObserveFailure(code string, d time.Duration) {
	if m == nil {
		return
	}
	if code == "" {
		code = "unknown"
	}
	m.Compilations.WithLabelValues("error").Inc()
	m.Errors.WithLabelValues(code).Inc()
	m.Duration.Observe(d.Seconds())
}

// ObserveBatch records jobs submitted to the batch engine.
func (m *Metrics) ObserveBatch(jobs int) {
	if m == nil {
		return
	}
	m.BatchJobs.Add(float64(jobs))
}
