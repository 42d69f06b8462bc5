// Package metrics exposes Prometheus collectors for the task engine.
// All methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/cheerforge/cheerforge/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cheerforge"

// Status write targets
const (
	TargetStore = "store"
	TargetCache = "cache"
)

// Metrics holds the task engine collectors.
type Metrics struct {
	submitted     *prometheus.CounterVec
	finished      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	queueDepth    prometheus.Gauge
	busyWorkers   prometheus.Gauge
	writeFailures *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_submitted_total",
			Help:      "Tasks accepted by the engine, by kind.",
		}, []string{"kind"}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_finished_total",
			Help:      "Tasks that reached a terminal status, by kind and status.",
		}, []string{"kind", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_processing_seconds",
			Help:      "Time a worker spent on a task, by kind.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"kind"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Tasks waiting for a free worker.",
		}),
		busyWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "busy_workers",
			Help:      "Workers currently processing a task.",
		}),
		writeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_write_failures_total",
			Help:      "Status writes that failed, by target.",
		}, []string{"target"}),
	}

	for _, c := range []prometheus.Collector{
		m.submitted, m.finished, m.duration, m.queueDepth, m.busyWorkers, m.writeFailures,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// TaskSubmitted counts an accepted task.
func (m *Metrics) TaskSubmitted(kind domain.Kind) {
	if m == nil {
		return
	}
	m.submitted.WithLabelValues(string(kind)).Inc()
}

// TaskFinished counts a terminal outcome and observes how long the worker spent on it.
func (m *Metrics) TaskFinished(kind domain.Kind, status domain.Status, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.finished.WithLabelValues(string(kind), string(status)).Inc()
	m.duration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

// SetQueueDepth records the current queue length.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// SetBusyWorkers records how many workers are processing a task.
func (m *Metrics) SetBusyWorkers(n int) {
	if m == nil {
		return
	}
	m.busyWorkers.Set(float64(n))
}

// StatusWriteFailed counts a failed write to target (TargetStore or TargetCache).
func (m *Metrics) StatusWriteFailed(target string) {
	if m == nil {
		return
	}
	m.writeFailures.WithLabelValues(target).Inc()
}
