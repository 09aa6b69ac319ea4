// Package metrics provides Prometheus instrumentation for the generation lifecycle.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
)

// Ensure GenerationMetrics implements the interface.
var _ driven.GenerationMetrics = (*GenerationMetrics)(nil)

const (
	namespace = "pdfboard"
	subsystem = "generation"
)

// GenerationMetrics holds Prometheus metrics for generation requests.
type GenerationMetrics struct {
	submitted   *prometheus.CounterVec   // By kind
	settled     *prometheus.CounterVec   // By kind and state (fulfilled/failed)
	dropped     *prometheus.CounterVec   // By kind
	outstanding *prometheus.GaugeVec     // By kind
	latency     *prometheus.HistogramVec // By kind and state
}

// New creates generation metrics and registers them with reg.
// Metrics already registered by an earlier call are reused.
func New(reg prometheus.Registerer) (*GenerationMetrics, error) {
	m := &GenerationMetrics{
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "submitted_total",
			Help:      "Total number of generation requests submitted",
		}, []string{"kind"}),

		settled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "settled_total",
			Help:      "Total number of generation requests settled",
		}, []string{"kind", "state"}),

		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dropped_total",
			Help:      "Results that arrived after their chunk was removed",
		}, []string{"kind"}),

		outstanding: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outstanding",
			Help:      "Generation requests currently pending",
		}, []string{"kind"}),

		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "duration_seconds",
			Help:      "Time from submission to result in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"kind", "state"}),
	}

	var err error
	if m.submitted, err = register(reg, m.submitted); err != nil {
		return nil, err
	}
	if m.settled, err = register(reg, m.settled); err != nil {
		return nil, err
	}
	if m.dropped, err = register(reg, m.dropped); err != nil {
		return nil, err
	}
	if m.outstanding, err = register(reg, m.outstanding); err != nil {
		return nil, err
	}
	if m.latency, err = register(reg, m.latency); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Submitted counts a request entering Pending.
func (m *GenerationMetrics) Submitted(kind domain.ContentKind) {
	if m == nil {
		return
	}
	m.submitted.WithLabelValues(kind.String()).Inc()
	m.outstanding.WithLabelValues(kind.String()).Inc()
}

// Settled counts a request reaching a terminal state.
func (m *GenerationMetrics) Settled(kind domain.ContentKind, state domain.GenerationState, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.settled.WithLabelValues(kind.String(), state.String()).Inc()
	m.outstanding.WithLabelValues(kind.String()).Dec()
	m.latency.WithLabelValues(kind.String(), state.String()).Observe(elapsed.Seconds())
}

// Dropped counts a result discarded because its chunk was removed.
func (m *GenerationMetrics) Dropped(kind domain.ContentKind) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(kind.String()).Inc()
}
