package observability

import (
	"context"

	"github.com/aretw0/asyncresource/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records resource activity as Prometheus series labeled by resource and action.
type Metrics struct {
	dispatched  *prometheus.CounterVec
	resolved    *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	transitions *prometheus.CounterVec
	inFlight    *prometheus.GaugeVec
	duration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "asyncresource_dispatch_total",
			Help: "Total number of dispatched actions",
		}, []string{"resource", "action"}),
		resolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "asyncresource_resolved_total",
			Help: "Total number of actions that resolved",
		}, []string{"resource", "action"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "asyncresource_rejected_total",
			Help: "Total number of actions that were rejected",
		}, []string{"resource", "action"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "asyncresource_transitions_total",
			Help: "Total number of applied state transitions by target status",
		}, []string{"resource", "to"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "asyncresource_in_flight",
			Help: "Number of dispatched actions that have not settled",
		}, []string{"resource"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "asyncresource_action_duration_seconds",
			Help:    "Duration of action bodies until settlement",
			Buckets: prometheus.DefBuckets,
		}, []string{"resource", "action"}),
	}

	for _, c := range []prometheus.Collector{m.dispatched, m.resolved, m.rejected, m.transitions, m.inFlight, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(_ context.Context, e *domain.ActionEvent) {
			m.dispatched.WithLabelValues(e.Resource, e.Action).Inc()
			m.inFlight.WithLabelValues(e.Resource).Inc()
		},
		OnResolve: func(_ context.Context, e *domain.ActionEvent) {
			m.settle(e)
			m.resolved.WithLabelValues(e.Resource, e.Action).Inc()
		},
		OnReject: func(_ context.Context, e *domain.ActionEvent) {
			m.settle(e)
			m.rejected.WithLabelValues(e.Resource, e.Action).Inc()
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.transitions.WithLabelValues(e.Resource, string(e.To)).Inc()
		},
	}
}

func (m *Metrics) settle(e *domain.ActionEvent) {
	m.inFlight.WithLabelValues(e.Resource).Dec()
	m.duration.WithLabelValues(e.Resource, e.Action).Observe(e.Duration.Seconds())
}
