package metrics

import "github.com/prometheus/client_golang/prometheus"

// Option configures a Manager before its collectors are registered.
type Option func(*Manager)

// WithNamespace overrides the metric namespace.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithSubsystem overrides the metric subsystem.
func WithSubsystem(sub string) Option {
	return func(m *Manager) {
		if sub != "" {
			m.subsystem = sub
		}
	}
}

// WithLatencyBuckets overrides the evaluation latency histogram buckets.
func WithLatencyBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithRegistry supplies a caller-owned registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(m *Manager) {
		if reg != nil {
			m.registry = reg
		}
	}
}
