// Package metrics exports engine counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/udisondev/statforge/internal/pool"
)

// PoolMetrics holds the pool counters of every worker arena.
// Use Register to attach them to a Prometheus registry.
type PoolMetrics struct {
	gets   *prometheus.CounterVec
	allocs *prometheus.CounterVec
	puts   *prometheus.CounterVec
	free   *prometheus.GaugeVec
}

// NewPoolMetrics creates unregistered pool metrics.
func NewPoolMetrics() *PoolMetrics {
	labels := []string{"worker", "pool"}
	return &PoolMetrics{
		gets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statforge_pool_gets_total",
				Help: "Total number of values taken from a pool",
			},
			labels,
		),
		allocs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statforge_pool_allocations_total",
				Help: "Total number of values a pool had to allocate",
			},
			labels,
		),
		puts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statforge_pool_puts_total",
				Help: "Total number of values returned to a pool",
			},
			labels,
		),
		free: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "statforge_pool_free",
				Help: "Number of values waiting for reuse",
			},
			labels,
		),
	}
}

// Register registers every metric with reg.
// Panics if registration fails (following prometheus convention).
func (m *PoolMetrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(m.gets, m.allocs, m.puts, m.free)
}

// Observe adds a worker's final pool snapshot.
// Counters accumulate across calls for the same labels, so call it
// once per arena after the arena's goroutine has finished.
func (m *PoolMetrics) Observe(worker string, snapshot []pool.Stats) {
	for _, s := range snapshot {
		m.gets.WithLabelValues(worker, s.Name).Add(float64(s.Gets))
		m.allocs.WithLabelValues(worker, s.Name).Add(float64(s.Allocs))
		m.puts.WithLabelValues(worker, s.Name).Add(float64(s.Puts))
		m.free.WithLabelValues(worker, s.Name).Set(float64(s.Free))
	}
}
