package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/statforge/internal/pool"
)

func TestPoolMetrics_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPoolMetrics()
	m.Register(reg)
	m.Observe("0", []pool.Stats{{Name: "modifier"}})

	families, err := reg.Gather()
	require.NoError(t, err)

	registered := make(map[string]bool)
	for _, family := range families {
		registered[family.GetName()] = true
	}

	for _, name := range []string{
		"statforge_pool_gets_total",
		"statforge_pool_allocations_total",
		"statforge_pool_puts_total",
		"statforge_pool_free",
	} {
		assert.True(t, registered[name], "metric %q should be registered", name)
	}
}

func TestPoolMetrics_Observe(t *testing.T) {
	m := NewPoolMetrics()

	m.Observe("0", []pool.Stats{
		{Name: "modifier", Gets: 10, Allocs: 4, Puts: 9, Free: 3},
		{Name: "stat", Gets: 2, Allocs: 2, Puts: 2, Free: 2},
	})
	m.Observe("1", []pool.Stats{
		{Name: "modifier", Gets: 5, Allocs: 5, Puts: 1, Free: 1},
	})

	assert.Equal(t, 10.0, testutil.ToFloat64(m.gets.WithLabelValues("0", "modifier")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.allocs.WithLabelValues("0", "modifier")))
	assert.Equal(t, 9.0, testutil.ToFloat64(m.puts.WithLabelValues("0", "modifier")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.free.WithLabelValues("0", "modifier")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.gets.WithLabelValues("1", "modifier")))

	assert.Equal(t, 3, testutil.CollectAndCount(m.gets))
	assert.Equal(t, 3, testutil.CollectAndCount(m.free))
}

func TestPoolMetrics_ObserveAccumulatesCounters(t *testing.T) {
	m := NewPoolMetrics()

	m.Observe("0", []pool.Stats{{Name: "stat", Gets: 3, Free: 5}})
	m.Observe("0", []pool.Stats{{Name: "stat", Gets: 4, Free: 1}})

	assert.Equal(t, 7.0, testutil.ToFloat64(m.gets.WithLabelValues("0", "stat")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.free.WithLabelValues("0", "stat")), "gauges hold the last snapshot")
}
