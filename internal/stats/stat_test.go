package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStat_PercentAddGrouping(t *testing.T) {
	a := newTestArena(t)

	st := a.NewStat("attack", 100)
	for range 3 {
		addActive(st, OpPercentAdd, 0.1)
	}

	got := st.CalculateDefault(false)
	assert.InDelta(t, 130, got, 1e-9, "three +10% must group into one *1.30")
	assert.NotEqual(t, 133.1, got)
}

func TestStat_CanonicalOrder(t *testing.T) {
	a := newTestArena(t)

	st := a.NewStat("attack", 100)
	// Inserted out of order on purpose.
	addActive(st, OpMult, 2)
	addActive(st, OpPercentAdd, 0.25)
	addActive(st, OpAdd, 20)
	addActive(st, OpPercentAdd, 0.25)

	ops := make([]string, len(st.Modifiers))
	for i, m := range st.Modifiers {
		ops[i] = m.Op
	}
	assert.Equal(t, []string{OpAdd, OpPercentAdd, OpPercentAdd, OpMult}, ops)

	// (100 + 20) * (1 + 0.5) * 2
	assert.InDelta(t, 360, st.CalculateDefault(false), 1e-9)
}

func TestStat_SortIsStableWithinOperator(t *testing.T) {
	a := newTestArena(t)

	st := a.NewStat("hp", 0)
	first := addActive(st, OpOverride, 1)
	second := addActive(st, OpOverride, 2)
	addActive(st, OpAdd, 5)

	require.Len(t, st.Modifiers, 3)
	assert.Same(t, first, st.Modifiers[1])
	assert.Same(t, second, st.Modifiers[2])
	assert.Equal(t, 2.0, st.CalculateDefault(false), "later override wins")
}

func TestStat_CalculateDefaultIsIdempotent(t *testing.T) {
	a := newTestArena(t)

	st := a.NewStat("defense", 40)
	addActive(st, OpAdd, 7)
	addActive(st, OpPercentAdd, 0.3)
	addActive(st, OpPercentMult, -0.1)

	first := st.CalculateDefault(false)
	for range 5 {
		assert.Equal(t, first, st.CalculateDefault(false))
	}
}

func TestStat_SkipsInactiveAndHidden(t *testing.T) {
	a := newTestArena(t)

	st := a.NewStat("attack", 100)
	addActive(st, OpAdd, 10)

	hidden := a.NewModifier("attack", OpAdd, 50, nil, true)
	hidden.Register(nil, nil)
	st.AddMod(hidden)

	inactive := a.NewModifier("attack", OpAdd, 1000, nil, false)
	st.AddMod(inactive)

	assert.Equal(t, 160.0, st.CalculateDefault(false))
	assert.Equal(t, 110.0, st.CalculateDefault(true))
}

func TestStat_InactiveTailOfPercentRun(t *testing.T) {
	a := newTestArena(t)

	st := a.NewStat("attack", 100)
	addActive(st, OpPercentAdd, 0.5)
	st.AddMod(a.NewModifier("attack", OpPercentAdd, 0.5, nil, false)) // never registered
	addActive(st, OpMult, 2)

	// The active part of the run is still applied before Mult.
	assert.InDelta(t, 300, st.CalculateDefault(false), 1e-9)
}

func TestStat_FirstModifier(t *testing.T) {
	a := newTestArena(t)

	st := a.NewStat("attack", 0)
	_, ok := st.FirstModifier(true)
	assert.False(t, ok)

	sourceless := addActive(st, OpAdd, 1)
	sourced := a.NewModifier("attack", OpMult, 2, nil, false)
	sourced.Register(nil, &testSource{name: "gem"})
	st.AddMod(sourced)

	got, ok := st.FirstModifier(true)
	require.True(t, ok)
	assert.Same(t, sourced, got)

	got, ok = st.FirstModifier(false)
	require.True(t, ok)
	assert.Same(t, sourceless, got)
}

func TestStat_TryRemoveMod(t *testing.T) {
	a := newTestArena(t)

	st := a.NewStat("attack", 100)
	mod := addActive(st, OpAdd, 10)
	other := a.NewModifier("attack", OpAdd, 1, nil, false)

	assert.False(t, st.TryRemoveMod(other), "not on this stat")
	assert.True(t, st.TryRemoveMod(mod))
	assert.Empty(t, st.Modifiers)
	assert.Equal(t, 1, a.modifiers.Len(), "removed modifier is pooled")
	assert.False(t, st.TryRemoveMod(mod), "second removal is a no-op")
}

func TestStat_TryRemoveModBySource(t *testing.T) {
	a := newTestArena(t)

	st := a.NewStat("attack", 100)
	src := &testSource{name: "shield"}
	otherSrc := &testSource{name: "helm"}

	add := a.NewModifier("attack", OpAdd, 10, nil, false)
	add.Register(nil, src)
	st.AddMod(add)
	mult := a.NewModifier("attack", OpMult, 2, nil, false)
	mult.Register(nil, src)
	st.AddMod(mult)

	template := a.NewModifier("attack", OpMult, 0, nil, false)

	assert.False(t, st.TryRemoveModBySource(template, nil))
	assert.False(t, st.TryRemoveModBySource(template, otherSrc))
	assert.True(t, st.TryRemoveModBySource(template, src))

	require.Len(t, st.Modifiers, 1)
	assert.Same(t, add, st.Modifiers[0])
}

func TestStat_RemoveSourcelessMods(t *testing.T) {
	a := newTestArena(t)
	container := &recordingContainer{}

	st := a.NewStat("attack", 100)
	addActive(st, OpAdd, 1)
	addActive(st, OpMult, 2)
	kept := a.NewModifier("attack", OpAdd, 3, nil, false)
	kept.Register(nil, &testSource{name: "ring"})
	st.AddMod(kept)

	removed := st.RemoveSourcelessMods(container)

	assert.Equal(t, 2, removed)
	require.Len(t, st.Modifiers, 1)
	assert.Same(t, kept, st.Modifiers[0])
	assert.Equal(t, []modChangeEvent{
		{stat: "attack", change: ModChangeRemove},
		{stat: "attack", change: ModChangeRemove},
	}, container.events)
	assert.Equal(t, 2, a.modifiers.Len())
}

func TestStat_Clone(t *testing.T) {
	a := newTestArena(t)

	st := a.NewStat("attack", 50)
	st.Growth = Growth{TypeID: "linear", Start: 1, End: 2}
	st.CurrentValue = 70
	addActive(st, OpAdd, 5)
	sourced := a.NewModifier("attack", OpMult, 2, a.NewTimedCondition(3), false)
	sourced.Register(nil, &testSource{name: "cloak"})
	st.AddMod(sourced)

	full := st.Clone(false)
	assert.Equal(t, "attack", full.StatTypeID)
	assert.Equal(t, 50.0, full.BaseValue)
	assert.Equal(t, 70.0, full.CurrentValue)
	assert.Equal(t, st.Growth, full.Growth)
	require.Len(t, full.Modifiers, 2)
	for i, m := range full.Modifiers {
		assert.NotSame(t, st.Modifiers[i], m)
		assert.False(t, m.Registered())
	}

	timedOf(t, full.Modifiers[1].Duration).TimeLeft = 0
	assert.Equal(t, 3.0, timedOf(t, sourced.Duration).TimeLeft)

	filtered := st.Clone(true)
	require.Len(t, filtered.Modifiers, 1)
	assert.Equal(t, OpAdd, filtered.Modifiers[0].Op)
}

func TestStat_IsEmpty(t *testing.T) {
	a := newTestArena(t)

	tests := []struct {
		name  string
		setup func(st *Stat)
		want  bool
	}{
		{name: "fresh", setup: func(*Stat) {}, want: true},
		{name: "base value", setup: func(st *Stat) { st.BaseValue = 1 }, want: false},
		{name: "growth", setup: func(st *Stat) { st.Growth.TypeID = "curve" }, want: false},
		{name: "modifier", setup: func(st *Stat) { addActive(st, OpAdd, 0) }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := a.NewStat("x", 0)
			tt.setup(st)
			assert.Equal(t, tt.want, st.IsEmpty())
			a.ReleaseStat(st)
		})
	}
}

func TestStat_PoolRoundTrip(t *testing.T) {
	a := newTestArena(t)

	st := a.NewStat("attack", 10)
	st.Growth = Growth{TypeID: "curve", Start: 1, End: 5}
	st.CurrentValue = 99
	addActive(st, OpAdd, 1)
	addActive(st, OpMult, 2)

	a.ReleaseStat(st)
	assert.Equal(t, 2, a.modifiers.Len())

	got := a.stats.Get()
	require.Same(t, st, got)
	assert.Empty(t, got.StatTypeID)
	assert.Equal(t, Growth{}, got.Growth)
	assert.Zero(t, got.BaseValue)
	assert.Zero(t, got.CurrentValue)
	assert.Empty(t, got.Modifiers)
}
