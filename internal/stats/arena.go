// Package stats computes effective stat values from a base value and an
// ordered list of modifiers gated by composable condition trees.
//
// Everything in the package is single-threaded. An Arena and the sheets
// built on it belong to one goroutine; registries may be shared once
// they are fully populated.
package stats

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/udisondev/statforge/internal/pool"
)

// Arena owns the pools condition nodes, modifiers and stats are drawn
// from, together with the registries they consult. Constructors hang
// off the arena and Release methods hand ownership back to it.
type Arena struct {
	ops   *OpRegistry
	types *ConditionRegistry

	conditions map[string]*pool.Pool[*Condition]
	modifiers  *pool.Pool[*Modifier]
	stats      *pool.Pool[*Stat]
}

// NewArena creates an arena. Nil registries fall back to the defaults.
func NewArena(ops *OpRegistry, types *ConditionRegistry) *Arena {
	if ops == nil {
		ops = DefaultOps()
	}
	if types == nil {
		types = DefaultConditionTypes()
	}

	a := &Arena{
		ops:        ops,
		types:      types,
		conditions: make(map[string]*pool.Pool[*Condition], 4),
	}
	a.modifiers = pool.New("modifier", func() *Modifier {
		return &Modifier{arena: a}
	})
	a.stats = pool.New("stat", func() *Stat {
		return &Stat{arena: a, Modifiers: make([]*Modifier, 0, 4)}
	})
	return a
}

// Ops returns the operator registry.
func (a *Arena) Ops() *OpRegistry { return a.ops }

// ConditionTypes returns the condition type registry.
func (a *Arena) ConditionTypes() *ConditionRegistry { return a.types }

// Prealloc warms up the pools: n condition nodes per registered type
// and m modifiers.
func (a *Arena) Prealloc(conditions, modifiers int) {
	for _, id := range a.types.TypeIDs() {
		a.conditionPool(id).Prealloc(conditions)
	}
	a.modifiers.Prealloc(modifiers)
}

// conditionPool returns the pool for typeID, creating it on first use.
// Callers must check the tag against the registry first.
func (a *Arena) conditionPool(typeID string) *pool.Pool[*Condition] {
	if p, ok := a.conditions[typeID]; ok {
		return p
	}

	factory, _ := a.types.Lookup(typeID)
	p := pool.New("condition."+typeID, func() *Condition {
		c := &Condition{arena: a, typeID: typeID}
		c.variant = factory(c)
		return c
	})
	a.conditions[typeID] = p
	return p
}

// NewCondition returns a pooled node of the given type.
// Unknown tags are a lookup miss.
func (a *Arena) NewCondition(typeID string) (*Condition, bool) {
	if _, ok := a.types.Lookup(typeID); !ok {
		slog.Warn("unknown condition type", "condition_type", typeID)
		return nil, false
	}
	return a.conditionPool(typeID).Get(), true
}

// NewTimedCondition returns a pooled timer node set to duration seconds.
func (a *Arena) NewTimedCondition(duration float64) *Condition {
	c := a.conditionPool(TimedTypeID).Get()
	t := c.variant.(*TimedCondition)
	t.Duration = duration
	t.TimeLeft = duration
	return c
}

// NewModifier returns a pooled, unregistered modifier.
// duration may be nil; the modifier takes ownership of it.
func (a *Arena) NewModifier(statTypeID, op string, value float64, duration *Condition, hidden bool) *Modifier {
	m := a.modifiers.Get()
	m.StatTypeID = statTypeID
	m.Op = op
	m.Value = value
	m.Duration = duration
	m.Hidden = hidden
	return m
}

// NewStat returns a pooled stat with CurrentValue set to base.
func (a *Arena) NewStat(statTypeID string, base float64) *Stat {
	s := a.stats.Get()
	s.StatTypeID = statTypeID
	s.BaseValue = base
	s.CurrentValue = base
	return s
}

// ReleaseCondition returns c and its subtree to the pool.
func (a *Arena) ReleaseCondition(c *Condition) {
	if c == nil {
		return
	}
	p, ok := a.conditions[c.typeID]
	if !ok {
		return
	}
	p.Put(c)
}

// ReleaseModifier unregisters m and returns it, with its duration, to the pool.
func (a *Arena) ReleaseModifier(m *Modifier) {
	if m == nil {
		return
	}
	a.modifiers.Put(m)
}

// ReleaseStat returns s and all its modifiers to the pool.
func (a *Arena) ReleaseStat(s *Stat) {
	if s == nil {
		return
	}
	a.stats.Put(s)
}

// PoolStats returns counters for every pool, ordered by name.
func (a *Arena) PoolStats() []pool.Stats {
	out := make([]pool.Stats, 0, len(a.conditions)+2)
	for _, p := range a.conditions {
		out = append(out, p.Stats())
	}
	out = append(out, a.modifiers.Stats(), a.stats.Stats())
	slices.SortFunc(out, func(x, y pool.Stats) int { return cmp.Compare(x.Name, y.Name) })
	return out
}
