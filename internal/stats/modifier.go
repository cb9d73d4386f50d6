package stats

import "log/slog"

// Modifier is a single adjustment applied to a stat.
//
// An optional Duration tree gates the modifier. It describes when the
// modifier has expired, so the modifier is active while the tree is
// NOT met. Source is a non-owning identity of whatever caused the
// modifier (an equipped item, a status effect instance). Sources must
// be comparable, typically pointers.
type Modifier struct {
	arena *Arena

	StatTypeID string
	Op         string
	Value      float64
	Hidden     bool
	Duration   *Condition

	source     any
	container  Container
	active     bool
	registered bool
}

// Source returns the non-owning cause of the modifier, or nil.
func (m *Modifier) Source() any { return m.source }

// HasSource reports whether the modifier was registered with a source.
func (m *Modifier) HasSource() bool { return m.source != nil }

// IsActive reports whether the modifier currently counts.
func (m *Modifier) IsActive() bool { return m.active }

// Registered reports whether the modifier is bound to a container.
func (m *Modifier) Registered() bool { return m.registered }

// Container returns the bound container, or nil.
// Implements Conditional.
func (m *Modifier) Container() Container { return m.container }

// Register binds the modifier to c with an optional source and
// registers its duration tree. Already registered modifiers are left
// untouched.
func (m *Modifier) Register(c Container, source any) {
	if m.registered || m.container != nil {
		return
	}

	m.container = c
	m.source = source
	m.active = true

	if m.Duration != nil {
		m.Duration.Register(m, nil)
		m.active = !m.Duration.CheckAllConditions(m.source != nil)
	}

	m.registered = true
}

// Unregister detaches the modifier and its duration tree.
// Unregistering an unregistered modifier is a no-op.
func (m *Modifier) Unregister() {
	if !m.registered {
		return
	}

	if m.Duration != nil {
		m.Duration.Unregister()
	}

	m.container = nil
	m.source = nil
	m.active = false
	m.registered = false
}

// OnConditionChanged re-derives activity from the duration tree.
// On a transition, an inactive sourceless modifier asks its container
// to delete it; anything else marks the stat for recomputation.
// Implements Conditional.
func (m *Modifier) OnConditionChanged(_ *Condition) {
	active := true
	if m.Duration != nil {
		active = !m.Duration.CheckAllConditions(m.source != nil)
	}

	if active == m.active {
		return
	}
	m.active = active

	if m.container == nil {
		return
	}

	if !active && m.source == nil {
		slog.Debug("modifier expired", "stat", m.StatTypeID, "op", m.Op, "value", m.Value)
		m.container.TryRemoveMod(m)
		return
	}
	m.container.UpdateStat(m.StatTypeID)
}

// ReupDuration restores the whole duration tree to its authored state
// and re-derives activity, notifying the container on a transition.
func (m *Modifier) ReupDuration() {
	if m.Duration == nil {
		return
	}
	m.Duration.ReupAllData()
	m.OnConditionChanged(m.Duration)
}

// Apply combines base with this modifier through the operator registry.
func (m *Modifier) Apply(base float64) float64 {
	return m.arena.ops.Compute(m.Op, base, m.Value)
}

// Clone copies the authored fields and deep-copies Duration.
// Source and registration are not copied.
func (m *Modifier) Clone() *Modifier { return m.CloneTo(m.arena) }

// CloneTo is Clone drawing from the pools of a.
func (m *Modifier) CloneTo(a *Arena) *Modifier {
	var duration *Condition
	if m.Duration != nil {
		duration = m.Duration.CloneTo(a)
	}
	return a.NewModifier(m.StatTypeID, m.Op, m.Value, duration, m.Hidden)
}

// ClearObject unregisters the modifier, releases its duration and
// restores defaults. Implements pool.Poolable.
func (m *Modifier) ClearObject() {
	m.Unregister()

	m.arena.ReleaseCondition(m.Duration)
	m.Duration = nil
	m.StatTypeID = ""
	m.Op = ""
	m.Value = 0
	m.Hidden = false
	m.source = nil
	m.container = nil
	m.active = false
	m.registered = false
}
