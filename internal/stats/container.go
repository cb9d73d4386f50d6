package stats

// ModChange describes how a stat's modifier set changed.
type ModChange int8

const (
	ModChangeAdd ModChange = iota
	ModChangeRemove
	ModChangeUpdate
)

// String returns the lowercase change name used in logs.
func (c ModChange) String() string {
	switch c {
	case ModChangeAdd:
		return "add"
	case ModChangeRemove:
		return "remove"
	case ModChangeUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Ticker is advanced once per frame by its container.
type Ticker interface {
	Process(delta float64)
}

// Container owns a set of stats for one actor.
// It routes per-frame ticks to subscribed conditions and receives
// change notifications from modifiers. Sheet is the default implementation.
type Container interface {
	RegisterTicker(t Ticker)
	UnregisterTicker(t Ticker)

	// TryRemoveMod permanently removes mod from its stat and returns it
	// to the pool.
	TryRemoveMod(mod *Modifier) bool
	// UpdateStat marks the stat dirty after a modifier changed activity.
	UpdateStat(statTypeID string)
	RaiseModChanged(statTypeID string, change ModChange)
}

// Conditional is the context a condition tree is registered with.
// Container may return nil when the context is not bound to any stats.
type Conditional interface {
	Container() Container
	OnConditionChanged(c *Condition)
}
