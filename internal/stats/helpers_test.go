package stats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const flagTypeID = "Flag"

// flagVariant is a condition whose result is set directly by the test.
type flagVariant struct {
	node       *Condition
	value      bool
	authored   bool
	subscribed int
}

func newFlagVariant(node *Condition) Variant {
	return &flagVariant{node: node}
}

func (f *flagVariant) SubscribeEvents(*Condition)   { f.subscribed++ }
func (f *flagVariant) UnsubscribeEvents(*Condition) { f.subscribed-- }
func (f *flagVariant) Result() bool                 { return f.value }
func (f *flagVariant) ReupData()                    { f.value = f.authored }

func (f *flagVariant) ClearData() {
	f.value = false
	f.authored = false
	f.subscribed = 0
}

func (f *flagVariant) SetCloneData(clone Variant) {
	dst := clone.(*flagVariant)
	dst.value = f.value
	dst.authored = f.authored
}

// set flips the flag and raises the change like a real event source.
func (f *flagVariant) set(v bool) {
	f.value = v
	f.node.RaiseConditionChanged()
}

func newTestArena(t testing.TB) *Arena {
	t.Helper()
	types := DefaultConditionTypes()
	require.NoError(t, types.Register(flagTypeID, newFlagVariant))
	return NewArena(DefaultOps(), types)
}

func newFlag(t testing.TB, a *Arena, v bool) (*Condition, *flagVariant) {
	t.Helper()
	c, ok := a.NewCondition(flagTypeID)
	require.True(t, ok)
	f := c.Variant().(*flagVariant)
	f.value = v
	f.authored = v
	return c, f
}

func timedOf(t testing.TB, c *Condition) *TimedCondition {
	t.Helper()
	tc, ok := c.Variant().(*TimedCondition)
	require.True(t, ok, "expected timed condition, got %T", c.Variant())
	return tc
}

// recordingOwner is a Conditional that remembers every notification.
type recordingOwner struct {
	container Container
	changed   []*Condition
}

func (o *recordingOwner) Container() Container { return o.container }

func (o *recordingOwner) OnConditionChanged(c *Condition) {
	o.changed = append(o.changed, c)
}

type modChangeEvent struct {
	stat   string
	change ModChange
}

// recordingContainer is a Container that remembers every call.
type recordingContainer struct {
	tickers []Ticker
	events  []modChangeEvent
	removed []*Modifier
	updated []string
}

func (c *recordingContainer) RegisterTicker(t Ticker) { c.tickers = append(c.tickers, t) }

func (c *recordingContainer) UnregisterTicker(t Ticker) {
	for i, x := range c.tickers {
		if x == t {
			c.tickers = append(c.tickers[:i], c.tickers[i+1:]...)
			return
		}
	}
}

func (c *recordingContainer) TryRemoveMod(mod *Modifier) bool {
	c.removed = append(c.removed, mod)
	return true
}

func (c *recordingContainer) UpdateStat(statTypeID string) {
	c.updated = append(c.updated, statTypeID)
}

func (c *recordingContainer) RaiseModChanged(statTypeID string, change ModChange) {
	c.events = append(c.events, modChangeEvent{stat: statTypeID, change: change})
}

// addActive registers a sourceless modifier without a container so it
// counts in CalculateDefault.
func addActive(st *Stat, op string, value float64) *Modifier {
	mod := st.arena.NewModifier(st.StatTypeID, op, value, nil, false)
	mod.Register(nil, nil)
	st.AddMod(mod)
	return mod
}

type testSource struct {
	name string
}
