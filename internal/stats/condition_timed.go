package stats

import "gopkg.in/yaml.v3"

// TimedTypeID is the registry tag of TimedCondition.
const TimedTypeID = "Timed"

// timerEpsilon absorbs the rounding left over when decimal frame deltas
// such as 0.1 are summed up to a duration.
const timerEpsilon = 1e-9

// TimedCondition is met once TimeLeft reaches zero.
// It subscribes to the container's per-frame ticking while registered.
type TimedCondition struct {
	node *Condition

	Duration float64 `yaml:"duration"`
	TimeLeft float64 `yaml:"time_left"`
}

func newTimedVariant(node *Condition) Variant {
	return &TimedCondition{node: node}
}

// Node returns the tree node the variant belongs to.
func (t *TimedCondition) Node() *Condition { return t.node }

// Elapsed reports whether the timer ran out.
func (t *TimedCondition) Elapsed() bool { return t.TimeLeft <= 0 }

// Process counts the timer down by delta seconds. Reaching zero raises
// the change exactly once; later calls are no-ops.
func (t *TimedCondition) Process(delta float64) {
	if t.Elapsed() || delta <= 0 {
		return
	}

	t.TimeLeft -= delta
	if t.TimeLeft < timerEpsilon {
		t.TimeLeft = 0
	}

	if t.Elapsed() {
		t.node.RaiseConditionChanged()
	}
}

func (t *TimedCondition) SubscribeEvents(node *Condition) {
	if c := node.Container(); c != nil {
		c.RegisterTicker(t)
	}
}

func (t *TimedCondition) UnsubscribeEvents(node *Condition) {
	if c := node.Container(); c != nil {
		c.UnregisterTicker(t)
	}
}

func (t *TimedCondition) Result() bool { return t.Elapsed() }

func (t *TimedCondition) ReupData() { t.TimeLeft = t.Duration }

func (t *TimedCondition) ClearData() {
	t.Duration = 0
	t.TimeLeft = 0
}

func (t *TimedCondition) SetCloneData(clone Variant) {
	dst := clone.(*TimedCondition)
	dst.Duration = t.Duration
	dst.TimeLeft = t.TimeLeft
}

// UnmarshalYAML decodes the timer fields. A missing time_left starts
// the timer at full duration.
func (t *TimedCondition) UnmarshalYAML(n *yaml.Node) error {
	var raw struct {
		Duration float64  `yaml:"duration"`
		TimeLeft *float64 `yaml:"time_left"`
	}
	if err := n.Decode(&raw); err != nil {
		return err
	}

	t.Duration = raw.Duration
	t.TimeLeft = raw.Duration
	if raw.TimeLeft != nil {
		t.TimeLeft = max(0, *raw.TimeLeft)
	}
	return nil
}
