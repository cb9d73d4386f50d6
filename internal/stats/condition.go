package stats

// Variant is the type-specific half of a condition node.
//
// The node handles chaining, negation, caching and registration; the
// variant supplies the raw result and hooks into whatever external
// change source it depends on.
type Variant interface {
	// SubscribeEvents hooks into the change source. Called from Register
	// after the owner is set.
	SubscribeEvents(node *Condition)
	// UnsubscribeEvents undoes SubscribeEvents. Called from Unregister
	// before the owner is cleared.
	UnsubscribeEvents(node *Condition)
	// Result returns the raw result before Not is applied.
	Result() bool
	// ReupData restores the values the condition was authored with.
	ReupData()
	// ClearData zeroes every variant field before the node is pooled.
	ClearData()
	// SetCloneData copies authored fields into clone, which is always a
	// variant of the same type.
	SetCloneData(clone Variant)
}

// Condition is a boolean node of a condition tree.
//
// And and Or are owned: releasing a node releases them too. The parent
// link is non-owning and only used to find the head of the tree.
// A node and its whole And/Or subtree share one registration lifecycle.
type Condition struct {
	arena   *Arena
	typeID  string
	variant Variant

	Not                  bool
	ReupOnMet            bool // stored for content logic, never read by the engine
	IgnoreModsWithSource bool

	And *Condition
	Or  *Condition

	parent     *Condition
	owner      Conditional
	result     bool
	registered bool
}

// TypeID returns the registry tag of the node's variant.
func (c *Condition) TypeID() string { return c.typeID }

// Variant returns the type-specific half of the node.
func (c *Condition) Variant() Variant { return c.variant }

// Registered reports whether the node is bound to an owner.
func (c *Condition) Registered() bool { return c.registered }

// Met returns the cached result with Not applied.
func (c *Condition) Met() bool { return c.result }

// Owner returns the context the node is registered with, or nil.
func (c *Condition) Owner() Conditional { return c.owner }

// Container returns the stat container of the owner, or nil.
func (c *Condition) Container() Container {
	if c.owner == nil {
		return nil
	}
	return c.owner.Container()
}

// CheckAllConditions walks the tree as a sequential gate: a met node
// continues through And (true when absent), an unmet node escapes
// through Or (false when absent).
//
// When IgnoreModsWithSource is set and hasSource is true the node is
// treated as unmet.
func (c *Condition) CheckAllConditions(hasSource bool) bool {
	if c.result && !(c.IgnoreModsWithSource && hasSource) {
		if c.And == nil {
			return true
		}
		return c.And.CheckAllConditions(hasSource)
	}

	if c.Or == nil {
		return false
	}
	return c.Or.CheckAllConditions(hasSource)
}

// FirstCondition returns the first variant of type V found depth-first
// (self, then And, then Or).
func FirstCondition[V Variant](c *Condition) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	if v, ok := c.variant.(V); ok {
		return v, true
	}
	if v, ok := FirstCondition[V](c.And); ok {
		return v, true
	}
	return FirstCondition[V](c.Or)
}

// HeadCondition returns the top-most node of the tree.
func (c *Condition) HeadCondition() *Condition {
	head := c
	for head.parent != nil {
		head = head.parent
	}
	return head
}

// Register binds the subtree to owner and evaluates it once.
// Registering an already registered node is a no-op.
func (c *Condition) Register(owner Conditional, parent *Condition) {
	if c.registered {
		return
	}

	c.parent = parent
	c.owner = owner
	c.variant.SubscribeEvents(c)

	if c.And != nil {
		c.And.Register(owner, c)
	}
	if c.Or != nil {
		c.Or.Register(owner, c)
	}

	c.updateCondition()
	c.registered = true
}

// Unregister detaches the subtree from its owner.
// Unregistering an unregistered node is a no-op.
func (c *Condition) Unregister() {
	if !c.registered {
		return
	}

	c.variant.UnsubscribeEvents(c)

	if c.And != nil {
		c.And.Unregister()
	}
	if c.Or != nil {
		c.Or.Unregister()
	}

	c.parent = nil
	c.owner = nil
	c.registered = false
}

// Reup restores the node's authored data and re-evaluates it.
func (c *Condition) Reup() {
	c.variant.ReupData()
	c.updateCondition()
}

// ReupAllData restores And, then Or, then the node itself.
func (c *Condition) ReupAllData() {
	if c.And != nil {
		c.And.ReupAllData()
	}
	if c.Or != nil {
		c.Or.ReupAllData()
	}
	c.Reup()
}

// InsertAnd makes child the And continuation of c. c takes over the
// parent link child had, and child now points at c. A previous And is
// released to the pool.
func (c *Condition) InsertAnd(child *Condition) {
	if c.And != nil && c.And != child {
		c.arena.ReleaseCondition(c.And)
	}
	c.insert(child)
	c.And = child
}

// InsertOr is InsertAnd for the Or continuation.
func (c *Condition) InsertOr(child *Condition) {
	if c.Or != nil && c.Or != child {
		c.arena.ReleaseCondition(c.Or)
	}
	c.insert(child)
	c.Or = child
}

func (c *Condition) insert(child *Condition) {
	c.parent = child.parent
	child.parent = c

	if c.registered {
		child.Register(c.owner, c)
	}
}

// WithAnd sets the And continuation and returns c for chaining.
func (c *Condition) WithAnd(and *Condition) *Condition {
	c.And = and
	return c
}

// WithOr sets the Or continuation and returns c for chaining.
func (c *Condition) WithOr(or *Condition) *Condition {
	c.Or = or
	return c
}

// WithNot enables negation and returns c for chaining.
func (c *Condition) WithNot() *Condition {
	c.Not = true
	return c
}

// WithReupOnMet enables ReupOnMet and returns c for chaining.
func (c *Condition) WithReupOnMet() *Condition {
	c.ReupOnMet = true
	return c
}

// WithIgnoreModsWithSource enables IgnoreModsWithSource and returns c
// for chaining.
func (c *Condition) WithIgnoreModsWithSource() *Condition {
	c.IgnoreModsWithSource = true
	return c
}

// Clone deep-copies the tree from the node's own arena.
func (c *Condition) Clone() *Condition { return c.CloneTo(c.arena) }

// CloneTo deep-copies the tree using pools of a. The source tree is
// only read, so templates shared between workers can be cloned into
// each worker's arena.
func (c *Condition) CloneTo(a *Arena) *Condition {
	clone := c.CloneSingleTo(a)
	if c.And != nil {
		clone.And = c.And.CloneTo(a)
	}
	if c.Or != nil {
		clone.Or = c.Or.CloneTo(a)
	}
	return clone
}

// CloneSingle copies the node without its And/Or subtree.
func (c *Condition) CloneSingle() *Condition { return c.CloneSingleTo(c.arena) }

// CloneSingleTo copies the node without its subtree using pools of a.
// Clones start unregistered.
func (c *Condition) CloneSingleTo(a *Arena) *Condition {
	clone := a.conditionPool(c.typeID).Get()
	clone.Not = c.Not
	clone.ReupOnMet = c.ReupOnMet
	clone.IgnoreModsWithSource = c.IgnoreModsWithSource
	c.variant.SetCloneData(clone.variant)
	return clone
}

// ClearObject releases the subtree and restores defaults.
// Implements pool.Poolable.
func (c *Condition) ClearObject() {
	c.Unregister()

	if c.And != nil {
		c.arena.ReleaseCondition(c.And)
	}
	if c.Or != nil {
		c.arena.ReleaseCondition(c.Or)
	}

	c.And = nil
	c.Or = nil
	c.parent = nil
	c.owner = nil
	c.result = false
	c.registered = false
	c.Not = false
	c.ReupOnMet = false
	c.IgnoreModsWithSource = false
	c.variant.ClearData()
}

// RaiseConditionChanged re-evaluates the node and, only when the
// result flipped, notifies the owner synchronously. It is the single
// propagation path variants use when their source changes.
func (c *Condition) RaiseConditionChanged() {
	if !c.updateCondition() {
		return
	}
	if c.owner != nil {
		c.owner.OnConditionChanged(c)
	}
}

// updateCondition refreshes the cached result and reports whether it
// changed.
func (c *Condition) updateCondition() bool {
	result := c.variant.Result()
	if c.Not {
		result = !result
	}

	if result == c.result {
		return false
	}
	c.result = result
	return true
}
