package stats

import (
	"cmp"
	"math"
	"slices"

	"github.com/samber/oops"
)

// Built-in operator identifiers.
const (
	OpAdd         = "Add"         // base + value
	OpPercentAdd  = "PercentAdd"  // accumulated, applied once as base * (1 + sum)
	OpPercentMult = "PercentMult" // base * (1 + value)
	OpMult        = "Mult"        // base * value
	OpOverride    = "Override"    // value
)

// Error codes for configuration mistakes made while wiring registries.
const (
	CodeDuplicateOp            = "STATS_DUPLICATE_OP"
	CodeInvalidOp              = "STATS_INVALID_OP"
	CodeDuplicateConditionType = "STATS_DUPLICATE_CONDITION_TYPE"
	CodeInvalidConditionType   = "STATS_INVALID_CONDITION_TYPE"
	CodeDuplicateEffect        = "STATS_DUPLICATE_EFFECT"
	CodeInvalidEffect          = "STATS_INVALID_EFFECT"
)

// OpFunc combines an intermediate value with a modifier operand.
type OpFunc func(base, value float64) float64

// Op is a registered operator.
// Priority defines the canonical computation order: modifiers are
// sorted by ascending priority before a stat is folded.
type Op struct {
	ID       string
	Priority int
	Fn       OpFunc
}

// OpRegistry maps operator identifiers to binary functions.
// Populate it during setup; after that it is read-only and may be
// shared between arenas running on different goroutines.
type OpRegistry struct {
	ops          map[string]Op
	percentAddID string
}

// NewOpRegistry creates an empty registry. percentAddID names the
// operator whose consecutive entries are grouped by Stat.CalculateDefault.
func NewOpRegistry(percentAddID string) *OpRegistry {
	return &OpRegistry{
		ops:          make(map[string]Op, 8),
		percentAddID: percentAddID,
	}
}

// DefaultOps returns a registry with the built-in operators.
func DefaultOps() *OpRegistry {
	r := NewOpRegistry(OpPercentAdd)
	r.mustRegister(OpAdd, 10, func(base, value float64) float64 { return base + value })
	r.mustRegister(OpPercentAdd, 20, func(base, value float64) float64 { return base + value })
	r.mustRegister(OpPercentMult, 30, func(base, value float64) float64 { return base * (1 + value) })
	r.mustRegister(OpMult, 40, func(base, value float64) float64 { return base * value })
	r.mustRegister(OpOverride, 50, func(_, value float64) float64 { return value })
	return r
}

// Register adds an operator. Duplicate or empty identifiers are
// configuration errors and should abort startup.
func (r *OpRegistry) Register(id string, priority int, fn OpFunc) error {
	if id == "" || fn == nil {
		return oops.Code(CodeInvalidOp).
			With("op", id).
			Errorf("operator must have an id and a function")
	}
	if _, ok := r.ops[id]; ok {
		return oops.Code(CodeDuplicateOp).
			With("op", id).
			Errorf("operator %q already registered", id)
	}

	r.ops[id] = Op{ID: id, Priority: priority, Fn: fn}
	return nil
}

func (r *OpRegistry) mustRegister(id string, priority int, fn OpFunc) {
	if err := r.Register(id, priority, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the operator registered under id.
func (r *OpRegistry) Lookup(id string) (Op, bool) {
	op, ok := r.ops[id]
	return op, ok
}

// Compute applies operator id to base and value.
// Unknown operators leave base unchanged.
func (r *OpRegistry) Compute(id string, base, value float64) float64 {
	op, ok := r.ops[id]
	if !ok {
		return base
	}
	return op.Fn(base, value)
}

// Priority returns the sort priority of id. Unknown operators sort last.
func (r *OpRegistry) Priority(id string) int {
	if op, ok := r.ops[id]; ok {
		return op.Priority
	}
	return math.MaxInt
}

// PercentAddID returns the operator grouped into a single
// multiplicative step.
func (r *OpRegistry) PercentAddID() string { return r.percentAddID }

// IDs returns registered operator ids ordered by priority.
func (r *OpRegistry) IDs() []string {
	ids := make([]string, 0, len(r.ops))
	for id := range r.ops {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(x, y string) int {
		if c := cmp.Compare(r.ops[x].Priority, r.ops[y].Priority); c != 0 {
			return c
		}
		return cmp.Compare(x, y)
	})
	return ids
}

// SortModifiers orders mods by operator priority, keeping insertion
// order among equal operators.
func (r *OpRegistry) SortModifiers(mods []*Modifier) {
	slices.SortStableFunc(mods, func(a, b *Modifier) int {
		return cmp.Compare(r.Priority(a.Op), r.Priority(b.Op))
	})
}
