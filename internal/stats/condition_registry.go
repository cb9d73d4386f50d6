package stats

import (
	"slices"

	"github.com/samber/oops"
)

// VariantFactory builds a fresh variant bound to its pooled node.
type VariantFactory func(node *Condition) Variant

// ConditionRegistry maps condition type tags to variant factories.
// Like OpRegistry it is populated during setup and read-only afterwards.
type ConditionRegistry struct {
	factories map[string]VariantFactory
}

// NewConditionRegistry creates an empty registry.
func NewConditionRegistry() *ConditionRegistry {
	return &ConditionRegistry{factories: make(map[string]VariantFactory, 4)}
}

// DefaultConditionTypes returns a registry with the built-in variants.
func DefaultConditionTypes() *ConditionRegistry {
	r := NewConditionRegistry()
	if err := r.Register(TimedTypeID, newTimedVariant); err != nil {
		panic(err)
	}
	return r
}

// Register adds a condition type. Duplicate tags are configuration
// errors and should abort startup.
func (r *ConditionRegistry) Register(typeID string, factory VariantFactory) error {
	if typeID == "" || factory == nil {
		return oops.Code(CodeInvalidConditionType).
			With("condition_type", typeID).
			Errorf("condition type must have a tag and a factory")
	}
	if _, ok := r.factories[typeID]; ok {
		return oops.Code(CodeDuplicateConditionType).
			With("condition_type", typeID).
			Errorf("condition type %q already registered", typeID)
	}

	r.factories[typeID] = factory
	return nil
}

// Lookup returns the factory for typeID.
func (r *ConditionRegistry) Lookup(typeID string) (VariantFactory, bool) {
	f, ok := r.factories[typeID]
	return f, ok
}

// TypeIDs returns the registered tags in lexical order.
func (r *ConditionRegistry) TypeIDs() []string {
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
