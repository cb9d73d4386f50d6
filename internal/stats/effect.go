package stats

import (
	"slices"

	"github.com/samber/oops"
)

// EffectDef is a named bundle of modifier templates, e.g. a buff or an
// equipment bonus. Templates are never registered; Sheet.ApplyEffect
// clones them into the target sheet's arena.
type EffectDef struct {
	ID              string
	DefaultDuration *Condition
	Modifiers       []*Modifier
}

// EffectCatalog holds effect definitions by id.
// Read-only once loaded; it may be shared between workers.
type EffectCatalog struct {
	defs map[string]*EffectDef
}

// NewEffectCatalog creates an empty catalog.
func NewEffectCatalog() *EffectCatalog {
	return &EffectCatalog{defs: make(map[string]*EffectDef, 16)}
}

// Add registers def. An empty or duplicate id is a configuration error.
func (c *EffectCatalog) Add(def *EffectDef) error {
	if def == nil || def.ID == "" {
		return oops.Code(CodeInvalidEffect).Errorf("effect definition must have a unique id")
	}
	if _, ok := c.defs[def.ID]; ok {
		return oops.Code(CodeDuplicateEffect).
			With("effect", def.ID).
			Errorf("effect %q already registered", def.ID)
	}

	c.defs[def.ID] = def
	return nil
}

// Get returns the definition registered under id.
func (c *EffectCatalog) Get(id string) (*EffectDef, bool) {
	def, ok := c.defs[id]
	return def, ok
}

// Len returns the number of definitions.
func (c *EffectCatalog) Len() int { return len(c.defs) }

// IDs returns definition ids in lexical order.
func (c *EffectCatalog) IDs() []string {
	ids := make([]string, 0, len(c.defs))
	for id := range c.defs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
