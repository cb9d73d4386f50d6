package stats

import "slices"

// Growth describes how content systems scale a stat with level.
// The engine stores and copies it but never interprets it.
type Growth struct {
	TypeID string
	Start  float64
	End    float64
}

// Stat is a named value composed from a base and an ordered list of
// owned modifiers. Modifiers stay sorted by operator priority.
type Stat struct {
	arena *Arena

	StatTypeID   string
	Growth       Growth
	BaseValue    float64
	CurrentValue float64
	Modifiers    []*Modifier
}

// AddMod appends mod and restores the canonical operator order.
// The stat takes ownership of mod.
func (s *Stat) AddMod(mod *Modifier) {
	s.Modifiers = append(s.Modifiers, mod)
	s.SortModifiers()
}

// SortModifiers re-sorts the list by operator priority.
func (s *Stat) SortModifiers() {
	s.arena.ops.SortModifiers(s.Modifiers)
}

// CalculateDefault folds the active modifiers over BaseValue in order.
//
// Consecutive percent-additive modifiers are summed and applied as one
// multiplicative step, result *= 1 + sum, before the next other
// operator or at the end of the list. Every other operator applies
// immediately. Hidden modifiers are skipped when ignoreHidden is set.
func (s *Stat) CalculateDefault(ignoreHidden bool) float64 {
	percentID := s.arena.ops.PercentAddID()

	result := s.BaseValue
	percent := 0.0
	pending := false

	for _, mod := range s.Modifiers {
		if !mod.active || (ignoreHidden && mod.Hidden) {
			continue
		}

		if mod.Op == percentID {
			percent = mod.Apply(percent)
			pending = true
			continue
		}

		if pending {
			result *= 1 + percent
			percent = 0
			pending = false
		}
		result = mod.Apply(result)
	}

	if pending {
		result *= 1 + percent
	}
	return result
}

// FirstModifier returns the first modifier whose source presence
// matches hasSource.
func (s *Stat) FirstModifier(hasSource bool) (*Modifier, bool) {
	for _, mod := range s.Modifiers {
		if mod.HasSource() == hasSource {
			return mod, true
		}
	}
	return nil, false
}

// TryRemoveMod removes mod by identity, unregisters it and returns it
// to the pool. Returns false if mod is not on this stat.
func (s *Stat) TryRemoveMod(mod *Modifier) bool {
	i := slices.Index(s.Modifiers, mod)
	if i < 0 {
		return false
	}

	s.Modifiers = slices.Delete(s.Modifiers, i, i+1)
	mod.Unregister()
	s.arena.ReleaseModifier(mod)
	return true
}

// TryRemoveModBySource removes the first modifier that has the given
// source and the same operator as template.
func (s *Stat) TryRemoveModBySource(template *Modifier, source any) bool {
	if source == nil || template == nil {
		return false
	}

	for _, mod := range s.Modifiers {
		if mod.source == source && mod.Op == template.Op {
			return s.TryRemoveMod(mod)
		}
	}
	return false
}

// RemoveSourcelessMods prunes every modifier without a source,
// notifying c before each one is pooled. Returns the number removed.
func (s *Stat) RemoveSourcelessMods(c Container) int {
	removed := 0
	for i := len(s.Modifiers) - 1; i >= 0; i-- {
		mod := s.Modifiers[i]
		if mod.source != nil {
			continue
		}

		s.Modifiers = slices.Delete(s.Modifiers, i, i+1)
		if c != nil {
			c.RaiseModChanged(s.StatTypeID, ModChangeRemove)
		}
		mod.Unregister()
		s.arena.ReleaseModifier(mod)
		removed++
	}
	return removed
}

// Clone deep-copies the stat. With ignoreModsWithSource set, sourced
// modifiers are left out. Cloned modifiers start unregistered.
func (s *Stat) Clone(ignoreModsWithSource bool) *Stat {
	clone := s.arena.NewStat(s.StatTypeID, s.BaseValue)
	clone.Growth = s.Growth
	clone.CurrentValue = s.CurrentValue

	for _, mod := range s.Modifiers {
		if ignoreModsWithSource && mod.source != nil {
			continue
		}
		clone.Modifiers = append(clone.Modifiers, mod.Clone())
	}
	return clone
}

// IsEmpty reports whether the stat carries no information: no
// modifiers, no growth and a zero base.
func (s *Stat) IsEmpty() bool {
	return len(s.Modifiers) == 0 && s.Growth.TypeID == "" && s.BaseValue == 0
}

// ClearObject releases every modifier and restores defaults.
// Implements pool.Poolable.
func (s *Stat) ClearObject() {
	for _, mod := range s.Modifiers {
		s.arena.ReleaseModifier(mod)
	}
	clear(s.Modifiers)
	s.Modifiers = s.Modifiers[:0]

	s.StatTypeID = ""
	s.Growth = Growth{}
	s.BaseValue = 0
	s.CurrentValue = 0
}
