package stats

import (
	"log/slog"
	"slices"
)

// ModChangedFunc receives modifier set changes synchronously.
type ModChangedFunc func(statTypeID string, change ModChange)

// Sheet is the stat container of one actor. It owns its stats, ticks
// the timers of registered duration trees and recomputes dirty stats
// on demand.
//
// Not safe for concurrent use.
type Sheet struct {
	arena *Arena

	stats map[string]*Stat
	dirty map[string]struct{}

	tickers   []Ticker
	tickerSet map[Ticker]struct{}
	scratch   []Ticker

	listeners []ModChangedFunc
}

// NewSheet creates an empty sheet drawing from arena a.
func NewSheet(a *Arena) *Sheet {
	return &Sheet{
		arena:     a,
		stats:     make(map[string]*Stat, 16),
		dirty:     make(map[string]struct{}, 16),
		tickers:   make([]Ticker, 0, 16),
		tickerSet: make(map[Ticker]struct{}, 16),
	}
}

// Arena returns the arena the sheet draws from.
func (s *Sheet) Arena() *Arena { return s.arena }

// OnModChanged subscribes fn to modifier set changes.
func (s *Sheet) OnModChanged(fn ModChangedFunc) {
	s.listeners = append(s.listeners, fn)
}

// AddStat takes ownership of st. Returns false if a stat with the same
// id already exists; st is left to the caller in that case.
func (s *Sheet) AddStat(st *Stat) bool {
	if _, ok := s.stats[st.StatTypeID]; ok {
		return false
	}
	s.stats[st.StatTypeID] = st
	s.dirty[st.StatTypeID] = struct{}{}
	return true
}

// Stat returns the stat with the given id.
func (s *Sheet) Stat(statTypeID string) (*Stat, bool) {
	st, ok := s.stats[statTypeID]
	return st, ok
}

// StatIDs returns the stat ids in lexical order.
func (s *Sheet) StatIDs() []string {
	ids := make([]string, 0, len(s.stats))
	for id := range s.stats {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// AddMod attaches mod to its stat, creating a zero-based stat when
// needed, and registers it with source. The sheet takes ownership.
func (s *Sheet) AddMod(mod *Modifier, source any) {
	st, ok := s.stats[mod.StatTypeID]
	if !ok {
		st = s.arena.NewStat(mod.StatTypeID, 0)
		s.stats[st.StatTypeID] = st
	}

	st.AddMod(mod)
	mod.Register(s, source)
	s.RaiseModChanged(st.StatTypeID, ModChangeAdd)
}

// TryRemoveMod removes mod from its stat and returns it to the pool.
// Implements Container.
func (s *Sheet) TryRemoveMod(mod *Modifier) bool {
	statTypeID := mod.StatTypeID

	st, ok := s.stats[statTypeID]
	if !ok || !st.TryRemoveMod(mod) {
		return false
	}

	s.RaiseModChanged(statTypeID, ModChangeRemove)
	return true
}

// RemoveModsBySource removes every modifier registered with source and
// returns how many were removed.
func (s *Sheet) RemoveModsBySource(source any) int {
	if source == nil {
		return 0
	}

	removed := 0
	for _, id := range s.StatIDs() {
		st := s.stats[id]
		for i := len(st.Modifiers) - 1; i >= 0; i-- {
			mod := st.Modifiers[i]
			if mod.source != source {
				continue
			}
			st.TryRemoveMod(mod)
			s.RaiseModChanged(id, ModChangeRemove)
			removed++
		}
	}
	return removed
}

// RemoveSourcelessMods prunes every sourceless modifier on every stat.
func (s *Sheet) RemoveSourcelessMods() int {
	removed := 0
	for _, id := range s.StatIDs() {
		removed += s.stats[id].RemoveSourcelessMods(s)
	}
	return removed
}

// UpdateStat marks the stat dirty and reports an update.
// Implements Container.
func (s *Sheet) UpdateStat(statTypeID string) {
	s.RaiseModChanged(statTypeID, ModChangeUpdate)
}

// RaiseModChanged marks the stat dirty and notifies listeners.
// Implements Container.
func (s *Sheet) RaiseModChanged(statTypeID string, change ModChange) {
	s.dirty[statTypeID] = struct{}{}
	for _, fn := range s.listeners {
		fn(statTypeID, change)
	}
}

// RegisterTicker subscribes t to Process. Implements Container.
func (s *Sheet) RegisterTicker(t Ticker) {
	if _, ok := s.tickerSet[t]; ok {
		return
	}
	s.tickerSet[t] = struct{}{}
	s.tickers = append(s.tickers, t)
}

// UnregisterTicker unsubscribes t. Implements Container.
func (s *Sheet) UnregisterTicker(t Ticker) {
	if _, ok := s.tickerSet[t]; !ok {
		return
	}
	delete(s.tickerSet, t)
	if i := slices.Index(s.tickers, t); i >= 0 {
		s.tickers = slices.Delete(s.tickers, i, i+1)
	}
}

// TickerCount returns the number of subscribed tickers.
func (s *Sheet) TickerCount() int { return len(s.tickers) }

// Process advances every subscribed ticker by delta seconds.
// Tickers removed by a cascade earlier in the same tick are skipped.
func (s *Sheet) Process(delta float64) {
	s.scratch = append(s.scratch[:0], s.tickers...)
	for _, t := range s.scratch {
		if _, ok := s.tickerSet[t]; !ok {
			continue
		}
		t.Process(delta)
	}
	clear(s.scratch)
}

// Value returns the effective value of a stat, recomputing it when a
// modifier changed since the last call.
func (s *Sheet) Value(statTypeID string) (float64, bool) {
	st, ok := s.stats[statTypeID]
	if !ok {
		return 0, false
	}

	if _, isDirty := s.dirty[statTypeID]; isDirty {
		st.CurrentValue = st.CalculateDefault(false)
		delete(s.dirty, statTypeID)
	}
	return st.CurrentValue, true
}

// Values returns the effective value of every stat.
func (s *Sheet) Values() map[string]float64 {
	out := make(map[string]float64, len(s.stats))
	for id := range s.stats {
		v, _ := s.Value(id)
		out[id] = v
	}
	return out
}

// ApplyEffect adds a copy of every modifier template of def with the
// given source. Templates without their own duration get a copy of the
// definition's default duration. Returns the number of modifiers added.
func (s *Sheet) ApplyEffect(def *EffectDef, source any) int {
	for _, tmpl := range def.Modifiers {
		mod := tmpl.CloneTo(s.arena)
		if mod.Duration == nil && def.DefaultDuration != nil {
			mod.Duration = def.DefaultDuration.CloneTo(s.arena)
		}
		s.AddMod(mod, source)
	}

	slog.Debug("effect applied", "effect", def.ID, "modifiers", len(def.Modifiers), "sourced", source != nil)
	return len(def.Modifiers)
}

// PruneEmpty releases stats whose IsEmpty is true and returns how many
// were dropped.
func (s *Sheet) PruneEmpty() int {
	pruned := 0
	for id, st := range s.stats {
		if !st.IsEmpty() {
			continue
		}
		delete(s.stats, id)
		delete(s.dirty, id)
		s.arena.ReleaseStat(st)
		pruned++
	}
	return pruned
}

// Close returns every stat to the arena. The sheet is empty afterwards
// and can be reused.
func (s *Sheet) Close() {
	for id, st := range s.stats {
		s.arena.ReleaseStat(st)
		delete(s.stats, id)
	}
	clear(s.dirty)
	clear(s.tickerSet)
	clear(s.tickers)
	s.tickers = s.tickers[:0]
}
