package sim

import (
	"math"
	"time"

	"github.com/udisondev/statforge/internal/pool"
	"github.com/udisondev/statforge/internal/stats"
)

// StatSummary aggregates the final value of one stat over all actors.
type StatSummary struct {
	Count int
	Min   float64
	Max   float64
	Sum   float64
}

func newStatSummary() *StatSummary {
	return &StatSummary{Min: math.Inf(1), Max: math.Inf(-1)}
}

func (s *StatSummary) add(v float64) {
	s.Count++
	s.Sum += v
	s.Min = min(s.Min, v)
	s.Max = max(s.Max, v)
}

func (s *StatSummary) merge(o *StatSummary) {
	s.Count += o.Count
	s.Sum += o.Sum
	s.Min = min(s.Min, o.Min)
	s.Max = max(s.Max, o.Max)
}

// Mean returns the average value, or zero when nothing was observed.
func (s *StatSummary) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// EventCounts tallies modifier set changes reported by sheets.
type EventCounts struct {
	Added   int
	Removed int
	Updated int
}

func (e *EventCounts) record(_ string, change stats.ModChange) {
	switch change {
	case stats.ModChangeAdd:
		e.Added++
	case stats.ModChangeRemove:
		e.Removed++
	case stats.ModChangeUpdate:
		e.Updated++
	}
}

func (e *EventCounts) merge(o EventCounts) {
	e.Added += o.Added
	e.Removed += o.Removed
	e.Updated += o.Updated
}

// WorkerReport is the final state of one worker.
type WorkerReport struct {
	ID     int
	Actors int
	Pools  []pool.Stats
}

// Report is the outcome of a simulation run.
type Report struct {
	Actors  int
	Ticks   int
	Stats   map[string]*StatSummary
	Events  EventCounts
	Workers []WorkerReport
	Elapsed time.Duration
}

func newReport(actors, ticks int) Report {
	return Report{
		Actors: actors,
		Ticks:  ticks,
		Stats:  make(map[string]*StatSummary),
	}
}

func (r *Report) merge(w workerResult) {
	for id, sum := range w.values {
		dst, ok := r.Stats[id]
		if !ok {
			dst = newStatSummary()
			r.Stats[id] = dst
		}
		dst.merge(sum)
	}
	r.Events.merge(w.events)
	r.Workers = append(r.Workers, WorkerReport{ID: w.id, Actors: w.actors, Pools: w.pools})
}

type workerResult struct {
	id     int
	actors int
	values map[string]*StatSummary
	events EventCounts
	pools  []pool.Stats
}

func (w *workerResult) observe(statID string, v float64) {
	sum, ok := w.values[statID]
	if !ok {
		sum = newStatSummary()
		w.values[statID] = sum
	}
	sum.add(v)
}
