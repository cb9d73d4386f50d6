// Package sim drives a population of stat sheets through simulated
// ticks. Actors are partitioned between workers; each worker owns an
// arena and never shares pooled objects with another worker.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/statforge/internal/config"
	"github.com/udisondev/statforge/internal/stats"
)

// Source identifies one application of a sourced effect.
type Source struct {
	ID     ulid.ULID
	Effect string
}

// Runner runs the configured simulation.
type Runner struct {
	cfg      config.SimConfig
	prealloc config.PoolConfig
	interval time.Duration

	ops   *stats.OpRegistry
	types *stats.ConditionRegistry

	uses []scheduledEffect
}

type scheduledEffect struct {
	def  *stats.EffectDef
	use  config.EffectUse
	slot int // index into the per-actor source table, -1 when sourceless
}

// NewRunner checks that every scheduled effect exists in catalog.
// The registries and the catalog are only read once the run starts.
func NewRunner(cfg config.Config, ops *stats.OpRegistry, types *stats.ConditionRegistry, catalog *stats.EffectCatalog) (*Runner, error) {
	r := &Runner{
		cfg:      cfg.Sim,
		prealloc: cfg.Pool,
		interval: cfg.TickInterval,
		ops:      ops,
		types:    types,
	}

	slots := 0
	for _, use := range cfg.Sim.Effects {
		def, ok := catalog.Get(use.ID)
		if !ok {
			return nil, fmt.Errorf("scheduled effect %q not found in catalog", use.ID)
		}
		se := scheduledEffect{def: def, use: use, slot: -1}
		if use.Sourced {
			se.slot = slots
			slots++
		}
		r.uses = append(r.uses, se)
	}
	return r, nil
}

// Run simulates every actor and returns the aggregated report.
// It stops early when ctx is cancelled.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	start := time.Now()

	workers := max(1, r.cfg.Workers)
	results := make([]workerResult, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		from := w * r.cfg.Actors / workers
		to := (w + 1) * r.cfg.Actors / workers

		g.Go(func() error {
			res, err := r.runWorker(gctx, w, to-from)
			if err != nil {
				return fmt.Errorf("worker %d: %w", w, err)
			}
			results[w] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := newReport(r.cfg.Actors, r.cfg.Ticks)
	for _, res := range results {
		report.merge(res)
	}
	report.Elapsed = time.Since(start)

	slog.Info("simulation finished",
		"actors", report.Actors,
		"ticks", report.Ticks,
		"workers", len(report.Workers),
		"elapsed", report.Elapsed)
	return report, nil
}

type actor struct {
	sheet   *stats.Sheet
	sources []*Source
}

func (r *Runner) runWorker(ctx context.Context, id, actors int) (workerResult, error) {
	arena := stats.NewArena(r.ops, r.types)
	arena.Prealloc(r.prealloc.PreallocConditions, r.prealloc.PreallocModifiers)

	res := workerResult{id: id, actors: actors, values: make(map[string]*StatSummary, len(r.cfg.BaseStats))}

	population := make([]actor, actors)
	for i := range population {
		population[i] = actor{
			sheet:   r.newSheet(arena, &res.events),
			sources: make([]*Source, len(r.uses)),
		}
	}

	err := r.simulate(ctx, population)
	if err == nil {
		for _, a := range population {
			for statID, v := range a.sheet.Values() {
				res.observe(statID, v)
			}
		}
	}

	for _, a := range population {
		a.sheet.Close()
	}
	res.pools = arena.PoolStats()

	if err != nil {
		return res, err
	}

	slog.Debug("worker finished", "worker", id, "actors", actors,
		"added", res.events.Added, "removed", res.events.Removed)
	return res, nil
}

func (r *Runner) simulate(ctx context.Context, population []actor) error {
	var ticker *time.Ticker
	if r.interval > 0 {
		ticker = time.NewTicker(r.interval)
		defer ticker.Stop()
	}

	delta := r.cfg.TickDelta.Seconds()
	for tick := range r.cfg.Ticks {
		if err := ctx.Err(); err != nil {
			return err
		}

		for i := range population {
			r.applyScheduled(&population[i], tick)
			population[i].sheet.Process(delta)
		}

		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}
	return nil
}

func (r *Runner) newSheet(arena *stats.Arena, events *EventCounts) *stats.Sheet {
	sheet := stats.NewSheet(arena)
	for id, base := range r.cfg.BaseStats {
		sheet.AddStat(arena.NewStat(id, base))
	}
	sheet.OnModChanged(events.record)
	return sheet
}

func (r *Runner) applyScheduled(a *actor, tick int) {
	for _, se := range r.uses {
		due := tick == 0 || (se.use.Every > 0 && tick%se.use.Every == 0)
		if !due {
			continue
		}

		if se.slot < 0 {
			a.sheet.ApplyEffect(se.def, nil)
			continue
		}

		// A sourced effect refreshes: the previous application goes away
		// with its source.
		if prev := a.sources[se.slot]; prev != nil {
			a.sheet.RemoveModsBySource(prev)
		}
		src := &Source{ID: ulid.Make(), Effect: se.def.ID}
		a.sources[se.slot] = src
		a.sheet.ApplyEffect(se.def, src)
	}
}
