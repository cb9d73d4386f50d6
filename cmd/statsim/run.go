package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/udisondev/statforge/internal/content"
	"github.com/udisondev/statforge/internal/metrics"
	"github.com/udisondev/statforge/internal/sim"
	"github.com/udisondev/statforge/internal/stats"
)

type runOptions struct {
	actors  int
	workers int
	ticks   int
}

// NewRunCmd creates the run subcommand.
func NewRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate the configured population",
		Long: `Builds one stat sheet per actor, applies the scheduled effects from
the catalog, advances every sheet tick by tick and prints the final
stat values together with pool counters.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := root.cfg
			if cmd.Flags().Changed("actors") {
				cfg.Sim.Actors = opts.actors
			}
			if cmd.Flags().Changed("workers") {
				cfg.Sim.Workers = opts.workers
			}
			if cmd.Flags().Changed("ticks") {
				cfg.Sim.Ticks = opts.ticks
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			catalogArena := stats.NewArena(nil, nil)
			catalog, err := loadCatalog(cfg.Content.EffectsPath, catalogArena, len(cfg.Sim.Effects) > 0)
			if err != nil {
				return err
			}

			runner, err := sim.NewRunner(cfg, catalogArena.Ops(), catalogArena.ConditionTypes(), catalog)
			if err != nil {
				return err
			}

			slog.Info("simulation starting",
				"actors", cfg.Sim.Actors,
				"workers", cfg.Sim.Workers,
				"ticks", cfg.Sim.Ticks,
				"effects", len(cfg.Sim.Effects))

			report, err := runner.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("simulation: %w", err)
			}

			reg := prometheus.NewRegistry()
			pools := metrics.NewPoolMetrics()
			pools.Register(reg)
			for _, w := range report.Workers {
				pools.Observe(strconv.Itoa(w.ID), w.Pools)
			}
			if err := logMetrics(reg); err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.actors, "actors", 0, "override sim.actors")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "override sim.workers")
	cmd.Flags().IntVar(&opts.ticks, "ticks", 0, "override sim.ticks")

	return cmd
}

// loadCatalog reads the effect catalog. A missing file is only an error
// when effects are scheduled.
func loadCatalog(path string, a *stats.Arena, required bool) (*stats.EffectCatalog, error) {
	catalog, err := content.LoadEffects(path, a)
	if err == nil {
		return catalog, nil
	}
	if errors.Is(err, os.ErrNotExist) && !required {
		slog.Warn("effects file not found, running without effects", "path", path)
		return stats.NewEffectCatalog(), nil
	}

	if oopsErr, ok := oops.AsOops(err); ok {
		slog.Error("invalid effect catalog", "code", oopsErr.Code(), "path", path)
	}
	return nil, fmt.Errorf("loading effects: %w", err)
}

func logMetrics(g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	for _, family := range families {
		total := 0.0
		for _, m := range family.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			}
		}
		slog.Info("metric", "name", family.GetName(), "series", len(family.GetMetric()), "total", total)
	}
	return nil
}

func printReport(w io.Writer, r sim.Report) {
	fmt.Fprintf(w, "actors=%d ticks=%d workers=%d elapsed=%s\n", r.Actors, r.Ticks, len(r.Workers), r.Elapsed)
	fmt.Fprintf(w, "modifiers added=%d removed=%d updated=%d\n", r.Events.Added, r.Events.Removed, r.Events.Updated)

	ids := make([]string, 0, len(r.Stats))
	for id := range r.Stats {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STAT\tMIN\tMAX\tMEAN")
	for _, id := range ids {
		s := r.Stats[id]
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\n", id, s.Min, s.Max, s.Mean())
	}
	tw.Flush()
}
