package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/udisondev/statforge/internal/content"
	"github.com/udisondev/statforge/internal/stats"
)

// NewValidateCmd creates the validate subcommand.
func NewValidateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [effects.yaml]",
		Short: "Validate the config and an effect catalog without simulating",
		Long: `Checks the configuration values, loads the effect catalog (the
argument, or content.effects_path from the config) and reports
modifiers with unknown operators or effects without modifiers.
Exits with code 0 on success, non-zero on failure.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			path := cfg.Content.EffectsPath
			if len(args) == 1 {
				path = args[0]
			}

			a := stats.NewArena(nil, nil)
			catalog, err := loadCatalog(path, a, true)
			if err != nil {
				return err
			}
			if err := content.CheckEffects(catalog, a.Ops()); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			for _, use := range cfg.Sim.Effects {
				if _, ok := catalog.Get(use.ID); !ok {
					return fmt.Errorf("validation failed: scheduled effect %q not in %s", use.ID, path)
				}
			}

			slog.Info("effect catalog valid", "path", path, "count", catalog.Len())
			cmd.Printf("ok: %d effects in %s\n", catalog.Len(), path)
			return nil
		},
	}
}
