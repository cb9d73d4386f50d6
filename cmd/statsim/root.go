package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/udisondev/statforge/internal/config"
)

// ConfigPath is used when neither --config nor STATFORGE_CONFIG is set.
const ConfigPath = "config/statsim.yaml"

type rootOptions struct {
	configFile string
	logLevel   string

	cfg config.Config
}

// NewRootCmd creates the root command for the statsim CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "statsim",
		Short: "Stat modifier engine simulator",
		Long: `statsim drives populations of stat sheets through timed effects
and reports the resulting values and pool usage.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file path (default $STATFORGE_CONFIG or "+ConfigPath+")")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log_level (debug, info, warn, error)")

	cmd.AddCommand(NewRunCmd(opts))
	cmd.AddCommand(NewValidateCmd(opts))

	return cmd
}

func (o *rootOptions) load() error {
	path := o.configFile
	if path == "" {
		path = ConfigPath
		if p := os.Getenv("STATFORGE_CONFIG"); p != "" {
			path = p
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	o.cfg = cfg

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Debug("config loaded", "path", path)
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
