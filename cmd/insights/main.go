package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"salesinsights/internal/app"
	"salesinsights/internal/config"
	"salesinsights/internal/observability"
)

const version = "1.0.0"

type options struct {
	dataDir  string
	xlsx     bool
	logLevel string
}

func newRootCommand(stdout io.Writer, fsys afero.Fs) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "insights",
		Short:         "Summarize the orders, people and returns samples and export a text report",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg, opts)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger := observability.NewLogger(cfg.Logger)
			slog.SetDefault(logger)
			logger.Debug("starting insights run", "version", version, "data_dir", cfg.Data.Dir)

			return app.New(cfg, fsys, nil, stdout, logger).Run(cmd.Context())
		},
	}

	cmd.SetOut(stdout)
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "directory holding the CSV inputs and the report (overrides INSIGHTS_DATA_DIR)")
	cmd.Flags().BoolVar(&opts.xlsx, "xlsx", false, "also export Data_Insights.xlsx")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides INSIGHTS_LOG_LEVEL)")

	return cmd
}

// applyFlags copies explicitly set flags over the environment configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts options) {
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.Data.Dir = opts.dataDir
	}
	if flags.Changed("xlsx") {
		cfg.Data.ExportXLSX = opts.xlsx
	}
	if flags.Changed("log-level") {
		cfg.Logger.Level = opts.logLevel
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdout, afero.NewOsFs()).ExecuteContext(ctx); err != nil {
		slog.Error("insights run failed", "error", err)
		stop()
		os.Exit(1)
	}
}
