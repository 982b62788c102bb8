// Package app wires the loader, statistics and exporters into one run.
package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"

	"salesinsights/internal/config"
	"salesinsights/internal/loader"
	"salesinsights/internal/models"
	"salesinsights/internal/observability"
	"salesinsights/internal/report"
	"salesinsights/internal/services"
)

type App struct {
	cfg    *config.Config
	fs     afero.Fs
	clock  clockwork.Clock
	stdout io.Writer
	logger *slog.Logger
}

func New(cfg *config.Config, fsys afero.Fs, clock clockwork.Clock, stdout io.Writer, logger *slog.Logger) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		cfg:    cfg,
		fs:     fsys,
		clock:  clock,
		stdout: stdout,
		logger: logger,
	}
}

// Run loads the dataset once, prints the statistics and exports the report.
func (a *App) Run(ctx context.Context) (err error) {
	ctx, span := observability.StartSpan(ctx, "insights.run")
	span.SetTag("data.dir", a.cfg.Data.Dir)
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
		a.logger.Debug("run finished", "span", span)
	}()

	insights, err := a.Compute(ctx)
	if err != nil {
		return err
	}

	if err := report.PrintStatistics(a.stdout, insights); err != nil {
		return err
	}

	exporter := report.NewExporter(a.fs, a.cfg.Data.InsightsPath(), a.clock, a.stdout, a.logger)
	if _, err := exporter.Export(ctx, insights); err != nil {
		return err
	}

	if a.cfg.Data.ExportXLSX {
		xlsx := report.NewXLSXExporter(a.fs, a.cfg.Data.XLSXPath(), a.logger)
		if _, err := xlsx.Export(ctx, insights); err != nil {
			return err
		}
	}

	return nil
}

// Compute loads the dataset and summarizes it without producing any output
// besides the loader's progress line.
func (a *App) Compute(ctx context.Context) (*models.Insights, error) {
	start := a.clock.Now()

	ds, err := loader.New(a.fs, a.cfg.Data, a.stdout, a.logger).Load(ctx)
	if err != nil {
		return nil, err
	}

	insights, err := services.Summarize(ds)
	if err != nil {
		return nil, err
	}
	insights.ComputedAt = a.clock.Now()

	a.logger.Debug("insights computed", "duration", a.clock.Since(start).Round(time.Millisecond))
	return insights, nil
}
