package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/weeklyreport/weeklyreport/internal/config"
	"github.com/weeklyreport/weeklyreport/internal/metrics"
	"github.com/weeklyreport/weeklyreport/internal/report"
	"github.com/weeklyreport/weeklyreport/internal/sheet"
)

// app holds the components every command shares.
type app struct {
	cfg      *config.Config
	engine   *report.Engine
	format   report.Formatter
	reader   *sheet.Swap
	sheet    sheet.Options
	registry *prometheus.Registry
}

func sheetOptions(cfg *config.Config) sheet.Options {
	return sheet.Options{
		SpreadsheetID:   cfg.Sheet.SpreadsheetID,
		Worksheet:       cfg.Sheet.Worksheet,
		CredentialsFile: cfg.Sheet.CredentialsFile,
		Batch:           cfg.Sheet.Batch,
		Timeout:         cfg.Sheet.Timeout,
	}
}

func appFromContext(ctx context.Context) (*app, error) {
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return nil, fmt.Errorf("no config found in context")
	}
	return newApp(ctx, cfg)
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	roster, err := report.NewRoster(cfg.Roster)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.TimeLocation()
	if err != nil {
		return nil, err
	}

	// A missing or bad credentials file must not stop the server. Queries
	// report the source as unavailable until the watcher dials successfully.
	opts := sheetOptions(cfg)
	var client sheet.Reader
	if c, err := sheet.Dial(ctx, opts); err != nil {
		slog.Warn("sheet client unavailable", "path", opts.CredentialsFile, "err", err)
		client = sheet.Unavailable{Err: err}
	} else {
		client = c
	}
	reader := sheet.NewSwap(client)

	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)
	engine := report.New(roster, reader,
		report.WithScan(cfg.Sheet.FirstRow, cfg.Sheet.LastRow),
		report.WithLocation(loc),
		report.WithSkipHook(rec.RowSkipped),
	)
	reg.MustRegister(
		metrics.NewCollector(engine, cfg.Sheet.Timeout),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &app{
		cfg:      cfg,
		engine:   engine,
		format:   report.FormatterFor(cfg.Locale),
		reader:   reader,
		sheet:    opts,
		registry: reg,
	}, nil
}
