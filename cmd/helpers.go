package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/martech-cli/internal/ingest"
	"github.com/sells-group/martech-cli/internal/pipeline"
	"github.com/sells-group/martech-cli/internal/sink"
	"github.com/sells-group/martech-cli/internal/store"
	"github.com/sells-group/martech-cli/internal/transform"
)

// initStore opens the run-log store and applies migrations.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// buildSink constructs the configured fact-table sink.
func buildSink(ctx context.Context) (sink.Sink, error) {
	switch cfg.Sink.Format {
	case "sqlite":
		return sink.NewSQLiteSink(cfg.Sink.Path, cfg.Sink.Table)
	case "postgres":
		return sink.NewPostgres(ctx, cfg.Sink.DatabaseURL, cfg.Sink.Table)
	case "csv":
		return sink.NewCSVSink(cfg.Sink.Path), nil
	default:
		return nil, eris.Errorf("unknown sink format %q", cfg.Sink.Format)
	}
}

// pipelineOptions assembles run options from config, loading any column
// mapping overrides.
func pipelineOptions() (pipeline.Options, error) {
	mappings := transform.DefaultMappings()
	if cfg.Mappings.Path != "" {
		m, err := transform.LoadMappings(cfg.Mappings.Path)
		if err != nil {
			return pipeline.Options{}, eris.Wrap(err, "load column mappings")
		}
		mappings = m
	}
	return pipeline.Options{
		Sources: ingest.Paths{
			GoogleAds:      cfg.Sources.GoogleAds,
			FacebookAds:    cfg.Sources.FacebookAds,
			EmailCampaigns: cfg.Sources.EmailCampaigns,
			WebTraffic:     cfg.Sources.WebTraffic,
			Clients:        cfg.Sources.Clients,
			Revenue:        cfg.Sources.Revenue,
		},
		Mappings:  mappings,
		ReportDir: cfg.Report.OutDir,
	}, nil
}
