// Package pipeline orchestrates one end-to-end batch run: ingest, clean,
// combine, join, metrics, attribution, sink, reports. Every stage outcome is
// recorded in the run log.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/martech-cli/internal/ingest"
	"github.com/sells-group/martech-cli/internal/model"
	"github.com/sells-group/martech-cli/internal/report"
	"github.com/sells-group/martech-cli/internal/sink"
	"github.com/sells-group/martech-cli/internal/store"
	"github.com/sells-group/martech-cli/internal/table"
	"github.com/sells-group/martech-cli/internal/transform"
)

// Options configures a pipeline run.
type Options struct {
	Sources   ingest.Paths
	Mappings  transform.Mappings
	ReportDir string
}

// Pipeline wires the transform stages together with a sink and a run log.
type Pipeline struct {
	opts  Options
	store store.Store
	sink  sink.Sink
}

// New creates a Pipeline. A nil Mappings in opts uses the built-in defaults.
func New(opts Options, st store.Store, sk sink.Sink) *Pipeline {
	return &Pipeline{opts: opts, store: st, sink: sk}
}

// Result summarizes one completed run.
type Result struct {
	RunID    string                  `json:"run_id"`
	Rows     int                     `json:"rows"`
	Warnings int                     `json:"warnings"`
	Summary  transform.MetricSummary `json:"summary"`
	Lift     []report.LiftRow        `json:"lift,omitempty"`
}

// Run executes the full batch. The run is recorded as failed if any stage
// returns an error; source-level degradation (missing channel files, absent
// ledger) is logged and tolerated, a missing client roster is not.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	run, err := p.store.CreateRun(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	log := zap.L().With(zap.String("run_id", run.ID))
	log.Info("pipeline: run started")

	res, err := p.execute(ctx, run.ID)
	if err != nil {
		if ferr := p.store.FailRun(ctx, run.ID, err.Error()); ferr != nil {
			log.Error("pipeline: record failure", zap.Error(ferr))
		}
		return nil, err
	}

	if err := p.store.CompleteRun(ctx, run.ID, int64(res.Rows)); err != nil {
		return nil, eris.Wrap(err, "pipeline: complete run")
	}
	log.Info("pipeline: run complete",
		zap.Int("rows", res.Rows),
		zap.Int("warnings", res.Warnings),
	)
	res.RunID = run.ID
	return res, nil
}

func (p *Pipeline) execute(ctx context.Context, runID string) (*Result, error) {
	res := &Result{}

	var sources map[string]*table.Table
	err := p.trackStage(ctx, runID, "ingest", func() (int64, int, error) {
		var err error
		sources, err = ingest.LoadAll(ctx, p.opts.Sources)
		if err != nil {
			return 0, 0, err
		}
		rows := int64(0)
		for _, t := range sources {
			rows += int64(t.NumRows())
		}
		return rows, 0, nil
	})
	if err != nil {
		return nil, err
	}

	// The roster feeds the join stage directly; the channel exports and the
	// revenue ledger go through cleaning.
	clients := sources[model.SourceClients]
	channels := make(map[string]*table.Table, len(sources))
	for name, t := range sources {
		if name == model.SourceClients {
			continue
		}
		channels[name] = t
	}

	var cleaned map[string]*table.Table
	err = p.trackStage(ctx, runID, "clean", func() (int64, int, error) {
		var warns []transform.Warning
		cleaned, warns = transform.NewCleaner(p.opts.Mappings).Clean(channels)
		res.Warnings += len(warns)
		rows := int64(0)
		for _, t := range cleaned {
			rows += int64(t.NumRows())
		}
		return rows, len(warns), nil
	})
	if err != nil {
		return nil, err
	}

	// The cleaned ledger is attribution input, not a fact channel.
	ledger := cleaned[model.SourceRevenue]
	delete(cleaned, model.SourceRevenue)

	var fact *table.Table
	err = p.trackStage(ctx, runID, "combine", func() (int64, int, error) {
		fact = transform.NewCombiner().Combine(cleaned)
		return int64(fact.NumRows()), 0, nil
	})
	if err != nil {
		return nil, err
	}

	err = p.trackStage(ctx, runID, "join", func() (int64, int, error) {
		joined, err := transform.NewClientJoiner().Join(fact, clients)
		if err != nil {
			return 0, 0, err
		}
		fact = joined
		return int64(fact.NumRows()), 0, nil
	})
	if err != nil {
		return nil, err
	}

	err = p.trackStage(ctx, runID, "metrics", func() (int64, int, error) {
		calc := transform.NewCalculator()
		fact = calc.Apply(fact)
		res.Summary = calc.Summarize(fact)
		return int64(fact.NumRows()), 0, nil
	})
	if err != nil {
		return nil, err
	}

	err = p.trackStage(ctx, runID, "attribution", func() (int64, int, error) {
		fact = transform.NewEngine().Apply(fact, ledger)
		return int64(fact.NumRows()), 0, nil
	})
	if err != nil {
		return nil, err
	}

	err = p.trackStage(ctx, runID, "sink", func() (int64, int, error) {
		if err := p.sink.Write(ctx, fact); err != nil {
			return 0, 0, err
		}
		return int64(fact.NumRows()), 0, nil
	})
	if err != nil {
		return nil, err
	}

	if p.opts.ReportDir != "" {
		err = p.trackStage(ctx, runID, "reports", func() (int64, int, error) {
			gen := report.NewGenerator(p.opts.ReportDir)
			if err := gen.Generate(fact); err != nil {
				return 0, 0, err
			}
			lift, err := gen.Lift(fact)
			if err != nil {
				return 0, 0, err
			}
			res.Lift = lift
			return int64(fact.NumRows()), 0, nil
		})
		if err != nil {
			return nil, err
		}
	}

	res.Rows = fact.NumRows()
	return res, nil
}

// trackStage records a stage's outcome in the run log around fn.
func (p *Pipeline) trackStage(ctx context.Context, runID, name string, fn func() (int64, int, error)) error {
	stage, err := p.store.CreateStage(ctx, runID, name)
	if err != nil {
		return eris.Wrapf(err, "pipeline: create stage %s", name)
	}

	start := time.Now()
	rows, warnings, runErr := fn()

	stage.Rows = rows
	stage.Warnings = warnings
	stage.DurationMS = time.Since(start).Milliseconds()
	if runErr != nil {
		stage.Status = model.StageStatusFailed
		stage.Error = runErr.Error()
	} else {
		stage.Status = model.StageStatusComplete
	}
	if err := p.store.CompleteStage(ctx, stage); err != nil {
		zap.L().Error("pipeline: record stage", zap.String("stage", name), zap.Error(err))
	}
	if runErr != nil {
		return eris.Wrapf(runErr, "pipeline: stage %s", name)
	}
	zap.L().Info("pipeline: stage complete",
		zap.String("stage", name),
		zap.Int64("rows", rows),
		zap.Int64("duration_ms", stage.DurationMS),
	)
	return nil
}
