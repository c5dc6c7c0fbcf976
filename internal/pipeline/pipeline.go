// Package pipeline wires the stages together: clean (ingest + reconcile),
// report, fetch and publish. Every command is recorded in the run ledger.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/orgaos-cli/internal/config"
	"github.com/sells-group/orgaos-cli/internal/model"
	"github.com/sells-group/orgaos-cli/internal/store"
)

// Runner executes pipeline commands against one configuration.
type Runner struct {
	cfg   *config.Config
	store store.Store
}

// New creates a Runner. st may be nil, in which case runs are not recorded.
func New(cfg *config.Config, st store.Store) *Runner {
	return &Runner{cfg: cfg, store: st}
}

// StageTiming is the wall time of one named stage.
type StageTiming struct {
	Name       string `yaml:"name" json:"name"`
	DurationMS int64  `yaml:"duration_ms" json:"duration_ms"`
}

// track opens a ledger row for command, runs fn, and closes the row with
// fn's summary or error. Ledger failures are logged, never returned.
func (r *Runner) track(ctx context.Context, command string, fn func(run *model.Run) (model.RunSummary, error)) error {
	log := zap.L().With(zap.String("component", "pipeline"), zap.String("command", command))

	run := &model.Run{ID: uuid.New().String(), Command: command, Status: model.RunStatusRunning, StartedAt: time.Now().UTC()}
	if r.store != nil {
		started, err := r.store.StartRun(ctx, command)
		if err != nil {
			log.Warn("pipeline: failed to record run start", zap.Error(err))
		} else {
			run = started
		}
	}
	log = log.With(zap.String("run_id", run.ID))
	log.Info("pipeline: run started")

	summary, err := fn(run)
	if err != nil {
		log.Error("pipeline: run failed", zap.Error(err))
		if r.store != nil {
			if ferr := r.store.FailRun(ctx, run.ID, err.Error()); ferr != nil {
				log.Warn("pipeline: failed to record run failure", zap.Error(ferr))
			}
		}
		return err
	}

	log.Info("pipeline: run complete",
		zap.Int("rows_in", summary.RowsIn),
		zap.Int("rows_out", summary.RowsOut),
		zap.Int("warnings", summary.Warnings),
		zap.Duration("elapsed", time.Since(run.StartedAt)),
	)
	if r.store != nil {
		if cerr := r.store.CompleteRun(ctx, run.ID, summary); cerr != nil {
			log.Warn("pipeline: failed to record run completion", zap.Error(cerr))
		}
	}
	return nil
}

// stage runs fn and appends its timing.
func stage(log *zap.Logger, timings *[]StageTiming, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start).Milliseconds()
	*timings = append(*timings, StageTiming{Name: name, DurationMS: d})
	if err != nil {
		log.Error("pipeline: stage failed", zap.String("stage", name), zap.Int64("duration_ms", d), zap.Error(err))
		return err
	}
	log.Info("pipeline: stage complete", zap.String("stage", name), zap.Int64("duration_ms", d))
	return nil
}
