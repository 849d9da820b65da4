// Package control wires configuration into the harvest and publish runs and
// owns their ledger entries and failure alerts.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/trendlake/internal/artifact"
	"github.com/vietddude/trendlake/internal/core/config"
	"github.com/vietddude/trendlake/internal/core/domain"
	"github.com/vietddude/trendlake/internal/core/worker"
	"github.com/vietddude/trendlake/internal/harvest/collector"
	"github.com/vietddude/trendlake/internal/harvest/fetch"
	"github.com/vietddude/trendlake/internal/harvest/metrics"
	"github.com/vietddude/trendlake/internal/harvest/sink"
)

// App runs harvests and publishes.
type App struct {
	cfg     *config.AppConfig
	deps    Deps
	closers []func() error
	log     *slog.Logger
}

// New creates an app over explicit dependencies.
func New(cfg *config.AppConfig, deps Deps) *App {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &App{
		cfg:  cfg,
		deps: deps,
		log:  slog.Default().With("component", "control"),
	}
}

// Close releases connections opened by NewApp.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Harvest collects one period into the raw sinks under the work dir.
func (a *App) Harvest(ctx context.Context) error {
	now := a.deps.Now()
	run := a.startRun(ctx, domain.RunHarvest, domain.PartitionOf(now), now)

	summary, err := a.harvest(ctx, run.Period)
	if err == nil {
		a.log.Info("Harvest finished",
			"run_id", run.ID, "regions", summary.Regions, "ranked_items", summary.RankedItems)
	}
	return a.finishRun(ctx, run, err)
}

func (a *App) harvest(ctx context.Context, period domain.Period) (collector.Summary, error) {
	if err := os.MkdirAll(a.cfg.WorkDir, 0o755); err != nil {
		return collector.Summary{}, fmt.Errorf("failed to create work dir: %w", err)
	}

	files := map[domain.ArtifactKind]*sink.File{}
	defer func() {
		for kind, f := range files {
			if err := f.Close(); err != nil {
				a.log.Error("Failed to close sink", "sink", kind, "error", err)
			}
		}
	}()
	for _, kind := range domain.ArtifactKinds {
		f, err := sink.Create(string(kind), filepath.Join(a.cfg.WorkDir, kind.RawFile()))
		if err != nil {
			return collector.Summary{}, err
		}
		files[kind] = f
	}

	engine := fetch.NewEngine(a.deps.Credentials, a.deps.NewClient, period, a.cfg.Retry, a.log)
	if a.deps.Sleeper != nil {
		engine.SetSleeper(a.deps.Sleeper)
	}

	c := collector.NewCollector(engine, collector.Sinks{
		Backup:      files[domain.ArtifactBackup],
		Regions:     files[domain.ArtifactRegions],
		Categories:  files[domain.ArtifactCategories],
		RankedItems: files[domain.ArtifactRankedItems],
	}, a.cfg.YouTube.MaxResults, a.log)
	c.SetClock(a.deps.Now)

	return c.Run(ctx)
}

// Publish builds and publishes the artifacts in the work dir. Empty
// creationDate or period fall back to the current time.
func (a *App) Publish(ctx context.Context, creationDate, period string) error {
	now := a.deps.Now()
	partition, err := domain.NewPartition(now, creationDate, period)
	if err != nil {
		return err
	}
	run := a.startRun(ctx, domain.RunPublish, partition, now)

	pipeline := artifact.NewPipeline(artifact.Config{
		Dir:         a.cfg.WorkDir,
		MaxAttempts: a.cfg.Artifacts.MaxAttempts,
		MinSize:     a.cfg.Artifacts.MinSizeFor,
	}, a.deps.Converter, a.deps.Compressor, a.deps.Publisher, a.log)

	report, err := pipeline.Run(ctx, partition)
	for _, outcome := range report.Outcomes {
		outcome.RunID = run.ID
		if lerr := a.deps.Runs.RecordArtifact(ctx, outcome); lerr != nil {
			a.log.Warn("Failed to record artifact", "run_id", run.ID, "artifact", outcome.Kind, "error", lerr)
		}
	}
	return a.finishRun(ctx, run, err)
}

func (a *App) startRun(ctx context.Context, kind domain.RunKind, p domain.Partition, now time.Time) *domain.Run {
	run := &domain.Run{
		ID:           uuid.NewString(),
		Kind:         kind,
		CreationDate: p.CreationDate,
		Period:       p.Period,
		Status:       domain.RunStatusRunning,
		StartedAt:    now,
	}
	if err := a.deps.Runs.Start(ctx, run); err != nil {
		a.log.Warn("Failed to record run start", "run_id", run.ID, "error", err)
	}
	a.log.Info("Run started",
		"run_id", run.ID, "run", kind, "creation_date", p.CreationDate, "period", p.Period)
	return run
}

// finishRun closes the ledger entry, alerts once on failure and flushes
// metrics. It returns runErr unchanged.
func (a *App) finishRun(ctx context.Context, run *domain.Run, runErr error) error {
	// The run may have been canceled; bookkeeping still has to land.
	ctx = context.WithoutCancel(ctx)
	finished := a.deps.Now()

	status := domain.RunStatusSucceeded
	msg := ""
	if runErr != nil {
		status = domain.RunStatusFailed
		msg = runErr.Error()
	}

	if err := a.deps.Runs.Finish(ctx, run.ID, status, msg, finished); err != nil {
		a.log.Warn("Failed to record run finish", "run_id", run.ID, "error", err)
	}
	worker.NewPruner(a.cfg.LedgerRetention, a.deps.Runs, a.log).Prune(ctx, finished)
	metrics.RunDuration.WithLabelValues(string(run.Kind), string(status)).
		Observe(finished.Sub(run.StartedAt).Seconds())

	if runErr != nil {
		a.log.Error("Run failed", "run_id", run.ID, "run", run.Kind, "error", runErr)
		subject := fmt.Sprintf("trendlake %s failed (%s period %s)", run.Kind, run.CreationDate, run.Period)
		body := fmt.Sprintf("run %s: %v", run.ID, runErr)
		if err := a.deps.Alerter.Notify(ctx, subject, body); err != nil {
			a.log.Error("Failed to send alert", "run_id", run.ID, "error", err)
		}
	} else {
		a.log.Info("Run succeeded", "run_id", run.ID, "run", run.Kind, "elapsed", finished.Sub(run.StartedAt))
	}

	if err := metrics.Push(a.cfg.Metrics, string(run.Kind)); err != nil {
		a.log.Warn("Failed to push metrics", "error", err)
	}
	return runErr
}
