package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/trendlake/internal/infra/storage"
)

// Pruner deletes old ledger entries based on retention policy.
type Pruner struct {
	retention time.Duration
	runs      storage.RunRepository
	log       *slog.Logger
}

// NewPruner creates a new Pruner worker. A non-positive retention disables it.
func NewPruner(retention time.Duration, runs storage.RunRepository, log *slog.Logger) *Pruner {
	if log == nil {
		log = slog.Default()
	}
	return &Pruner{
		retention: retention,
		runs:      runs,
		log:       log.With("component", "pruner"),
	}
}

// Prune removes runs that started more than the retention period before now.
func (p *Pruner) Prune(ctx context.Context, now time.Time) {
	if p.retention <= 0 {
		return // Retention disabled
	}

	threshold := now.Add(-p.retention)
	n, err := p.runs.DeleteOlderThan(ctx, threshold)
	if err != nil {
		p.log.Error("Failed to prune runs", "threshold", threshold, "error", err)
		return
	}
	if n > 0 {
		p.log.Info("Pruned ledger", "runs", n, "threshold", threshold)
	}
}
