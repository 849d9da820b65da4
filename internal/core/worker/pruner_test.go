package worker

import (
	"context"
	"testing"
	"time"

	"github.com/vietddude/trendlake/internal/core/domain"
	"github.com/vietddude/trendlake/internal/infra/storage/memory"
)

func TestPruner_RemovesExpiredRuns(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRunRepo(memory.NewMemoryStorage())
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	_ = repo.Start(ctx, &domain.Run{ID: "old", StartedAt: now.Add(-8 * 24 * time.Hour)})
	_ = repo.Start(ctx, &domain.Run{ID: "new", StartedAt: now.Add(-time.Hour)})

	NewPruner(7*24*time.Hour, repo, nil).Prune(ctx, now)

	runs, _ := repo.Recent(ctx, 10)
	if len(runs) != 1 || runs[0].ID != "new" {
		t.Errorf("remaining runs = %v", runs)
	}
}

func TestPruner_Disabled(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRunRepo(memory.NewMemoryStorage())
	now := time.Now()
	_ = repo.Start(ctx, &domain.Run{ID: "ancient", StartedAt: now.Add(-365 * 24 * time.Hour)})

	NewPruner(0, repo, nil).Prune(ctx, now)

	if runs, _ := repo.Recent(ctx, 10); len(runs) != 1 {
		t.Errorf("disabled pruner removed runs")
	}
}
