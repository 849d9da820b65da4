package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vietddude/trendlake/internal/core/domain"
	"github.com/vietddude/trendlake/internal/infra/storage"
)

type MemoryStorage struct {
	runs      map[string]*domain.Run
	artifacts map[string][]domain.ArtifactOutcome
	mu        sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		runs:      make(map[string]*domain.Run),
		artifacts: make(map[string][]domain.ArtifactOutcome),
	}
}

// -----------------------------------------------------------------------------
// Run Repository
// -----------------------------------------------------------------------------

type RunRepo struct {
	store *MemoryStorage
}

func NewRunRepo(store *MemoryStorage) *RunRepo {
	return &RunRepo{store: store}
}

func (r *RunRepo) Start(ctx context.Context, run *domain.Run) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *run
	r.store.runs[run.ID] = &cp
	return nil
}

func (r *RunRepo) RecordArtifact(ctx context.Context, outcome domain.ArtifactOutcome) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.runs[outcome.RunID]; !ok {
		return storage.ErrRunNotFound
	}
	outcome.Defects = append([]string(nil), outcome.Defects...)
	r.store.artifacts[outcome.RunID] = append(r.store.artifacts[outcome.RunID], outcome)
	return nil
}

func (r *RunRepo) Finish(
	ctx context.Context,
	runID string,
	status domain.RunStatus,
	errMsg string,
	finishedAt time.Time,
) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	run, ok := r.store.runs[runID]
	if !ok {
		return storage.ErrRunNotFound
	}
	run.Status = status
	run.Error = errMsg
	run.FinishedAt = finishedAt
	return nil
}

func (r *RunRepo) Get(ctx context.Context, runID string) (*domain.Run, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	run, ok := r.store.runs[runID]
	if !ok {
		return nil, storage.ErrRunNotFound
	}
	cp := *run
	return &cp, nil
}

func (r *RunRepo) Recent(ctx context.Context, limit int) ([]*domain.Run, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	runs := make([]*domain.Run, 0, len(r.store.runs))
	for _, run := range r.store.runs {
		cp := *run
		runs = append(runs, &cp)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (r *RunRepo) Artifacts(ctx context.Context, runID string) ([]domain.ArtifactOutcome, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]domain.ArtifactOutcome(nil), r.store.artifacts[runID]...), nil
}

func (r *RunRepo) DeleteOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for id, run := range r.store.runs {
		if run.StartedAt.Before(threshold) {
			delete(r.store.runs, id)
			delete(r.store.artifacts, id)
			n++
		}
	}
	return n, nil
}

var _ storage.RunRepository = (*RunRepo)(nil)
