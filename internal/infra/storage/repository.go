package storage

import (
	"context"
	"errors"
	"time"

	"github.com/vietddude/trendlake/internal/core/domain"
)

var (
	// ErrRunNotFound is returned when a run doesn't exist
	ErrRunNotFound = errors.New("run not found")
)

// RunRepository is the ledger of harvest and publish runs
type RunRepository interface {
	// Start records a new run in the running state
	Start(ctx context.Context, run *domain.Run) error

	// RecordArtifact stores the outcome of one artifact of a publish run
	RecordArtifact(ctx context.Context, outcome domain.ArtifactOutcome) error

	// Finish sets the terminal status of a run
	Finish(
		ctx context.Context,
		runID string,
		status domain.RunStatus,
		errMsg string,
		finishedAt time.Time,
	) error

	// Get retrieves a run by id
	Get(ctx context.Context, runID string) (*domain.Run, error)

	// Recent lists the latest runs, newest first
	Recent(ctx context.Context, limit int) ([]*domain.Run, error)

	// Artifacts lists the outcomes recorded for a run
	Artifacts(ctx context.Context, runID string) ([]domain.ArtifactOutcome, error)

	// DeleteOlderThan removes runs started before the threshold
	DeleteOlderThan(ctx context.Context, threshold time.Time) (int64, error)
}
