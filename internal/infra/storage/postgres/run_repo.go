package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/vietddude/trendlake/internal/core/domain"
	"github.com/vietddude/trendlake/internal/infra/storage"
)

type runRow struct {
	ID           string       `db:"id"`
	Kind         string       `db:"kind"`
	CreationDate string       `db:"creation_date"`
	Period       string       `db:"period"`
	Status       string       `db:"status"`
	Error        string       `db:"error"`
	StartedAt    time.Time    `db:"started_at"`
	FinishedAt   sql.NullTime `db:"finished_at"`
}

func (r runRow) toDomain() *domain.Run {
	run := &domain.Run{
		ID:           r.ID,
		Kind:         domain.RunKind(r.Kind),
		CreationDate: r.CreationDate,
		Period:       domain.Period(r.Period),
		Status:       domain.RunStatus(r.Status),
		Error:        r.Error,
		StartedAt:    r.StartedAt,
	}
	if r.FinishedAt.Valid {
		run.FinishedAt = r.FinishedAt.Time
	}
	return run
}

type artifactRow struct {
	RunID        string         `db:"run_id"`
	Artifact     string         `db:"artifact"`
	SizeBytes    int64          `db:"size_bytes"`
	Attempts     int            `db:"attempts"`
	Created      bool           `db:"created"`
	Defective    bool           `db:"defective"`
	PublishedKey string         `db:"published_key"`
	Defects      pq.StringArray `db:"defects"`
}

// RunRepo implements storage.RunRepository using PostgreSQL.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a new PostgreSQL run repository.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Start inserts a run.
func (r *RunRepo) Start(ctx context.Context, run *domain.Run) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO runs (id, kind, creation_date, period, status, error, started_at)
		VALUES (:id, :kind, :creation_date, :period, :status, :error, :started_at)`,
		runRow{
			ID:           run.ID,
			Kind:         string(run.Kind),
			CreationDate: run.CreationDate,
			Period:       string(run.Period),
			Status:       string(run.Status),
			Error:        run.Error,
			StartedAt:    run.StartedAt,
		})
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// RecordArtifact upserts the outcome of one artifact.
func (r *RunRepo) RecordArtifact(ctx context.Context, o domain.ArtifactOutcome) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO run_artifacts
			(run_id, artifact, size_bytes, attempts, created, defective, published_key, defects)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id, artifact) DO UPDATE SET
			size_bytes = EXCLUDED.size_bytes,
			attempts = EXCLUDED.attempts,
			created = EXCLUDED.created,
			defective = EXCLUDED.defective,
			published_key = EXCLUDED.published_key,
			defects = EXCLUDED.defects`,
		o.RunID, string(o.Kind), o.SizeBytes, o.Attempts, o.Created, o.Defective, o.PublishedKey,
		pq.Array(nonNil(o.Defects)),
	)
	if err != nil {
		return fmt.Errorf("failed to record artifact: %w", err)
	}
	return nil
}

// Finish sets the terminal status of a run.
func (r *RunRepo) Finish(
	ctx context.Context,
	runID string,
	status domain.RunStatus,
	errMsg string,
	finishedAt time.Time,
) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE runs SET status = $2, error = $3, finished_at = $4 WHERE id = $1`,
		runID, string(status), errMsg, finishedAt)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrRunNotFound
	}
	return nil
}

// Get retrieves a run by id.
func (r *RunRepo) Get(ctx context.Context, runID string) (*domain.Run, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM runs WHERE id = $1`, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return row.toDomain(), nil
}

// Recent lists the latest runs, newest first.
func (r *RunRepo) Recent(ctx context.Context, limit int) ([]*domain.Run, error) {
	var rows []runRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	runs := make([]*domain.Run, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, row.toDomain())
	}
	return runs, nil
}

// Artifacts lists the outcomes recorded for a run.
func (r *RunRepo) Artifacts(ctx context.Context, runID string) ([]domain.ArtifactOutcome, error) {
	var rows []artifactRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM run_artifacts WHERE run_id = $1 ORDER BY artifact`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	out := make([]domain.ArtifactOutcome, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.ArtifactOutcome{
			RunID:        row.RunID,
			Kind:         domain.ArtifactKind(row.Artifact),
			SizeBytes:    row.SizeBytes,
			Attempts:     row.Attempts,
			Created:      row.Created,
			Defective:    row.Defective,
			PublishedKey: row.PublishedKey,
			Defects:      []string(row.Defects),
		})
	}
	return out, nil
}

// DeleteOlderThan removes runs started before threshold. Artifact rows
// cascade.
func (r *RunRepo) DeleteOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < $1`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return res.RowsAffected()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var _ storage.RunRepository = (*RunRepo)(nil)
