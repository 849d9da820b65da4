package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/trendlake/internal/core/domain"
	"github.com/vietddude/trendlake/internal/infra/storage"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("TRENDLAKE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("Skipping live ledger test. Set TRENDLAKE_TEST_DATABASE_URL to run.")
	}

	ctx := context.Background()
	db, err := NewDB(ctx, Config{URL: url})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func TestRunRepo_Live(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)
	ctx := context.Background()

	id := uuid.NewString()
	started := time.Now().UTC().Truncate(time.Millisecond)
	err := repo.Start(ctx, &domain.Run{
		ID:           id,
		Kind:         domain.RunPublish,
		CreationDate: "2024-05-01",
		Period:       domain.Period12,
		Status:       domain.RunStatusRunning,
		StartedAt:    started,
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	outcome := domain.ArtifactOutcome{
		RunID:     id,
		Kind:      domain.ArtifactBackup,
		SizeBytes: 42,
		Attempts:  3,
		Created:   true,
		Defective: true,
		Defects:   []string{"undersized: 42 < 100 bytes"},
	}
	if err := repo.RecordArtifact(ctx, outcome); err != nil {
		t.Fatalf("RecordArtifact failed: %v", err)
	}
	if err := repo.Finish(ctx, id, domain.RunStatusFailed, "backup defective", started.Add(time.Second)); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	run, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if run.Status != domain.RunStatusFailed || run.Period != domain.Period12 || run.FinishedAt.IsZero() {
		t.Errorf("run = %+v", run)
	}

	arts, err := repo.Artifacts(ctx, id)
	if err != nil {
		t.Fatalf("Artifacts failed: %v", err)
	}
	if len(arts) != 1 || len(arts[0].Defects) != 1 || !arts[0].Defective {
		t.Errorf("artifacts = %+v", arts)
	}

	if err := repo.Finish(ctx, uuid.NewString(), domain.RunStatusSucceeded, "", time.Now()); !errors.Is(err, storage.ErrRunNotFound) {
		t.Errorf("Finish on unknown run = %v", err)
	}
}
