package control

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vietddude/trendlake/internal/artifact"
	"github.com/vietddude/trendlake/internal/core/config"
	"github.com/vietddude/trendlake/internal/core/domain"
	"github.com/vietddude/trendlake/internal/harvest/fetch"
	"github.com/vietddude/trendlake/internal/infra/credential"
	"github.com/vietddude/trendlake/internal/infra/storage/memory"
	"github.com/vietddude/trendlake/internal/infra/youtube"
)

var clock = time.Date(2024, 5, 1, 13, 30, 0, 0, time.UTC)

type tinyAPI struct {
	quotaExhausted bool
}

func (a *tinyAPI) Do(ctx context.Context, req domain.FetchRequest) (domain.Envelope, error) {
	if a.quotaExhausted {
		return nil, &youtube.APIError{StatusCode: 403, Reason: "quotaExceeded"}
	}
	switch req.Type {
	case domain.RequestRegions:
		return domain.Envelope{"items": []any{map[string]any{"id": "US"}}}, nil
	case domain.RequestCategories:
		return domain.Envelope{"items": []any{}}, nil
	default:
		return domain.Envelope{"items": []any{map[string]any{"id": "v1", "snippet": map[string]any{}}}}, nil
	}
}

type recordingAlerter struct {
	subjects []string
	bodies   []string
}

func (r *recordingAlerter) Notify(ctx context.Context, subject, body string) error {
	r.subjects = append(r.subjects, subject)
	r.bodies = append(r.bodies, body)
	return nil
}

type fileTool struct {
	size int64
}

func (f fileTool) write(path string) error {
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return err
	}
	return os.Truncate(path, f.size)
}

func (f fileTool) Convert(ctx context.Context, job artifact.Job) error { return f.write(job.Output) }

func (f fileTool) Compress(ctx context.Context, in, out string) error { return f.write(out) }

type keyRecorder struct{ keys []string }

func (k *keyRecorder) Put(ctx context.Context, localPath, key string) error {
	k.keys = append(k.keys, key)
	return nil
}

type fixture struct {
	app     *App
	cfg     *config.AppConfig
	api     *tinyAPI
	alerts  *recordingAlerter
	runs    *memory.RunRepo
	keys    *keyRecorder
	sleeps  int
	newKeys []string
}

func newFixture(t *testing.T, toolSize int64) *fixture {
	t.Helper()
	cfg := &config.AppConfig{
		WorkDir: t.TempDir(),
		YouTube: youtube.Config{MaxResults: 50},
		Retry:   fetch.DefaultPolicy,
		Artifacts: config.ArtifactsConfig{
			MaxAttempts: 3,
			MinSize:     map[string]int64{"most_popular": 100, "backup": 100},
		},
	}
	f := &fixture{
		cfg:    cfg,
		api:    &tinyAPI{},
		alerts: &recordingAlerter{},
		runs:   memory.NewRunRepo(memory.NewMemoryStorage()),
		keys:   &keyRecorder{},
	}
	tool := fileTool{size: toolSize}
	f.app = New(cfg, Deps{
		Credentials: credential.NewStatic(map[string]credential.Entry{
			"12": {Primary: "p12", Emergency: "e12"},
		}),
		NewClient: func(cred domain.Credential) (fetch.Client, error) {
			f.newKeys = append(f.newKeys, cred.Token)
			return f.api, nil
		},
		Converter:  tool,
		Compressor: tool,
		Publisher:  f.keys,
		Alerter:    f.alerts,
		Runs:       f.runs,
		Sleeper:    func(context.Context, time.Duration) error { f.sleeps++; return nil },
		Now:        func() time.Time { return clock },
	})
	return f
}

func (f *fixture) onlyRun(t *testing.T) *domain.Run {
	t.Helper()
	runs, _ := f.runs.Recent(context.Background(), 10)
	if len(runs) != 1 {
		t.Fatalf("ledger has %d runs, want 1", len(runs))
	}
	return runs[0]
}

func TestHarvest_Succeeds(t *testing.T) {
	f := newFixture(t, 0)

	if err := f.app.Harvest(context.Background()); err != nil {
		t.Fatalf("Harvest failed: %v", err)
	}
	for _, kind := range domain.ArtifactKinds {
		if _, err := os.Stat(filepath.Join(f.cfg.WorkDir, kind.RawFile())); err != nil {
			t.Errorf("sink %s missing: %v", kind, err)
		}
	}
	run := f.onlyRun(t)
	if run.Status != domain.RunStatusSucceeded || run.Period != domain.Period12 || run.Kind != domain.RunHarvest {
		t.Errorf("run = %+v", run)
	}
	if len(f.alerts.subjects) != 0 {
		t.Errorf("alerts sent on success: %v", f.alerts.subjects)
	}
	if len(f.newKeys) != 1 || f.newKeys[0] != "p12" {
		t.Errorf("clients built with %v", f.newKeys)
	}
}

func TestHarvest_FatalAlertsOnce(t *testing.T) {
	f := newFixture(t, 0)
	f.api.quotaExhausted = true

	err := f.app.Harvest(context.Background())
	if !errors.Is(err, fetch.ErrFatal) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if len(f.alerts.subjects) != 1 {
		t.Fatalf("alerts = %d, want 1", len(f.alerts.subjects))
	}
	if !strings.Contains(f.alerts.subjects[0], "harvest failed") || !strings.Contains(f.alerts.bodies[0], "quota") {
		t.Errorf("alert = %q / %q", f.alerts.subjects[0], f.alerts.bodies[0])
	}
	if len(f.newKeys) != 2 || f.newKeys[1] != "e12" {
		t.Errorf("expected one rotation, clients built with %v", f.newKeys)
	}
	run := f.onlyRun(t)
	if run.Status != domain.RunStatusFailed || run.Error == "" {
		t.Errorf("run = %+v", run)
	}
}

func TestPublish_OverridesPartition(t *testing.T) {
	f := newFixture(t, 200)

	if err := f.app.Publish(context.Background(), "2024-01-02", "18"); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(f.keys.keys) != 4 {
		t.Fatalf("published %v", f.keys.keys)
	}
	for _, key := range f.keys.keys {
		if !strings.Contains(key, "/creation_date=2024-01-02/period=18/") {
			t.Errorf("key %s not in overridden partition", key)
		}
	}

	run := f.onlyRun(t)
	arts, _ := f.runs.Artifacts(context.Background(), run.ID)
	if len(arts) != 4 || run.Status != domain.RunStatusSucceeded {
		t.Errorf("run = %+v, artifacts = %d", run, len(arts))
	}
}

func TestPublish_DefectAlertsOnce(t *testing.T) {
	f := newFixture(t, 10)

	err := f.app.Publish(context.Background(), "", "")
	var defect *artifact.DefectError
	if !errors.As(err, &defect) || defect.Kind != domain.ArtifactRankedItems {
		t.Fatalf("expected ranked items defect, got %v", err)
	}
	if len(f.alerts.subjects) != 1 {
		t.Fatalf("alerts = %d, want 1", len(f.alerts.subjects))
	}
	if !strings.Contains(f.alerts.subjects[0], "2024-05-01 period 12") {
		t.Errorf("alert subject = %q", f.alerts.subjects[0])
	}
	// Undersized artifacts are still published.
	if len(f.keys.keys) != 4 {
		t.Errorf("published %d artifacts, want 4", len(f.keys.keys))
	}

	run := f.onlyRun(t)
	arts, _ := f.runs.Artifacts(context.Background(), run.ID)
	defective := 0
	for _, a := range arts {
		if a.Defective {
			defective++
			if a.Attempts != 3 {
				t.Errorf("%s attempts = %d, want 3", a.Kind, a.Attempts)
			}
		}
	}
	if defective != 2 {
		t.Errorf("defective artifacts = %d, want 2", defective)
	}
}

func TestPublish_InvalidPeriod(t *testing.T) {
	f := newFixture(t, 200)
	if err := f.app.Publish(context.Background(), "", "07"); err == nil {
		t.Fatal("expected error for invalid period")
	}
	runs, _ := f.runs.Recent(context.Background(), 10)
	if len(runs) != 0 || len(f.alerts.subjects) != 0 {
		t.Errorf("invalid arguments should not start a run")
	}
}
