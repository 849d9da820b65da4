package control

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/vietddude/trendlake/internal/artifact"
	"github.com/vietddude/trendlake/internal/core/config"
	"github.com/vietddude/trendlake/internal/core/domain"
	"github.com/vietddude/trendlake/internal/harvest/fetch"
	"github.com/vietddude/trendlake/internal/infra/alert"
	"github.com/vietddude/trendlake/internal/infra/blob"
	"github.com/vietddude/trendlake/internal/infra/credential"
	"github.com/vietddude/trendlake/internal/infra/publish"
	redisclient "github.com/vietddude/trendlake/internal/infra/redis"
	"github.com/vietddude/trendlake/internal/infra/storage/memory"
	"github.com/vietddude/trendlake/internal/infra/storage/postgres"
	"github.com/vietddude/trendlake/internal/infra/youtube"
)

// NewApp connects the collaborators kind needs.
func NewApp(ctx context.Context, cfg *config.AppConfig, kind domain.RunKind) (*App, error) {
	a := New(cfg, Deps{})

	if err := a.initShared(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	var err error
	switch kind {
	case domain.RunHarvest:
		err = a.initHarvest(ctx)
	case domain.RunPublish:
		err = a.initPublish(ctx)
	default:
		err = fmt.Errorf("unknown run kind %q", kind)
	}
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) initShared(ctx context.Context) error {
	// 1. Ledger
	if a.cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, a.cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		a.deps.Runs = postgres.NewRunRepo(db)
		slog.Info("Using PostgreSQL run ledger")
	} else {
		a.deps.Runs = memory.NewRunRepo(memory.NewMemoryStorage())
		slog.Info("Using in-memory run ledger")
	}

	// 2. Alerts
	alerters := alert.Multi{alert.NewLogAlerter(nil)}
	if a.cfg.Alert.NATS.URL != "" {
		na, err := alert.NewNATSAlerter(a.cfg.Alert.NATS)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() error { na.Close(); return nil })
		alerters = append(alerters, na)
	}
	a.deps.Alerter = alerters
	return nil
}

func (a *App) initHarvest(ctx context.Context) error {
	creds := a.cfg.Credentials
	switch creds.Source {
	case config.CredentialSourceRedis:
		rc, err := redisclient.NewClient(creds.Redis.Config)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, rc.Close)
		a.deps.Credentials = credential.NewRedis(rc, creds.Redis.KeyPrefix)
	case config.CredentialSourceS3:
		bc, err := blob.NewClient(ctx, creds.S3.Region)
		if err != nil {
			return err
		}
		a.deps.Credentials = credential.NewDocument(bc, creds.S3.Bucket, creds.S3.Key)
	default:
		a.deps.Credentials = credential.NewStatic(creds.Static)
	}

	yt := a.cfg.YouTube
	limiter := youtube.NewLimiter(yt)
	a.deps.NewClient = func(cred domain.Credential) (fetch.Client, error) {
		return youtube.NewClient(yt, cred.Token, limiter), nil
	}
	return nil
}

func (a *App) initPublish(ctx context.Context) error {
	arts := a.cfg.Artifacts
	logPath := arts.ConvertLog
	if !filepath.IsAbs(logPath) {
		logPath = filepath.Join(a.cfg.WorkDir, logPath)
	}
	a.deps.Converter = artifact.NewCommandConverter(arts.ConverterCommand, arts.ConvertTimeout, logPath)
	a.deps.Compressor = artifact.NewZstdCompressor(zstd.SpeedBestCompression)

	pub := a.cfg.Publish
	switch pub.Target {
	case config.PublishTargetS3:
		bc, err := blob.NewClient(ctx, pub.S3.Region)
		if err != nil {
			return err
		}
		a.deps.Publisher = publish.NewS3(bc, pub.S3.Bucket, pub.S3.Buckets)
	default:
		a.deps.Publisher = publish.NewLocal(pub.Local.Root)
	}
	return nil
}
