package config

import (
	"time"

	"github.com/vietddude/trendlake/internal/harvest/fetch"
	"github.com/vietddude/trendlake/internal/harvest/metrics"
	"github.com/vietddude/trendlake/internal/infra/alert"
	"github.com/vietddude/trendlake/internal/infra/credential"
	redisclient "github.com/vietddude/trendlake/internal/infra/redis"
	"github.com/vietddude/trendlake/internal/infra/storage/postgres"
	"github.com/vietddude/trendlake/internal/infra/youtube"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	WorkDir     string            `yaml:"work_dir"`
	Logging     LoggingConfig     `yaml:"logging"`
	YouTube     youtube.Config    `yaml:"youtube"`
	Retry       fetch.Policy      `yaml:"retry"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Artifacts   ArtifactsConfig   `yaml:"artifacts"`
	Publish     PublishConfig     `yaml:"publish"`
	Alert       AlertConfig       `yaml:"alert"`
	Database    postgres.Config   `yaml:"database"`
	Metrics     metrics.Config    `yaml:"metrics"`

	// LedgerRetention bounds how long runs stay in the ledger; 0 keeps them.
	LedgerRetention time.Duration `yaml:"ledger_retention"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Credential sources.
const (
	CredentialSourceStatic = "static"
	CredentialSourceRedis  = "redis"
	CredentialSourceS3     = "s3"
)

// CredentialsConfig selects and configures the credential provider.
type CredentialsConfig struct {
	Source string                      `yaml:"source"`
	Static map[string]credential.Entry `yaml:"static"`
	Redis  RedisCredentialsConfig      `yaml:"redis"`
	S3     S3ObjectConfig              `yaml:"s3"`
}

// RedisCredentialsConfig points at the credential hashes in Redis.
type RedisCredentialsConfig struct {
	redisclient.Config `yaml:",inline"`
	KeyPrefix          string `yaml:"key_prefix"`
}

// S3ObjectConfig names a single object.
type S3ObjectConfig struct {
	Region string `yaml:"region"`
	Bucket string `yaml:"bucket"`
	Key    string `yaml:"key"`
}

// ArtifactsConfig controls the build pipeline.
type ArtifactsConfig struct {
	MaxAttempts      int              `yaml:"max_attempts"`
	ConvertTimeout   time.Duration    `yaml:"convert_timeout"`
	ConverterCommand []string         `yaml:"converter_command"`
	ConvertLog       string           `yaml:"convert_log"`
	MinSize          map[string]int64 `yaml:"min_size"` // bytes, keyed by dataset
}

// Publish targets.
const (
	PublishTargetLocal = "local"
	PublishTargetS3    = "s3"
)

// PublishConfig selects where artifacts are persisted.
type PublishConfig struct {
	Target string             `yaml:"target"`
	Local  LocalPublishConfig `yaml:"local"`
	S3     S3PublishConfig    `yaml:"s3"`
}

// LocalPublishConfig roots the lake at a directory.
type LocalPublishConfig struct {
	Root string `yaml:"root"`
}

// S3PublishConfig holds the lake bucket and per-dataset overrides.
type S3PublishConfig struct {
	Region  string            `yaml:"region"`
	Bucket  string            `yaml:"bucket"`
	Buckets map[string]string `yaml:"buckets"`
}

// AlertConfig holds alert transports. Alerts always go to the log as well.
type AlertConfig struct {
	NATS alert.NATSConfig `yaml:"nats"`
}
