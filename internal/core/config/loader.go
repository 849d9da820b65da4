package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/trendlake/internal/core/domain"
	"github.com/vietddude/trendlake/internal/harvest/fetch"
)

// DefaultMinSize is the plausibility floor for the high-volume datasets.
const DefaultMinSize int64 = 10 << 20

// DefaultConverterCommand invokes the ORC tools uber jar.
var DefaultConverterCommand = []string{
	"java", "-jar", "/opt/orc-tools/orc-tools-uber.jar", "convert", "{input}",
	"-o", "{output}", "-s", "{schema}", "-t", "{timestamp_format}",
}

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *AppConfig) applyDefaults() {
	if cfg.WorkDir == "" {
		cfg.WorkDir = "./data"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.YouTube.BaseURL == "" {
		cfg.YouTube.BaseURL = "https://www.googleapis.com/youtube/v3"
	}
	if cfg.YouTube.Timeout == 0 {
		cfg.YouTube.Timeout = 30 * time.Second
	}
	if cfg.YouTube.MaxResults == 0 {
		cfg.YouTube.MaxResults = 50
	}

	cfg.Retry = cfg.Retry.WithDefaults(fetch.DefaultPolicy)

	if cfg.Credentials.Source == "" {
		cfg.Credentials.Source = CredentialSourceStatic
	}
	if cfg.Credentials.Redis.KeyPrefix == "" {
		cfg.Credentials.Redis.KeyPrefix = "credentials"
	}
	if cfg.Credentials.S3.Key == "" {
		cfg.Credentials.S3.Key = "credentials.json"
	}

	if cfg.Artifacts.MaxAttempts == 0 {
		cfg.Artifacts.MaxAttempts = 3
	}
	if cfg.Artifacts.ConvertTimeout == 0 {
		cfg.Artifacts.ConvertTimeout = 30 * time.Minute
	}
	if len(cfg.Artifacts.ConverterCommand) == 0 {
		cfg.Artifacts.ConverterCommand = DefaultConverterCommand
	}
	if cfg.Artifacts.ConvertLog == "" {
		cfg.Artifacts.ConvertLog = "convert.log"
	}
	if cfg.Artifacts.MinSize == nil {
		cfg.Artifacts.MinSize = map[string]int64{}
	}
	for kind, size := range map[domain.ArtifactKind]int64{
		domain.ArtifactRankedItems: DefaultMinSize,
		domain.ArtifactBackup:      DefaultMinSize,
		domain.ArtifactRegions:     0,
		domain.ArtifactCategories:  0,
	} {
		if _, ok := cfg.Artifacts.MinSize[string(kind)]; !ok {
			cfg.Artifacts.MinSize[string(kind)] = size
		}
	}

	if cfg.Publish.Target == "" {
		cfg.Publish.Target = PublishTargetLocal
	}
	if cfg.Publish.Local.Root == "" {
		cfg.Publish.Local.Root = "./lake"
	}

	if cfg.Metrics.Job == "" {
		cfg.Metrics.Job = "trendlake"
	}
}

// Validate rejects settings no component can run with.
func (cfg *AppConfig) Validate() error {
	switch cfg.Credentials.Source {
	case CredentialSourceStatic, CredentialSourceRedis, CredentialSourceS3:
	default:
		return fmt.Errorf("unknown credentials source %q", cfg.Credentials.Source)
	}
	if cfg.Credentials.Source == CredentialSourceRedis && cfg.Credentials.Redis.URL == "" {
		return fmt.Errorf("credentials.redis.url is required for the redis source")
	}
	if cfg.Credentials.Source == CredentialSourceS3 && cfg.Credentials.S3.Bucket == "" {
		return fmt.Errorf("credentials.s3.bucket is required for the s3 source")
	}
	for key := range cfg.Credentials.Static {
		if _, err := domain.ParsePeriod(key); err != nil {
			return fmt.Errorf("credentials.static: %w", err)
		}
	}

	switch cfg.Publish.Target {
	case PublishTargetLocal, PublishTargetS3:
	default:
		return fmt.Errorf("unknown publish target %q", cfg.Publish.Target)
	}
	if cfg.Publish.Target == PublishTargetS3 && cfg.Publish.S3.Bucket == "" {
		return fmt.Errorf("publish.s3.bucket is required for the s3 target")
	}

	if cfg.Artifacts.MaxAttempts < 1 {
		return fmt.Errorf("artifacts.max_attempts must be at least 1, got %d", cfg.Artifacts.MaxAttempts)
	}
	for name, size := range cfg.Artifacts.MinSize {
		if size < 0 {
			return fmt.Errorf("artifacts.min_size.%s must not be negative", name)
		}
	}
	return nil
}

// MinSizeFor returns the plausibility floor for an artifact kind.
func (a ArtifactsConfig) MinSizeFor(kind domain.ArtifactKind) int64 {
	return a.MinSize[string(kind)]
}
