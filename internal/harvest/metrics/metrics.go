package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	// FetchAttempts tracks every API call issued, including retries
	FetchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendlake_fetch_attempts_total",
			Help: "Total number of API calls issued",
		},
		[]string{"request_type"},
	)

	// FetchFailures tracks classified API failures
	FetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendlake_fetch_failures_total",
			Help: "Total number of classified API failures",
		},
		[]string{"request_type", "class"},
	)

	// FetchCooldown accumulates time spent waiting before retries
	FetchCooldown = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendlake_fetch_cooldown_seconds_total",
			Help: "Total seconds spent in retry cool-downs",
		},
		[]string{"class"},
	)

	// CredentialRotations tracks switches to the emergency credential
	CredentialRotations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trendlake_credential_rotations_total",
			Help: "Total number of quota-driven credential rotations",
		},
	)

	// RecordsWritten tracks records appended per sink
	RecordsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendlake_records_written_total",
			Help: "Total number of records appended to a sink",
		},
		[]string{"sink"},
	)

	// ArtifactAttempts tracks build attempts per artifact and outcome
	ArtifactAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendlake_artifact_attempts_total",
			Help: "Total number of artifact build attempts",
		},
		[]string{"artifact", "outcome"},
	)

	// ArtifactSize is the size of the last built artifact
	ArtifactSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trendlake_artifact_size_bytes",
			Help: "Size in bytes of the last built artifact",
		},
		[]string{"artifact"},
	)

	// RunDuration tracks wall time of harvest and publish runs
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trendlake_run_duration_seconds",
			Help:    "Run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(30, 2, 10),
		},
		[]string{"run", "status"},
	)
)

// Config controls the Pushgateway flush at the end of a run.
type Config struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
}

// Push sends the default registry to the Pushgateway. It is a no-op when no
// gateway is configured.
func Push(cfg Config, run string) error {
	if cfg.PushgatewayURL == "" {
		return nil
	}
	err := push.New(cfg.PushgatewayURL, cfg.Job).
		Gatherer(prometheus.DefaultGatherer).
		Grouping("run", run).
		Push()
	if err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
