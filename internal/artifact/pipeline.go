// Package artifact turns the raw harvest sinks into published datasets:
// convert, validate by size, retry, then publish best-effort.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vietddude/trendlake/internal/core/domain"
	"github.com/vietddude/trendlake/internal/harvest/metrics"
)

var (
	// ErrArtifactDefect matches a missing or undersized artifact.
	ErrArtifactDefect = errors.New("artifact defect")
	// ErrPublish matches publisher failures.
	ErrPublish = errors.New("artifact publish failed")
)

// DefectError names the artifact a failed publish run reports.
type DefectError struct {
	Kind   domain.ArtifactKind
	Reason string
}

func (e *DefectError) Error() string {
	return fmt.Sprintf("%s artifact is defective: %s", e.Kind, e.Reason)
}

func (e *DefectError) Is(target error) bool { return target == ErrArtifactDefect }

// Job describes one conversion.
type Job struct {
	Kind            domain.ArtifactKind
	Input           string
	Output          string
	Schema          string
	TimestampFormat string
}

// Converter produces the columnar form of a raw sink.
type Converter interface {
	Convert(ctx context.Context, job Job) error
}

// Compressor produces the compressed form of a raw sink.
type Compressor interface {
	Compress(ctx context.Context, input, output string) error
}

// Publisher persists a local file under a partition key.
type Publisher interface {
	Put(ctx context.Context, localPath, key string) error
}

// Config controls the build loop.
type Config struct {
	Dir         string // holds raw sinks and built artifacts
	MaxAttempts int
	MinSize     func(domain.ArtifactKind) int64
}

// Report lists one outcome per artifact in build order.
type Report struct {
	Outcomes []domain.ArtifactOutcome
}

// Outcome returns the outcome for kind.
func (r Report) Outcome(kind domain.ArtifactKind) (domain.ArtifactOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Kind == kind {
			return o, true
		}
	}
	return domain.ArtifactOutcome{}, false
}

// Pipeline builds and publishes every artifact of a partition.
type Pipeline struct {
	cfg        Config
	converter  Converter
	compressor Compressor
	publisher  Publisher
	log        *slog.Logger
}

// NewPipeline creates a pipeline.
func NewPipeline(cfg Config, converter Converter, compressor Compressor, publisher Publisher, log *slog.Logger) *Pipeline {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.MinSize == nil {
		cfg.MinSize = func(domain.ArtifactKind) int64 { return 0 }
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		cfg:        cfg,
		converter:  converter,
		compressor: compressor,
		publisher:  publisher,
		log:        log.With("component", "artifact"),
	}
}

// Run attempts every artifact, publishes each one that exists, then reports
// the first defect in escalation order. Publish errors are returned only when
// no artifact is defective.
func (p *Pipeline) Run(ctx context.Context, partition domain.Partition) (Report, error) {
	var report Report
	var publishErrs []error

	for _, kind := range domain.ArtifactKinds {
		outcome := p.build(ctx, kind)

		if outcome.Created {
			key := partition.Key(string(kind), kind.Ext())
			path := filepath.Join(p.cfg.Dir, kind.PublishedFile())
			if err := p.publisher.Put(ctx, path, key); err != nil {
				p.log.Error("Failed to publish artifact", "artifact", kind, "key", key, "error", err)
				publishErrs = append(publishErrs, fmt.Errorf("%s: %w", kind, err))
			} else {
				outcome.PublishedKey = key
				p.log.Info("Artifact published", "artifact", kind, "key", key, "size_bytes", outcome.SizeBytes)
			}
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	if err := escalate(report); err != nil {
		return report, err
	}
	if len(publishErrs) > 0 {
		return report, fmt.Errorf("%w: %w", ErrPublish, errors.Join(publishErrs...))
	}
	return report, nil
}

func escalate(report Report) error {
	for _, kind := range domain.EscalationOrder {
		o, ok := report.Outcome(kind)
		if !ok || !o.Defective {
			continue
		}
		reason := "missing"
		if len(o.Defects) > 0 {
			reason = o.Defects[len(o.Defects)-1]
		}
		return &DefectError{Kind: kind, Reason: reason}
	}
	return nil
}

// build runs up to MaxAttempts attempts. An attempt that yields an
// undersized file counts as failed.
func (p *Pipeline) build(ctx context.Context, kind domain.ArtifactKind) domain.ArtifactOutcome {
	outcome := domain.ArtifactOutcome{Kind: kind}
	input := filepath.Join(p.cfg.Dir, kind.RawFile())
	output := filepath.Join(p.cfg.Dir, kind.PublishedFile())
	minSize := p.cfg.MinSize(kind)

	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			outcome.Defects = append(outcome.Defects, ctx.Err().Error())
			break
		}
		outcome.Attempts = attempt

		if err := os.Remove(output); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.log.Warn("Failed to remove stale artifact", "artifact", kind, "error", err)
		}

		err := p.produce(ctx, kind, input, output)
		size, exists := fileSize(output)
		outcome.Created = exists
		outcome.SizeBytes = size

		switch {
		case err != nil:
			outcome.Defects = append(outcome.Defects, err.Error())
			metrics.ArtifactAttempts.WithLabelValues(string(kind), "error").Inc()
			p.log.Warn("Artifact attempt failed", "artifact", kind, "attempt", attempt, "error", err)
		case !exists:
			outcome.Defects = append(outcome.Defects, "missing")
			metrics.ArtifactAttempts.WithLabelValues(string(kind), "missing").Inc()
			p.log.Warn("Artifact missing after attempt", "artifact", kind, "attempt", attempt)
		case size < minSize:
			outcome.Defects = append(outcome.Defects, fmt.Sprintf("undersized: %d < %d bytes", size, minSize))
			metrics.ArtifactAttempts.WithLabelValues(string(kind), "undersized").Inc()
			p.log.Warn("Artifact undersized",
				"artifact", kind, "attempt", attempt, "size_bytes", size, "min_size", minSize)
		default:
			metrics.ArtifactAttempts.WithLabelValues(string(kind), "ok").Inc()
			metrics.ArtifactSize.WithLabelValues(string(kind)).Set(float64(size))
			p.log.Info("Artifact built", "artifact", kind, "attempt", attempt, "size_bytes", size)
			return outcome
		}
	}

	outcome.Defective = true
	if outcome.Created {
		metrics.ArtifactSize.WithLabelValues(string(kind)).Set(float64(outcome.SizeBytes))
	}
	p.log.Error("Artifact defective", "artifact", kind, "attempts", outcome.Attempts, "created", outcome.Created)
	return outcome
}

func (p *Pipeline) produce(ctx context.Context, kind domain.ArtifactKind, input, output string) error {
	if kind == domain.ArtifactBackup {
		return p.compressor.Compress(ctx, input, output)
	}
	return p.converter.Convert(ctx, Job{
		Kind:            kind,
		Input:           input,
		Output:          output,
		Schema:          Schema(kind),
		TimestampFormat: TimestampFormat,
	})
}

func fileSize(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return 0, false
	}
	return info.Size(), true
}
