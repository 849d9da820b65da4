package domain

import "time"

// RunKind distinguishes the two entry points.
type RunKind string

const (
	RunHarvest RunKind = "harvest"
	RunPublish RunKind = "publish"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run is a ledger entry for one invocation.
type Run struct {
	ID           string
	Kind         RunKind
	CreationDate string
	Period       Period
	Status       RunStatus
	Error        string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// ArtifactOutcome is what happened to one artifact in a publish run.
type ArtifactOutcome struct {
	RunID        string
	Kind         ArtifactKind
	SizeBytes    int64
	Attempts     int
	Created      bool
	Defective    bool
	PublishedKey string
	Defects      []string
}
