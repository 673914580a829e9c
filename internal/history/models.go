package history

import "time"

// Status is the lifecycle state of a build run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is one recorded build.
type Run struct {
	ID            string     `json:"id"`
	InputDir      string     `json:"input_dir"`
	OutputDir     string     `json:"output_dir"`
	InputFilter   string     `json:"input_filter,omitempty"`
	Status        Status     `json:"status"`
	InputCount    int        `json:"input_count"`
	ArtifactCount int        `json:"artifact_count"`
	ErrorCount    int        `json:"error_count"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	LogPath       string     `json:"log_path,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

// Duration returns how long the run took, or zero while it is running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Artifact is the persisted summary of one produced artifact.
type Artifact struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Source     string     `json:"source,omitempty"`
	Content    string     `json:"content,omitempty"`
	Tags       []string   `json:"tags"`
	Categories [][]string `json:"categories"`
}

// ErrorKind classifies a recorded failure.
type ErrorKind string

const (
	// ErrorKindManifest marks a manifest that was skipped.
	ErrorKindManifest ErrorKind = "manifest"
	// ErrorKindFile marks an input file that produced nothing.
	ErrorKindFile ErrorKind = "file"
	// ErrorKindFatal marks the failure that aborted the run.
	ErrorKindFatal ErrorKind = "fatal"
)

// RunError is one failure observed during a run.
type RunError struct {
	ID          int64     `json:"id"`
	RunID       string    `json:"run_id"`
	Kind        ErrorKind `json:"kind"`
	FailureKind string    `json:"failure_kind,omitempty"`
	Location    string    `json:"location,omitempty"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}
