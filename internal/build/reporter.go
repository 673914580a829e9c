package build

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"forge/internal/history"
	"forge/internal/logging"
	"forge/internal/pipelines"
	"forge/internal/services"
)

// runReporter collects isolated failures for a run, persists them to history,
// and forwards everything to an optional outer reporter.
type runReporter struct {
	runID  string
	store  *history.Store
	next   pipelines.Reporter
	logger *slog.Logger

	mu   sync.Mutex
	errs []error
}

func (r *runReporter) Status(ctx context.Context, message string) {
	if r.next != nil {
		r.next.Status(ctx, message)
	}
}

func (r *runReporter) Error(ctx context.Context, err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()

	if r.store != nil {
		// A detached context keeps the record even when the build is being cancelled.
		if recErr := r.store.RecordError(context.WithoutCancel(ctx), r.runID, runError(err)); recErr != nil {
			logging.WarnWithContext(r.logger, "failed to record build error", "history_record_failed",
				logging.Error(recErr),
				logging.String(logging.FieldImpact, "failure missing from build history"),
			)
		}
	}
	if r.next != nil {
		r.next.Error(ctx, err)
	}
}

func (r *runReporter) errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

func runError(err error) history.RunError {
	failure := history.RunError{
		Kind:        history.ErrorKindFatal,
		FailureKind: services.FailureKind(err),
		Message:     err.Error(),
	}
	var manifestErr *pipelines.ManifestError
	var fileErr *pipelines.FileError
	switch {
	case errors.As(err, &fileErr):
		failure.Kind = history.ErrorKindFile
		failure.Location = fileErr.File.String()
	case errors.As(err, &manifestErr):
		failure.Kind = history.ErrorKindManifest
		failure.Location = manifestErr.Manifest.String()
	}
	return failure
}
