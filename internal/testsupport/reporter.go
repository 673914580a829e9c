package testsupport

import (
	"context"
	"sync"
)

// Recorder collects status messages and reported errors.
type Recorder struct {
	mu       sync.Mutex
	statuses []string
	errs     []error
}

// Status implements pipelines.Reporter.
func (r *Recorder) Status(_ context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, message)
}

// Error implements pipelines.Reporter.
func (r *Recorder) Error(_ context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

// Statuses returns a copy of recorded status messages.
func (r *Recorder) Statuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.statuses...)
}

// Errors returns a copy of recorded errors.
func (r *Recorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}
