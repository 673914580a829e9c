package pipelines

import (
	"errors"
	"fmt"

	"forge/internal/asseturl"
	"forge/internal/services"
)

// ErrUnsupportedKind marks a dispatch of a kind that has no strategy. It is
// always fatal to the batch.
var ErrUnsupportedKind = fmt.Errorf("unsupported pipeline kind: %w", services.ErrNotImplemented)

// ErrUndeclaredKind marks a Kind value outside the declared set, which only a
// caller bypassing manifest decoding can produce. It is fatal as well.
var ErrUndeclaredKind = fmt.Errorf("undeclared pipeline kind: %w", services.ErrValidation)

func unsupportedKind(kind Kind) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedKind, string(kind))
}

// ManifestError reports a manifest that could not be fetched or decoded. The
// manifest is skipped; the rest of the batch continues.
type ManifestError struct {
	Manifest asseturl.URL
	Err      error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.Manifest, e.Err)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

// FileError reports a per-file transform failure. The file contributes no
// artifacts; sibling files are unaffected.
type FileError struct {
	Kind     Kind
	Manifest asseturl.URL
	File     asseturl.URL
	Err      error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s pipeline (%s): file %s: %v", e.Kind, e.Manifest, e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err aborts a batch. Manifest and file failures are
// isolated and never fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var manifestErr *ManifestError
	if errors.As(err, &manifestErr) {
		return false
	}
	var fileErr *FileError
	return !errors.As(err, &fileErr)
}
