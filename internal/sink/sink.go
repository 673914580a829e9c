package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"forge/internal/asseturl"
	"forge/internal/fileutil"
	"forge/internal/logging"
	"forge/internal/services"
	"forge/internal/textutil"
)

const hashLength = 16

// Sink writes content-addressed artifact files below a root directory.
type Sink struct {
	root   string
	logger *slog.Logger

	files   atomic.Int64
	reused  atomic.Int64
	written atomic.Int64
}

// Stats summarizes what a Sink stored during its lifetime.
type Stats struct {
	Files        int64 `json:"files"`
	Reused       int64 `json:"reused"`
	BytesWritten int64 `json:"bytes_written"`
}

// New returns a Sink rooted at root. The directory is created on first write.
func New(root string, logger *slog.Logger) (*Sink, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, services.Wrap(services.ErrConfiguration, "sink", "init", "output directory is empty", nil)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("sink: resolve root: %w", err)
	}
	s := &Sink{root: abs}
	s.SetLogger(logger)
	return s, nil
}

// SetLogger refreshes the sink's logging destination.
func (s *Sink) SetLogger(logger *slog.Logger) {
	if s == nil {
		return
	}
	s.logger = logging.NewComponentLogger(logger, "sink")
}

// Root returns the absolute output root.
func (s *Sink) Root() string {
	return s.root
}

// WriteFile stores data under logicalPath and returns the file URL of the
// stored artifact.
func (s *Sink) WriteFile(ctx context.Context, logicalPath string, data []byte) (asseturl.URL, error) {
	if err := ctx.Err(); err != nil {
		return asseturl.URL{}, err
	}
	rel, err := cleanLogicalPath(logicalPath)
	if err != nil {
		return asseturl.URL{}, services.Wrap(services.ErrValidation, "sink", "write", logicalPath, err)
	}

	target := filepath.Join(s.root, filepath.FromSlash(contentName(rel, data)))
	if info, err := os.Stat(target); err == nil && info.Mode().IsRegular() && info.Size() == int64(len(data)) {
		s.reused.Add(1)
		s.logger.DebugContext(ctx, "artifact already stored", logging.String("path", target))
		return asseturl.FromPath(target)
	}

	if err := fileutil.WriteFileAtomic(target, data, 0o644); err != nil {
		return asseturl.URL{}, services.Wrap(services.ErrTransient, "sink", "write", target, err)
	}
	s.files.Add(1)
	s.written.Add(int64(len(data)))
	s.logger.DebugContext(ctx, "artifact stored",
		logging.String("logical_path", rel),
		logging.String("path", target),
		logging.Int("bytes", len(data)),
	)
	return asseturl.FromPath(target)
}

// Stats reports counts accumulated by WriteFile.
func (s *Sink) Stats() Stats {
	return Stats{
		Files:        s.files.Load(),
		Reused:       s.reused.Load(),
		BytesWritten: s.written.Load(),
	}
}

// cleanLogicalPath normalizes logicalPath to a slash-separated path below the
// root with filesystem-safe segments.
func cleanLogicalPath(logicalPath string) (string, error) {
	p := strings.TrimSpace(strings.ReplaceAll(logicalPath, "\\", "/"))
	if p == "" {
		return "", errors.New("empty logical path")
	}
	if strings.HasPrefix(p, "/") {
		return "", errors.New("logical path must be relative")
	}
	p = path.Clean(p)
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", errors.New("logical path escapes the output root")
	}
	segments := strings.Split(p, "/")
	for i, segment := range segments {
		segments[i] = textutil.SanitizeSegment(segment)
	}
	return strings.Join(segments, "/"), nil
}

// contentName inserts the content hash before the extension of rel.
func contentName(rel string, data []byte) string {
	dir, base := path.Split(rel)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem, ext = base, ""
	}
	return dir + stem + "-" + fileutil.SHA256Hex(data)[:hashLength] + ext
}
