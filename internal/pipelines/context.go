package pipelines

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"forge/internal/assets"
	"forge/internal/asseturl"
	"forge/internal/logging"
	"forge/internal/services"
)

// Sink persists produced bytes under a logical path and returns where they
// landed. Implementations must be safe for concurrent use.
type Sink interface {
	WriteFile(ctx context.Context, logicalPath string, data []byte) (asseturl.URL, error)
}

// Reporter receives best-effort progress messages and isolated failures.
// Implementations must be safe for concurrent use.
type Reporter interface {
	Status(ctx context.Context, message string)
	Error(ctx context.Context, err error)
}

// ReporterFuncs adapts plain functions to Reporter. Nil fields are ignored.
type ReporterFuncs struct {
	OnStatus func(ctx context.Context, message string)
	OnError  func(ctx context.Context, err error)
}

func (r ReporterFuncs) Status(ctx context.Context, message string) {
	if r.OnStatus != nil {
		r.OnStatus(ctx, message)
	}
}

func (r ReporterFuncs) Error(ctx context.Context, err error) {
	if r.OnError != nil {
		r.OnError(ctx, err)
	}
}

// ProcessContext is shared, read-only, by every pipeline and file transform of
// one batch.
type ProcessContext struct {
	Assets assets.Downloader
	// Files is the full input list visible to the batch.
	Files []asseturl.URL
	// InputFileFilter, when non-empty, limits fan-out to locations containing it.
	InputFileFilter string
	Sink            Sink
	Reporter        Reporter
	// MaxConcurrency bounds simultaneous transforms within one pipeline.
	// Zero means unbounded.
	MaxConcurrency int
	Logger         *slog.Logger
}

func (c *ProcessContext) logger() *slog.Logger {
	if c.Logger == nil {
		return logging.NewNop()
	}
	return c.Logger
}

func (c *ProcessContext) status(ctx context.Context, message string) {
	logging.WithContext(ctx, c.logger()).Debug(message)
	if c.Reporter != nil {
		c.Reporter.Status(ctx, message)
	}
}

func (c *ProcessContext) reportError(ctx context.Context, err error) {
	logging.WarnWithContext(logging.WithContext(ctx, c.logger()), "isolated build failure", "build_failure_isolated",
		logging.Error(err),
		logging.String(logging.FieldErrorKind, services.FailureKind(err)),
		logging.String(logging.FieldImpact, "input skipped; other inputs continue"),
	)
	if c.Reporter != nil {
		c.Reporter.Error(ctx, err)
	}
}

// PipelineContext scopes one pipeline dispatch: the batch, the manifest that
// declared the pipeline, and the declaration itself.
type PipelineContext struct {
	Process  *ProcessContext
	Root     asseturl.URL
	Pipeline *Pipeline
}

func newPipelineContext(batch *ProcessContext, root asseturl.URL, pipeline *Pipeline) *PipelineContext {
	return &PipelineContext{Process: batch, Root: root, Pipeline: pipeline}
}

// RelativePath returns file's path relative to the manifest directory.
func (c *PipelineContext) RelativePath(file asseturl.URL) string {
	return c.Root.RelativePath(file)
}

// DownloadBytes fetches file through the batch downloader.
func (c *PipelineContext) DownloadBytes(ctx context.Context, file asseturl.URL) ([]byte, error) {
	if c.Process.Assets == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipelines", "download", "no asset downloader configured", nil)
	}
	return c.Process.Assets.DownloadBytes(ctx, file)
}

// WriteFile stores data through the batch sink.
func (c *PipelineContext) WriteFile(ctx context.Context, logicalPath string, data []byte) (asseturl.URL, error) {
	if c.Process.Sink == nil {
		return asseturl.URL{}, services.Wrap(services.ErrConfiguration, "pipelines", "write", "no content sink configured", nil)
	}
	if strings.TrimSpace(logicalPath) == "" {
		return asseturl.URL{}, errors.New("empty logical path")
	}
	return c.Process.Sink.WriteFile(ctx, logicalPath, data)
}

// Includes applies the batch input filter and the pipeline's source patterns.
func (c *PipelineContext) Includes(file asseturl.URL) bool {
	if filter := c.Process.InputFileFilter; filter != "" && !strings.Contains(file.String(), filter) {
		return false
	}
	if c.Pipeline == nil || len(c.Pipeline.Sources) == 0 {
		return true
	}
	rel := c.RelativePath(file)
	for _, pattern := range c.Pipeline.Sources {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
