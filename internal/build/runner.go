package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"forge/internal/assets"
	"forge/internal/asseturl"
	"forge/internal/config"
	"forge/internal/history"
	"forge/internal/logging"
	"forge/internal/pipelines"
	"forge/internal/preflight"
	"forge/internal/services"
	"forge/internal/sink"
)

// LockFileName guards an output directory against concurrent builds.
const LockFileName = ".forge.lock"

// Options tune a single Run.
type Options struct {
	// Files replaces the input directory walk when non-empty.
	Files []asseturl.URL
	// Logger is the base logger; run logs are mirrored into the run log file.
	Logger *slog.Logger
	// Reporter receives status messages and isolated failures as they happen.
	Reporter pipelines.Reporter
	// Downloader overrides the default filesystem/HTTP asset client.
	Downloader assets.Downloader
}

// Result summarizes a finished run.
type Result struct {
	RunID     string               `json:"run_id"`
	Assets    []pipelines.OutAsset `json:"assets"`
	Errors    []error              `json:"-"`
	Inputs    int                  `json:"inputs"`
	IndexPath string               `json:"index_path,omitempty"`
	LogPath   string               `json:"log_path,omitempty"`
	Sink      sink.Stats           `json:"sink"`
	Duration  time.Duration        `json:"duration"`
}

// Run executes one build for cfg. Isolated failures are returned on Result
// alongside the artifacts; the error is non-nil only when the run itself
// failed.
func Run(ctx context.Context, cfg *config.Config, opts Options) (Result, error) {
	started := time.Now()
	if cfg == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "build", "run", "configuration is required", nil)
	}
	if err := preflight.Err(preflight.RunAll(ctx, cfg)); err != nil {
		return Result{}, err
	}

	lock := flock.New(filepath.Join(cfg.Paths.OutputDir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "build", "lock", cfg.Paths.OutputDir, err)
	}
	if !locked {
		return Result{}, services.Wrap(services.ErrConfiguration, "build", "lock",
			fmt.Sprintf("another build is writing to %s", cfg.Paths.OutputDir), nil)
	}
	defer func() { _ = lock.Unlock() }()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	result := Result{RunID: runID}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	result.LogPath = filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("forge-%s.log", runID))
	fileHandler, closer, err := logging.NewJSONFileHandler(result.LogPath, cfg.Logging.Level)
	if err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "build", "open run log", result.LogPath, err)
	}
	defer closer.Close()
	logger = logging.NewComponentLogger(logging.TeeLogger(logger, fileHandler), "build")
	runLogger := logging.WithContext(ctx, logger)

	files := opts.Files
	if len(files) == 0 {
		files, err = CollectInputs(ctx, cfg.Paths.InputDir, cfg.Build.IgnoreDirs)
		if err != nil {
			return Result{}, err
		}
	}
	result.Inputs = len(files)

	store, err := history.Open(cfg)
	if err != nil {
		return Result{}, fmt.Errorf("open build history: %w", err)
	}
	defer store.Close()

	if n, err := store.FailAbandoned(ctx, cfg.Paths.OutputDir); err != nil {
		return Result{}, err
	} else if n > 0 {
		runLogger.Info("marked interrupted runs as failed", logging.Int64("runs", n))
	}
	if _, err := store.BeginRun(ctx, history.Run{
		ID:          runID,
		InputDir:    cfg.Paths.InputDir,
		OutputDir:   cfg.Paths.OutputDir,
		InputFilter: cfg.Build.InputFilter,
		InputCount:  len(files),
		LogPath:     result.LogPath,
	}); err != nil {
		return Result{}, fmt.Errorf("record build start: %w", err)
	}

	output, err := sink.New(cfg.Paths.OutputDir, logger)
	if err != nil {
		return Result{}, err
	}
	downloader := opts.Downloader
	if downloader == nil {
		downloader = assets.NewClient(
			assets.WithTimeout(cfg.HTTPTimeout()),
			assets.WithLogger(logger),
		)
	}
	reporter := &runReporter{runID: runID, store: store, next: opts.Reporter, logger: runLogger}

	runLogger.Info("build started",
		logging.String(logging.FieldEventType, "build_started"),
		logging.Int("inputs", len(files)),
		logging.String("input_dir", cfg.Paths.InputDir),
		logging.String("output_dir", cfg.Paths.OutputDir),
	)

	produced, runErr := pipelines.ProcessPipelines(ctx, &pipelines.ProcessContext{
		Assets:          downloader,
		Files:           files,
		InputFileFilter: cfg.Build.InputFilter,
		Sink:            output,
		Reporter:        reporter,
		MaxConcurrency:  cfg.Build.MaxConcurrentFiles,
		Logger:          logger,
	})
	result.Errors = reporter.errors()
	result.Sink = output.Stats()

	// History writes use a detached context so a cancelled build is still closed out.
	finishCtx := context.WithoutCancel(ctx)
	if runErr != nil {
		reason := runErr
		if errors.Is(runErr, context.Canceled) {
			reason = services.Wrap(services.ErrTransient, "build", "run", "build cancelled", runErr)
		}
		if err := store.RecordError(finishCtx, runID, runError(reason)); err != nil {
			runLogger.Warn("failed to record fatal error", logging.Error(err))
		}
		if err := store.FinishRun(finishCtx, runID, history.StatusFailed, nil, reason.Error()); err != nil {
			runLogger.Warn("failed to record build failure", logging.Error(err))
		}
		logging.ErrorWithContext(runLogger, "build failed", "build_failed",
			logging.Error(runErr),
			logging.String(logging.FieldErrorKind, services.FailureKind(reason)),
		)
		result.Duration = time.Since(started)
		return result, runErr
	}
	result.Assets = produced

	if cfg.Build.WriteIndex {
		result.IndexPath, err = WriteIndex(cfg.Paths.OutputDir, runID, produced)
		if err != nil {
			if finishErr := store.FinishRun(finishCtx, runID, history.StatusFailed, nil, err.Error()); finishErr != nil {
				runLogger.Warn("failed to record build failure", logging.Error(finishErr))
			}
			logging.ErrorWithContext(runLogger, "index write failed", "index_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check that the output directory is writable"),
			)
			result.Duration = time.Since(started)
			return result, err
		}
	}

	if err := store.FinishRun(finishCtx, runID, history.StatusCompleted, historyArtifacts(produced), ""); err != nil {
		return result, fmt.Errorf("record build completion: %w", err)
	}

	result.Duration = time.Since(started)
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "build_completed"),
		logging.Int("assets", len(produced)),
		logging.Int("errors", len(result.Errors)),
		logging.Int64("files_written", result.Sink.Files),
		logging.Duration("duration", result.Duration),
	}
	if len(result.Errors) > 0 {
		logging.WarnWithContext(runLogger, "build completed with isolated failures", "build_completed", attrs...)
	} else {
		runLogger.Info("build completed", logging.Args(attrs...)...)
	}
	return result, nil
}
