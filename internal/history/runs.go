package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"forge/internal/services"
)

// ErrRunNotFound is returned when no run matches an identifier.
var ErrRunNotFound = fmt.Errorf("build run %w", services.ErrNotFound)

const defaultListLimit = 20

// BeginRun inserts a running build. run.ID must be set; StartedAt defaults to
// now.
func (s *Store) BeginRun(ctx context.Context, run Run) (*Run, error) {
	if strings.TrimSpace(run.ID) == "" {
		return nil, errors.New("run id is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Status = StatusRunning
	run.FinishedAt = nil

	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, input_dir, output_dir, input_filter, status, input_count, log_path, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.InputDir,
		run.OutputDir,
		nullableString(run.InputFilter),
		string(run.Status),
		run.InputCount,
		nullableString(run.LogPath),
		formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &run, nil
}

// RecordError appends a failure to a run and bumps its error count.
func (s *Store) RecordError(ctx context.Context, runID string, failure RunError) error {
	if failure.CreatedAt.IsZero() {
		failure.CreatedAt = time.Now().UTC()
	}
	if failure.Kind == "" {
		failure.Kind = ErrorKindFatal
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_errors (run_id, kind, failure_kind, location, message, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID,
			string(failure.Kind),
			nullableString(failure.FailureKind),
			nullableString(failure.Location),
			failure.Message,
			formatTime(failure.CreatedAt),
		); err != nil {
			return fmt.Errorf("insert run error: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "UPDATE runs SET error_count = error_count + 1 WHERE id = ?", runID); err != nil {
			return fmt.Errorf("update error count: %w", err)
		}
		return tx.Commit()
	})
}

// FinishRun closes a run with its final status and stores its artifacts.
// errorMessage is kept only for failed runs.
func (s *Store) FinishRun(ctx context.Context, runID string, status Status, artifacts []Artifact, errorMessage string) error {
	if status == StatusRunning || status == "" {
		return fmt.Errorf("finish run: invalid final status %q", status)
	}
	finished := formatTime(time.Now().UTC())
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO run_artifacts (run_id, name, type, source, content, tags_json, categories_json)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare artifact insert: %w", err)
		}
		defer stmt.Close()

		for _, artifact := range artifacts {
			tags, err := json.Marshal(nonNilStrings(artifact.Tags))
			if err != nil {
				return fmt.Errorf("encode tags: %w", err)
			}
			categories, err := json.Marshal(nonNilCategories(artifact.Categories))
			if err != nil {
				return fmt.Errorf("encode categories: %w", err)
			}
			if _, err := stmt.ExecContext(ctx, runID, artifact.Name, artifact.Type,
				nullableString(artifact.Source), nullableString(artifact.Content), string(tags), string(categories)); err != nil {
				return fmt.Errorf("insert artifact: %w", err)
			}
		}

		if status != StatusFailed {
			errorMessage = ""
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE runs SET status = ?, artifact_count = ?, error_message = ?, finished_at = ? WHERE id = ?`,
			string(status), len(artifacts), nullableString(errorMessage), finished, runID)
		if err != nil {
			return fmt.Errorf("update run: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrRunNotFound
		}
		return tx.Commit()
	})
}

// FailAbandoned marks runs for outputDir still flagged running as failed. The
// caller must hold the output lock, so any such run belongs to a process that
// exited without finishing.
func (s *Store) FailAbandoned(ctx context.Context, outputDir string) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, error_message = ?, finished_at = ? WHERE output_dir = ? AND status = ?`,
		string(StatusFailed), "interrupted before completion", formatTime(time.Now().UTC()), outputDir, string(StatusRunning))
	if err != nil {
		return 0, fmt.Errorf("fail abandoned runs: %w", err)
	}
	return res.RowsAffected()
}

// ListRuns returns the most recent runs first. A non-positive limit uses the
// default of 20.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs ORDER BY started_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun fetches a run by full ID or unique ID prefix.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrRunNotFound
	}
	run, err := scanRun(s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id))
	if err == nil {
		return run, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2", len(id), id)
	if err != nil {
		return nil, fmt.Errorf("get run by prefix: %w", err)
	}
	defer rows.Close()
	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, ErrRunNotFound
	case 1:
		return matches[0], nil
	default:
		return nil, services.Wrap(services.ErrValidation, "history", "get run", fmt.Sprintf("run id prefix %q is ambiguous", id), nil)
	}
}

// RunArtifacts lists a run's artifacts in insertion order.
func (s *Store) RunArtifacts(ctx context.Context, runID string) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, type, source, content, tags_json, categories_json
		 FROM run_artifacts WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []Artifact
	for rows.Next() {
		var (
			artifact   Artifact
			source     sql.NullString
			content    sql.NullString
			tags       string
			categories string
		)
		if err := rows.Scan(&artifact.Name, &artifact.Type, &source, &content, &tags, &categories); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		artifact.Source = source.String
		artifact.Content = content.String
		if err := json.Unmarshal([]byte(tags), &artifact.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
		if err := json.Unmarshal([]byte(categories), &artifact.Categories); err != nil {
			return nil, fmt.Errorf("decode categories: %w", err)
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, rows.Err()
}

// RunErrors lists a run's failures in the order they were recorded.
func (s *Store) RunErrors(ctx context.Context, runID string) ([]RunError, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, kind, failure_kind, location, message, created_at
		 FROM run_errors WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run errors: %w", err)
	}
	defer rows.Close()

	var failures []RunError
	for rows.Next() {
		var (
			failure     RunError
			kind        string
			failureKind sql.NullString
			location    sql.NullString
			createdRaw  string
		)
		if err := rows.Scan(&failure.ID, &failure.RunID, &kind, &failureKind, &location, &failure.Message, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan run error: %w", err)
		}
		failure.Kind = ErrorKind(kind)
		failure.FailureKind = failureKind.String
		failure.Location = location.String
		if created, err := parseTimeString(createdRaw); err == nil {
			failure.CreatedAt = created
		}
		failures = append(failures, failure)
	}
	return failures, rows.Err()
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nonNilCategories(values [][]string) [][]string {
	if values == nil {
		return [][]string{}
	}
	return values
}
