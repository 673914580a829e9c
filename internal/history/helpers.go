package history

import (
	"database/sql"
	"errors"
	"time"
)

const runColumns = "id, input_dir, output_dir, input_filter, status, input_count, artifact_count, error_count, error_message, log_path, started_at, finished_at"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run          Run
		inputFilter  sql.NullString
		statusStr    string
		errorMessage sql.NullString
		logPath      sql.NullString
		startedRaw   string
		finishedRaw  sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.InputDir,
		&run.OutputDir,
		&inputFilter,
		&statusStr,
		&run.InputCount,
		&run.ArtifactCount,
		&run.ErrorCount,
		&errorMessage,
		&logPath,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}
	run.InputFilter = inputFilter.String
	run.Status = Status(statusStr)
	run.ErrorMessage = errorMessage.String
	run.LogPath = logPath.String
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// timeLayout keeps a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(value time.Time) string {
	return value.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}
