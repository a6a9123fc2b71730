package db

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusNoData  = "no_data"
	StatusError   = "error"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z"

var ErrRunNotFound = errors.New("run not found")

// Run represents one recorded conversion
type Run struct {
	RunID           string
	CreatedAt       time.Time
	InputPath       string
	OutputPath      string
	SchemaVariant   string
	ArchiveSHA256   string
	InputSizeBytes  int64
	ExchangeCount   int
	RelevantCount   int
	ConsumableCount int
	MalformedCount  int
	CandidateCount  int
	RowCount        int
	Status          string
	ErrorMessage    string
	Sources         map[string]int // candidates per container key
}

// InsertRun records r and its per-source counts in one transaction.
// An empty RunID or zero CreatedAt is filled in. Returns the run ID.
func (db *DB) InsertRun(r *Run) (string, error) {
	if r.RunID == "" {
		r.RunID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	switch r.Status {
	case StatusSuccess, StatusNoData, StatusError:
	default:
		return "", fmt.Errorf("invalid run status: %q", r.Status)
	}

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO runs (run_id, created_at, input_path, output_path, schema_variant, archive_sha256,
		                  input_size_bytes, exchange_count, relevant_count, consumable_count,
		                  malformed_count, candidate_count, row_count, status, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.RunID, r.CreatedAt.UTC().Format(timeLayout), r.InputPath, NewNullString(r.OutputPath),
		r.SchemaVariant, NewNullString(r.ArchiveSHA256), r.InputSizeBytes,
		r.ExchangeCount, r.RelevantCount, r.ConsumableCount, r.MalformedCount,
		r.CandidateCount, r.RowCount, r.Status, NewNullString(r.ErrorMessage))
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for source, count := range r.Sources {
		if _, err := tx.Exec(`
			INSERT INTO run_sources (run_id, source, candidate_count) VALUES (?, ?, ?)
		`, r.RunID, source, count); err != nil {
			return "", fmt.Errorf("failed to insert run source %s: %w", source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return r.RunID, nil
}

const runColumns = `
	run_id, created_at, input_path, output_path, schema_variant, archive_sha256,
	input_size_bytes, exchange_count, relevant_count, consumable_count,
	malformed_count, candidate_count, row_count, status, error_message`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*Run, error) {
	var r Run
	var createdAt string
	var outputPath, sha, errorMessage sql.NullString
	if err := s.Scan(&r.RunID, &createdAt, &r.InputPath, &outputPath, &r.SchemaVariant, &sha,
		&r.InputSizeBytes, &r.ExchangeCount, &r.RelevantCount, &r.ConsumableCount,
		&r.MalformedCount, &r.CandidateCount, &r.RowCount, &r.Status, &errorMessage); err != nil {
		return nil, err
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
	}
	r.CreatedAt = t
	r.OutputPath = outputPath.String
	r.ArchiveSHA256 = sha.String
	r.ErrorMessage = errorMessage.String
	return &r, nil
}

// GetRun retrieves a run and its sources by ID. A unique ID prefix also matches.
func (db *DB) GetRun(runID string) (*Run, error) {
	if runID == "" {
		return nil, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	rows, err := db.Query("SELECT"+runColumns+" FROM runs WHERE run_id = ? OR run_id LIKE ? || '%' LIMIT 2", runID, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	defer rows.Close()

	var matches []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		matches = append(matches, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}

	var run *Run
	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	case len(matches) == 1:
		run = matches[0]
	default:
		for _, m := range matches {
			if m.RunID == runID {
				run = m
			}
		}
		if run == nil {
			return nil, fmt.Errorf("ambiguous run id prefix: %s", runID)
		}
	}

	run.Sources, err = db.GetRunSources(run.RunID)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetRunSources returns the per-source candidate counts of a run.
func (db *DB) GetRunSources(runID string) (map[string]int, error) {
	rows, err := db.Query("SELECT source, candidate_count FROM run_sources WHERE run_id = ?", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run sources: %w", err)
	}
	defer rows.Close()

	sources := make(map[string]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan run source: %w", err)
		}
		sources[source] = count
	}
	return sources, rows.Err()
}

// ListRuns retrieves runs ordered by most recent first.
// status filters by run status when non-empty; limit <= 0 means no limit.
func (db *DB) ListRuns(status string, limit int) ([]Run, error) {
	query := "SELECT" + runColumns + " FROM runs"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// SortedSources returns the source names of r in lexical order.
func (r *Run) SortedSources() []string {
	keys := make([]string, 0, len(r.Sources))
	for k := range r.Sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewNullString creates a sql.NullString from a string value.
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
