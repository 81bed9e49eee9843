// Package history keeps a local log of the batches submitted by the CLI.
// It records submissions only; the session itself is never persisted.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Submission statuses.
const (
	StatusSubmitted = "submitted"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// ErrNotFound is returned when no submission matches a lookup.
var ErrNotFound = errors.New("submission not found")

// Record represents one submitted batch
type Record struct {
	ID            int64
	RequestID     string // correlation id, generated when empty
	Kind          string // complete or save
	TaskID        int64  // 0 when the backend answered synchronously
	AssessmentIDs []int64
	Attributes    int // number of attribute values sent
	Status        string
	Error         string
	CreatedAt     time.Time
	FinishedAt    *time.Time
}

// Store manages the SQLite database of submissions
type Store struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// NewStore creates a new Store instance and initializes the database
func NewStore(dbPath string) (*Store, error) {
	// Handle in-memory database
	if dbPath == ":memory:" {
		return openAndInitStore(dbPath)
	}

	// Ensure parent directory exists for file-based databases
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	return openAndInitStore(dbPath)
}

// openAndInitStore opens the database connection and initializes schema
func openAndInitStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Every connection to :memory: is a separate database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// busy_timeout must be first so the other pragmas wait on locks
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// execWithRetry executes a SQL statement with exponential backoff retry on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}

		// Only retry on "database is locked" errors
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}

		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordSubmission stores rec with the submitted status and returns its id.
// RequestID and CreatedAt are filled in when empty.
func (s *Store) RecordSubmission(ctx context.Context, rec *Record) (int64, error) {
	if rec.RequestID == "" {
		rec.RequestID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	if rec.Status == "" {
		rec.Status = StatusSubmitted
	}

	ids, err := json.Marshal(rec.AssessmentIDs)
	if err != nil {
		return 0, fmt.Errorf("marshal assessment ids: %w", err)
	}

	query := `
INSERT INTO submissions (request_id, kind, task_id, assessment_ids, attributes, status, error, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := s.db.ExecContext(ctx, query,
		rec.RequestID, rec.Kind, rec.TaskID, string(ids), rec.Attributes, rec.Status, rec.Error, rec.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert submission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	rec.ID = id
	return id, nil
}

// FinishTask marks the newest pending submission of taskID as succeeded,
// or as failed with taskErr.
func (s *Store) FinishTask(ctx context.Context, taskID int64, taskErr error) error {
	status, message := StatusSucceeded, ""
	if taskErr != nil {
		status, message = StatusFailed, taskErr.Error()
	}

	query := `
UPDATE submissions SET status = ?, error = ?, finished_at = ?
WHERE id = (
    SELECT id FROM submissions
    WHERE task_id = ? AND status = ?
    ORDER BY id DESC LIMIT 1
)`
	result, err := s.db.ExecContext(ctx, query, status, message, s.now().UTC(), taskID, StatusSubmitted)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("task %d: %w", taskID, ErrNotFound)
	}
	return nil
}

// FindByTask returns the newest submission tracked under taskID.
func (s *Store) FindByTask(ctx context.Context, taskID int64) (*Record, error) {
	query := selectSubmissions + ` WHERE task_id = ? ORDER BY id DESC LIMIT 1`
	records, err := s.query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("task %d: %w", taskID, ErrNotFound)
	}
	return records[0], nil
}

// List returns the most recent submissions, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	query := selectSubmissions + ` ORDER BY id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return s.query(ctx, query)
}

const selectSubmissions = `
SELECT id, request_id, kind, task_id, assessment_ids, attributes, status, error, created_at, finished_at
FROM submissions`

func (s *Store) query(ctx context.Context, query string, args ...interface{}) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec := &Record{}
		var ids string
		var finished sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.Kind, &rec.TaskID, &ids,
			&rec.Attributes, &rec.Status, &rec.Error, &rec.CreatedAt, &finished); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if ids != "" {
			if err := json.Unmarshal([]byte(ids), &rec.AssessmentIDs); err != nil {
				return nil, fmt.Errorf("unmarshal assessment ids: %w", err)
			}
		}
		if finished.Valid {
			t := finished.Time
			rec.FinishedAt = &t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return records, nil
}
