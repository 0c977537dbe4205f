package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ricopen19/OCR-to-doc/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Ensure Store implements the interface.
var _ driven.JobStore = (*Store)(nil)

// Store is a SQLite-backed job store. One database holds the job rows,
// the latest progress snapshot per job, and the terminal results.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.ocr2doc/data/jobs.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ocr2doc", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "jobs.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// CreateJob stores a new job.
func (s *Store) CreateJob(ctx context.Context, job *domain.Job) error {
	optionsJSON, err := json.Marshal(job.Options)
	if err != nil {
		return fmt.Errorf("marshalling options: %w", err)
	}
	outputsJSON, err := json.Marshal(job.Outputs)
	if err != nil {
		return fmt.Errorf("marshalling outputs: %w", err)
	}

	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO jobs
			(id, input_path, label, options, status, error, output_dir, outputs, created_at, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.InputPath, job.Label, string(optionsJSON), job.Status.String(),
		job.Error, job.OutputDir, string(outputsJSON),
		job.CreatedAt, nullTime(job.StartedAt), nullTime(job.FinishedAt))
	if err != nil {
		return fmt.Errorf("creating job: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("creating job: %w", err)
	}
	if affected == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, input_path, label, options, status, error, output_dir, outputs, created_at, started_at, finished_at
		FROM jobs WHERE id = ?
	`, id)

	return scanJob(row)
}

// ListJobs returns all jobs, newest first.
func (s *Store) ListJobs(ctx context.Context) ([]domain.Job, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, input_path, label, options, status, error, output_dir, outputs, created_at, started_at, finished_at
		FROM jobs ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJobRows(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return jobs, nil
}

// UpdateJob stores the job's current state.
func (s *Store) UpdateJob(ctx context.Context, job *domain.Job) error {
	optionsJSON, err := json.Marshal(job.Options)
	if err != nil {
		return fmt.Errorf("marshalling options: %w", err)
	}
	outputsJSON, err := json.Marshal(job.Outputs)
	if err != nil {
		return fmt.Errorf("marshalling outputs: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET
			input_path = ?,
			label = ?,
			options = ?,
			status = ?,
			error = ?,
			output_dir = ?,
			outputs = ?,
			started_at = ?,
			finished_at = ?
		WHERE id = ?
	`, job.InputPath, job.Label, string(optionsJSON), job.Status.String(),
		job.Error, job.OutputDir, string(outputsJSON),
		nullTime(job.StartedAt), nullTime(job.FinishedAt), job.ID)
	if err != nil {
		return fmt.Errorf("updating job: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating job: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteJob removes a job. Progress and result rows cascade.
func (s *Store) DeleteJob(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM jobs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting job: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting job: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanJob scans a single job row.
func scanJob(row *sql.Row) (*domain.Job, error) {
	var job domain.Job
	var optionsJSON, outputsJSON, status string
	var createdAt time.Time
	var startedAt, finishedAt sql.NullTime

	if err := row.Scan(&job.ID, &job.InputPath, &job.Label, &optionsJSON, &status,
		&job.Error, &job.OutputDir, &outputsJSON, &createdAt, &startedAt, &finishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning job: %w", err)
	}

	return buildJob(&job, optionsJSON, outputsJSON, status, createdAt, startedAt, finishedAt)
}

// scanJobRows scans a job from a multi-row result set.
func scanJobRows(rows *sql.Rows) (*domain.Job, error) {
	var job domain.Job
	var optionsJSON, outputsJSON, status string
	var createdAt time.Time
	var startedAt, finishedAt sql.NullTime

	if err := rows.Scan(&job.ID, &job.InputPath, &job.Label, &optionsJSON, &status,
		&job.Error, &job.OutputDir, &outputsJSON, &createdAt, &startedAt, &finishedAt); err != nil {
		return nil, fmt.Errorf("scanning job: %w", err)
	}

	return buildJob(&job, optionsJSON, outputsJSON, status, createdAt, startedAt, finishedAt)
}

func buildJob(job *domain.Job, optionsJSON, outputsJSON, status string, createdAt time.Time, startedAt, finishedAt sql.NullTime) (*domain.Job, error) {
	job.Status = domain.JobStatus(status)
	job.CreatedAt = createdAt

	if optionsJSON != "" && optionsJSON != jsonNull {
		if err := json.Unmarshal([]byte(optionsJSON), &job.Options); err != nil {
			return nil, fmt.Errorf("unmarshalling options: %w", err)
		}
	}
	if outputsJSON != "" && outputsJSON != jsonNull {
		if err := json.Unmarshal([]byte(outputsJSON), &job.Outputs); err != nil {
			return nil, fmt.Errorf("unmarshalling outputs: %w", err)
		}
	}
	if startedAt.Valid {
		job.StartedAt = startedAt.Time
	}
	if finishedAt.Valid {
		job.FinishedAt = finishedAt.Time
	}
	return job, nil
}

// nullTime returns nil for zero times, otherwise the time in UTC.
func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
