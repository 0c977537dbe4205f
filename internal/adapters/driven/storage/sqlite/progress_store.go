package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

// SaveProgress upserts the latest progress snapshot for a job.
func (s *Store) SaveProgress(ctx context.Context, p domain.Progress) error {
	logTailJSON, err := json.Marshal(p.LogTail)
	if err != nil {
		return fmt.Errorf("marshalling log tail: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO job_progress
			(job_id, status, page_current, page_total, elapsed_ms, eta_ms, log_tail, error, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			status = excluded.status,
			page_current = excluded.page_current,
			page_total = excluded.page_total,
			elapsed_ms = excluded.elapsed_ms,
			eta_ms = excluded.eta_ms,
			log_tail = excluded.log_tail,
			error = excluded.error,
			updated_at = excluded.updated_at
	`, p.JobID, p.Status.String(), p.PageCurrent, p.PageTotal,
		p.Elapsed.Milliseconds(), p.ETA.Milliseconds(),
		string(logTailJSON), p.Error, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("saving progress: %w", err)
	}
	return nil
}

// GetProgress retrieves the latest progress snapshot.
func (s *Store) GetProgress(ctx context.Context, jobID string) (*domain.Progress, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT job_id, status, page_current, page_total, elapsed_ms, eta_ms, log_tail, error
		FROM job_progress WHERE job_id = ?
	`, jobID)

	var p domain.Progress
	var status, logTailJSON string
	var elapsedMS, etaMS int64

	if err := row.Scan(&p.JobID, &status, &p.PageCurrent, &p.PageTotal,
		&elapsedMS, &etaMS, &logTailJSON, &p.Error); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning progress: %w", err)
	}

	p.Status = domain.JobStatus(status)
	p.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	p.ETA = time.Duration(etaMS) * time.Millisecond

	if logTailJSON != "" && logTailJSON != jsonNull {
		if err := json.Unmarshal([]byte(logTailJSON), &p.LogTail); err != nil {
			return nil, fmt.Errorf("unmarshalling log tail: %w", err)
		}
	}
	return &p, nil
}

// SaveResult upserts the terminal outcome of a job.
func (s *Store) SaveResult(ctx context.Context, res *domain.JobResult) error {
	outputsJSON, err := json.Marshal(res.Outputs)
	if err != nil {
		return fmt.Errorf("marshalling outputs: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO job_results
			(job_id, status, outputs, preview, pages_failed, pages_recovered, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			status = excluded.status,
			outputs = excluded.outputs,
			preview = excluded.preview,
			pages_failed = excluded.pages_failed,
			pages_recovered = excluded.pages_recovered
	`, res.JobID, res.Status.String(), string(outputsJSON), res.Preview,
		res.PagesFailed, res.PagesRecovered, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("saving result: %w", err)
	}
	return nil
}

// GetResult retrieves the terminal outcome of a job.
func (s *Store) GetResult(ctx context.Context, jobID string) (*domain.JobResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT job_id, status, outputs, preview, pages_failed, pages_recovered
		FROM job_results WHERE job_id = ?
	`, jobID)

	var res domain.JobResult
	var status, outputsJSON string

	if err := row.Scan(&res.JobID, &status, &outputsJSON, &res.Preview,
		&res.PagesFailed, &res.PagesRecovered); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning result: %w", err)
	}

	res.Status = domain.JobStatus(status)

	if outputsJSON != "" && outputsJSON != jsonNull {
		if err := json.Unmarshal([]byte(outputsJSON), &res.Outputs); err != nil {
			return nil, fmt.Errorf("unmarshalling outputs: %w", err)
		}
	}
	return &res, nil
}
