package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
)

// Ensure JobStore implements the interface.
var _ driven.JobStore = (*JobStore)(nil)

// JobStore is an in-memory implementation of driven.JobStore. Used by
// tests and as a fallback when the SQLite store cannot be opened.
type JobStore struct {
	mu       sync.RWMutex
	jobs     map[string]domain.Job
	progress map[string]domain.Progress
	results  map[string]domain.JobResult
}

// NewJobStore creates a new in-memory job store.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs:     make(map[string]domain.Job),
		progress: make(map[string]domain.Progress),
		results:  make(map[string]domain.JobResult),
	}
}

// CreateJob stores a new job.
func (s *JobStore) CreateJob(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return domain.ErrAlreadyExists
	}
	s.jobs[job.ID] = *job
	return nil
}

// GetJob retrieves a job by ID.
func (s *JobStore) GetJob(_ context.Context, id string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &job, nil
}

// ListJobs returns all jobs, newest first.
func (s *JobStore) ListJobs(_ context.Context) ([]domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		result = append(result, job)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// UpdateJob stores the job's current state.
func (s *JobStore) UpdateJob(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return domain.ErrNotFound
	}
	s.jobs[job.ID] = *job
	return nil
}

// DeleteJob removes a job with its progress and result rows.
func (s *JobStore) DeleteJob(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.jobs, id)
	delete(s.progress, id)
	delete(s.results, id)
	return nil
}

// SaveProgress stores the latest progress snapshot for polling.
func (s *JobStore) SaveProgress(_ context.Context, p domain.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[p.JobID] = p
	return nil
}

// GetProgress retrieves the latest progress snapshot.
func (s *JobStore) GetProgress(_ context.Context, jobID string) (*domain.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.progress[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// SaveResult stores the terminal outcome of a job.
func (s *JobStore) SaveResult(_ context.Context, res *domain.JobResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[res.JobID] = *res
	return nil
}

// GetResult retrieves the terminal outcome of a job.
func (s *JobStore) GetResult(_ context.Context, jobID string) (*domain.JobResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.results[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &res, nil
}

// Close releases nothing; the store lives in process memory.
func (s *JobStore) Close() error {
	return nil
}
