package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// EnqueuerRepository defines the storage interface for job creation.
type EnqueuerRepository interface {
	CreateJob(ctx context.Context, job *Job) error
}

// Enqueuer builds job envelopes and pushes them onto the queue. It
// returns immediately after the job is persisted; delivery happens in
// the worker.
type Enqueuer struct {
	repo        EnqueuerRepository
	maxAttempts int
}

// EnqueuerOption is a functional option for configuring an Enqueuer.
type EnqueuerOption func(*Enqueuer)

// WithMaxAttempts sets the retry budget stamped on each enqueued job.
func WithMaxAttempts(n int) EnqueuerOption {
	return func(e *Enqueuer) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// NewEnqueuer creates a new Enqueuer.
func NewEnqueuer(repo EnqueuerRepository, opts ...EnqueuerOption) (*Enqueuer, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	e := &Enqueuer{
		repo:        repo,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Enqueue persists a new job of the given kind and returns it. The job
// ID is generated here, unique per enqueue, and never reused.
func (e *Enqueuer) Enqueue(ctx context.Context, kind string, data any) (*Job, error) {
	if data == nil {
		return nil, ErrDataNil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataMarshal, err)
	}

	now := time.Now()
	job := &Job{
		ID:           NewJobID(kind),
		Kind:         kind,
		Data:         raw,
		Status:       JobStatusPending,
		AttemptsMade: 0,
		MaxAttempts:  e.maxAttempts,
		ScheduledAt:  now,
		CreatedAt:    now,
	}

	if err := e.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("%w: job %q: %w", ErrJobCreate, job.ID, err)
	}

	return job, nil
}
