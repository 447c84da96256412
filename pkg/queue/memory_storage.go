package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage implements both queue repository interfaces in memory.
// It backs tests and broker-less local development; production uses
// RedisStorage. Completed and failed history is bounded by the
// retention policy, oldest entries discarded first, matching the broker
// behavior.
type MemoryStorage struct {
	mu        sync.RWMutex
	jobs      map[string]*Job
	completed []*Job
	failed    []*Job

	backoff   BackoffPolicy
	retention RetentionPolicy

	lockTicker *time.Ticker
	done       chan struct{}
	closeOnce  sync.Once
}

// MemoryStorageOption is a functional option for MemoryStorage.
type MemoryStorageOption func(*MemoryStorage)

// WithMemoryBackoff sets the retry backoff policy.
func WithMemoryBackoff(p BackoffPolicy) MemoryStorageOption {
	return func(ms *MemoryStorage) {
		if p.BaseDelay > 0 {
			ms.backoff = p
		}
	}
}

// WithMemoryRetention sets the retained history bounds.
func WithMemoryRetention(p RetentionPolicy) MemoryStorageOption {
	return func(ms *MemoryStorage) {
		if p.KeepCompleted > 0 && p.KeepFailed > 0 {
			ms.retention = p
		}
	}
}

// NewMemoryStorage creates a new in-memory storage implementation.
func NewMemoryStorage(opts ...MemoryStorageOption) *MemoryStorage {
	ms := &MemoryStorage{
		jobs:      make(map[string]*Job),
		backoff:   DefaultBackoff,
		retention: DefaultRetention,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ms)
	}

	// Recover jobs claimed by a worker that died mid-processing.
	ms.lockTicker = time.NewTicker(time.Second)
	go ms.lockExpirationLoop()

	return ms
}

// Close stops the background lock-expiry goroutine.
func (ms *MemoryStorage) Close() error {
	ms.closeOnce.Do(func() {
		close(ms.done)
		ms.lockTicker.Stop()
	})
	return nil
}

// CreateJob implements EnqueuerRepository.
func (ms *MemoryStorage) CreateJob(ctx context.Context, job *Job) error {
	if job == nil {
		return ErrDataNil
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.jobs[job.ID]; exists {
		return fmt.Errorf("job with ID %s already exists", job.ID)
	}

	jobCopy := *job
	ms.jobs[job.ID] = &jobCopy
	return nil
}

// ClaimJob implements WorkerRepository. The oldest ready pending job is
// claimed; jobs scheduled in the future (backoff delays) are skipped.
func (ms *MemoryStorage) ClaimJob(ctx context.Context, workerID uuid.UUID, lockDuration time.Duration) (*Job, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	var best *Job
	for _, job := range ms.jobs {
		if job.Status != JobStatusPending {
			continue
		}
		if job.ScheduledAt.After(now) {
			continue
		}
		if best == nil || job.ScheduledAt.Before(best.ScheduledAt) {
			best = job
		}
	}

	if best == nil {
		return nil, ErrNoJobToClaim
	}

	lockUntil := now.Add(lockDuration)
	best.Status = JobStatusProcessing
	best.AttemptsMade++
	best.LockedUntil = &lockUntil
	best.LockedBy = &workerID

	jobCopy := *best
	return &jobCopy, nil
}

// CompleteJob implements WorkerRepository.
func (ms *MemoryStorage) CompleteJob(ctx context.Context, jobID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	job, exists := ms.jobs[jobID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if job.Status != JobStatusProcessing {
		return fmt.Errorf("%w: %s", ErrJobNotProcessing, jobID)
	}

	now := time.Now()
	job.Status = JobStatusCompleted
	job.ProcessedAt = &now
	job.LockedUntil = nil
	job.LockedBy = nil

	delete(ms.jobs, jobID)
	ms.completed = appendBounded(ms.completed, job, ms.retention.KeepCompleted)

	return nil
}

// FailJob implements WorkerRepository. The attempt was already counted
// at claim time; this either schedules the retry after the backoff
// delay or moves the job to the bounded failed history.
func (ms *MemoryStorage) FailJob(ctx context.Context, jobID string, errMsg string) (*Job, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	job, exists := ms.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if job.Status != JobStatusProcessing {
		return nil, fmt.Errorf("%w: %s", ErrJobNotProcessing, jobID)
	}

	job.Error = &errMsg
	job.LockedUntil = nil
	job.LockedBy = nil

	if IsRetriesExhausted(job.AttemptsMade, job.MaxAttempts) {
		job.Status = JobStatusFailed
		delete(ms.jobs, jobID)
		ms.failed = appendBounded(ms.failed, job, ms.retention.KeepFailed)
	} else {
		// Retry i (0-indexed) waits BaseDelay * 2^i.
		job.Status = JobStatusPending
		job.ScheduledAt = time.Now().Add(ms.backoff.Delay(job.AttemptsMade - 1))
	}

	jobCopy := *job
	return &jobCopy, nil
}

// DeadLetterJob implements WorkerRepository.
func (ms *MemoryStorage) DeadLetterJob(ctx context.Context, jobID string, errMsg string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	job, exists := ms.jobs[jobID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	job.Status = JobStatusFailed
	job.Error = &errMsg
	job.LockedUntil = nil
	job.LockedBy = nil

	delete(ms.jobs, jobID)
	ms.failed = appendBounded(ms.failed, job, ms.retention.KeepFailed)

	return nil
}

// PendingCount returns the number of jobs awaiting processing.
func (ms *MemoryStorage) PendingCount() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	n := 0
	for _, job := range ms.jobs {
		if job.Status == JobStatusPending {
			n++
		}
	}
	return n
}

// CompletedJobs returns the retained completed history, oldest first.
func (ms *MemoryStorage) CompletedJobs() []*Job {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := make([]*Job, len(ms.completed))
	copy(out, ms.completed)
	return out
}

// FailedJobs returns the retained failed history, oldest first.
func (ms *MemoryStorage) FailedJobs() []*Job {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := make([]*Job, len(ms.failed))
	copy(out, ms.failed)
	return out
}

// appendBounded appends to a history slice, discarding the oldest
// entries beyond the retention bound.
func appendBounded(history []*Job, job *Job, keep int) []*Job {
	history = append(history, job)
	if keep > 0 && len(history) > keep {
		history = history[len(history)-keep:]
	}
	return history
}

func (ms *MemoryStorage) lockExpirationLoop() {
	for {
		select {
		case <-ms.lockTicker.C:
			ms.expireLocks()
		case <-ms.done:
			return
		}
	}
}

// expireLocks returns jobs whose lock has lapsed to pending so another
// worker can pick them up. The failure history of the job is preserved.
func (ms *MemoryStorage) expireLocks() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	for _, job := range ms.jobs {
		if job.Status == JobStatusProcessing && job.LockedUntil != nil && job.LockedUntil.Before(now) {
			job.Status = JobStatusPending
			job.LockedUntil = nil
			job.LockedBy = nil
		}
	}
}
