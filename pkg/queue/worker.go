package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// WorkerRepository defines the storage interface for job consumption.
// The broker, not in-process locking, arbitrates exclusive delivery:
// ClaimJob hands a given job to exactly one worker at a time, across
// processes and machines.
type WorkerRepository interface {
	// ClaimJob atomically claims the next job whose scheduled time has
	// passed, locking it for lockDuration. Returns ErrNoJobToClaim when
	// nothing is ready.
	ClaimJob(ctx context.Context, workerID uuid.UUID, lockDuration time.Duration) (*Job, error)

	// CompleteJob marks a claimed job completed and moves it to the
	// bounded completed history.
	CompleteJob(ctx context.Context, jobID string) error

	// FailJob records a failed attempt: it increments the attempt
	// counter and either reschedules the job after the backoff delay or,
	// when the retry budget is exhausted, moves it to the bounded failed
	// history. The updated job is returned so the caller can observe the
	// outcome.
	FailJob(ctx context.Context, jobID string, errMsg string) (*Job, error)

	// DeadLetterJob moves a claimed job straight to the failed history
	// without consuming retries.
	DeadLetterJob(ctx context.Context, jobID string, errMsg string) error
}

// Worker continuously drains the queue, dispatching each job to the
// handler registered for its kind. Multiple workers may run against the
// same broker; they compete for jobs and never observe the same claim
// twice.
type Worker struct {
	repo     WorkerRepository
	handlers map[string]Handler
	workerID uuid.UUID
	sem      chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopMu   sync.Mutex

	pollInterval   time.Duration
	lockTimeout    time.Duration
	handlerTimeout time.Duration
	logger         *slog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	stopping atomic.Bool
}

// WorkerOption is a functional option for configuring a Worker.
type WorkerOption func(*workerOptions)

type workerOptions struct {
	pollInterval   time.Duration
	lockTimeout    time.Duration
	handlerTimeout time.Duration
	concurrency    int
	logger         *slog.Logger
}

// WithPollInterval sets how often the worker checks for ready jobs.
func WithPollInterval(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithLockTimeout sets how long a claimed job stays locked before the
// broker hands it to another worker.
func WithLockTimeout(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.lockTimeout = d
		}
	}
}

// WithHandlerTimeout bounds a single handler invocation. A stuck
// transport call resolves through this timeout and re-enters the retry
// path.
func WithHandlerTimeout(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.handlerTimeout = d
		}
	}
}

// WithConcurrency sets the number of jobs processed in parallel by this
// worker instance.
func WithConcurrency(n int) WorkerOption {
	return func(o *workerOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithLogger sets the logger for the worker.
func WithLogger(logger *slog.Logger) WorkerOption {
	return func(o *workerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewWorker creates a new queue worker.
func NewWorker(repo WorkerRepository, opts ...WorkerOption) (*Worker, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	options := &workerOptions{
		pollInterval:   time.Second,
		lockTimeout:    5 * time.Minute,
		handlerTimeout: time.Minute,
		concurrency:    1,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Worker{
		repo:           repo,
		handlers:       make(map[string]Handler),
		workerID:       uuid.New(),
		sem:            make(chan struct{}, options.concurrency),
		pollInterval:   options.pollInterval,
		lockTimeout:    options.lockTimeout,
		handlerTimeout: options.handlerTimeout,
		logger:         options.logger,
	}, nil
}

// RegisterHandlers adds handlers to the dispatch table. The table is
// read-only once the worker starts.
func (w *Worker) RegisterHandlers(handlers ...Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, h := range handlers {
		if h != nil {
			w.handlers[h.Kind()] = h
		}
	}
}

// Start begins consuming jobs in the background.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return errors.New("worker already started")
	}
	if len(w.handlers) == 0 {
		w.mu.Unlock()
		return ErrNoHandlers
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	w.stopping.Store(false)

	go w.run()

	w.logger.Info("worker started",
		slog.String("worker_id", w.workerID.String()),
		slog.Int("concurrency", cap(w.sem)))

	return nil
}

// Stop gracefully shuts down the worker, draining in-flight jobs.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return errors.New("worker not started")
	}

	w.stopMu.Lock()
	w.stopping.Store(true)
	w.stopMu.Unlock()

	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()

	w.logger.Info("worker stopped", slog.String("worker_id", w.workerID.String()))
	return nil
}

// Run starts the worker and returns a function suitable for errgroup-
// style orchestration: it blocks until ctx is cancelled, then stops.
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		if err := w.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return w.Stop()
	}
}

// run is the main consume loop.
func (w *Worker) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			select {
			case w.sem <- struct{}{}:
				// Coordinate with Stop so we never add to the WaitGroup
				// after it started waiting.
				w.stopMu.Lock()
				if w.stopping.Load() {
					w.stopMu.Unlock()
					<-w.sem
					return
				}
				w.wg.Add(1)
				w.stopMu.Unlock()

				go func() {
					defer w.wg.Done()
					defer func() { <-w.sem }()

					if err := w.pullAndProcess(); err != nil && !errors.Is(err, ErrUnknownJobKind) {
						w.logger.Error("failed to process job",
							slog.String("worker_id", w.workerID.String()),
							slog.String("error", err.Error()))
					}
				}()
			default:
				// All slots busy; next tick will try again.
			}
		}
	}
}

func (w *Worker) pullAndProcess() error {
	job, err := w.repo.ClaimJob(w.ctx, w.workerID, w.lockTimeout)
	if err != nil {
		if errors.Is(err, ErrNoJobToClaim) {
			return nil
		}
		return fmt.Errorf("failed to claim job: %w", err)
	}
	if job == nil {
		return nil
	}

	w.logger.Debug("claimed job",
		slog.String("worker_id", w.workerID.String()),
		slog.String("job_id", job.ID),
		slog.String("job_type", job.Kind))

	return w.processJob(job)
}

func (w *Worker) processJob(job *Job) (retErr error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("panic in handler: %v", r)
			w.logger.Error("handler panicked",
				slog.String("worker_id", w.workerID.String()),
				slog.String("job_id", job.ID),
				slog.String("job_type", job.Kind),
				slog.Any("panic", r))
			retErr = w.handleFailure(job, retErr, time.Since(start))
		}
	}()

	w.mu.RLock()
	handler, ok := w.handlers[job.Kind]
	w.mu.RUnlock()

	if !ok {
		return w.handleUnknownKind(job)
	}

	// Detached from the worker lifecycle so graceful shutdown lets the
	// in-flight send finish.
	ctx, cancel := context.WithTimeout(context.Background(), w.handlerTimeout)
	defer cancel()

	err := handler.Handle(ctx, job.Data)
	duration := time.Since(start)

	if err != nil {
		return w.handleFailure(job, err, duration)
	}
	return w.handleSuccess(job, duration)
}

// handleUnknownKind dead-letters jobs whose kind has no registered
// handler. Retrying cannot help: the kind will never become known to
// this dispatch table, so burning the retry budget only delays the
// operator finding out.
func (w *Worker) handleUnknownKind(job *Job) error {
	kindErr := fmt.Errorf("%w: %s", ErrUnknownJobKind, job.Kind)

	w.logger.Error("no handler registered for job type",
		slog.String("worker_id", w.workerID.String()),
		slog.String("job_id", job.ID),
		slog.String("job_type", job.Kind))

	if err := w.repo.DeadLetterJob(w.ctx, job.ID, kindErr.Error()); err != nil {
		return fmt.Errorf("failed to dead-letter job %s: %w", job.ID, err)
	}

	return kindErr
}

// handleFailure records a failed attempt. The storage layer increments
// the attempt counter and either schedules the retry after the backoff
// delay or moves the job to the failed history; the worker's only extra
// duty is the terminal log line that makes exhausted deliveries visible
// for manual follow-up.
func (w *Worker) handleFailure(job *Job, execErr error, duration time.Duration) error {
	updated, err := w.repo.FailJob(w.ctx, job.ID, execErr.Error())
	if err != nil {
		return fmt.Errorf("failed to record failure of job %s: %w", job.ID, err)
	}

	if IsRetriesExhausted(updated.AttemptsMade, updated.MaxAttempts) {
		w.logger.Error("job exhausted all retries, email not delivered",
			slog.String("worker_id", w.workerID.String()),
			slog.String("job_id", updated.ID),
			slog.String("job_type", updated.Kind),
			slog.String("email", recipientOf(updated.Data)),
			slog.Int("attempts_made", updated.AttemptsMade),
			slog.String("error", execErr.Error()))
		return nil
	}

	w.logger.Warn("job failed, retry scheduled",
		slog.String("worker_id", w.workerID.String()),
		slog.String("job_id", updated.ID),
		slog.String("job_type", updated.Kind),
		slog.Int("attempts_made", updated.AttemptsMade),
		slog.Int("max_attempts", updated.MaxAttempts),
		slog.Time("next_attempt_at", updated.ScheduledAt),
		slog.Duration("duration", duration),
		slog.String("error", execErr.Error()))

	return nil
}

func (w *Worker) handleSuccess(job *Job, duration time.Duration) error {
	if err := w.repo.CompleteJob(w.ctx, job.ID); err != nil {
		return fmt.Errorf("failed to mark job %s as completed: %w", job.ID, err)
	}

	w.logger.Info("job completed",
		slog.String("worker_id", w.workerID.String()),
		slog.String("job_id", job.ID),
		slog.String("job_type", job.Kind),
		slog.Duration("duration", duration))

	return nil
}

// recipientOf extracts the recipient address from a notification
// payload. Every notification kind carries a top-level "email" field;
// an empty string means the payload predates that convention or is
// malformed.
func recipientOf(data json.RawMessage) string {
	var v struct {
		Email string `json:"email"`
	}
	_ = json.Unmarshal(data, &v)
	return v.Email
}
