package notification_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopkit/notifier/notification"
	"github.com/shopkit/notifier/pkg/queue"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newDeliveryPipeline wires a full producer-to-worker pipeline on the
// in-memory storage with fast backoff so retry scenarios run in
// milliseconds.
func newDeliveryPipeline(t *testing.T, mailer *fakeMailer, logger *slog.Logger) (*notification.Service, *queue.MemoryStorage) {
	t.Helper()

	storage := queue.NewMemoryStorage(queue.WithMemoryBackoff(queue.BackoffPolicy{
		Kind:      queue.BackoffExponential,
		BaseDelay: 5 * time.Millisecond,
	}))
	t.Cleanup(func() { _ = storage.Close() })

	sender, err := notification.NewSender(mailer)
	require.NoError(t, err)

	enq, err := queue.NewEnqueuer(storage)
	require.NoError(t, err)

	svc, err := notification.NewService(sender, enq,
		func(context.Context) bool { return true },
		notification.WithServiceLogger(logger))
	require.NoError(t, err)

	worker, err := queue.NewWorker(storage,
		queue.WithPollInterval(5*time.Millisecond),
		queue.WithLogger(logger))
	require.NoError(t, err)
	worker.RegisterHandlers(notification.Handlers(sender)...)

	require.NoError(t, worker.Start(context.Background()))
	t.Cleanup(func() { _ = worker.Stop() })

	return svc, storage
}

func TestEndToEnd_FlakyProviderEventuallyDelivers(t *testing.T) {
	t.Parallel()

	logs := &syncBuffer{}
	logger := slog.New(slog.NewJSONHandler(logs, nil))

	// Fails on the first four attempts, succeeds on the fifth.
	mailer := &fakeMailer{fail: func(attempt int) error {
		if attempt < 4 {
			return errors.New("provider overloaded")
		}
		return nil
	}}

	svc, storage := newDeliveryPipeline(t, mailer, logger)

	res, err := svc.EnqueueNotification(context.Background(), notification.KindOrderConfirmation, validOrderConfirmation())
	require.NoError(t, err)
	require.True(t, res.Queued)

	require.Eventually(t, func() bool {
		return len(storage.CompletedJobs()) == 1
	}, 10*time.Second, 10*time.Millisecond, "job never completed")

	completed := storage.CompletedJobs()
	assert.Equal(t, res.JobID, completed[0].ID)
	assert.Equal(t, queue.DefaultMaxAttempts, completed[0].AttemptsMade)
	assert.Empty(t, storage.FailedJobs())
	assert.Len(t, mailer.Sent(), 1)
	assert.NotContains(t, logs.String(), "exhausted all retries")
}

func TestEndToEnd_ExhaustedJobIsLoggedAndRetained(t *testing.T) {
	t.Parallel()

	logs := &syncBuffer{}
	logger := slog.New(slog.NewJSONHandler(logs, nil))

	mailer := &fakeMailer{fail: func(int) error {
		return errors.New("permanent provider failure")
	}}

	svc, storage := newDeliveryPipeline(t, mailer, logger)

	res, err := svc.EnqueueNotification(context.Background(), notification.KindOrderConfirmation, validOrderConfirmation())
	require.NoError(t, err)
	require.True(t, res.Queued)

	require.Eventually(t, func() bool {
		return len(storage.FailedJobs()) == 1
	}, 10*time.Second, 10*time.Millisecond, "job never exhausted")

	failed := storage.FailedJobs()
	assert.Equal(t, res.JobID, failed[0].ID)
	assert.Equal(t, queue.JobStatusFailed, failed[0].Status)
	assert.Equal(t, queue.DefaultMaxAttempts, failed[0].AttemptsMade)
	assert.Empty(t, storage.CompletedJobs())
	assert.Empty(t, mailer.Sent())

	// Exactly one terminal log line, carrying job ID and recipient.
	out := logs.String()
	assert.Equal(t, 1, strings.Count(out, "exhausted all retries"))
	assert.Contains(t, out, res.JobID)
	assert.Contains(t, out, "customer@example.com")
	assert.Contains(t, out, "permanent provider failure")
}
