package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopkit/notifier/pkg/queue"
	"github.com/shopkit/notifier/pkg/redis"
)

// Enqueuer is the queue-side dependency of the Service.
type Enqueuer interface {
	Enqueue(ctx context.Context, kind string, data any) (*queue.Job, error)
}

// AvailabilityProbe reports, per delivery attempt, whether the broker
// is currently reachable. It must never fail: any doubt about the
// broker resolves to false and delivery falls back to the direct path.
type AvailabilityProbe func(ctx context.Context) bool

// BrokerProbe adapts the connection layer's liveness check to the
// Service's AvailabilityProbe. An empty host reports unavailable
// without dialing, which turns the queue path off entirely.
func BrokerProbe(cfg redis.Config) AvailabilityProbe {
	return func(ctx context.Context) bool {
		return redis.IsAvailable(ctx, cfg)
	}
}

// Result describes how a notification left the producer: queued for
// asynchronous delivery, or already sent on the direct path.
type Result struct {
	Queued bool   `json:"queued,omitempty"`
	Sent   bool   `json:"sent,omitempty"`
	JobID  string `json:"job_id,omitempty"`
}

// Service is the notification producer. It prefers asynchronous
// delivery through the queue but never makes delivery a hard dependency
// of broker uptime: when the broker is unreachable the notification is
// sent synchronously instead, and the caller waits for the provider
// round-trip.
//
// Construct one Service at process startup and pass it to whatever
// originates notifications.
type Service struct {
	sender   *Sender
	enqueuer Enqueuer
	probe    AvailabilityProbe
	logger   *slog.Logger
}

// ServiceOption is a functional option for configuring a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger for the Service.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates the notification producer. The probe decides, per
// call, whether to enqueue or send directly.
func NewService(sender *Sender, enqueuer Enqueuer, probe AvailabilityProbe, opts ...ServiceOption) (*Service, error) {
	if sender == nil {
		return nil, ErrSenderNil
	}
	if enqueuer == nil {
		return nil, ErrEnqueuerNil
	}
	if probe == nil {
		probe = func(context.Context) bool { return false }
	}

	s := &Service{
		sender:   sender,
		enqueuer: enqueuer,
		probe:    probe,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// EnqueueNotification validates the payload against the schema for the
// given kind and hands it off for delivery. With a reachable broker the
// job is queued and the call returns immediately; otherwise the email
// is sent inline and the call blocks until the transport resolves.
//
// Validation failures surface immediately and are never retried.
// Transport failures on the direct path propagate to the caller; after
// a successful enqueue, failures are handled entirely by the queue's
// retry mechanism.
func (s *Service) EnqueueNotification(ctx context.Context, kind Kind, payload any) (Result, error) {
	typed, err := decodePayload(kind, payload)
	if err != nil {
		return Result{}, err
	}

	if s.probe(ctx) {
		job, err := s.enqueuer.Enqueue(ctx, kind.String(), typed)
		if err == nil {
			s.logger.Info("notification queued",
				slog.String("job_id", job.ID),
				slog.String("job_type", kind.String()))
			return Result{Queued: true, JobID: job.ID}, nil
		}

		// The broker answered the probe but rejected the push. Falling
		// through to the direct path keeps the guarantee that a
		// triggering request never silently loses its notification.
		s.logger.Warn("enqueue failed, falling back to direct send",
			slog.String("job_type", kind.String()),
			slog.String("error", err.Error()))
	}

	if err := s.sender.deliver(ctx, typed); err != nil {
		return Result{}, fmt.Errorf("direct send of %s failed: %w", kind, err)
	}

	s.logger.Info("notification sent directly",
		slog.String("job_type", kind.String()))

	return Result{Sent: true}, nil
}
