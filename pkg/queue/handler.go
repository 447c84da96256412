package queue

import (
	"context"
	"encoding/json"
	"fmt"
)

type (
	// Handler processes jobs of one kind. Implementations must return a
	// non-nil error on any delivery failure so the queue's retry
	// mechanism engages; swallowing a provider error would mark the job
	// completed without the email ever leaving.
	Handler interface {
		Kind() string
		Handle(ctx context.Context, data json.RawMessage) error
	}

	// JobHandlerFunc is the typed processing function wrapped by
	// NewJobHandler.
	JobHandlerFunc[T any] func(ctx context.Context, data T) error
)

// NewJobHandler wraps a typed function into a Handler for the given job
// kind, decoding the raw payload before invoking it.
func NewJobHandler[T any](kind string, handler JobHandlerFunc[T]) Handler {
	return &jobHandler[T]{kind: kind, handler: handler}
}

type jobHandler[T any] struct {
	kind    string
	handler JobHandlerFunc[T]
}

func (h *jobHandler[T]) Kind() string {
	return h.kind
}

func (h *jobHandler[T]) Handle(ctx context.Context, data json.RawMessage) error {
	var t T
	if err := json.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", h.kind, err)
	}
	return h.handler(ctx, t)
}
