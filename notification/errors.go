package notification

import "errors"

var (
	// ErrValidation is returned when a payload does not match the schema
	// for its notification kind. Surfaced synchronously at enqueue time,
	// never retried.
	ErrValidation = errors.New("notification payload validation failed")

	// ErrUnknownKind is returned when a notification kind is not part of
	// the closed set.
	ErrUnknownKind = errors.New("unknown notification kind")

	// ErrSenderNil is returned when a nil sender is provided.
	ErrSenderNil = errors.New("sender cannot be nil")

	// ErrEnqueuerNil is returned when a nil enqueuer is provided.
	ErrEnqueuerNil = errors.New("enqueuer cannot be nil")
)
