package queue

import "errors"

// Common errors
var (
	// ErrRepositoryNil is returned when a nil repository is provided
	ErrRepositoryNil = errors.New("repository cannot be nil")

	// ErrDataNil is returned when attempting to enqueue a nil payload
	ErrDataNil = errors.New("job data cannot be nil")

	// ErrDataMarshal is returned when payload marshaling fails
	ErrDataMarshal = errors.New("failed to marshal job data to JSON")

	// ErrJobCreate is returned when job creation in storage fails
	ErrJobCreate = errors.New("failed to create job in storage")

	// ErrJobNotFound is returned when a job ID is not present in storage
	ErrJobNotFound = errors.New("job not found")

	// ErrNoJobToClaim is returned when no job is ready for processing
	ErrNoJobToClaim = errors.New("no job ready to claim")

	// ErrJobNotProcessing is returned when a terminal transition is
	// requested for a job that is not currently claimed
	ErrJobNotProcessing = errors.New("job is not in processing state")

	// ErrUnknownJobKind is returned when a job's kind has no registered handler
	ErrUnknownJobKind = errors.New("unknown email job type")

	// ErrNoHandlers is returned when a worker is started without handlers
	ErrNoHandlers = errors.New("no job handlers registered")
)
