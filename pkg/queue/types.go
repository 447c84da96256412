package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job is one unit of asynchronous work: a single notification to
// deliver. ID, Kind, and Data form the wire envelope handed over by
// producers; the remaining fields are scheduling metadata owned by the
// broker storage.
type Job struct {
	ID           string          `json:"id"`
	Kind         string          `json:"type"`
	Data         json.RawMessage `json:"data"`
	Status       JobStatus       `json:"status"`
	AttemptsMade int             `json:"attempts_made"`
	MaxAttempts  int             `json:"max_attempts"`
	ScheduledAt  time.Time       `json:"scheduled_at"`
	LockedUntil  *time.Time      `json:"locked_until,omitempty"`
	LockedBy     *uuid.UUID      `json:"locked_by,omitempty"`
	ProcessedAt  *time.Time      `json:"processed_at,omitempty"`
	Error        *string         `json:"error,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Envelope is the application-level payload as persisted and
// transmitted by the broker: everything else on Job is broker-side
// scheduling state.
type Envelope struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Envelope returns the application-level view of the job.
func (j *Job) Envelope() Envelope {
	return Envelope{ID: j.ID, Type: j.Kind, Data: j.Data}
}
