package queue

import "time"

// BackoffKind identifies the delay-growth strategy between retries.
type BackoffKind string

// BackoffExponential doubles the delay on every retry.
const BackoffExponential BackoffKind = "exponential"

// Default queue tuning. Five attempts with a one second base yields the
// retry delay sequence 1s, 2s, 4s, 8s, 16s.
const DefaultMaxAttempts = 5

var (
	DefaultBackoff   = BackoffPolicy{Kind: BackoffExponential, BaseDelay: time.Second}
	DefaultRetention = RetentionPolicy{KeepCompleted: 100, KeepFailed: 1000}
)

// BackoffPolicy computes the delay before a failed job is retried.
type BackoffPolicy struct {
	Kind      BackoffKind   `json:"kind"`
	BaseDelay time.Duration `json:"base_delay"`
}

// Delay returns the wait before retry number retry (0-indexed):
// BaseDelay * 2^retry.
func (p BackoffPolicy) Delay(retry int) time.Duration {
	if retry < 0 {
		retry = 0
	}
	return p.BaseDelay << retry
}

// RetentionPolicy bounds the retained history of terminal jobs so
// broker storage cannot grow without bound. Oldest entries beyond the
// bound are discarded first.
type RetentionPolicy struct {
	KeepCompleted int `json:"keep_completed"`
	KeepFailed    int `json:"keep_failed"`
}

// IsRetriesExhausted reports whether a job has used up its retry
// budget.
func IsRetriesExhausted(attemptsMade, maxAttempts int) bool {
	return attemptsMade >= maxAttempts
}
