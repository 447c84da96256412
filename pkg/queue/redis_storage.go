package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces all queue keys in the broker.
const DefaultKeyPrefix = "notifier:"

// claimScript atomically moves the earliest ready job ID from the
// pending set to the processing set. Atomicity in the broker is what
// lets multiple worker processes compete without double-delivery.
//
// KEYS[1] = pending zset, KEYS[2] = processing zset
// ARGV[1] = now (ms), ARGV[2] = lock expiry (ms)
var claimScript = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, 1)
if #ids == 0 then
	return false
end
local id = ids[1]
redis.call('ZREM', KEYS[1], id)
redis.call('ZADD', KEYS[2], ARGV[2], id)
return id
`)

// reapScript returns jobs whose processing lock has expired to the
// pending set so surviving workers can reclaim them.
//
// KEYS[1] = processing zset, KEYS[2] = pending zset
// ARGV[1] = now (ms)
var reapScript = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
for _, id in ipairs(ids) do
	redis.call('ZREM', KEYS[1], id)
	redis.call('ZADD', KEYS[2], ARGV[1], id)
end
return #ids
`)

// RedisStorage implements both queue repository interfaces on a Redis
// broker. Layout per key prefix:
//
//	{p}job:{id}    job record (JSON string)
//	{p}pending     zset of job IDs scored by ready-time (epoch ms)
//	{p}processing  zset of claimed job IDs scored by lock expiry
//	{p}completed   list of terminal job records, capped by retention
//	{p}failed      list of terminal job records, capped by retention
type RedisStorage struct {
	client    redis.UniversalClient
	prefix    string
	backoff   BackoffPolicy
	retention RetentionPolicy
}

// RedisStorageOption is a functional option for RedisStorage.
type RedisStorageOption func(*RedisStorage)

// WithKeyPrefix sets the key namespace.
func WithKeyPrefix(prefix string) RedisStorageOption {
	return func(rs *RedisStorage) {
		if prefix != "" {
			rs.prefix = prefix
		}
	}
}

// WithBackoff sets the retry backoff policy.
func WithBackoff(p BackoffPolicy) RedisStorageOption {
	return func(rs *RedisStorage) {
		if p.BaseDelay > 0 {
			rs.backoff = p
		}
	}
}

// WithRetention sets the retained history bounds.
func WithRetention(p RetentionPolicy) RedisStorageOption {
	return func(rs *RedisStorage) {
		if p.KeepCompleted > 0 && p.KeepFailed > 0 {
			rs.retention = p
		}
	}
}

// NewRedisStorage creates a Redis-backed queue storage.
func NewRedisStorage(client redis.UniversalClient, opts ...RedisStorageOption) (*RedisStorage, error) {
	if client == nil {
		return nil, ErrRepositoryNil
	}

	rs := &RedisStorage{
		client:    client,
		prefix:    DefaultKeyPrefix,
		backoff:   DefaultBackoff,
		retention: DefaultRetention,
	}
	for _, opt := range opts {
		opt(rs)
	}

	return rs, nil
}

func (rs *RedisStorage) jobKey(id string) string { return rs.prefix + "job:" + id }
func (rs *RedisStorage) pendingKey() string      { return rs.prefix + "pending" }
func (rs *RedisStorage) processingKey() string   { return rs.prefix + "processing" }
func (rs *RedisStorage) completedKey() string    { return rs.prefix + "completed" }
func (rs *RedisStorage) failedKey() string       { return rs.prefix + "failed" }

// CreateJob implements EnqueuerRepository.
func (rs *RedisStorage) CreateJob(ctx context.Context, job *Job) error {
	if job == nil {
		return ErrDataNil
	}

	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDataMarshal, err)
	}

	pipe := rs.client.TxPipeline()
	pipe.Set(ctx, rs.jobKey(job.ID), raw, 0)
	pipe.ZAdd(ctx, rs.pendingKey(), redis.Z{
		Score:  float64(job.ScheduledAt.UnixMilli()),
		Member: job.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrJobCreate, err)
	}

	return nil
}

// ClaimJob implements WorkerRepository.
func (rs *RedisStorage) ClaimJob(ctx context.Context, workerID uuid.UUID, lockDuration time.Duration) (*Job, error) {
	now := time.Now()

	// Recover jobs abandoned by dead workers before claiming new work.
	if err := reapScript.Run(ctx, rs.client,
		[]string{rs.processingKey(), rs.pendingKey()},
		now.UnixMilli()).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to reap expired locks: %w", err)
	}

	lockUntil := now.Add(lockDuration)
	res, err := claimScript.Run(ctx, rs.client,
		[]string{rs.pendingKey(), rs.processingKey()},
		now.UnixMilli(), lockUntil.UnixMilli()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoJobToClaim
		}
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}

	jobID, ok := res.(string)
	if !ok || jobID == "" {
		return nil, ErrNoJobToClaim
	}

	job, err := rs.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	job.Status = JobStatusProcessing
	job.AttemptsMade++
	job.LockedUntil = &lockUntil
	job.LockedBy = &workerID

	if err := rs.storeJob(ctx, job); err != nil {
		return nil, err
	}

	return job, nil
}

// CompleteJob implements WorkerRepository.
func (rs *RedisStorage) CompleteJob(ctx context.Context, jobID string) error {
	job, err := rs.loadJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != JobStatusProcessing {
		return fmt.Errorf("%w: %s", ErrJobNotProcessing, jobID)
	}

	now := time.Now()
	job.Status = JobStatusCompleted
	job.ProcessedAt = &now
	job.LockedUntil = nil
	job.LockedBy = nil

	return rs.moveToHistory(ctx, job, rs.completedKey(), rs.retention.KeepCompleted)
}

// FailJob implements WorkerRepository. The attempt was counted at claim
// time; this schedules the retry after the backoff delay, or moves the
// job to the bounded failed history once the budget is exhausted.
func (rs *RedisStorage) FailJob(ctx context.Context, jobID string, errMsg string) (*Job, error) {
	job, err := rs.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != JobStatusProcessing {
		return nil, fmt.Errorf("%w: %s", ErrJobNotProcessing, jobID)
	}

	job.Error = &errMsg
	job.LockedUntil = nil
	job.LockedBy = nil

	if IsRetriesExhausted(job.AttemptsMade, job.MaxAttempts) {
		job.Status = JobStatusFailed
		if err := rs.moveToHistory(ctx, job, rs.failedKey(), rs.retention.KeepFailed); err != nil {
			return nil, err
		}
		return job, nil
	}

	job.Status = JobStatusPending
	job.ScheduledAt = time.Now().Add(rs.backoff.Delay(job.AttemptsMade - 1))

	raw, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataMarshal, err)
	}

	pipe := rs.client.TxPipeline()
	pipe.Set(ctx, rs.jobKey(job.ID), raw, 0)
	pipe.ZRem(ctx, rs.processingKey(), job.ID)
	pipe.ZAdd(ctx, rs.pendingKey(), redis.Z{
		Score:  float64(job.ScheduledAt.UnixMilli()),
		Member: job.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to reschedule job %s: %w", job.ID, err)
	}

	return job, nil
}

// DeadLetterJob implements WorkerRepository.
func (rs *RedisStorage) DeadLetterJob(ctx context.Context, jobID string, errMsg string) error {
	job, err := rs.loadJob(ctx, jobID)
	if err != nil {
		return err
	}

	job.Status = JobStatusFailed
	job.Error = &errMsg
	job.LockedUntil = nil
	job.LockedBy = nil

	return rs.moveToHistory(ctx, job, rs.failedKey(), rs.retention.KeepFailed)
}

// CompletedJobs returns the retained completed history, newest first.
func (rs *RedisStorage) CompletedJobs(ctx context.Context) ([]*Job, error) {
	return rs.history(ctx, rs.completedKey())
}

// FailedJobs returns the retained failed history, newest first.
func (rs *RedisStorage) FailedJobs(ctx context.Context) ([]*Job, error) {
	return rs.history(ctx, rs.failedKey())
}

func (rs *RedisStorage) history(ctx context.Context, key string) ([]*Job, error) {
	raws, err := rs.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history %s: %w", key, err)
	}

	jobs := make([]*Job, 0, len(raws))
	for _, raw := range raws {
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			return nil, fmt.Errorf("corrupt job record in %s: %w", key, err)
		}
		jobs = append(jobs, &job)
	}
	return jobs, nil
}

func (rs *RedisStorage) loadJob(ctx context.Context, jobID string) (*Job, error) {
	raw, err := rs.client.Get(ctx, rs.jobKey(jobID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
		}
		return nil, fmt.Errorf("failed to load job %s: %w", jobID, err)
	}

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, fmt.Errorf("corrupt job record %s: %w", jobID, err)
	}
	return &job, nil
}

func (rs *RedisStorage) storeJob(ctx context.Context, job *Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDataMarshal, err)
	}
	if err := rs.client.Set(ctx, rs.jobKey(job.ID), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to store job %s: %w", job.ID, err)
	}
	return nil
}

// moveToHistory removes the live job record and pushes the terminal
// record onto a capped history list. LTRIM enforces the retention
// bound, discarding the oldest entries.
func (rs *RedisStorage) moveToHistory(ctx context.Context, job *Job, key string, keep int) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDataMarshal, err)
	}

	pipe := rs.client.TxPipeline()
	pipe.ZRem(ctx, rs.processingKey(), job.ID)
	pipe.ZRem(ctx, rs.pendingKey(), job.ID)
	pipe.Del(ctx, rs.jobKey(job.ID))
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, int64(keep)-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to move job %s to %s: %w", job.ID, key, err)
	}

	return nil
}
