package redis

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect establishes a connection to the broker using the provided
// configuration. It dials up to cfg.RetryAttempts times with jittered
// exponential backoff between attempts, the whole loop bounded by
// cfg.ConnectTimeout.
//
// The retry budget here is deliberately large: a notification job has a
// bounded retry budget of its own, and a transient broker blip should
// exhaust neither. The loop is still finite so a worker process cannot
// block forever on a broker that is never coming back.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.Host == "" {
		return nil, ErrNoHostConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	var lastErr error
	for attempt := range cfg.RetryAttempts {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Addr(),
			Password: cfg.Password,
		})

		err := client.Ping(ctx).Err()
		if err == nil {
			return client, nil
		}
		lastErr = err

		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err(), lastErr)
		case <-time.After(retryDelay(cfg, attempt)):
		}
	}

	return nil, errors.Join(ErrRedisNotReady, lastErr)
}

// retryDelay computes the jittered exponential delay before the next
// dial attempt, capped at cfg.MaxRetryDelay.
func retryDelay(cfg Config, attempt int) time.Duration {
	if cfg.RetryInterval <= 0 {
		return cfg.MaxRetryDelay
	}
	delay := cfg.RetryInterval << attempt
	if delay <= 0 || delay > cfg.MaxRetryDelay {
		delay = cfg.MaxRetryDelay
	}
	// Jitter up to the base interval spreads reconnect storms.
	return delay + rand.N(cfg.RetryInterval)
}
