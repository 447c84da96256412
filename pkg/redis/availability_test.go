package redis_test

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/shopkit/notifier/pkg/redis"
)

func TestIsAvailable_EmptyHost(t *testing.T) {
	t.Parallel()

	cfg := redis.Config{
		Host:         "",
		Port:         6379,
		ProbeTimeout: time.Second,
	}

	start := time.Now()
	available := redis.IsAvailable(context.Background(), cfg)

	assert.False(t, available)
	// An empty host must short-circuit without dialing anything.
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestIsAvailable_UnreachableHost(t *testing.T) {
	t.Parallel()

	cfg := redis.Config{
		Host:         "127.0.0.1",
		Port:         1, // nothing listens here
		ProbeTimeout: 500 * time.Millisecond,
	}

	assert.False(t, redis.IsAvailable(context.Background(), cfg))
}

func TestIsAvailable_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := redis.Config{
		Host:         "127.0.0.1",
		Port:         6379,
		ProbeTimeout: time.Second,
	}

	assert.False(t, redis.IsAvailable(ctx, cfg))
}

func TestHealthcheck_UnreachableBroker(t *testing.T) {
	t.Parallel()

	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"})
	defer func() { _ = client.Close() }()

	check := redis.Healthcheck(client)
	assert.ErrorIs(t, check(context.Background()), redis.ErrHealthcheckFailed)
}

func TestConnect_NoHost(t *testing.T) {
	t.Parallel()

	client, err := redis.Connect(context.Background(), redis.Config{})
	assert.Nil(t, client)
	assert.ErrorIs(t, err, redis.ErrNoHostConfigured)
}

func TestConnect_UnreachableHost(t *testing.T) {
	t.Parallel()

	cfg := redis.Config{
		Host:           "127.0.0.1",
		Port:           1,
		ConnectTimeout: time.Second,
		RetryAttempts:  2,
		RetryInterval:  50 * time.Millisecond,
		MaxRetryDelay:  100 * time.Millisecond,
	}

	client, err := redis.Connect(context.Background(), cfg)
	assert.Nil(t, client)
	assert.ErrorIs(t, err, redis.ErrRedisNotReady)
}
