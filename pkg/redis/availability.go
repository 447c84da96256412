package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// IsAvailable reports whether the broker is currently reachable. It
// never returns an error: any dial or ping failure simply yields false,
// and an empty host yields false without attempting a connection. The
// caller uses the verdict to route between the queue path and the
// direct-send fallback.
func IsAvailable(ctx context.Context, cfg Config) bool {
	if cfg.Host == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ProbeTimeout)
	defer cancel()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
	})
	defer func() { _ = client.Close() }()

	return client.Ping(ctx).Err() == nil
}
