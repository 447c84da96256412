package redis

import (
	"net"
	"strconv"
	"time"
)

// Config describes the broker connection. Host, port, and password come
// from the environment; an empty host disables the queue path entirely
// and is not an error.
type Config struct {
	// Host is the broker hostname. Empty means "no broker configured".
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`

	// ConnectTimeout bounds the whole Connect retry loop; ProbeTimeout
	// bounds a single availability ping.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"5m"`
	ProbeTimeout   time.Duration `env:"REDIS_PROBE_TIMEOUT" envDefault:"2s"`

	// Dial attempts use jittered exponential backoff from RetryInterval
	// up to MaxRetryDelay.
	RetryAttempts int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"100"`
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"500ms"`
	MaxRetryDelay time.Duration `env:"REDIS_RETRY_INTERVAL_MAX" envDefault:"10s"`
}

// Addr returns the host:port pair for dialing.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
