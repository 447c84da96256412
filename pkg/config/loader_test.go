package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopkit/notifier/pkg/config"
)

type testConfig struct {
	Host    string        `env:"TEST_CFG_HOST" envDefault:"localhost"`
	Port    int           `env:"TEST_CFG_PORT" envDefault:"6379"`
	Timeout time.Duration `env:"TEST_CFG_TIMEOUT" envDefault:"5s"`
}

type requiredConfig struct {
	Token string `env:"TEST_CFG_REQUIRED_TOKEN,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults applied when env unset", func(t *testing.T) {
		var cfg testConfig
		err := config.Load(&cfg)
		require.NoError(t, err)
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 6379, cfg.Port)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("TEST_CFG_HOST", "redis.example.com")
		t.Setenv("TEST_CFG_PORT", "6380")

		var cfg testConfig
		err := config.Load(&cfg)
		require.NoError(t, err)
		assert.Equal(t, "redis.example.com", cfg.Host)
		assert.Equal(t, 6380, cfg.Port)
	})

	t.Run("nil pointer", func(t *testing.T) {
		err := config.Load[testConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})

	t.Run("missing required variable", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("invalid value type", func(t *testing.T) {
		t.Setenv("TEST_CFG_PORT", "not-a-number")

		var cfg testConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on failure", func(t *testing.T) {
		var cfg requiredConfig
		assert.Panics(t, func() {
			config.MustLoad(&cfg)
		})
	})

	t.Run("succeeds with valid env", func(t *testing.T) {
		t.Setenv("TEST_CFG_REQUIRED_TOKEN", "secret")

		var cfg requiredConfig
		assert.NotPanics(t, func() {
			config.MustLoad(&cfg)
		})
		assert.Equal(t, "secret", cfg.Token)
	})
}
