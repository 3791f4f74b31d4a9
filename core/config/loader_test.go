package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scsp/core/config"
)

type busTestConfig struct {
	PollTimeout time.Duration `env:"TEST_BUS_POLL_TIMEOUT" envDefault:"10s"`
	Channel     string        `env:"TEST_BUS_CHANNEL" envDefault:"development"`
}

type requiredTestConfig struct {
	Addr string `env:"TEST_REQUIRED_ADDR,required"`
}

func TestLoad(t *testing.T) {
	t.Run("parses_env_and_caches_per_type", func(t *testing.T) {
		t.Setenv("TEST_BUS_POLL_TIMEOUT", "3s")

		var cfg busTestConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, 3*time.Second, cfg.PollTimeout)
		assert.Equal(t, "development", cfg.Channel)

		// Cached: later environment changes are not observed
		t.Setenv("TEST_BUS_POLL_TIMEOUT", "7s")
		var again busTestConfig
		require.NoError(t, config.Load(&again))
		assert.Equal(t, cfg, again)
	})

	t.Run("nil_pointer", func(t *testing.T) {
		var cfg *busTestConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})

	t.Run("missing_required_value_can_be_retried", func(t *testing.T) {
		var cfg requiredTestConfig
		err := config.Load(&cfg)
		require.ErrorIs(t, err, config.ErrParsingConfig)

		t.Setenv("TEST_REQUIRED_ADDR", ":6872")
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, ":6872", cfg.Addr)
	})

	t.Run("must_load_panics_on_error", func(t *testing.T) {
		type another struct {
			Value int `env:"TEST_MUST_LOAD_INT,required"`
		}
		assert.Panics(t, func() {
			var cfg another
			config.MustLoad(&cfg)
		})
	})
}
