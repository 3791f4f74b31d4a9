// Package config fills configuration structs from environment variables.
//
// Load reads a .env file from the working directory once, if present, then
// parses the process environment into the struct with caarlos0/env. Nested
// structs are walked, so app.Config picks up the SERVER_* fields of its
// embedded server.Config and the BUS_* fields of its BusConfig:
//
//	var cfg app.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	if err := cfg.Validate(); err != nil {
//		return err
//	}
//
// A matching .env for a local run:
//
//	SERVER_ADDR=:6872
//	SERVER_WRITE_TIMEOUT=30s
//	BUS_POLL_TIMEOUT=10s
//	BUS_STREAM_WAIT_TIMEOUT=1s
//	BUS_MAX_BODY_BYTES=1048576
//	BUS_WS_ALLOWED_ORIGINS=https://console.example.com
//	BUS_METRICS_MAX_CHANNELS=1000
//	APP_ENV=production
//	LOG_LEVEL=debug
//
// Values are cached per type: the first successful Load of app.Config is
// returned by every later call, even if the environment changes. A failed
// parse is not cached, so the caller may fix the environment and retry.
// MustLoad panics instead of returning the error and suits cmd entry points
// that cannot start without configuration.
package config
