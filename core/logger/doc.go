// Package logger provides structured logging utilities built on Go's standard slog package.
//
// It offers a logger factory with environment presets, context-aware attribute
// extraction, and attribute helpers for the fields the message bus logs most:
// channels, client identities, handler kinds, and HTTP request details.
//
// # Basic Usage
//
//	import "github.com/dmitrymomot/scsp/core/logger"
//
//	// Development: text format, debug level, stdout
//	log := logger.New(logger.WithDevelopment("scsp"))
//
//	// Production: JSON format, info level, stdout
//	log := logger.New(
//		logger.WithProduction("scsp"),
//		logger.WithLevel(slog.LevelWarn),
//	)
//
//	// Pick the preset from an APP_ENV style string
//	log := logger.New(logger.WithEnvironment(cfg.Env, cfg.AppName))
//
// # Context-Aware Logging
//
// Request-scoped values are injected automatically when an extractor is registered:
//
//	log := logger.New(
//		logger.WithProduction("scsp"),
//		logger.WithContextExtractors(requestIDExtractor),
//	)
//	log.InfoContext(ctx, "publishing message")
//
// # Attribute Helpers
//
// Helpers return an empty slog.Attr for nil or empty values so they can be
// passed unconditionally:
//
//	log.Debug("handler registered",
//		logger.Component("bus"),
//		logger.Channel("development"),
//		logger.ClientID("client-1"),
//		logger.HandlerKind("streaming"),
//	)
//
//	log.Error("failed to forward frame", logger.Error(err))
package logger
