package health

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/scsp/core/handler"
	"github.com/dmitrymomot/scsp/core/logger"
	"github.com/dmitrymomot/scsp/core/response"
)

// Readiness runs every check in order and answers "READY" when all pass.
// The first failing check is logged and yields 503 Service Unavailable.
//
//	r.Get("/health/ready", health.Readiness[*router.Context](log, b.Ping))
func Readiness[C handler.Context](log *slog.Logger, checks ...func(context.Context) error) handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		for _, check := range checks {
			if err := check(ctx); err != nil {
				log.WarnContext(ctx, "readiness check failed",
					logger.Component("health"),
					logger.Error(err),
				)
				return response.Error(response.ErrServiceUnavailable.WithError(err))
			}
		}
		return response.String("READY")
	}
}
