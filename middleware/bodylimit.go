package middleware

import (
	"io"
	"strconv"

	"github.com/dmitrymomot/scsp/core/handler"
	"github.com/dmitrymomot/scsp/core/response"
)

// Common size constants for convenience
const (
	KB int64 = 1024
	MB       = 1024 * KB
)

// BodyLimitConfig configures the body limit middleware.
type BodyLimitConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool

	// MaxSize is the maximum allowed size in bytes (default: 1MB)
	MaxSize int64
}

func BodyLimit[C handler.Context]() handler.Middleware[C] {
	return BodyLimitWithConfig[C](BodyLimitConfig{})
}

func BodyLimitWithSize[C handler.Context](maxSize int64) handler.Middleware[C] {
	return BodyLimitWithConfig[C](BodyLimitConfig{MaxSize: maxSize})
}

// BodyLimitWithConfig rejects requests whose Content-Length exceeds the limit
// and caps the body reader, so streamed bodies fail while being decoded.
// Both paths yield response.ErrRequestEntityTooLarge.
func BodyLimitWithConfig[C handler.Context](cfg BodyLimitConfig) handler.Middleware[C] {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = MB
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			req := ctx.Request()
			if req.ContentLength > cfg.MaxSize {
				return response.Error(tooLarge(cfg.MaxSize, req.ContentLength))
			}

			if req.Body != nil {
				req.Body = &limitedReader{reader: req.Body, limit: cfg.MaxSize}
			}
			return next(ctx)
		}
	}
}

func tooLarge(limit, size int64) response.HTTPError {
	details := map[string]any{"limit": limit}
	if size > 0 {
		details["size"] = size
	}
	return response.ErrRequestEntityTooLarge.
		WithMessage("request body exceeds " + strconv.FormatInt(limit, 10) + " bytes").
		WithDetails(details)
}

// limitedReader fails once more than limit bytes were read.
type limitedReader struct {
	reader io.ReadCloser
	limit  int64
	read   int64
}

func (lr *limitedReader) Read(p []byte) (int, error) {
	// Read one byte past the limit to tell an exact fit from an overflow
	if remaining := lr.limit + 1 - lr.read; int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err := lr.reader.Read(p)
	lr.read += int64(n)
	if lr.read > lr.limit {
		return n, tooLarge(lr.limit, 0)
	}
	return n, err
}

func (lr *limitedReader) Close() error {
	return lr.reader.Close()
}
