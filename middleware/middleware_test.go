package middleware_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scsp/core/handler"
	"github.com/dmitrymomot/scsp/core/logger"
	"github.com/dmitrymomot/scsp/core/response"
	"github.com/dmitrymomot/scsp/core/router"
	"github.com/dmitrymomot/scsp/middleware"
)

// syncBuffer is a goroutine-safe log sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) records(t *testing.T) []map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(b.buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates_uuid", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Use(middleware.RequestID[*router.Context]())

		var captured string
		r.Get("/", func(ctx *router.Context) handler.Response {
			captured, _ = middleware.GetRequestID(ctx)
			return response.NoContent()
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Len(t, captured, 36)
		assert.Equal(t, captured, rec.Header().Get("X-Request-ID"))
	})

	t.Run("reuses_incoming_id", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Use(middleware.RequestIDWithConfig[*router.Context](middleware.RequestIDConfig{UseExisting: true}))
		r.Get("/", func(*router.Context) handler.Response { return response.NoContent() })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "req-42")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	})

	t.Run("extractor_adds_id_to_logs", func(t *testing.T) {
		t.Parallel()

		var out syncBuffer
		log := logger.New(
			logger.WithOutput(&out),
			logger.WithContextExtractors(middleware.RequestIDExtractor()),
		)

		r := router.New[*router.Context]()
		r.Use(middleware.RequestIDWithConfig[*router.Context](middleware.RequestIDConfig{
			Generator: func() string { return "fixed-id" },
		}))
		r.Get("/", func(ctx *router.Context) handler.Response {
			log.InfoContext(ctx, "inside handler")
			return response.NoContent()
		})

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		recs := out.records(t)
		require.Len(t, recs, 1)
		assert.Equal(t, "fixed-id", recs[0]["request_id"])
	})
}

func TestLogging(t *testing.T) {
	t.Parallel()

	newRouter := func(out io.Writer) router.Router[*router.Context] {
		log := logger.New(logger.WithOutput(out), logger.WithLevel(slog.LevelDebug))
		r := router.New(router.WithErrorHandler(response.JSONErrorHandler[*router.Context]))
		r.Use(middleware.LoggingWithLogger[*router.Context](log))
		r.Get("/info", func(*router.Context) handler.Response {
			return response.JSON(map[string]any{"channels": []any{}})
		})
		r.Get("/register", func(*router.Context) handler.Response {
			return response.Error(response.ErrBadRequest.WithMessage("channel is required"))
		})
		return r
	}

	t.Run("success_at_info", func(t *testing.T) {
		t.Parallel()

		var out syncBuffer
		r := newRouter(&out)
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/info?x=1", nil))

		recs := out.records(t)
		require.Len(t, recs, 1)
		assert.Equal(t, "INFO", recs[0]["level"])
		assert.Equal(t, "HTTP request completed", recs[0]["msg"])
		assert.Equal(t, "/info", recs[0]["path"])
		assert.Equal(t, "x=1", recs[0]["query"])
		assert.EqualValues(t, http.StatusOK, recs[0]["status_code"])
		assert.NotZero(t, recs[0]["bytes_out"])
	})

	t.Run("returned_error_status_is_logged", func(t *testing.T) {
		t.Parallel()

		var out syncBuffer
		r := newRouter(&out)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/register", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		recs := out.records(t)
		require.Len(t, recs, 1)
		assert.Equal(t, "WARN", recs[0]["level"])
		assert.EqualValues(t, http.StatusBadRequest, recs[0]["status_code"])
	})

	t.Run("routing_miss_is_logged", func(t *testing.T) {
		t.Parallel()

		var out syncBuffer
		r := newRouter(&out)
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

		recs := out.records(t)
		require.Len(t, recs, 1)
		assert.EqualValues(t, http.StatusNotFound, recs[0]["status_code"])
	})
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()

	newRouter := func(limit int64) router.Router[*router.Context] {
		r := router.New(router.WithErrorHandler(response.JSONErrorHandler[*router.Context]))
		r.Use(middleware.BodyLimitWithSize[*router.Context](limit))
		r.Post("/write", func(ctx *router.Context) handler.Response {
			body, err := io.ReadAll(ctx.Request().Body)
			if err != nil {
				return response.Error(err)
			}
			return response.String(string(body))
		})
		return r
	}

	t.Run("within_limit", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		newRouter(5).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/write", strings.NewReader("12345")))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "12345", rec.Body.String())
	})

	t.Run("content_length_over_limit", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		newRouter(4).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/write", strings.NewReader("12345")))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Contains(t, rec.Body.String(), "request_entity_too_large")
	})

	t.Run("streamed_body_over_limit", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/write", io.NopCloser(strings.NewReader("123456789")))
		req.ContentLength = -1

		rec := httptest.NewRecorder()
		newRouter(4).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}
