package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/crud-api/internal/config"
	"github.com/deppfellow/crud-api/internal/database"
	"github.com/deppfellow/crud-api/internal/errs"
	"github.com/deppfellow/crud-api/internal/server"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, logs *bytes.Buffer) *server.Server {
	t.Helper()
	logger := zerolog.New(logs)
	return &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Server: config.ServerConfig{
				Port:               "8080",
				CORSAllowedOrigins: []string{"*"},
			},
			API: config.DefaultAPIConfig(),
		},
		Logger: &logger,
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGlobalErrorHandler(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"http error", errs.NewConflictError("busy", nil), http.StatusConflict, "busy"},
		{"wrapped http error", fmt.Errorf("ctx: %w", errs.NewNotFoundError("gone", true, nil)), http.StatusNotFound, "gone"},
		{"echo not found", echo.ErrNotFound, http.StatusNotFound, "Route not found"},
		{"echo method not allowed", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "Method not allowed"},
		{"echo other", echo.NewHTTPError(http.StatusRequestEntityTooLarge, "too big"), http.StatusRequestEntityTooLarge, "too big"},
		{"database unavailable", fmt.Errorf("%w: refused", database.ErrUnavailable), http.StatusServiceUnavailable, "Database unavailable"},
		{"pg error", &pgconn.PgError{Code: "23503", TableName: "employee", ColumnName: "department_id"}, http.StatusBadRequest, "The referenced Department does not exist"},
		{"unknown", errors.New("secret detail"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			global := NewGlobalMiddlewares(newTestServer(t, &logs))

			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/api/artists", nil), rec)

			global.GlobalErrorHandler(tt.err, c)

			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.message, body["error"])
			assert.Equal(t, float64(tt.status), body["status"])
			assert.NotContains(t, rec.Body.String(), "secret detail")
		})
	}
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	handler := RequestID()(func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))
		assert.Len(t, rec.Body.String(), 36)
		assert.Equal(t, rec.Body.String(), rec.Header().Get(RequestIDHeader))
	})

	t.Run("reused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.Equal(t, "abc-123", rec.Body.String())
	})
}

func TestEnhanceContext_LoggerReachesRequestContext(t *testing.T) {
	var logs bytes.Buffer
	enhancer := NewContextEnhancer(newTestServer(t, &logs))

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/api/artists", nil), httptest.NewRecorder())
	c.Set(RequestIDKey, "req-1")

	err := enhancer.EnhanceContext()(func(c echo.Context) error {
		zerolog.Ctx(c.Request().Context()).Info().Msg("from ctx")
		GetLogger(c).Info().Msg("from echo")
		return nil
	})(c)
	require.NoError(t, err)

	assert.Equal(t, 2, bytes.Count(logs.Bytes(), []byte(`"request_id":"req-1"`)))
	assert.Contains(t, logs.String(), `"path":"/v1/api/artists"`)
}

func TestRateLimit(t *testing.T) {
	var logs bytes.Buffer
	s := newTestServer(t, &logs)
	s.Config.Server.RateLimit = 1

	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
	e.Use(NewRateLimitMiddleware(s).Limit())
	e.GET("/v1/api", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	first := httptest.NewRecorder()
	e.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/v1/api", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	e.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/v1/api", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", decodeError(t, second)["code"])
}

func TestRateLimit_DisabledWhenZero(t *testing.T) {
	var logs bytes.Buffer
	s := newTestServer(t, &logs)

	e := echo.New()
	e.Use(NewRateLimitMiddleware(s).Limit())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for range 5 {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

type nopQuerier struct{}

func (nopQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not used")
}

func (nopQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("not used")
}

func (nopQuerier) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

type countingSource struct {
	acquired int
	released int
	err      error
}

func (s *countingSource) Executor(context.Context) (*database.Executor, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.acquired++
	return database.NewExecutor(nopQuerier{}, nil, func() { s.released++ }), nil
}

func runWithRepositories(t *testing.T, source ExecutorSource, handler echo.HandlerFunc) error {
	t.Helper()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/api/artists", nil), httptest.NewRecorder())
	return NewRepositoriesMiddleware(source).Provide()(handler)(c)
}

func TestRepositories_AcquiresOnceAndReleases(t *testing.T) {
	source := &countingSource{}

	err := runWithRepositories(t, source, func(c echo.Context) error {
		first, err := GetRepositories(c)
		require.NoError(t, err)
		second, err := GetRepositories(c)
		require.NoError(t, err)
		assert.Same(t, first, second)
		assert.Equal(t, 0, source.released)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, source.acquired)
	assert.Equal(t, 1, source.released)
}

func TestRepositories_LazyAcquire(t *testing.T) {
	source := &countingSource{}

	require.NoError(t, runWithRepositories(t, source, func(c echo.Context) error { return nil }))
	assert.Equal(t, 0, source.acquired)
}

func TestRepositories_AcquireFailureIs503(t *testing.T) {
	source := &countingSource{err: database.ErrUnavailable}

	_ = runWithRepositories(t, source, func(c echo.Context) error {
		_, err := GetRepositories(c)
		assert.Equal(t, http.StatusServiceUnavailable, errs.StatusOf(err))
		return err
	})
}

func TestGetRepositories_WithoutMiddleware(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := GetRepositories(c)
	assert.Equal(t, http.StatusInternalServerError, errs.StatusOf(err))
}
