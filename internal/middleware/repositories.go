package middleware

import (
	"context"

	"github.com/deppfellow/crud-api/internal/database"
	"github.com/deppfellow/crud-api/internal/errs"
	"github.com/deppfellow/crud-api/internal/repository"
	"github.com/labstack/echo/v4"
)

// RepositoriesKey stores the per-request repository provider in the echo context.
const RepositoriesKey = "repositories"

// ExecutorSource hands out one executor per request. *database.Database implements it.
type ExecutorSource interface {
	Executor(ctx context.Context) (*database.Executor, error)
}

// RepositoriesMiddleware gives each request its own repositories bound to
// a single pooled connection.
type RepositoriesMiddleware struct {
	source ExecutorSource
}

func NewRepositoriesMiddleware(source ExecutorSource) *RepositoriesMiddleware {
	return &RepositoriesMiddleware{source: source}
}

// lazyRepositories acquires the connection on first use only, so requests
// that never touch the database never take a connection.
type lazyRepositories struct {
	source ExecutorSource
	exec   *database.Executor
	repos  *repository.Repositories
	err    error
}

func (l *lazyRepositories) get(ctx context.Context) (*repository.Repositories, error) {
	if l.repos != nil || l.err != nil {
		return l.repos, l.err
	}

	if l.source == nil {
		l.err = errs.NewServiceUnavailableError("Database unavailable")
		return nil, l.err
	}

	exec, err := l.source.Executor(ctx)
	if err != nil {
		l.err = errs.NewServiceUnavailableError("Database unavailable")
		return nil, l.err
	}

	l.exec = exec
	l.repos = repository.NewRepositories(exec)
	return l.repos, nil
}

func (l *lazyRepositories) release() {
	if l.exec != nil {
		l.exec.Release()
	}
}

// Provide installs the provider and releases the connection when the
// request ends.
func (m *RepositoriesMiddleware) Provide() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lazy := &lazyRepositories{source: m.source}
			c.Set(RepositoriesKey, lazy)
			defer lazy.release()

			return next(c)
		}
	}
}

// GetRepositories returns the request's repositories, acquiring the
// connection on the first call.
func GetRepositories(c echo.Context) (*repository.Repositories, error) {
	lazy, ok := c.Get(RepositoriesKey).(*lazyRepositories)
	if !ok {
		GetLogger(c).Error().Msg("repositories middleware not installed")
		return nil, errs.NewInternalServerError()
	}
	return lazy.get(c.Request().Context())
}
