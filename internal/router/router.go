// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares, the system routes, and the catch-all
// route that hands every API path to the entity Dispatcher.
package router

import (
	"github.com/deppfellow/crud-api/internal/handler"
	"github.com/deppfellow/crud-api/internal/middleware"
	"github.com/deppfellow/crud-api/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the echo instance with middleware, error handler and routes.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: the request id and transaction must exist before the
	// context logger reads them, and the logger before anything logs.
	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.Secure(),
		middlewares.Global.CORS(),
		middlewares.RateLimit.Limit(),
	)

	registerSystemRoutes(router, h)

	dispatcher := NewDispatcher(s.Config.API, h.Artists, h.Employees, h.Projects)

	// The base path may sit under a mount directory, so every path that is
	// not a system route goes through the dispatcher.
	router.Any("/*", dispatcher.Dispatch, middlewares.Repositories.Provide())

	return router
}
