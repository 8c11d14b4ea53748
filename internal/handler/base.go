package handler

import (
	"time"

	"github.com/deppfellow/crud-api/internal/middleware"
	"github.com/deppfellow/crud-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler is embedded by every handler to give access to the server container.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// ResponseHandler writes a successful result and describes it for tracing.
type ResponseHandler interface {
	Handle(c echo.Context, result interface{}) error

	GetOperation() string

	AddAttributes(txn *newrelic.Transaction, result interface{})
}

// JSONResponseHandler writes result as JSON with a fixed status.
type JSONResponseHandler struct {
	status    int
	operation string
}

func (h JSONResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return h.operation
}

func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	txn.AddAttribute("response.status", h.status)
	if envelope, ok := result.(Envelope); ok {
		txn.AddAttribute("response.count", envelope.Count())
	}
}

// handleRequest runs one entity operation with the shared observability:
// a request-scoped logger enriched with the operation, handler timings,
// and New Relic attributes. The operation function returns the body to
// write; its error is returned unchanged.
func handleRequest(
	c echo.Context,
	entity string,
	operation func() (interface{}, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.entity", entity)
		txn.AddAttribute("handler.operation", responseHandler.GetOperation())
	}

	logger := middleware.GetLogger(c).With().
		Str("entity", entity).
		Str("operation", responseHandler.GetOperation()).
		Logger()

	logger.Debug().Msg("handling request")

	result, err := operation()
	handlerDuration := time.Since(start)

	if err != nil {
		logger.Warn().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		}
		return err
	}

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		responseHandler.AddAttributes(txn, result)
	}

	logger.Info().
		Dur("handler_duration", handlerDuration).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}
