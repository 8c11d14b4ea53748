package router

import (
	"fmt"
	"net/http"

	"github.com/deppfellow/crud-api/internal/config"
	"github.com/deppfellow/crud-api/internal/errs"
	"github.com/deppfellow/crud-api/internal/handler"
	"github.com/labstack/echo/v4"
)

// SegmentHandler serves one entity given the segments after its name.
type SegmentHandler interface {
	Entity() string
	Handle(c echo.Context, segments []string) error
}

// Description is the payload served at the base path.
type Description struct {
	Service  string   `json:"service"`
	Version  string   `json:"version"`
	Entities []string `json:"entities"`
}

// Dispatcher routes /<base path>/<entity>/... to the entity's handler.
//
// It is a flat literal lookup on the first segment; nothing else is matched.
type Dispatcher struct {
	api      *config.APIConfig
	entities map[string]SegmentHandler
	order    []string
}

func NewDispatcher(api *config.APIConfig, handlers ...SegmentHandler) *Dispatcher {
	d := &Dispatcher{
		api:      api,
		entities: make(map[string]SegmentHandler, len(handlers)),
	}
	for _, h := range handlers {
		d.entities[h.Entity()] = h
		d.order = append(d.order, h.Entity())
	}
	return d
}

// Dispatch is the echo handler for every API path.
func (d *Dispatcher) Dispatch(c echo.Context) error {
	segments, ok := ParsePath(c.Request().URL.Path, d.api.BasePath)
	if !ok {
		return errs.NewNotFoundError("Route not found", false, nil)
	}

	switch {
	case len(segments) == 0:
		return c.JSON(http.StatusOK, d.description())

	case len(segments) > MaxDepth:
		return errs.NewBadRequestError(
			fmt.Sprintf("The path cannot be more than %d segments deep", MaxDepth), true, nil, nil)
	}

	h, found := d.entities[segments[0]]
	if !found {
		return errs.NewBadRequestError(fmt.Sprintf("Unknown entity: %s", segments[0]), true, nil, nil)
	}

	return h.Handle(c, segments[1:])
}

func (d *Dispatcher) description() handler.Envelope {
	base := d.api.BasePath

	links := map[string]handler.Link{
		"self": {Href: base, Method: http.MethodGet},
	}
	for _, entity := range d.order {
		links[entity] = handler.Link{
			Href:   base + "/" + entity,
			Method: handler.CollectionMethods,
		}
		links[entity+"_item"] = handler.Link{
			Href:   base + "/" + entity + "/{id}",
			Method: handler.ItemMethods,
		}
	}

	return handler.Envelope{
		Data: Description{
			Service:  config.ServiceName,
			Version:  d.api.Version,
			Entities: d.order,
		},
		Links: links,
	}
}
