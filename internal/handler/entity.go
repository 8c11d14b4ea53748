package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/deppfellow/crud-api/internal/errs"
	"github.com/deppfellow/crud-api/internal/validation"
	"github.com/labstack/echo/v4"
)

// SearchParam is the query parameter that turns a collection read into a search.
const SearchParam = "s"

// Resource is the repository contract an EntityHandler dispatches to.
type Resource[T any, In any] interface {
	List(ctx context.Context) ([]T, error)
	Search(ctx context.Context, text string) ([]T, error)
	GetByID(ctx context.Context, id int64) (*T, error)
	Insert(ctx context.Context, in *In) (string, error)
	Update(ctx context.Context, id int64, in *In) error
	RemoveByID(ctx context.Context, id int64) error
}

// ResourceFunc resolves the request's Resource, usually from the
// per-request repositories.
type ResourceFunc[T any, In any] func(c echo.Context) (Resource[T, In], error)

// EntityHandler serves one routed entity.
//
// Segments are what remains of the path after the entity name:
//
//	[]          GET list, GET ?s= search, POST insert (201)
//	[id]        GET detail, PUT update, DELETE remove
//	[id, sub…]  501, nested resources are not implemented
type EntityHandler[T any, In any] struct {
	Handler
	entity   string
	resource ResourceFunc[T, In]
}

func NewEntityHandler[T any, In any](h Handler, entity string, resource ResourceFunc[T, In]) *EntityHandler[T, In] {
	return &EntityHandler[T, In]{
		Handler:  h,
		entity:   entity,
		resource: resource,
	}
}

// Entity returns the route segment this handler serves.
func (h *EntityHandler[T, In]) Entity() string {
	return h.entity
}

// Handle dispatches on the remaining segments and the HTTP method.
func (h *EntityHandler[T, In]) Handle(c echo.Context, segments []string) error {
	switch len(segments) {
	case 0:
		return h.handleCollection(c)
	case 1:
		id, err := parseID(segments[0])
		if err != nil {
			return err
		}
		return h.handleItem(c, id)
	default:
		return errs.NewNotImplementedError("Nested resources are not implemented")
	}
}

func (h *EntityHandler[T, In]) handleCollection(c echo.Context) error {
	switch {
	case c.QueryParams().Has(SearchParam):
		return h.run(c, "search", CollectionMethods, http.StatusOK, func(ctx context.Context, r Resource[T, In]) (interface{}, error) {
			return r.Search(ctx, c.QueryParam(SearchParam))
		})

	case c.Request().Method == http.MethodPost:
		return h.run(c, "insert", CollectionMethods, http.StatusCreated, func(ctx context.Context, r Resource[T, In]) (interface{}, error) {
			in := new(In)
			if err := validation.Bind(c, in); err != nil {
				return nil, err
			}

			newID, err := r.Insert(ctx, in)
			if err != nil {
				return nil, err
			}

			id, err := parseID(newID)
			if err != nil {
				return nil, errs.NewInternalServerError()
			}

			c.Response().Header().Set(echo.HeaderLocation, h.itemPath(id))
			return r.GetByID(ctx, id)
		})

	default:
		return h.run(c, "list", CollectionMethods, http.StatusOK, func(ctx context.Context, r Resource[T, In]) (interface{}, error) {
			return r.List(ctx)
		})
	}
}

func (h *EntityHandler[T, In]) handleItem(c echo.Context, id int64) error {
	switch c.Request().Method {
	case http.MethodDelete:
		return h.run(c, "remove", ItemMethods, http.StatusOK, func(ctx context.Context, r Resource[T, In]) (interface{}, error) {
			if err := r.RemoveByID(ctx, id); err != nil {
				return nil, err
			}
			return Deleted{Deleted: true, ID: id}, nil
		})

	case http.MethodPut:
		return h.run(c, "update", ItemMethods, http.StatusOK, func(ctx context.Context, r Resource[T, In]) (interface{}, error) {
			in := new(In)
			if err := validation.Bind(c, in); err != nil {
				return nil, err
			}
			if err := r.Update(ctx, id, in); err != nil {
				return nil, err
			}
			return r.GetByID(ctx, id)
		})

	default:
		return h.run(c, "get", ItemMethods, http.StatusOK, func(ctx context.Context, r Resource[T, In]) (interface{}, error) {
			return r.GetByID(ctx, id)
		})
	}
}

// run resolves the resource, executes op and wraps its result in the envelope.
func (h *EntityHandler[T, In]) run(
	c echo.Context,
	operation string,
	methods string,
	status int,
	op func(ctx context.Context, r Resource[T, In]) (interface{}, error),
) error {
	return handleRequest(c, h.entity, func() (interface{}, error) {
		r, err := h.resource(c)
		if err != nil {
			return nil, err
		}

		data, err := op(c.Request().Context(), r)
		if err != nil {
			return nil, err
		}

		return NewEnvelope(data, Link{Href: c.Request().URL.RequestURI(), Method: methods}, h.entity, h.collectionPath()), nil
	}, JSONResponseHandler{status: status, operation: h.entity + "." + operation})
}

func (h *EntityHandler[T, In]) collectionPath() string {
	return joinPath(h.server.Config.API.BasePath, h.entity)
}

func (h *EntityHandler[T, In]) itemPath(id int64) string {
	return joinPath(h.collectionPath(), strconv.FormatInt(id, 10))
}

// parseID accepts positive base-10 integers only.
func parseID(segment string) (int64, error) {
	id, err := strconv.ParseInt(segment, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NewBadRequestError("The ID must be a positive integer", true, nil, nil)
	}
	return id, nil
}
