package handler

import (
	"github.com/deppfellow/crud-api/internal/server"
)

// Handlers groups every HTTP handler.
type Handlers struct {
	Health  *HealthHandler  // Health serves the /status endpoint.
	OpenAPI *OpenAPIHandler // OpenAPI serves the API documentation UI.

	Artists   *ArtistsHandler
	Employees *EmployeesHandler
	Projects  *ProjectsHandler
}

func NewHandlers(s *server.Server) *Handlers {
	h := NewHandler(s)

	return &Handlers{
		Health:    NewHealthHandler(s),
		OpenAPI:   NewOpenAPIHandler(s),
		Artists:   NewArtistsHandler(h),
		Employees: NewEmployeesHandler(h),
		Projects:  NewProjectsHandler(h),
	}
}
