package handler

import (
	"github.com/deppfellow/crud-api/internal/middleware"
	"github.com/deppfellow/crud-api/internal/repository"
	"github.com/labstack/echo/v4"
)

type (
	ArtistsHandler   = EntityHandler[repository.Artist, repository.ArtistInput]
	EmployeesHandler = EntityHandler[repository.Employee, repository.EmployeeInput]
	ProjectsHandler  = EntityHandler[repository.Project, repository.ProjectInput]
)

func NewArtistsHandler(h Handler) *ArtistsHandler {
	return NewEntityHandler[repository.Artist, repository.ArtistInput](h, "artists", func(c echo.Context) (Resource[repository.Artist, repository.ArtistInput], error) {
		repos, err := middleware.GetRepositories(c)
		if err != nil {
			return nil, err
		}
		return repos.Artists, nil
	})
}

func NewEmployeesHandler(h Handler) *EmployeesHandler {
	return NewEntityHandler[repository.Employee, repository.EmployeeInput](h, "employees", func(c echo.Context) (Resource[repository.Employee, repository.EmployeeInput], error) {
		repos, err := middleware.GetRepositories(c)
		if err != nil {
			return nil, err
		}
		return repos.Employees, nil
	})
}

func NewProjectsHandler(h Handler) *ProjectsHandler {
	return NewEntityHandler[repository.Project, repository.ProjectInput](h, "projects", func(c echo.Context) (Resource[repository.Project, repository.ProjectInput], error) {
		repos, err := middleware.GetRepositories(c)
		if err != nil {
			return nil, err
		}
		return repos.Projects, nil
	})
}
