package repository

import (
	"context"
	"strings"

	"github.com/deppfellow/crud-api/internal/database"
	"github.com/deppfellow/crud-api/internal/sqlerr"
	"github.com/deppfellow/crud-api/internal/validation"
)

const (
	projectNotFoundMessage     = "A project with that ID does not exist."
	projectHasEmployeesMessage = "You cannot delete a project that still has employees assigned."
	projectColumns             = "project_id, name"
)

// Project is a row of the project table.
type Project struct {
	ID   int64  `json:"project_id" db:"project_id"`
	Name string `json:"name" db:"name"`
}

// ProjectInput is the body accepted on project insert and update.
type ProjectInput struct {
	Name string `json:"name" validate:"required,max=120"`
}

func (in *ProjectInput) Validate() error {
	return validation.Struct(in)
}

type ProjectRepository struct {
	exec Executor
}

func NewProjectRepository(exec Executor) *ProjectRepository {
	return &ProjectRepository{exec: exec}
}

func (r *ProjectRepository) List(ctx context.Context) ([]Project, error) {
	return fetchList[Project](ctx, r.exec,
		`SELECT `+projectColumns+` FROM project ORDER BY name`, nil)
}

func (r *ProjectRepository) Search(ctx context.Context, text string) ([]Project, error) {
	return fetchList[Project](ctx, r.exec,
		`SELECT `+projectColumns+` FROM project WHERE name ILIKE @search ESCAPE '\' ORDER BY name`,
		database.Binds{{Name: "search", Value: containsPattern(text)}})
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*Project, error) {
	return fetchOne[Project](ctx, r.exec,
		`SELECT `+projectColumns+` FROM project WHERE project_id = @project_id`,
		database.Binds{idBind("project_id", id)},
		notFound("project", projectNotFoundMessage))
}

// ListByEmployee returns the projects an employee is assigned to.
func (r *ProjectRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]Project, error) {
	return fetchList[Project](ctx, r.exec, `
		SELECT project.project_id, project.name
		FROM project INNER JOIN emp_proy
			ON emp_proy.project_id = project.project_id
		WHERE emp_proy.employee_id = @employee_id
		ORDER BY project.name`,
		database.Binds{idBind("employee_id", employeeID)})
}

func (r *ProjectRepository) Insert(ctx context.Context, in *ProjectInput) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Check(in); err != nil {
		return "", err
	}

	return insertID(ctx, r.exec,
		`INSERT INTO project (name) VALUES (@name) RETURNING project_id`,
		database.Binds{{Name: "name", Value: in.Name}})
}

func (r *ProjectRepository) Update(ctx context.Context, id int64, in *ProjectInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Check(in); err != nil {
		return err
	}

	return exactlyOne(ctx, r.exec,
		`UPDATE project SET name = @name WHERE project_id = @project_id`,
		database.Binds{{Name: "name", Value: in.Name}, idBind("project_id", id)},
		notFound("project", projectNotFoundMessage))
}

// RemoveByID deletes a project that has no assigned employees.
func (r *ProjectRepository) RemoveByID(ctx context.Context, id int64) error {
	assigned, err := r.exec.RowCount(ctx,
		`SELECT 1 FROM emp_proy WHERE project_id = @project_id`,
		database.Binds{idBind("project_id", id)})
	if err != nil {
		return sqlerr.HandleError(err)
	}
	if assigned > 0 {
		return conflict("project", projectHasEmployeesMessage)
	}

	return exactlyOne(ctx, r.exec,
		`DELETE FROM project WHERE project_id = @project_id`,
		database.Binds{idBind("project_id", id)},
		notFound("project", projectNotFoundMessage))
}
