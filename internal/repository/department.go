package repository

import (
	"context"

	"github.com/deppfellow/crud-api/internal/database"
)

// Department is a row of the department table.
type Department struct {
	ID   int64  `json:"department_id" db:"department_id"`
	Name string `json:"name" db:"name"`
}

// DepartmentRepository is read-only; employees reference it.
type DepartmentRepository struct {
	exec Executor
}

func NewDepartmentRepository(exec Executor) *DepartmentRepository {
	return &DepartmentRepository{exec: exec}
}

func (r *DepartmentRepository) List(ctx context.Context) ([]Department, error) {
	return fetchList[Department](ctx, r.exec,
		`SELECT department_id, name FROM department ORDER BY name`, nil)
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*Department, error) {
	return fetchOne[Department](ctx, r.exec,
		`SELECT department_id, name FROM department WHERE department_id = @department_id`,
		database.Binds{idBind("department_id", id)},
		notFound("department", "A department with that ID does not exist."))
}
