package repository

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/deppfellow/crud-api/internal/database"
	"github.com/deppfellow/crud-api/internal/errs"
	"github.com/deppfellow/crud-api/internal/validation"
)

const (
	employeeNotFoundMessage    = "An employee with that ID does not exist."
	employeeHasProjectsMessage = "You cannot delete an employee that is still assigned to projects."

	// minimumEmployeeAge is in whole years.
	minimumEmployeeAge = 16
)

const employeeColumns = `
	employee.employee_id, employee.first_name, employee.last_name,
	employee.email, employee.birth_date, employee.department_id`

// Employee is a row of the employee table. DepartmentName is only set on detail reads.
type Employee struct {
	ID             int64  `json:"employee_id" db:"employee_id"`
	FirstName      string `json:"first_name" db:"first_name"`
	LastName       string `json:"last_name" db:"last_name"`
	Email          string `json:"email" db:"email"`
	BirthDate      string `json:"birth_date" db:"birth_date"`
	DepartmentID   int64  `json:"department_id" db:"department_id"`
	DepartmentName string `json:"department_name,omitempty" db:"department_name"`
}

// EmployeeInput is the body accepted on employee insert and update.
// BirthDate is YYYY-MM-DD.
type EmployeeInput struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	BirthDate    string `json:"birth_date"`
	DepartmentID int64  `json:"department_id"`
}

func (in *EmployeeInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.BirthDate = strings.TrimSpace(in.BirthDate)
}

func (in *EmployeeInput) binds() database.Binds {
	return database.Binds{
		{Name: "first_name", Value: in.FirstName},
		{Name: "last_name", Value: in.LastName},
		{Name: "email", Value: in.Email},
		{Name: "birth_date", Value: in.BirthDate},
		{Name: "department_id", Value: in.DepartmentID},
	}
}

type EmployeeRepository struct {
	exec        Executor
	departments *DepartmentRepository
	projects    *ProjectRepository
	now         func() time.Time
}

func NewEmployeeRepository(exec Executor, departments *DepartmentRepository, projects *ProjectRepository) *EmployeeRepository {
	return &EmployeeRepository{
		exec:        exec,
		departments: departments,
		projects:    projects,
		now:         time.Now,
	}
}

func (r *EmployeeRepository) List(ctx context.Context) ([]Employee, error) {
	return fetchList[Employee](ctx, r.exec,
		`SELECT `+employeeColumns+` FROM employee ORDER BY first_name, last_name`, nil)
}

// Search matches employees whose first or last name contains text.
func (r *EmployeeRepository) Search(ctx context.Context, text string) ([]Employee, error) {
	return fetchList[Employee](ctx, r.exec, `
		SELECT `+employeeColumns+` FROM employee
		WHERE first_name ILIKE @search ESCAPE '\'
			OR last_name ILIKE @search ESCAPE '\'
		ORDER BY first_name, last_name`,
		database.Binds{{Name: "search", Value: containsPattern(text)}})
}

// GetByID returns an employee joined with its department name.
func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*Employee, error) {
	return fetchOne[Employee](ctx, r.exec, `
		SELECT `+employeeColumns+`, department.name AS department_name
		FROM employee INNER JOIN department
			ON employee.department_id = department.department_id
		WHERE employee.employee_id = @employee_id`,
		database.Binds{idBind("employee_id", id)},
		notFound("employee", employeeNotFoundMessage))
}

func (r *EmployeeRepository) Insert(ctx context.Context, in *EmployeeInput) (string, error) {
	if err := r.validate(ctx, in); err != nil {
		return "", err
	}

	return insertID(ctx, r.exec, `
		INSERT INTO employee (first_name, last_name, email, birth_date, department_id)
		VALUES (@first_name, @last_name, @email, @birth_date, @department_id)
		RETURNING employee_id`,
		in.binds())
}

func (r *EmployeeRepository) Update(ctx context.Context, id int64, in *EmployeeInput) error {
	if err := r.validate(ctx, in); err != nil {
		return err
	}

	return exactlyOne(ctx, r.exec, `
		UPDATE employee
		SET first_name = @first_name, last_name = @last_name, email = @email,
			birth_date = @birth_date, department_id = @department_id
		WHERE employee_id = @employee_id`,
		append(in.binds(), idBind("employee_id", id)),
		notFound("employee", employeeNotFoundMessage))
}

// RemoveByID deletes an employee that is not assigned to any project.
func (r *EmployeeRepository) RemoveByID(ctx context.Context, id int64) error {
	projects, err := r.projects.ListByEmployee(ctx, id)
	if err != nil {
		return err
	}
	if len(projects) > 0 {
		return conflict("employee", employeeHasProjectsMessage)
	}

	return exactlyOne(ctx, r.exec,
		`DELETE FROM employee WHERE employee_id = @employee_id`,
		database.Binds{idBind("employee_id", id)},
		notFound("employee", employeeNotFoundMessage))
}

// validate collects every rule violation of in. A failed department lookup
// other than "not found" is returned as is.
func (r *EmployeeRepository) validate(ctx context.Context, in *EmployeeInput) error {
	in.normalize()

	var problems validation.CustomValidationErrors

	if in.FirstName == "" {
		problems.Add("first_name", "First name is mandatory.")
	}
	if in.LastName == "" {
		problems.Add("last_name", "Last name is mandatory.")
	}

	if in.Email == "" {
		problems.Add("email", "Email is mandatory.")
	} else if validation.Validator().Var(in.Email, "email") != nil {
		problems.Add("email", "Invalid email format.")
	}

	if in.BirthDate == "" {
		problems.Add("birth_date", "Birth date is mandatory.")
	} else if birth, err := time.ParseInLocation(dateLayout, in.BirthDate, time.UTC); err != nil {
		problems.Add("birth_date", "Invalid birth date format.")
	} else if birth.After(latestBirthDate(r.now())) {
		problems.Add("birth_date", "The employee must be at least 16 years old.")
	}

	if in.DepartmentID == 0 {
		problems.Add("department_id", "Department is mandatory.")
	} else if _, err := r.departments.GetByID(ctx, in.DepartmentID); err != nil {
		var httpErr *errs.HTTPError
		if !errors.As(err, &httpErr) || httpErr.Status != http.StatusNotFound {
			return err
		}
		problems.Add("department_id", "The department does not exist.")
	}

	return validation.ToHTTPError(problems.Err())
}

// latestBirthDate is the last birth date old enough to be hired on now's
// calendar day, in now's own zone.
func latestBirthDate(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year-minimumEmployeeAge, month, day, 0, 0, 0, 0, time.UTC)
}
