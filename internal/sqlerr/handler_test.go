package sqlerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/crud-api/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asHTTPError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *errs.HTTPError, got %T", err)
	return httpErr
}

func TestHandleError_ForeignKeyViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:       "23503",
		Severity:   "ERROR",
		TableName:  "employee",
		ColumnName: "department_id",
	}

	httpErr := asHTTPError(t, HandleError(fmt.Errorf("insert: %w", pgErr)))

	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "DEPARTMENT_NOT_FOUND", httpErr.Code)
	assert.Equal(t, "The referenced Department does not exist", httpErr.Message)
}

func TestHandleError_ForeignKeyColumnFromConstraintName(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23503",
		Message:        `insert or update on table "emp_proy" violates foreign key constraint "emp_proy_project_id_fkey"`,
		TableName:      "emp_proy",
		ConstraintName: "emp_proy_project_id_fkey",
	}

	httpErr := asHTTPError(t, HandleError(pgErr))

	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "PROJECT_NOT_FOUND", httpErr.Code)
	assert.Equal(t, "The referenced Project does not exist", httpErr.Message)
}

func TestHandleError_ForeignKeyOnDeleteIsConflict(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23503",
		Message:        `update or delete on table "artist" violates foreign key constraint "album_artist_id_fkey" on table "album"`,
		TableName:      "album",
		ConstraintName: "album_artist_id_fkey",
	}

	httpErr := asHTTPError(t, HandleError(pgErr))

	assert.Equal(t, http.StatusConflict, httpErr.Status)
	assert.Equal(t, "ARTIST_HAS_DEPENDENTS", httpErr.Code)
	assert.Equal(t, "This Artist is still referenced by Album records", httpErr.Message)
}

func TestHandleError_UniqueViolationInfersColumn(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		TableName:      "artist",
		ConstraintName: "artist_name_key",
	}

	httpErr := asHTTPError(t, HandleError(pgErr))

	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "ARTIST_ALREADY_EXISTS", httpErr.Code)
	assert.Equal(t, "An Artist with this Name already exists", httpErr.Message)
	assert.True(t, httpErr.Override)
}

func TestHandleError_NotNullViolationHasFieldError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23502", TableName: "project", ColumnName: "name"}

	httpErr := asHTTPError(t, HandleError(pgErr))

	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "name", httpErr.Errors[0].Field)
	assert.Equal(t, "The Name is required", httpErr.Message)
	assert.Equal(t, "PROJECT_REQUIRED", httpErr.Code)
}

func TestHandleError_UniqueViolationOnAssignment(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", TableName: "emp_proy", ConstraintName: "emp_proy_pkey"}

	httpErr := asHTTPError(t, HandleError(pgErr))

	assert.Equal(t, "PROJECT_ASSIGNMENT_ALREADY_EXISTS", httpErr.Code)
	assert.Equal(t, "A Project Assignment with this identifier already exists", httpErr.Message)
}

func TestHandleError_ConnectionFailures(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, asHTTPError(t, HandleError(&pgconn.PgError{Code: "08006"})).Status)
	assert.Equal(t, http.StatusServiceUnavailable, asHTTPError(t, HandleError(&pgconn.ConnectError{})).Status)
}

func TestHandleError_UnknownPgErrorIsInternal(t *testing.T) {
	httpErr := asHTTPError(t, HandleError(&pgconn.PgError{Code: "42601"}))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), httpErr.Message)
}

func TestHandleError_NoRows(t *testing.T) {
	httpErr := asHTTPError(t, HandleError(pgx.ErrNoRows))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
}

func TestHandleError_PassesHTTPErrorThrough(t *testing.T) {
	original := errs.NewConflictError("has albums", nil)
	assert.Same(t, original, HandleError(original))
}

func TestHandleError_UnknownError(t *testing.T) {
	httpErr := asHTTPError(t, HandleError(errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
}

func TestMapCodeAndSeverity(t *testing.T) {
	assert.Equal(t, UniqueViolation, MapCode("23505"))
	assert.Equal(t, Other, MapCode("99999"))
	assert.Equal(t, SeverityFatal, MapSeverity("FATAL"))
	assert.Equal(t, SeverityError, MapSeverity("weird"))
}

func TestExtractColumnForUniqueViolation(t *testing.T) {
	assert.Equal(t, "email", extractColumnForUniqueViolation("unique_employee_email"))
	assert.Equal(t, "name", extractColumnForUniqueViolation("project_name_key"))
	assert.Equal(t, "", extractColumnForUniqueViolation("pk"))
	assert.Equal(t, "", extractColumnForUniqueViolation(""))
}
