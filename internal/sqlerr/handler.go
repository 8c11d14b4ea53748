package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/crud-api/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// entityNames maps the schema's tables to the nouns used in client messages.
var entityNames = map[string]string{
	"artist":     "artist",
	"album":      "album",
	"employee":   "employee",
	"department": "department",
	"project":    "project",
	"emp_proy":   "project assignment",
}

// deleteViolationPrefix starts the server message of a foreign key violation
// raised by deleting (or re-keying) a referenced row.
const deleteViolationPrefix = "update or delete on table"

// ConvertPgError converts a raw *pgconn.PgError into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// entityName returns the message noun for a table: known tables by name,
// anything else with underscores turned into spaces.
func entityName(table string) string {
	table = strings.ToLower(table)
	if name, ok := entityNames[table]; ok {
		return name
	}
	if table == "" {
		return "record"
	}
	return strings.ReplaceAll(table, "_", " ")
}

// errorCode builds <ENTITY>_<ACTION>, e.g. ("project assignment", "REQUIRED")
// -> PROJECT_ASSIGNMENT_REQUIRED.
func errorCode(entity, action string) string {
	return errs.MakeUpperCaseWithUnderscores(entity) + "_" + action
}

// humanizeText converts snake_case into Title Case.
//
//	"first_name" -> "First Name"
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// withArticle prefixes a humanized noun with "A" or "An".
func withArticle(noun string) string {
	if noun != "" && strings.ContainsRune("AEIOUaeiou", rune(noun[0])) {
		return "An " + noun
	}
	return "A " + noun
}

// foreignKeyColumn returns the referencing column of a foreign key violation.
//
// PostgreSQL leaves ColumnName empty for these, so the column is read from
// the default constraint name <table>_<column>_fkey.
func foreignKeyColumn(sqlErr *Error) string {
	if sqlErr.ColumnName != "" {
		return strings.ToLower(sqlErr.ColumnName)
	}
	name := strings.ToLower(sqlErr.ConstraintName)
	prefix := strings.ToLower(sqlErr.TableName) + "_"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, "_fkey") {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(name, prefix), "_fkey")
}

// referencedEntity names the entity a foreign key column points at:
// "department_id" -> "department".
func referencedEntity(column string) string {
	if !strings.HasSuffix(column, "_id") {
		return "record"
	}
	return entityName(strings.TrimSuffix(column, "_id"))
}

// extractColumnForUniqueViolation infers the column name from a unique constraint name.
//
//	unique_<table>_<column>   unique_artist_name -> "name"
//	<table>_<column>_key      artist_name_key    -> "name"
func extractColumnForUniqueViolation(constraintName string) string {
	parts := strings.Split(constraintName, "_")
	if len(parts) < 3 {
		return ""
	}

	switch {
	case parts[0] == "unique":
		return parts[len(parts)-1]
	case parts[len(parts)-1] == "key" || parts[len(parts)-1] == "ukey":
		return parts[len(parts)-2]
	}
	return ""
}

// foreignKeyError maps a foreign key violation. Writing a row that points at
// a missing parent is a 400; deleting a parent that still has children is a 409.
func foreignKeyError(sqlErr *Error) *errs.HTTPError {
	parent := referencedEntity(foreignKeyColumn(sqlErr))

	if strings.HasPrefix(sqlErr.Message, deleteViolationPrefix) {
		code := errorCode(parent, "HAS_DEPENDENTS")
		return errs.NewConflictError(
			fmt.Sprintf("This %s is still referenced by %s records", humanizeText(parent), humanizeText(entityName(sqlErr.TableName))),
			&code)
	}

	code := errorCode(parent, "NOT_FOUND")
	return errs.NewBadRequestError(
		fmt.Sprintf("The referenced %s does not exist", humanizeText(parent)), true, &code, nil)
}

// HandleError converts a low-level database error into an *errs.HTTPError.
//
//   - *errs.HTTPError: returned unchanged
//   - *pgconn.PgError: constraint violations become 400 (409 for a blocked
//     delete), connection failures 503, anything else 500
//   - *pgconn.ConnectError: 503
//   - ErrNoRows: 404
//   - anything else: 500
//
// Repositories call this after a query fails.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		sqlErr := ConvertPgError(pgerr)
		entity := entityName(sqlErr.TableName)

		switch sqlErr.Code {
		case ForeignKeyViolation:
			return foreignKeyError(sqlErr)

		case UniqueViolation:
			code := errorCode(entity, "ALREADY_EXISTS")
			field := "identifier"
			if column := extractColumnForUniqueViolation(sqlErr.ConstraintName); column != "" {
				field = humanizeText(column)
			}
			return errs.NewBadRequestError(
				fmt.Sprintf("%s with this %s already exists", withArticle(humanizeText(entity)), field), true, &code, nil)

		case NotNullViolation:
			code := errorCode(entity, "REQUIRED")
			column := strings.ToLower(sqlErr.ColumnName)
			fieldName := humanizeText(column)
			if fieldName == "" {
				fieldName = "field"
			}
			return errs.NewBadRequestError(fmt.Sprintf("The %s is required", fieldName), true, &code,
				[]errs.FieldError{{Field: column, Error: "is required"}})

		case CheckViolation:
			code := errorCode(entity, "INVALID")
			message := "One or more values do not meet required conditions"
			if fieldName := humanizeText(sqlErr.ColumnName); fieldName != "" {
				message = fmt.Sprintf("The %s value does not meet required conditions", fieldName)
			}
			return errs.NewBadRequestError(message, true, &code, nil)

		case InvalidText:
			code := errorCode(entity, "INVALID")
			return errs.NewBadRequestError("One or more values have an invalid format", true, &code, nil)

		case ConnectionFailure:
			return errs.NewServiceUnavailableError("Database unavailable")

		default:
			// Unknown DB errors never leak details to clients.
			return errs.NewInternalServerError()
		}
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return errs.NewServiceUnavailableError("Database unavailable")
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}
