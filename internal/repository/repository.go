// Package repository handles all interactions with the database.
//
// It contains the SQL for every entity and the rules that guard writes
// (input validation, dependent-record checks), abstracting SQL away from
// the handlers. Records leave this package as typed structs; failures
// leave it as *errs.HTTPError values.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/deppfellow/crud-api/internal/database"
	"github.com/deppfellow/crud-api/internal/errs"
	"github.com/deppfellow/crud-api/internal/sqlerr"
)

// Executor runs parameterized statements. *database.Executor implements it.
type Executor interface {
	FetchAll(ctx context.Context, sql string, binds database.Binds) ([]database.Record, error)
	RowCount(ctx context.Context, sql string, binds database.Binds) (int64, error)
	InsertID(ctx context.Context, sql string, binds database.Binds) (string, error)
}

// likeEscaper escapes LIKE wildcards so search text matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns free text into an ILIKE substring pattern.
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

// notFound builds the 404 returned when an entity id matches nothing.
func notFound(entity, message string) error {
	code := strings.ToUpper(entity) + "_NOT_FOUND"
	return errs.NewNotFoundError(message, true, &code)
}

// conflict builds the 409 returned when dependents block a delete.
func conflict(entity, message string) error {
	code := strings.ToUpper(entity) + "_HAS_DEPENDENTS"
	return errs.NewConflictError(message, &code)
}

// fetchList runs a list query. Zero rows is an empty, non-nil slice.
func fetchList[T any](ctx context.Context, exec Executor, sql string, binds database.Binds) ([]T, error) {
	records, err := exec.FetchAll(ctx, sql, binds)
	if err != nil {
		if errors.Is(err, database.ErrEmptyResult) {
			return []T{}, nil
		}
		return nil, sqlerr.HandleError(err)
	}

	out, err := decodeAll[T](records)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return out, nil
}

// fetchOne runs a single-row query. Zero rows becomes missing.
func fetchOne[T any](ctx context.Context, exec Executor, sql string, binds database.Binds, missing error) (*T, error) {
	records, err := exec.FetchAll(ctx, sql, binds)
	if err != nil {
		if errors.Is(err, database.ErrEmptyResult) {
			return nil, missing
		}
		return nil, sqlerr.HandleError(err)
	}

	out, err := decodeOne[T](records[0])
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return &out, nil
}

// insertID runs an INSERT ... RETURNING statement.
func insertID(ctx context.Context, exec Executor, sql string, binds database.Binds) (string, error) {
	id, err := exec.InsertID(ctx, sql, binds)
	if err != nil {
		if errors.Is(err, database.ErrEmptyResult) {
			return "", errs.NewInternalServerError()
		}
		return "", sqlerr.HandleError(err)
	}
	return id, nil
}

// exactlyOne runs a write that must affect one row. Any other count becomes missing.
func exactlyOne(ctx context.Context, exec Executor, sql string, binds database.Binds, missing error) error {
	n, err := exec.RowCount(ctx, sql, binds)
	if err != nil {
		return sqlerr.HandleError(err)
	}
	if n != 1 {
		return missing
	}
	return nil
}

func idBind(name string, id int64) database.Bind {
	return database.Bind{Name: name, Value: id}
}
