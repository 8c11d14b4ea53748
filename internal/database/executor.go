package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// ErrEmptyResult is returned by FetchAll and InsertID when the query
// produced no rows. It is not a driver failure.
var ErrEmptyResult = errors.New("query returned no rows")

// ErrInvalidBind is returned when binds cannot be sent to the driver.
var ErrInvalidBind = errors.New("invalid bind")

// Record is one result row keyed by lower-cased column name.
type Record map[string]any

// Bind is a named query parameter. Name matches an @name placeholder.
type Bind struct {
	Name  string
	Value any
}

// Binds is an ordered list of named parameters.
type Binds []Bind

// NamedArgs converts the binds into pgx named arguments.
// Empty and duplicate names are rejected.
func (b Binds) NamedArgs() (pgx.NamedArgs, error) {
	args := make(pgx.NamedArgs, len(b))
	for _, bind := range b {
		name := strings.TrimPrefix(bind.Name, "@")
		if name == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidBind)
		}
		if _, dup := args[name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidBind, name)
		}
		args[name] = bind.Value
	}
	return args, nil
}

// QueryError is a driver failure raised while running a statement.
type QueryError struct {
	Op  string
	SQL string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("database %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Querier is the subset of a pgx connection the Executor needs.
// *pgxpool.Conn and *pgx.Conn satisfy it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Executor runs parameterized statements on a single connection.
//
// An Executor is owned by one request and is not safe for concurrent use.
type Executor struct {
	q       Querier
	log     *zerolog.Logger
	release func()
}

// NewExecutor wraps q. release is called once by Release and may be nil.
func NewExecutor(q Querier, log *zerolog.Logger, release func()) *Executor {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Executor{q: q, log: log, release: release}
}

// Release returns the underlying connection to the pool. It is idempotent.
func (e *Executor) Release() {
	if e.release != nil {
		e.release()
		e.release = nil
	}
}

// FetchAll runs sql and returns every row.
// Zero rows is reported as ErrEmptyResult.
func (e *Executor) FetchAll(ctx context.Context, sql string, binds Binds) ([]Record, error) {
	args, err := e.args(binds)
	if err != nil {
		return nil, err
	}

	rows, err := e.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, e.fail(ctx, "fetch", sql, err)
	}

	records, err := pgx.CollectRows(rows, rowToRecord)
	if err != nil {
		return nil, e.fail(ctx, "fetch", sql, err)
	}

	if len(records) == 0 {
		return nil, ErrEmptyResult
	}

	return records, nil
}

// RowCount runs sql and returns the number of rows it affected or matched.
func (e *Executor) RowCount(ctx context.Context, sql string, binds Binds) (int64, error) {
	args, err := e.args(binds)
	if err != nil {
		return 0, err
	}

	tag, err := e.q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, e.fail(ctx, "row count", sql, err)
	}

	return tag.RowsAffected(), nil
}

// InsertID runs an INSERT ... RETURNING statement and returns the generated
// key as an opaque string.
func (e *Executor) InsertID(ctx context.Context, sql string, binds Binds) (string, error) {
	args, err := e.args(binds)
	if err != nil {
		return "", err
	}

	var id any
	if err := e.q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrEmptyResult
		}
		return "", e.fail(ctx, "insert", sql, err)
	}

	return fmt.Sprint(id), nil
}

func (e *Executor) args(binds Binds) ([]any, error) {
	if len(binds) == 0 {
		return nil, nil
	}
	named, err := binds.NamedArgs()
	if err != nil {
		return nil, err
	}
	return []any{named}, nil
}

// fail logs a driver failure with the request logger and wraps it.
func (e *Executor) fail(ctx context.Context, op, sql string, err error) error {
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = e.log
	}

	logger.Error().
		Err(err).
		Str("op", op).
		Str("sql", sql).
		Msg("query failed")

	return &QueryError{Op: op, SQL: sql, Err: err}
}

func rowToRecord(row pgx.CollectableRow) (Record, error) {
	values, err := row.Values()
	if err != nil {
		return nil, err
	}

	fields := row.FieldDescriptions()
	record := make(Record, len(fields))
	for i, field := range fields {
		record[strings.ToLower(field.Name)] = values[i]
	}

	return record, nil
}
