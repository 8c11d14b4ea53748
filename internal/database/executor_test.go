package database

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRows struct {
	fields []pgconn.FieldDescription
	values [][]any
	pos    int
	err    error
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return r.fields }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }
func (r *fakeRows) Scan(dest ...any) error                       { return errors.New("not supported") }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.values) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.values[r.pos-1], nil
}

type fakeRow struct {
	value any
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*any)) = r.value
	return nil
}

type fakeQuerier struct {
	rows     *fakeRows
	tag      pgconn.CommandTag
	row      fakeRow
	err      error
	lastSQL  string
	lastArgs []any
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.lastSQL, q.lastArgs = sql, args
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.lastSQL, q.lastArgs = sql, args
	return q.tag, q.err
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.lastSQL, q.lastArgs = sql, args
	return q.row
}

func TestBinds_NamedArgs(t *testing.T) {
	args, err := Binds{{Name: "id", Value: 7}, {Name: "@name", Value: "Queen"}}.NamedArgs()
	require.NoError(t, err)
	assert.Equal(t, pgx.NamedArgs{"id": 7, "name": "Queen"}, args)

	_, err = Binds{{Name: "id", Value: 1}, {Name: "id", Value: 2}}.NamedArgs()
	assert.ErrorIs(t, err, ErrInvalidBind)

	_, err = Binds{{Name: "", Value: 1}}.NamedArgs()
	assert.ErrorIs(t, err, ErrInvalidBind)
}

func TestFetchAll_LowercasesKeys(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{
		fields: []pgconn.FieldDescription{{Name: "Artist_ID"}, {Name: "NAME"}},
		values: [][]any{{int64(1), "AC/DC"}, {int64(2), "Accept"}},
	}}
	exec := NewExecutor(q, nil, nil)

	records, err := exec.FetchAll(context.Background(), "SELECT artist_id, name FROM artist WHERE artist_id > @id", Binds{{Name: "id", Value: 0}})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Record{"artist_id": int64(1), "name": "AC/DC"}, records[0])
	assert.True(t, q.rows.closed)
	assert.Equal(t, []any{pgx.NamedArgs{"id": 0}}, q.lastArgs)
}

func TestFetchAll_EmptyResult(t *testing.T) {
	exec := NewExecutor(&fakeQuerier{rows: &fakeRows{}}, nil, nil)

	records, err := exec.FetchAll(context.Background(), "SELECT 1 WHERE false", nil)
	assert.Nil(t, records)
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestFetchAll_DuplicateBindNeverReachesDriver(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{}}
	exec := NewExecutor(q, nil, nil)

	_, err := exec.FetchAll(context.Background(), "SELECT @a", Binds{{Name: "a"}, {Name: "a"}})
	assert.ErrorIs(t, err, ErrInvalidBind)
	assert.Empty(t, q.lastSQL)
}

func TestFetchAll_DriverFailureLogsWithContextLogger(t *testing.T) {
	driverErr := &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}

	var fallback, scoped bytes.Buffer
	fallbackLogger := zerolog.New(&fallback)
	scopedLogger := zerolog.New(&scoped)

	exec := NewExecutor(&fakeQuerier{err: driverErr}, &fallbackLogger, nil)

	_, err := exec.FetchAll(scopedLogger.WithContext(context.Background()), "SELECT * FROM missing", nil)

	var queryErr *QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, "fetch", queryErr.Op)
	assert.ErrorIs(t, err, driverErr)
	assert.NotErrorIs(t, err, ErrEmptyResult)
	assert.Contains(t, scoped.String(), "query failed")
	assert.Empty(t, fallback.String())

	_, _ = exec.FetchAll(context.Background(), "SELECT * FROM missing", nil)
	assert.Contains(t, fallback.String(), "SELECT * FROM missing")
}

func TestRowCount(t *testing.T) {
	exec := NewExecutor(&fakeQuerier{tag: pgconn.NewCommandTag("DELETE 1")}, nil, nil)

	n, err := exec.RowCount(context.Background(), "DELETE FROM artist WHERE artist_id = @id", Binds{{Name: "id", Value: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestInsertID(t *testing.T) {
	exec := NewExecutor(&fakeQuerier{row: fakeRow{value: int64(42)}}, nil, nil)

	id, err := exec.InsertID(context.Background(), "INSERT INTO artist (name) VALUES (@name) RETURNING artist_id", Binds{{Name: "name", Value: "Queen"}})
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	exec = NewExecutor(&fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}, nil, nil)
	_, err = exec.InsertID(context.Background(), "INSERT ... RETURNING id", nil)
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestRelease_Idempotent(t *testing.T) {
	calls := 0
	exec := NewExecutor(&fakeQuerier{}, nil, func() { calls++ })

	exec.Release()
	exec.Release()
	assert.Equal(t, 1, calls)
}
