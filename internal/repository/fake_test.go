package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/deppfellow/crud-api/internal/database"
	"github.com/deppfellow/crud-api/internal/errs"
	"github.com/stretchr/testify/require"
)

// step is one scripted executor response. sql must be a substring of the
// statement the repository runs.
type step struct {
	method  string
	sql     string
	records []database.Record
	count   int64
	id      string
	err     error
}

type call struct {
	method string
	sql    string
	binds  database.Binds
}

// scriptedExecutor replays steps in order and records every call.
type scriptedExecutor struct {
	t     *testing.T
	steps []step
	calls []call
}

func newScriptedExecutor(t *testing.T, steps ...step) *scriptedExecutor {
	t.Helper()
	exec := &scriptedExecutor{t: t, steps: steps}
	t.Cleanup(func() {
		require.Empty(t, exec.steps, "unconsumed executor steps")
	})
	return exec
}

func (e *scriptedExecutor) next(method, sql string, binds database.Binds) step {
	e.t.Helper()
	e.calls = append(e.calls, call{method: method, sql: sql, binds: binds})

	require.NotEmpty(e.t, e.steps, "unexpected %s: %s", method, sql)
	s := e.steps[0]
	e.steps = e.steps[1:]

	require.Equal(e.t, s.method, method)
	require.True(e.t, strings.Contains(sql, s.sql), "expected SQL containing %q, got %q", s.sql, sql)
	return s
}

func (e *scriptedExecutor) FetchAll(_ context.Context, sql string, binds database.Binds) ([]database.Record, error) {
	s := e.next("FetchAll", sql, binds)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.records) == 0 {
		return nil, database.ErrEmptyResult
	}
	return s.records, nil
}

func (e *scriptedExecutor) RowCount(_ context.Context, sql string, binds database.Binds) (int64, error) {
	s := e.next("RowCount", sql, binds)
	return s.count, s.err
}

func (e *scriptedExecutor) InsertID(_ context.Context, sql string, binds database.Binds) (string, error) {
	s := e.next("InsertID", sql, binds)
	return s.id, s.err
}

// bind returns the value bound under name in the i-th call.
func (e *scriptedExecutor) bind(i int, name string) any {
	e.t.Helper()
	require.Less(e.t, i, len(e.calls))
	for _, b := range e.calls[i].binds {
		if b.Name == name {
			return b.Value
		}
	}
	e.t.Fatalf("call %d has no bind %q", i, name)
	return nil
}

func fetch(sql string, records ...database.Record) step {
	return step{method: "FetchAll", sql: sql, records: records}
}

func rowCount(sql string, n int64) step {
	return step{method: "RowCount", sql: sql, count: n}
}

func insert(sql, id string) step {
	return step{method: "InsertID", sql: sql, id: id}
}

func requireStatus(t *testing.T, err error, status int) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *errs.HTTPError, got %T: %v", err, err)
	require.Equal(t, status, httpErr.Status, httpErr.Message)
	return httpErr
}
