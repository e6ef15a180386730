package database

import (
	"context"
	"errors"
	"sync"
)

// --- In-test session ---------------------------------------------------------

type queryHandler func(sql string, args []any) (columns []string, rows [][]Cell, err error)

type fakeSession struct {
	mu      sync.Mutex
	h       queryHandler
	ph      Placeholder
	log     []string
	closed  bool
	closeFn func() error
}

func newFakeSession(h queryHandler) *fakeSession {
	if h == nil {
		h = func(string, []any) ([]string, [][]Cell, error) { return nil, nil, nil }
	}
	return &fakeSession{h: h}
}

func (s *fakeSession) Query(ctx context.Context, sql string, args []any) ([]string, [][]Cell, error) {
	s.mu.Lock()
	s.log = append(s.log, sql)
	s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return s.h(sql, args)
}

func (s *fakeSession) Placeholder() Placeholder { return s.ph }

func (s *fakeSession) Close(context.Context) error {
	s.closed = true
	if s.closeFn != nil {
		return s.closeFn()
	}
	return nil
}

func (s *fakeSession) statements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.log...)
}

// failOn returns a handler that fails the given statement with err and
// succeeds with no rows otherwise.
func failOn(stmt string, err error) queryHandler {
	return func(sql string, _ []any) ([]string, [][]Cell, error) {
		if sql == stmt {
			return nil, nil, err
		}
		return nil, nil, nil
	}
}

var errBoom = errors.New("boom")
