package database

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Connection owns one backend session and runs one statement at a time.
// Callers that need parallelism hold one Connection each.
type Connection struct {
	mu      sync.Mutex
	session Session
	logger  *slog.Logger
}

// NewConnection wraps s.
func NewConnection(s Session, opts ...Option) *Connection {
	o := newOptions(opts)
	return &Connection{session: s, logger: o.logger}
}

// Run executes q and hands the rows to handler, returning its result.
// Template problems surface as *TemplateError before any I/O, backend
// failures as *QueryError. Errors returned by handler are passed through
// unchanged. A nil handler discards the rows.
func Run[T any](ctx context.Context, conn *Connection, q Template, handler func(RowSequence) (T, error)) (T, error) {
	var zero T
	rows, err := conn.execute(ctx, q)
	if err != nil {
		return zero, err
	}
	if handler == nil {
		return zero, nil
	}
	return handler(rows)
}

// Exec executes q and discards any rows.
func (c *Connection) Exec(ctx context.Context, q Template) error {
	_, err := c.execute(ctx, q)
	return err
}

// Query executes q and returns its rows.
func (c *Connection) Query(ctx context.Context, q Template) (RowSequence, error) {
	return c.execute(ctx, q)
}

// Close ends the underlying session.
func (c *Connection) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Close(ctx)
}

func (c *Connection) execute(ctx context.Context, q Template) (RowSequence, error) {
	sqlText, args, err := Translate(q, c.session.Placeholder())
	if err != nil {
		return RowSequence{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	columns, raw, err := c.session.Query(ctx, sqlText, args)
	if err != nil {
		c.logger.DebugContext(ctx, "statement failed",
			"sql", sqlText,
			"error", err,
			"duration", time.Since(start),
		)
		return RowSequence{}, &QueryError{SQL: sqlText, Cause: err}
	}

	rows := make([]Row, len(raw))
	for i, cells := range raw {
		rows[i] = NewRow(columns, cells)
	}

	c.logger.DebugContext(ctx, "statement executed",
		"sql", sqlText,
		"rows", len(rows),
		"duration", time.Since(start),
	)
	return NewRowSequence(columns, rows), nil
}
