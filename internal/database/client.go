package database

import (
	"context"
	"log/slog"
)

// Client runs work against one Connection, either ad hoc or inside a
// transaction.
type Client struct {
	conn     *Connection
	logger   *slog.Logger
	beginSQL string
}

// NewClient builds a client around a single session.
func NewClient(s Session, opts ...Option) *Client {
	o := newOptions(opts)
	return &Client{
		conn:     &Connection{session: s, logger: o.logger},
		logger:   o.logger,
		beginSQL: o.beginSQL,
	}
}

// Connection returns the connection owned by the client.
func (c *Client) Connection() *Connection {
	return c.conn
}

// Close ends the session.
func (c *Client) Close(ctx context.Context) error {
	if err := c.conn.Close(ctx); err != nil {
		return &ConnectionError{Cause: err}
	}
	return nil
}

// WithConnection runs fn with the client's connection. Errors of this
// package's kinds are returned as they are; any other error is wrapped in a
// *ConnectionError.
func WithConnection[T any](ctx context.Context, c *Client, fn func(*Connection) (T, error)) (T, error) {
	var zero T
	v, err := fn(c.conn)
	if err != nil {
		if IsError(err) {
			return zero, err
		}
		c.logger.DebugContext(ctx, "connection work failed", "error", err)
		return zero, &ConnectionError{Cause: err}
	}
	return v, nil
}
