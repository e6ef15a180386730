package database

import (
	"context"

	"github.com/google/uuid"
)

// WithTransaction runs fn between a begin and a commit on the client's
// connection.
//
// If begin fails, fn is not called and the error carries Begin. If fn fails,
// the transaction is rolled back and the error carries Closure, plus Rollback
// when the rollback failed too. If the commit fails, the error carries Commit,
// a rollback is attempted so the session never stays inside the transaction,
// and fn's result is discarded. Every failure is a *TransactionError.
//
// A panic in fn triggers a rollback before it continues unwinding. Commit and
// rollback ignore cancellation of ctx: once fn has returned, the outcome is
// decided by fn alone.
func WithTransaction[T any](ctx context.Context, c *Client, fn func(*Connection) (T, error)) (T, error) {
	var zero T
	log := c.logger.With("tx", uuid.NewString())

	if err := c.conn.Exec(ctx, NewTemplate(c.beginSQL)); err != nil {
		log.WarnContext(ctx, "transaction begin failed", "error", err)
		return zero, &TransactionError{Begin: err}
	}
	log.DebugContext(ctx, "transaction started")

	finished := false
	defer func() {
		if finished {
			return
		}
		// fn panicked or called runtime.Goexit.
		if err := c.rollback(ctx); err != nil {
			log.WarnContext(ctx, "rollback after panic failed", "error", err)
		}
	}()

	v, err := fn(c.conn)
	finished = true

	if err != nil {
		txErr := &TransactionError{Closure: err}
		if rbErr := c.rollback(ctx); rbErr != nil {
			txErr.Rollback = rbErr
			log.WarnContext(ctx, "transaction rollback failed", "error", rbErr, "cause", err)
		} else {
			log.DebugContext(ctx, "transaction rolled back", "cause", err)
		}
		return zero, txErr
	}

	if err := c.conn.Exec(context.WithoutCancel(ctx), NewTemplate(defaultCommitSQL)); err != nil {
		log.WarnContext(ctx, "transaction commit failed", "error", err)
		// Usually a no-op: the server has already ended the transaction.
		if rbErr := c.rollback(ctx); rbErr != nil {
			log.DebugContext(ctx, "rollback after failed commit", "error", rbErr)
		}
		return zero, &TransactionError{Commit: err}
	}
	log.DebugContext(ctx, "transaction committed")
	return v, nil
}

func (c *Client) rollback(ctx context.Context) error {
	return c.conn.Exec(context.WithoutCancel(ctx), NewTemplate(defaultRollbackSQL))
}
