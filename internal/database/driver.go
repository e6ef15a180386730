package database

import "context"

// Session is one live backend session, provided by a driver package.
// Implementations need not be safe for concurrent use; Connection
// serializes calls.
type Session interface {
	// Query executes native SQL with positional args and returns the whole
	// result. Statements without a result set return no columns and no rows.
	Query(ctx context.Context, sql string, args []any) (columns []string, rows [][]Cell, err error)

	// Placeholder returns the native parameter style of the backend.
	Placeholder() Placeholder

	// Close ends the session.
	Close(ctx context.Context) error
}
