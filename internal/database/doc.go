/*
Package database is a typed access layer over a relational backend.

Queries are Templates: SQL text with 1-based {N} placeholders plus the
bindings they refer to. Values never become part of the SQL text; they are
sent to the backend as parameters, after the placeholders are rewritten to
the backend's native markers ($N for PostgreSQL, ?N for SQLite).

	q := database.Interpolate(
		database.SQL(`SELECT id, name FROM "`), database.Unescaped(table),
		database.SQL(`" WHERE name = `), database.String(name),
	)

Unescaped is the one path that splices text into the query. It exists for
identifiers the program controls and should stand out in review.

A Connection executes one Template at a time and returns a RowSequence whose
rows are already in memory. Rows are decoded with Decode and DecodeNull:

	id, err := database.Decode[int64](row, "id")
	note, err := database.DecodeNull[string](row, "note")

A Client owns a Connection and offers two scopes: WithConnection for ad hoc
work and WithTransaction for begin/commit/rollback around a function.

Every error returned by the package is one of *TemplateError, *QueryError,
*ConnectionError, *TransactionError or *DecodingError. Nothing is retried;
retrying a transaction is the caller's decision.
*/
package database
