// Package sqlite provides database sessions backed by SQLite through sqlx
// and github.com/mattn/go-sqlite3.
package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/joacominatel/featherdb/internal/database"
)

const driverName = "sqlite3"

// DB is an open SQLite database that hands out independent sessions.
type DB struct {
	db *sqlx.DB
}

// OpenDB opens the database described by dsn, a file path or a file: URI
// understood by go-sqlite3 (for example "file:app.db?_busy_timeout=5000").
func OpenDB(ctx context.Context, dsn string) (*DB, error) {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &DB{db: db}, nil
}

// Connect pins one connection of the database as a session.
func (d *DB) Connect(ctx context.Context) (*Session, error) {
	conn, err := d.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &Session{conn: conn}, nil
}

// Close closes the database. Sessions should be closed first.
func (d *DB) Close() error {
	return d.db.Close()
}

// Session implements database.Session over one SQLite connection.
type Session struct {
	conn *sqlx.Conn
	// owner is closed together with the session when the session was
	// opened standalone.
	owner *DB
}

var _ database.Session = (*Session)(nil)

// Open opens dsn and returns a session that owns the whole database.
func Open(ctx context.Context, dsn string) (*Session, error) {
	db, err := OpenDB(ctx, dsn)
	if err != nil {
		return nil, err
	}
	s, err := db.Connect(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owner = db
	return s, nil
}

// Query executes sql and materializes every row.
func (s *Session) Query(ctx context.Context, sql string, args []any) ([]string, [][]database.Cell, error) {
	rows, err := s.conn.QueryxContext(ctx, sql, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("columns: %w", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, nil, fmt.Errorf("column types: %w", err)
	}

	var out [][]database.Cell
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, nil, fmt.Errorf("read row: %w", err)
		}
		cells := make([]database.Cell, len(values))
		for i, v := range values {
			cells[i] = toCell(v, types[i].DatabaseTypeName())
		}
		out = append(out, cells)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return columns, out, nil
}

// Placeholder reports the ?N marker style.
func (s *Session) Placeholder() database.Placeholder {
	return database.PlaceholderQuestionNumbered
}

// Close returns the connection, and closes the database if the session
// owns it.
func (s *Session) Close(context.Context) error {
	err := s.conn.Close()
	if s.owner != nil {
		if cerr := s.owner.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// ServerVersion returns the linked SQLite library version.
func (s *Session) ServerVersion(context.Context) (string, error) {
	version, _, _ := sqlite3.Version()
	return version, nil
}

func toCell(v any, declType string) database.Cell {
	switch v := v.(type) {
	case nil:
		return database.NullCell()
	case int64:
		return database.IntCell(v)
	case float64:
		return database.FloatCell(v)
	case string:
		return database.TextCell(v)
	case []byte:
		if isTextType(declType) {
			return database.TextCell(string(v))
		}
		return database.BlobCell(v)
	case bool:
		return database.BoolCell(v)
	case time.Time:
		return database.TimeCell(v)
	default:
		return database.TextCell(fmt.Sprintf("%v", v))
	}
}

// isTextType applies SQLite's type affinity rule for TEXT.
func isTextType(declType string) bool {
	t := strings.ToUpper(declType)
	return strings.Contains(t, "CHAR") || strings.Contains(t, "CLOB") || strings.Contains(t, "TEXT")
}
