package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/joacominatel/featherdb/internal/database"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Session implements database.Session over one PostgreSQL connection.
type Session struct {
	q      querier
	close  func(ctx context.Context) error
	dbName string
}

var _ database.Session = (*Session)(nil)

// Connect opens a single, unpooled connection.
func Connect(ctx context.Context, dsn string) (*Session, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Session{q: conn, close: conn.Close, dbName: cfg.Database}, nil
}

// Query executes sql and materializes every row.
func (s *Session) Query(ctx context.Context, sql string, args []any) ([]string, [][]database.Cell, error) {
	rows, err := s.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	var out [][]database.Cell
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, nil, fmt.Errorf("read row: %w", err)
		}
		cells := make([]database.Cell, len(values))
		for i, v := range values {
			cells[i] = toCell(v)
		}
		out = append(out, cells)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	// A COMMIT on an aborted transaction succeeds on the wire but rolls back.
	if isCommit(sql) && rows.CommandTag().String() == "ROLLBACK" {
		return nil, nil, pgx.ErrTxCommitRollback
	}

	return columns, out, nil
}

// Placeholder reports the $N marker style.
func (s *Session) Placeholder() database.Placeholder {
	return database.PlaceholderDollar
}

// Close ends the session.
func (s *Session) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// ServerVersion returns the server_version setting.
func (s *Session) ServerVersion(ctx context.Context) (string, error) {
	var version string
	if err := s.queryRow(ctx, queryServerVersion, &version); err != nil {
		return "", fmt.Errorf("server version: %w", err)
	}
	return version, nil
}

// SSL reports whether the session is encrypted.
func (s *Session) SSL(ctx context.Context) (bool, error) {
	var ssl bool
	err := s.queryRow(ctx, querySessionSSL, &ssl)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ssl status: %w", err)
	}
	return ssl, nil
}

// DatabaseName returns the name of the connected database.
func (s *Session) DatabaseName() string {
	return s.dbName
}

func (s *Session) queryRow(ctx context.Context, sql string, dst any) error {
	rows, err := s.q.Query(ctx, sql)
	if err != nil {
		return err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return pgx.ErrNoRows
	}
	return rows.Scan(dst)
}

func toCell(v any) database.Cell {
	switch v := v.(type) {
	case nil:
		return database.NullCell()
	case int64:
		return database.IntCell(v)
	case int32:
		return database.IntCell(int64(v))
	case int16:
		return database.IntCell(int64(v))
	case int8:
		return database.IntCell(int64(v))
	case uint32:
		return database.IntCell(int64(v))
	case float64:
		return database.FloatCell(v)
	case float32:
		return database.FloatCell(float64(v))
	case string:
		return database.TextCell(v)
	case []byte:
		return database.BlobCell(v)
	case bool:
		return database.BoolCell(v)
	case time.Time:
		return database.TimeCell(v)
	case pgtype.Numeric:
		return numericCell(v)
	case [16]byte:
		return database.TextCell(uuid.UUID(v).String())
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return database.TextCell(fmt.Sprintf("%v", v))
		}
		return database.TextCell(string(b))
	case fmt.Stringer:
		return database.TextCell(v.String())
	default:
		return database.TextCell(fmt.Sprintf("%v", v))
	}
}

// numericCell keeps NUMERIC values lossless: integers that fit int64 become
// Int cells, values with at most 15 significant digits become Float cells, and
// anything wider is carried as its exact decimal text.
func numericCell(n pgtype.Numeric) database.Cell {
	if !n.Valid {
		return database.NullCell()
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		f, _ := n.Float64Value()
		return database.FloatCell(f.Float64)
	}
	if n.Int == nil {
		return database.IntCell(0)
	}
	if n.Exp >= 0 {
		if i, err := n.Int64Value(); err == nil && i.Valid {
			return database.IntCell(i.Int64)
		}
	}
	if significantDigits(n.Int) <= 15 {
		if f, err := n.Float64Value(); err == nil && f.Valid {
			return database.FloatCell(f.Float64)
		}
	}
	if v, err := n.Value(); err == nil {
		if text, ok := v.(string); ok {
			return database.TextCell(text)
		}
	}
	return database.TextCell(fmt.Sprintf("%se%d", n.Int, n.Exp))
}

func significantDigits(i *big.Int) int {
	digits := strings.TrimLeft(i.String(), "-")
	return max(len(strings.TrimRight(digits, "0")), 1)
}

func isCommit(sql string) bool {
	s := strings.TrimSpace(sql)
	s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	return strings.EqualFold(s, "COMMIT") || strings.EqualFold(s, "END")
}
