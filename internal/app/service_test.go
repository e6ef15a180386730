package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/joacominatel/featherdb/internal/config"
	"github.com/joacominatel/featherdb/internal/database"
)

func connectSQLite(t *testing.T, maxRows int) *Service {
	t.Helper()
	keyring.MockInit()

	svc := NewService(nil, maxRows)
	profile := config.Connection{
		Name:   "test",
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "app.db"),
	}
	if err := svc.Connect(context.Background(), profile); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = svc.Disconnect(context.Background()) })
	return svc
}

func mustExecute(t *testing.T, svc *Service, sql string, inTx bool) *Result {
	t.Helper()
	res, err := svc.Execute(context.Background(), sql, inTx)
	if err != nil {
		t.Fatalf("Execute(%q): %v", sql, err)
	}
	return res
}

func TestExecute(t *testing.T) {
	svc := connectSQLite(t, 0)

	if !svc.Connected() || svc.Profile().Name != "test" {
		t.Fatalf("Connected()=%v Profile()=%+v", svc.Connected(), svc.Profile())
	}
	if svc.ServerVersion() == "" {
		t.Fatal("ServerVersion() empty for sqlite")
	}

	mustExecute(t, svc, `CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT, score REAL)`, false)
	mustExecute(t, svc, `INSERT INTO notes VALUES (1, 'first', 1.5), (2, NULL, 2)`, false)

	res := mustExecute(t, svc, `SELECT id, body, score FROM notes ORDER BY id`, false)
	if res.RowCount != 2 || len(res.Rows) != 2 || res.Truncated {
		t.Fatalf("result=%+v", res)
	}
	want := [][]string{{"1", "first", "1.5"}, {"2", "NULL", "2"}}
	for i := range want {
		for j := range want[i] {
			if res.Rows[i][j] != want[i][j] {
				t.Fatalf("row %d col %d=%q want %q", i, j, res.Rows[i][j], want[i][j])
			}
		}
	}
	if len(res.Columns) != 3 || res.Columns[1] != "body" {
		t.Fatalf("columns=%v", res.Columns)
	}
}

func TestExecuteSendsTextVerbatim(t *testing.T) {
	svc := connectSQLite(t, 0)

	res := mustExecute(t, svc, `SELECT 1 AS [it's], '{1}' AS braces`, false)
	if len(res.Columns) != 2 || res.Columns[0] != "it's" || res.Columns[1] != "braces" {
		t.Fatalf("columns=%q", res.Columns)
	}
	if len(res.Rows) != 1 || res.Rows[0][1] != "{1}" {
		t.Fatalf("rows=%q", res.Rows)
	}
}

func TestExecuteEmptyResultKeepsColumns(t *testing.T) {
	svc := connectSQLite(t, 0)
	mustExecute(t, svc, `CREATE TABLE t (a INTEGER, b TEXT)`, false)

	res := mustExecute(t, svc, `SELECT a, b FROM t`, false)
	if res.RowCount != 0 || len(res.Columns) != 2 {
		t.Fatalf("result=%+v", res)
	}
}

func TestExecuteTruncates(t *testing.T) {
	svc := connectSQLite(t, 2)

	res := mustExecute(t, svc, `WITH RECURSIVE n(x) AS (SELECT 1 UNION ALL SELECT x + 1 FROM n WHERE x < 5) SELECT x FROM n`, false)
	if res.RowCount != 5 || len(res.Rows) != 2 || !res.Truncated {
		t.Fatalf("RowCount=%d rows=%d truncated=%v", res.RowCount, len(res.Rows), res.Truncated)
	}
}

func TestExecuteInTransaction(t *testing.T) {
	svc := connectSQLite(t, 0)
	mustExecute(t, svc, `CREATE TABLE t (a INTEGER NOT NULL)`, false)

	_, err := svc.Execute(context.Background(), `INSERT INTO t VALUES (NULL)`, true)
	var txErr *database.TransactionError
	if !errors.As(err, &txErr) || txErr.Closure == nil {
		t.Fatalf("err=%v want closure TransactionError", err)
	}
	var qe *database.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("err=%v does not wrap *QueryError", err)
	}

	mustExecute(t, svc, `INSERT INTO t VALUES (7)`, true)
	res := mustExecute(t, svc, `SELECT a FROM t`, false)
	if res.RowCount != 1 || res.Rows[0][0] != "7" {
		t.Fatalf("result=%+v", res)
	}
}

func TestExecuteNotConnected(t *testing.T) {
	svc := NewService(nil, 0)
	_, err := svc.Execute(context.Background(), `SELECT 1`, false)
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("err=%v want ErrNotConnected", err)
	}
	var ce *database.ConnectionError
	if !errors.As(err, &ce) {
		t.Fatalf("err=%v want *ConnectionError", err)
	}
	if err := svc.Disconnect(context.Background()); err != nil {
		t.Fatalf("Disconnect without a session: %v", err)
	}
}

func TestConnectErrors(t *testing.T) {
	keyring.MockInit()
	svc := NewService(nil, 0)

	err := svc.Connect(context.Background(), config.Connection{Name: "x", Driver: "oracle"})
	var cfgErr *ErrConfig
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err=%v want *ErrConfig", err)
	}

	err = svc.Connect(context.Background(), config.Connection{
		Name:   "missing",
		Driver: config.DriverSQLite,
		Path:   "file:" + filepath.Join(t.TempDir(), "nope", "x.db") + "?mode=ro",
	})
	var ce *database.ConnectionError
	if !errors.As(err, &ce) {
		t.Fatalf("err=%v want *ConnectionError", err)
	}
	if svc.Connected() {
		t.Fatal("failed connect left a session open")
	}
}

func TestReconnectReplacesSession(t *testing.T) {
	svc := connectSQLite(t, 0)
	mustExecute(t, svc, `CREATE TABLE only_here (a INTEGER)`, false)

	other := config.Connection{Name: "other", Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "other.db")}
	if err := svc.Connect(context.Background(), other); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if svc.Profile().Name != "other" {
		t.Fatalf("profile=%q", svc.Profile().Name)
	}
	if _, err := svc.Execute(context.Background(), `SELECT a FROM only_here`, false); err == nil {
		t.Fatal("query reached the previous database")
	}
}
