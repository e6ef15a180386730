package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joacominatel/featherdb/internal/config"
	"github.com/joacominatel/featherdb/internal/database"
	"github.com/joacominatel/featherdb/internal/database/postgres"
	"github.com/joacominatel/featherdb/internal/database/sqlite"
)

// Result is a statement result prepared for display.
type Result struct {
	Columns  []string
	Rows     [][]string
	RowCount int
	// Truncated is set when RowCount exceeds the rows kept in Rows.
	Truncated bool
	Duration  time.Duration
}

// Service coordinates application-level operations between the UI and the
// database layer.
type Service struct {
	logger  *slog.Logger
	maxRows int

	client  *database.Client
	profile config.Connection
	version string
}

// NewService creates a new application service. maxRows caps the rows kept
// in a Result; zero keeps all of them.
func NewService(logger *slog.Logger, maxRows int) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{logger: logger, maxRows: maxRows}
}

type versioner interface {
	ServerVersion(ctx context.Context) (string, error)
}

// Connect opens a session for the profile, replacing any current one.
func (s *Service) Connect(ctx context.Context, profile config.Connection) error {
	profile = profile.ResolvePassword()

	var (
		session database.Session
		err     error
	)
	switch profile.Driver {
	case config.DriverPostgres, "":
		session, err = postgres.Connect(ctx, profile.DSN())
	case config.DriverSQLite:
		session, err = sqlite.Open(ctx, profile.DSN())
	default:
		return &ErrConfig{Cause: fmt.Errorf("unsupported driver %q", profile.Driver)}
	}
	if err != nil {
		return &database.ConnectionError{Cause: err}
	}

	if err := s.Disconnect(ctx); err != nil {
		s.logger.WarnContext(ctx, "closing previous connection failed", "error", err)
	}

	s.version = ""
	if v, ok := session.(versioner); ok {
		if s.version, err = v.ServerVersion(ctx); err != nil {
			s.logger.DebugContext(ctx, "server version unavailable", "error", err)
		}
	}

	s.client = database.NewClient(session, database.WithLogger(s.logger.With("profile", profile.Name)))
	s.profile = profile
	s.logger.InfoContext(ctx, "connected", "profile", profile.Name, "target", profile.DisplayString())
	return nil
}

// Disconnect closes the current session, if any.
func (s *Service) Disconnect(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close(ctx)
	s.client = nil
	s.profile = config.Connection{}
	s.version = ""
	return err
}

// Connected reports whether a session is open.
func (s *Service) Connected() bool {
	return s.client != nil
}

// Profile returns the profile of the open session.
func (s *Service) Profile() config.Connection {
	return s.profile
}

// ServerVersion returns the backend version reported at connect time.
func (s *Service) ServerVersion() string {
	return s.version
}

// Execute runs operator-typed SQL. The text carries no bindings and is sent
// to the backend untranslated; inTx wraps it in a transaction.
func (s *Service) Execute(ctx context.Context, sqlText string, inTx bool) (*Result, error) {
	if s.client == nil {
		return nil, &database.ConnectionError{Cause: ErrNotConnected}
	}

	q := database.UnsafeTemplate(sqlText)
	run := func(conn *database.Connection) (*Result, error) {
		return database.Run(ctx, conn, q, s.toResult)
	}

	start := time.Now()
	var (
		res *Result
		err error
	)
	if inTx {
		res, err = database.WithTransaction(ctx, s.client, run)
	} else {
		res, err = database.WithConnection(ctx, s.client, run)
	}
	if err != nil {
		return nil, err
	}

	res.Duration = time.Since(start)
	return res, nil
}

func (s *Service) toResult(rows database.RowSequence) (*Result, error) {
	res := &Result{Columns: rows.Columns(), RowCount: rows.Len()}

	it := rows.Iterator()
	for row, ok := it.Next(); ok; row, ok = it.Next() {
		if s.maxRows > 0 && len(res.Rows) >= s.maxRows {
			res.Truncated = true
			break
		}
		res.Rows = append(res.Rows, row.Strings())
	}
	return res, nil
}
