package database

import "log/slog"

const (
	defaultBeginSQL    = "BEGIN"
	defaultCommitSQL   = "COMMIT"
	defaultRollbackSQL = "ROLLBACK"
)

type options struct {
	logger   *slog.Logger
	beginSQL string
}

// Option configures a Connection or Client.
type Option func(*options)

// WithLogger sets the structured logger. Statements are logged at debug
// level, transaction failures at warn.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBeginStatement overrides the statement that opens a transaction, for
// example "BEGIN IMMEDIATE" on SQLite or
// "BEGIN ISOLATION LEVEL SERIALIZABLE" on PostgreSQL.
func WithBeginStatement(sql string) Option {
	return func(o *options) {
		if sql != "" {
			o.beginSQL = sql
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:   slog.New(slog.DiscardHandler),
		beginSQL: defaultBeginSQL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
