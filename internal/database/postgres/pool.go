package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool hands out independent sessions from a pgx connection pool. Each
// session holds its pooled connection until closed.
type Pool struct {
	pool   *pgxpool.Pool
	dbName string
}

// NewPool connects a pool of at most maxConns connections.
func NewPool(ctx context.Context, dsn string, maxConns int32) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Pool{pool: pool, dbName: cfg.ConnConfig.Database}, nil
}

// Acquire takes a connection out of the pool. Closing the session releases
// it; a connection released inside an open transaction is discarded by the
// pool.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire: %w", err)
	}
	return &Session{
		q: conn,
		close: func(context.Context) error {
			conn.Release()
			return nil
		},
		dbName: p.dbName,
	}, nil
}

// Ping checks if the pool can reach the server.
func (p *Pool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes every pooled connection.
func (p *Pool) Close() {
	p.pool.Close()
}
