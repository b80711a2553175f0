package database

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

const defaultAcquireTimeout = 5 * time.Second

var errNoPool = errors.New("database pool not initialised")

// Provider hands out dedicated connections from a shared pool. Every repository
// operation acquires its own connection and releases it when done.
type Provider struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewProvider wraps db; timeout bounds each Acquire call.
func NewProvider(db *sqlx.DB, timeout time.Duration) *Provider {
	if timeout <= 0 {
		timeout = defaultAcquireTimeout
	}
	return &Provider{db: db, timeout: timeout}
}

// Acquire returns a connection bound to the configured database. The caller must Close it.
func (p *Provider) Acquire(ctx context.Context) (*sqlx.Conn, error) {
	if p == nil || p.db == nil {
		return nil, connectionError(errNoPool, "database unavailable")
	}
	acquireCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.db.Connx(acquireCtx)
	if err != nil {
		return nil, connectionError(err, "failed to acquire database connection")
	}
	return conn, nil
}

// Ping checks that the pool can reach the database.
func (p *Provider) Ping(ctx context.Context) error {
	if p == nil || p.db == nil {
		return connectionError(errNoPool, "database unavailable")
	}
	pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.db.PingContext(pingCtx); err != nil {
		return connectionError(err, "database unreachable")
	}
	return nil
}

// DB exposes the underlying pool for read-only tooling.
func (p *Provider) DB() *sqlx.DB {
	return p.db
}
