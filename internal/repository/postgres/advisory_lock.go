package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunLock is a session-scoped Postgres advisory lock guarding a pinger run
// against concurrent re-entrancy. The lock lives on a pinned pool
// connection; losing the connection releases it, so a crashed run never
// wedges the next one.
type RunLock struct {
	pool *pgxpool.Pool
	key  int64
	conn *pgxpool.Conn
}

func NewRunLock(db *DB, key int64) *RunLock {
	return &RunLock{pool: db.Pool, key: key}
}

// TryAcquire attempts the lock without waiting. A false return with nil
// error means another run holds it, which callers treat as a clean no-op.
func (l *RunLock) TryAcquire(ctx context.Context) (bool, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire conn: %w", err)
	}

	var got bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, l.key).Scan(&got); err != nil {
		conn.Release()
		return false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !got {
		conn.Release()
		return false, nil
	}

	l.conn = conn
	return true, nil
}

func (l *RunLock) Release(ctx context.Context) error {
	if l.conn == nil {
		return nil
	}
	defer func() {
		l.conn.Release()
		l.conn = nil
	}()

	var released bool
	if err := l.conn.QueryRow(ctx, `SELECT pg_advisory_unlock($1)`, l.key).Scan(&released); err != nil {
		return fmt.Errorf("advisory unlock: %w", err)
	}
	if !released {
		return fmt.Errorf("advisory unlock: lock %d was not held", l.key)
	}
	return nil
}
