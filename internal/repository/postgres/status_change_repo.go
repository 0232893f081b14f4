package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/scout-hq/scout/internal/domain/statuschange"
)

var _ statuschange.Repo = (*StatusChangeRepoImpl)(nil)

// StatusChangeRepoImpl is append-only: there is no update or delete path
// for recorded transitions.
type StatusChangeRepoImpl struct {
	db *DB
}

func NewStatusChangeRepo(db *DB) *StatusChangeRepoImpl { return &StatusChangeRepoImpl{db: db} }

const (
	qChangeInsert = `
INSERT INTO status_changes (test_id, expected_status, returned_status, result, created_at)
VALUES ($1, $2, $3, $4, COALESCE($5, now()))
RETURNING id, created_at;
`

	qChangeLast = `
SELECT id, test_id, expected_status, returned_status, result, created_at
FROM status_changes
WHERE test_id = $1 AND created_at >= $2
ORDER BY created_at DESC, id DESC
LIMIT 1;
`

	qChangeByTest = `
SELECT id, test_id, expected_status, returned_status, result, created_at
FROM status_changes
WHERE test_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2;
`
)

func scanStatusChange(row pgx.Row, c *statuschange.StatusChange) error {
	if err := row.Scan(
		&c.ID,
		&c.TestID,
		&c.ExpectedStatus,
		&c.ReturnedStatus,
		&c.Result,
		&c.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan status change: %w", err)
	}
	return nil
}

func (r *StatusChangeRepoImpl) Create(ctx context.Context, c *statuschange.StatusChange) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	if err := eq.QueryRow(ctx, qChangeInsert,
		c.TestID,
		c.ExpectedStatus,
		c.ReturnedStatus,
		c.Result,
		nullTime(c.CreatedAt),
	).Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("insert status change: %w", err)
	}
	return nil
}

func (r *StatusChangeRepoImpl) LastForTest(ctx context.Context, testID int64, since time.Time) (*statuschange.StatusChange, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var c statuschange.StatusChange
	if err := scanStatusChange(r.db.Pool.QueryRow(ctx, qChangeLast, testID, since), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *StatusChangeRepoImpl) ListByTest(ctx context.Context, testID int64, limit int) ([]*statuschange.StatusChange, error) {
	if limit <= 0 {
		limit = 50
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qChangeByTest, testID, limit)
	if err != nil {
		return nil, fmt.Errorf("query status changes: %w", err)
	}
	defer rows.Close()

	out := make([]*statuschange.StatusChange, 0, limit)
	for rows.Next() {
		var c statuschange.StatusChange
		if err := scanStatusChange(rows, &c); err != nil {
			return nil, err
		}
		cc := c
		out = append(out, &cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
