package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/scout-hq/scout/internal/domain/subscription"
)

var _ subscription.Repo = (*SubscriptionRepoImpl)(nil)

type SubscriptionRepoImpl struct {
	db *DB
}

func NewSubscriptionRepo(db *DB) *SubscriptionRepoImpl { return &SubscriptionRepoImpl{db: db} }

const (
	qSubInsert = `
INSERT INTO subscriptions (project_id, email, is_active)
VALUES ($1, $2, $3)
RETURNING id, project_id, email, is_active, created_at;
`

	qSubByProject = `
SELECT id, project_id, email, is_active, created_at
FROM subscriptions
WHERE project_id = $1 AND is_active
ORDER BY email;
`

	qSubDelete = `DELETE FROM subscriptions WHERE id = $1;`
)

func scanSubscription(row pgx.Row, s *subscription.Subscription) error {
	if err := row.Scan(&s.ID, &s.ProjectID, &s.Email, &s.Active, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepoImpl) Create(ctx context.Context, s *subscription.Subscription) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	row := r.db.Pool.QueryRow(ctx, qSubInsert, s.ProjectID, s.Email, s.Active)
	return scanSubscription(row, s)
}

func (r *SubscriptionRepoImpl) ListByProject(ctx context.Context, projectID int64) ([]*subscription.Subscription, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qSubByProject, projectID)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var out []*subscription.Subscription
	for rows.Next() {
		var s subscription.Subscription
		if err := scanSubscription(rows, &s); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *SubscriptionRepoImpl) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cmd, err := r.db.Pool.Exec(ctx, qSubDelete, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
