package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/scout-hq/scout/internal/domain/client"
)

var _ client.Repo = (*ClientRepoImpl)(nil)

type ClientRepoImpl struct {
	db *DB
}

func NewClientRepo(db *DB) *ClientRepoImpl { return &ClientRepoImpl{db: db} }

const (
	qClientInsert = `
INSERT INTO clients (name, is_active)
VALUES ($1, $2)
RETURNING id, name, is_active, created_at, updated_at;
`

	qClientGetByID = `
SELECT id, name, is_active, created_at, updated_at
FROM clients
WHERE id = $1;
`

	qClientList = `
SELECT id, name, is_active, created_at, updated_at
FROM clients
ORDER BY name;
`

	qClientUpdate = `
UPDATE clients
SET name = $2, is_active = $3, updated_at = now()
WHERE id = $1;
`

	qClientDelete = `DELETE FROM clients WHERE id = $1;`
)

func scanClient(row pgx.Row, c *client.Client) error {
	if err := row.Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan client: %w", err)
	}
	return nil
}

func (r *ClientRepoImpl) Create(ctx context.Context, c *client.Client) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	row := r.db.Pool.QueryRow(ctx, qClientInsert, c.Name, c.Active)
	return scanClient(row, c)
}

func (r *ClientRepoImpl) GetByID(ctx context.Context, id int64) (*client.Client, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var c client.Client
	if err := scanClient(r.db.Pool.QueryRow(ctx, qClientGetByID, id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepoImpl) List(ctx context.Context) ([]*client.Client, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qClientList)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var out []*client.Client
	for rows.Next() {
		var c client.Client
		if err := scanClient(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *ClientRepoImpl) Update(ctx context.Context, c *client.Client) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cmd, err := r.db.Pool.Exec(ctx, qClientUpdate, c.ID, c.Name, c.Active)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ClientRepoImpl) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cmd, err := r.db.Pool.Exec(ctx, qClientDelete, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
