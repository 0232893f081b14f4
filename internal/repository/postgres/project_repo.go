package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/scout-hq/scout/internal/domain/project"
)

var _ project.Repo = (*ProjectRepoImpl)(nil)

type ProjectRepoImpl struct {
	db *DB
}

func NewProjectRepo(db *DB) *ProjectRepoImpl { return &ProjectRepoImpl{db: db} }

const (
	qProjectInsert = `
INSERT INTO projects (client_id, name, is_active)
VALUES ($1, $2, $3)
RETURNING id, client_id, name, is_active, working, last_probed_at, created_at, updated_at;
`

	qProjectGetByID = `
SELECT id, client_id, name, is_active, working, last_probed_at, created_at, updated_at
FROM projects
WHERE id = $1;
`

	qProjectByClient = `
SELECT id, client_id, name, is_active, working, last_probed_at, created_at, updated_at
FROM projects
WHERE client_id = $1
ORDER BY name;
`

	qProjectUpdate = `
UPDATE projects
SET name = $2, is_active = $3, updated_at = now()
WHERE id = $1;
`

	qProjectDelete = `DELETE FROM projects WHERE id = $1;`

	qProjectHealth = `
UPDATE projects
SET working = COALESCE($2, working), last_probed_at = $3, updated_at = now()
WHERE id = $1;
`
)

func scanProject(row pgx.Row, p *project.Project) error {
	if err := row.Scan(
		&p.ID,
		&p.ClientID,
		&p.Name,
		&p.Active,
		&p.Working,
		&p.LastProbedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan project: %w", err)
	}
	return nil
}

func (r *ProjectRepoImpl) Create(ctx context.Context, p *project.Project) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	row := r.db.Pool.QueryRow(ctx, qProjectInsert, p.ClientID, p.Name, p.Active)
	return scanProject(row, p)
}

func (r *ProjectRepoImpl) GetByID(ctx context.Context, id int64) (*project.Project, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var p project.Project
	if err := scanProject(r.db.Pool.QueryRow(ctx, qProjectGetByID, id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepoImpl) ListByClient(ctx context.Context, clientID int64) ([]*project.Project, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qProjectByClient, clientID)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var out []*project.Project
	for rows.Next() {
		var p project.Project
		if err := scanProject(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *ProjectRepoImpl) Update(ctx context.Context, p *project.Project) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cmd, err := r.db.Pool.Exec(ctx, qProjectUpdate, p.ID, p.Name, p.Active)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProjectRepoImpl) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cmd, err := r.db.Pool.Exec(ctx, qProjectDelete, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateHealth is the single writer of the denormalized rollup fields. It
// honors an in-flight transaction when the history recorder calls it from
// inside one.
func (r *ProjectRepoImpl) UpdateHealth(ctx context.Context, id int64, working *bool, probedAt time.Time) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	cmd, err := eq.Exec(ctx, qProjectHealth, id, working, probedAt)
	if err != nil {
		return fmt.Errorf("update project health: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
