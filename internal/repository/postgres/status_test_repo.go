package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/scout-hq/scout/internal/domain/statustest"
)

var _ statustest.Repo = (*StatusTestRepoImpl)(nil)

type StatusTestRepoImpl struct {
	db *DB
}

func NewStatusTestRepo(db *DB) *StatusTestRepoImpl { return &StatusTestRepoImpl{db: db} }

const (
	qTestInsert = `
INSERT INTO status_tests (project_id, url, expected_status, display_order, is_active)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, project_id, url, expected_status, display_order, is_active, created_at, updated_at;
`

	qTestGetByID = `
SELECT id, project_id, url, expected_status, display_order, is_active, created_at, updated_at
FROM status_tests
WHERE id = $1;
`

	qTestByProject = `
SELECT id, project_id, url, expected_status, display_order, is_active, created_at, updated_at
FROM status_tests
WHERE project_id = $1
ORDER BY display_order, id;
`

	qTestUpdate = `
UPDATE status_tests
SET url = $2, expected_status = $3, display_order = $4, is_active = $5, updated_at = now()
WHERE id = $1;
`

	qTestDelete = `DELETE FROM status_tests WHERE id = $1;`

	qTestEligible = `
SELECT t.id, t.project_id, t.url, t.expected_status, t.display_order, t.is_active, t.created_at, t.updated_at
FROM status_tests t
JOIN projects p ON p.id = t.project_id
JOIN clients c ON c.id = p.client_id
WHERE t.is_active AND p.is_active AND c.is_active
ORDER BY t.project_id, t.display_order, t.id;
`
)

func scanStatusTest(row pgx.Row, t *statustest.StatusTest) error {
	if err := row.Scan(
		&t.ID,
		&t.ProjectID,
		&t.URL,
		&t.ExpectedStatus,
		&t.DisplayOrder,
		&t.Active,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan status test: %w", err)
	}
	return nil
}

func (r *StatusTestRepoImpl) Create(ctx context.Context, t *statustest.StatusTest) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConstraint, err)
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	row := r.db.Pool.QueryRow(ctx, qTestInsert, t.ProjectID, t.URL, t.ExpectedStatus, t.DisplayOrder, t.Active)
	return scanStatusTest(row, t)
}

func (r *StatusTestRepoImpl) GetByID(ctx context.Context, id int64) (*statustest.StatusTest, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var t statustest.StatusTest
	if err := scanStatusTest(r.db.Pool.QueryRow(ctx, qTestGetByID, id), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *StatusTestRepoImpl) ListByProject(ctx context.Context, projectID int64) ([]*statustest.StatusTest, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qTestByProject, projectID)
	if err != nil {
		return nil, fmt.Errorf("query status tests: %w", err)
	}
	defer rows.Close()

	var out []*statustest.StatusTest
	for rows.Next() {
		var t statustest.StatusTest
		if err := scanStatusTest(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *StatusTestRepoImpl) Update(ctx context.Context, t *statustest.StatusTest) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConstraint, err)
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cmd, err := r.db.Pool.Exec(ctx, qTestUpdate, t.ID, t.URL, t.ExpectedStatus, t.DisplayOrder, t.Active)
	if err != nil {
		return fmt.Errorf("update status test: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *StatusTestRepoImpl) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cmd, err := r.db.Pool.Exec(ctx, qTestDelete, id)
	if err != nil {
		return fmt.Errorf("delete status test: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *StatusTestRepoImpl) FetchEligible(ctx context.Context) ([]*statustest.StatusTest, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qTestEligible)
	if err != nil {
		return nil, fmt.Errorf("fetch eligible: %w", err)
	}
	defer rows.Close()

	var out []*statustest.StatusTest
	for rows.Next() {
		var t statustest.StatusTest
		if err := scanStatusTest(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
