package project

import (
	"context"
	"time"
)

type Repo interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id int64) (*Project, error)
	ListByClient(ctx context.Context, clientID int64) ([]*Project, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id int64) error

	// UpdateHealth bumps last_probed_at and, when working is non-nil,
	// rewrites the denormalized working flag. A nil working means the
	// probe produced no loggable transition and the flag must not move.
	UpdateHealth(ctx context.Context, id int64, working *bool, probedAt time.Time) error
}
