package repo

import (
	"context"
	"errors"
	"time"

	"github.com/scout-hq/scout/internal/domain/client"
	"github.com/scout-hq/scout/internal/domain/project"
	"github.com/scout-hq/scout/internal/domain/statuschange"
	"github.com/scout-hq/scout/internal/domain/statustest"
	"github.com/scout-hq/scout/internal/repository/postgres"
)

type Tests struct{ R statustest.Repo }
type Projects struct{ R project.Repo }
type Clients struct{ R client.Repo }
type Changes struct{ R statuschange.Repo }

func (a Tests) FetchEligible(ctx context.Context) ([]*statustest.StatusTest, error) {
	return a.R.FetchEligible(ctx)
}

func (a Projects) GetByID(ctx context.Context, id int64) (*project.Project, error) {
	return a.R.GetByID(ctx, id)
}

func (a Projects) UpdateHealth(ctx context.Context, id int64, working *bool, probedAt time.Time) error {
	return a.R.UpdateHealth(ctx, id, working, probedAt)
}

func (a Clients) GetByID(ctx context.Context, id int64) (*client.Client, error) {
	return a.R.GetByID(ctx, id)
}

func (a Changes) Create(ctx context.Context, c *statuschange.StatusChange) error {
	return a.R.Create(ctx, c)
}

// LastForTest translates the store's not-found sentinel into the nil the
// change detector expects for "no history inside the window".
func (a Changes) LastForTest(ctx context.Context, testID int64, since time.Time) (*statuschange.StatusChange, error) {
	c, err := a.R.LastForTest(ctx, testID, since)
	if errors.Is(err, postgres.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
