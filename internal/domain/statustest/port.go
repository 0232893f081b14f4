package statustest

import "context"

type Repo interface {
	Create(ctx context.Context, t *StatusTest) error
	GetByID(ctx context.Context, id int64) (*StatusTest, error)
	ListByProject(ctx context.Context, projectID int64) ([]*StatusTest, error)
	Update(ctx context.Context, t *StatusTest) error
	Delete(ctx context.Context, id int64) error

	// FetchEligible returns the tests whose own, project and client
	// active flags are all set, ordered for a stable batch walk.
	FetchEligible(ctx context.Context) ([]*StatusTest, error)
}
