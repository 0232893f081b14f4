package subscription

import "context"

type Repo interface {
	Create(ctx context.Context, s *Subscription) error
	ListByProject(ctx context.Context, projectID int64) ([]*Subscription, error)
	Delete(ctx context.Context, id int64) error
}
