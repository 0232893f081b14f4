package statuschange

import (
	"context"
	"time"
)

type Repo interface {
	Create(ctx context.Context, c *StatusChange) error

	// LastForTest returns the most recent record for a test created at or
	// after since. Implementations return their not-found sentinel when
	// no record exists inside the window.
	LastForTest(ctx context.Context, testID int64, since time.Time) (*StatusChange, error)

	ListByTest(ctx context.Context, testID int64, limit int) ([]*StatusChange, error)
}
