package pinger

import (
	"context"
	"time"

	"github.com/scout-hq/scout/internal/domain/client"
	"github.com/scout-hq/scout/internal/domain/project"
	"github.com/scout-hq/scout/internal/domain/statuschange"
	"github.com/scout-hq/scout/internal/domain/statustest"
	"github.com/scout-hq/scout/internal/services/notifier"
)

type TestSource interface {
	FetchEligible(ctx context.Context) ([]*statustest.StatusTest, error)
}

type ProjectStore interface {
	GetByID(ctx context.Context, id int64) (*project.Project, error)
	UpdateHealth(ctx context.Context, id int64, working *bool, probedAt time.Time) error
}

type ClientStore interface {
	GetByID(ctx context.Context, id int64) (*client.Client, error)
}

type ChangeStore interface {
	Create(ctx context.Context, c *statuschange.StatusChange) error
	// LastForTest returns nil (no error) when no record exists within
	// the window.
	LastForTest(ctx context.Context, testID int64, since time.Time) (*statuschange.StatusChange, error)
}

type Prober interface {
	Probe(ctx context.Context, url string) Outcome
}

// ResponseHandler is a side-effect-only plugin invoked after every probe,
// before the logging decision. Its output never influences whether a
// status change is recorded.
type ResponseHandler interface {
	Name() string
	Handle(ctx context.Context, t *statustest.StatusTest, out Outcome)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, ev notifier.Event) int
}
