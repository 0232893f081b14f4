package pinger

import (
	"context"
	"fmt"

	"github.com/scout-hq/scout/internal/domain/statuschange"
	"github.com/scout-hq/scout/internal/domain/statustest"
	"github.com/scout-hq/scout/internal/repository/postgres"
)

// Recorder persists the outcome of one probe. It is the only writer of the
// project's denormalized working flag, which therefore always mirrors the
// latest recorded transition rather than the latest raw probe.
type Recorder struct {
	Changes  ChangeStore
	Projects ProjectStore
	Tx       postgres.Transactor
	Clock    statuschange.Clock
}

// Record bumps the project's last_probed_at and, when shouldLog is set,
// atomically appends a status change and rewrites the working flag. It
// returns the created record, or nil when the probe was not loggable.
func (r *Recorder) Record(ctx context.Context, t *statustest.StatusTest, out Outcome, shouldLog bool) (*statuschange.StatusChange, error) {
	now := r.Clock.Now().UTC()

	if !shouldLog {
		if err := r.Projects.UpdateHealth(ctx, t.ProjectID, nil, now); err != nil {
			return nil, fmt.Errorf("bump last_probed_at: %w", err)
		}
		return nil, nil
	}

	change := BuildChange(t, out, now)
	working := !change.IsError()

	if err := r.Tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := r.Changes.Create(txCtx, change); err != nil {
			return fmt.Errorf("insert status change: %w", err)
		}
		if err := r.Projects.UpdateHealth(txCtx, t.ProjectID, &working, now); err != nil {
			return fmt.Errorf("update rollup: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return change, nil
}
