package notifier

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/scout-hq/scout/internal/domain/client"
	"github.com/scout-hq/scout/internal/domain/project"
	"github.com/scout-hq/scout/internal/domain/statuschange"
	"github.com/scout-hq/scout/internal/domain/statustest"
)

// Event is one recorded status change with its ancestry resolved, handed
// to every notification handler in configured order.
type Event struct {
	Change  *statuschange.StatusChange
	Test    *statustest.StatusTest
	Project *project.Project
	Client  *client.Client
	// Created distinguishes a freshly recorded change from a replayed
	// one; handlers only act on fresh records.
	Created bool
}

// Handler reacts to a recorded state change. A delivery failure is the
// handler's own problem: the dispatcher logs it and moves on.
type Handler interface {
	Name() string
	Notify(ctx context.Context, ev Event) error
}

type Dispatcher struct {
	log      *zap.Logger
	handlers []Handler
}

func NewDispatcher(log *zap.Logger, handlers []Handler) *Dispatcher {
	return &Dispatcher{
		log:      log.With(zap.String("component", "notifier.dispatcher")),
		handlers: handlers,
	}
}

// Dispatch fans the event out to every handler, isolating failures and
// panics per handler. It returns the number of handlers that failed.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) int {
	failed := 0
	for _, h := range d.handlers {
		if err := d.runOne(ctx, h, ev); err != nil {
			failed++
			d.log.Error("notification handler failed",
				zap.String("handler", h.Name()),
				zap.Int64("test_id", ev.Change.TestID),
				zap.Error(err),
			)
		}
	}
	return failed
}

func (d *Dispatcher) runOne(ctx context.Context, h Handler, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.Notify(ctx, ev)
}
