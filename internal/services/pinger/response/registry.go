package response

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/scout-hq/scout/internal/domain/statustest"
	"github.com/scout-hq/scout/internal/services/pinger"
)

type Deps struct {
	Log           *zap.Logger
	Registerer    prometheus.Registerer
	SlowThreshold time.Duration
}

type factory func(d Deps) (pinger.ResponseHandler, error)

var registry = map[string]factory{
	"metrics": func(d Deps) (pinger.ResponseHandler, error) {
		return NewMetricsHandler(d.Registerer), nil
	},
	"slow_probe": func(d Deps) (pinger.ResponseHandler, error) {
		if d.SlowThreshold <= 0 {
			return nil, fmt.Errorf("slow_probe: threshold must be positive")
		}
		return NewSlowProbeHandler(d.SlowThreshold, d.Log), nil
	},
	"noop": func(d Deps) (pinger.ResponseHandler, error) {
		return NoopHandler{}, nil
	},
}

// Resolve maps configured identifiers to handler instances, preserving
// order. An unknown identifier is a configuration failure.
func Resolve(names []string, deps Deps) ([]pinger.ResponseHandler, error) {
	out := make([]pinger.ResponseHandler, 0, len(names))
	for _, name := range names {
		f, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("unknown response handler %q", name)
		}
		h, err := f(deps)
		if err != nil {
			return nil, fmt.Errorf("response handler %q: %w", name, err)
		}
		out = append(out, h)
	}
	return out, nil
}

// NoopHandler does nothing; it exists as the minimal example of the
// response handler shape.
type NoopHandler struct{}

func (NoopHandler) Name() string { return "noop" }

func (NoopHandler) Handle(context.Context, *statustest.StatusTest, pinger.Outcome) {}
