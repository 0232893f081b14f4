package response

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/scout-hq/scout/internal/domain/statustest"
	"github.com/scout-hq/scout/internal/services/pinger"
)

// SlowProbeHandler flags probes that answered, but slower than the
// configured threshold. Latency is not part of the health decision, so
// this stays a side effect.
type SlowProbeHandler struct {
	threshold time.Duration
	log       *zap.Logger
}

func NewSlowProbeHandler(threshold time.Duration, log *zap.Logger) *SlowProbeHandler {
	return &SlowProbeHandler{
		threshold: threshold,
		log:       log.With(zap.String("component", "response.slow_probe")),
	}
}

func (h *SlowProbeHandler) Name() string { return "slow_probe" }

func (h *SlowProbeHandler) Handle(_ context.Context, t *statustest.StatusTest, out pinger.Outcome) {
	if !out.Received || out.Latency <= h.threshold {
		return
	}
	h.log.Warn("slow probe",
		zap.Int64("test_id", t.ID),
		zap.String("url", t.URL),
		zap.Duration("latency", out.Latency),
		zap.Duration("threshold", h.threshold),
	)
}
