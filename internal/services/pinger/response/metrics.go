package response

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/scout-hq/scout/internal/domain/statustest"
	"github.com/scout-hq/scout/internal/services/pinger"
)

// MetricsHandler records per-probe Prometheus series. It observes every
// probe regardless of whether a status change gets logged.
type MetricsHandler struct {
	probes  *prometheus.CounterVec
	codes   *prometheus.CounterVec
	latency prometheus.Histogram
}

func NewMetricsHandler(reg prometheus.Registerer) *MetricsHandler {
	f := promauto.With(reg)
	return &MetricsHandler{
		probes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scout_probe_results_total", Help: "Probe outcomes by verdict.",
		}, []string{"verdict"}),
		codes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scout_probe_status_total", Help: "HTTP status codes returned by probes.",
		}, []string{"code"}),
		latency: f.NewHistogram(prometheus.HistogramOpts{
			Name: "scout_probe_latency_seconds", Help: "Probe round-trip latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (h *MetricsHandler) Name() string { return "metrics" }

func (h *MetricsHandler) Handle(_ context.Context, t *statustest.StatusTest, out pinger.Outcome) {
	h.latency.Observe(out.Latency.Seconds())

	switch {
	case !out.Received:
		h.probes.WithLabelValues("no_response").Inc()
	case out.Matches(t.ExpectedStatus):
		h.probes.WithLabelValues("expected").Inc()
	default:
		h.probes.WithLabelValues("unexpected").Inc()
	}
	if out.Received {
		h.codes.WithLabelValues(strconv.Itoa(out.Code)).Inc()
	}
}
