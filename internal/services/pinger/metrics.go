package pinger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	mProbes   prometheus.Counter
	mUp       prometheus.Counter
	mDown     prometheus.Counter
	mChanges  prometheus.Counter
	mErrors   prometheus.Counter
	mNotifErr prometheus.Counter
	mRunDur   prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		mProbes: f.NewCounter(prometheus.CounterOpts{
			Name: "pinger_probes_total", Help: "Total probes attempted",
		}),
		mUp: f.NewCounter(prometheus.CounterOpts{
			Name: "pinger_expected_total", Help: "Probes matching the expected status",
		}),
		mDown: f.NewCounter(prometheus.CounterOpts{
			Name: "pinger_unexpected_total", Help: "Probes with an unexpected status or no response",
		}),
		mChanges: f.NewCounter(prometheus.CounterOpts{
			Name: "pinger_status_changes_total", Help: "Status changes recorded",
		}),
		mErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "pinger_errors_total", Help: "Per-test store or plugin errors",
		}),
		mNotifErr: f.NewCounter(prometheus.CounterOpts{
			Name: "pinger_notify_failures_total", Help: "Notification handler failures",
		}),
		mRunDur: f.NewHistogram(prometheus.HistogramOpts{
			Name: "pinger_run_duration_seconds", Help: "Full batch duration",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
