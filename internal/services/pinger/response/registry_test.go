package response

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/scout-hq/scout/internal/domain/statustest"
	"github.com/scout-hq/scout/internal/services/pinger"
)

func TestResolve_KnownHandlersInOrder(t *testing.T) {
	hs, err := Resolve([]string{"noop", "slow_probe", "metrics"}, Deps{
		Log:           zap.NewNop(),
		Registerer:    prometheus.NewRegistry(),
		SlowThreshold: time.Second,
	})
	require.NoError(t, err)
	require.Len(t, hs, 3)
	assert.Equal(t, "noop", hs[0].Name())
	assert.Equal(t, "slow_probe", hs[1].Name())
	assert.Equal(t, "metrics", hs[2].Name())
}

func TestResolve_UnknownHandlerFails(t *testing.T) {
	_, err := Resolve([]string{"metrics", "telegraph"}, Deps{
		Log:        zap.NewNop(),
		Registerer: prometheus.NewRegistry(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegraph")
}

func TestResolve_SlowProbeNeedsThreshold(t *testing.T) {
	_, err := Resolve([]string{"slow_probe"}, Deps{Log: zap.NewNop()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slow_probe")
}

func TestMetricsHandler_CountsVerdicts(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewMetricsHandler(reg)
	test := &statustest.StatusTest{ID: 1, URL: "https://a.example", ExpectedStatus: 200}

	h.Handle(context.Background(), test, pinger.Outcome{Code: 200, Received: true, Latency: 20 * time.Millisecond})
	h.Handle(context.Background(), test, pinger.Outcome{Code: 500, Received: true, Latency: 20 * time.Millisecond})
	h.Handle(context.Background(), test, pinger.Outcome{Received: false})

	expected := `
		# HELP scout_probe_results_total Probe outcomes by verdict.
		# TYPE scout_probe_results_total counter
		scout_probe_results_total{verdict="expected"} 1
		scout_probe_results_total{verdict="no_response"} 1
		scout_probe_results_total{verdict="unexpected"} 1
	`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "scout_probe_results_total"))

	codes := `
		# HELP scout_probe_status_total HTTP status codes returned by probes.
		# TYPE scout_probe_status_total counter
		scout_probe_status_total{code="200"} 1
		scout_probe_status_total{code="500"} 1
	`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(codes), "scout_probe_status_total"))
}

func TestSlowProbeHandler_WarnsOverThreshold(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	h := NewSlowProbeHandler(100*time.Millisecond, zap.New(core))
	test := &statustest.StatusTest{ID: 1, URL: "https://a.example", ExpectedStatus: 200}

	h.Handle(context.Background(), test, pinger.Outcome{Code: 200, Received: true, Latency: 50 * time.Millisecond})
	assert.Equal(t, 0, logs.Len())

	h.Handle(context.Background(), test, pinger.Outcome{Code: 200, Received: true, Latency: 250 * time.Millisecond})
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "slow probe", logs.All()[0].Message)

	// A timed-out probe has a big latency but no response to judge.
	h.Handle(context.Background(), test, pinger.Outcome{Received: false, Latency: time.Second})
	assert.Equal(t, 1, logs.Len())
}
