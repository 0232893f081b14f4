package pinger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/scout-hq/scout/internal/domain/statuschange"
	"github.com/scout-hq/scout/internal/domain/statustest"
	"github.com/scout-hq/scout/internal/obs"
	"github.com/scout-hq/scout/internal/services/notifier"
)

type Config struct {
	// Window is the trailing lookback for "most recent status change".
	Window time.Duration
	// Concurrency bounds in-flight probes.
	Concurrency int
}

// Summary is the outcome report of one batch. Per-test failures are
// counted here instead of aborting the run.
type Summary struct {
	Eligible          int
	Probed            int
	TransportFailures int
	ChangesLogged     int
	NotifyFailures    int
	Skipped           int
}

// Runner walks the eligible test set once: probe, response handlers,
// change detection, recording, notification fan-out. It keeps no state
// across runs; everything it needs lives in the store.
type Runner struct {
	log      *zap.Logger
	cfg      Config
	tests    TestSource
	projects ProjectStore
	clients  ClientStore
	changes  ChangeStore
	recorder *Recorder
	prober   Prober
	chain    []ResponseHandler
	notify   Dispatcher
	clock    statuschange.Clock
	m        *Metrics
}

func NewRunner(
	log *zap.Logger,
	cfg Config,
	tests TestSource,
	projects ProjectStore,
	clients ClientStore,
	changes ChangeStore,
	recorder *Recorder,
	prober Prober,
	chain []ResponseHandler,
	notify Dispatcher,
	clock statuschange.Clock,
	m *Metrics,
) *Runner {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Runner{
		log:      log.With(zap.String("component", "pinger.runner")),
		cfg:      cfg,
		tests:    tests,
		projects: projects,
		clients:  clients,
		changes:  changes,
		recorder: recorder,
		prober:   prober,
		chain:    chain,
		notify:   notify,
		clock:    clock,
		m:        m,
	}
}

// Run executes one batch. It fails only when the eligible test set cannot
// be read at all; every per-test problem is logged, counted and skipped.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := time.Now()

	tests, err := r.tests.FetchEligible(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("fetch eligible tests: %w", err)
	}

	// Rollup writes for tests sharing a project must not race.
	projLocks := make(map[int64]*sync.Mutex, len(tests))
	for _, t := range tests {
		if _, ok := projLocks[t.ProjectID]; !ok {
			projLocks[t.ProjectID] = &sync.Mutex{}
		}
	}

	var (
		mu  sync.Mutex
		sum = Summary{Eligible: len(tests)}
	)

	var g errgroup.Group
	g.SetLimit(r.cfg.Concurrency)
	for _, t := range tests {
		t := t
		g.Go(func() error {
			r.processTest(ctx, t, projLocks[t.ProjectID], &mu, &sum)
			return nil
		})
	}
	_ = g.Wait()

	r.m.mRunDur.Observe(time.Since(start).Seconds())
	r.log.Info("run complete",
		zap.Int("eligible", sum.Eligible),
		zap.Int("probed", sum.Probed),
		zap.Int("transport_failures", sum.TransportFailures),
		zap.Int("changes_logged", sum.ChangesLogged),
		zap.Int("notify_failures", sum.NotifyFailures),
		zap.Int("skipped", sum.Skipped),
		zap.Duration("elapsed", time.Since(start)),
	)
	return sum, nil
}

func (r *Runner) processTest(ctx context.Context, t *statustest.StatusTest, projLock *sync.Mutex, mu *sync.Mutex, sum *Summary) {
	log := obs.WithTrace(ctx, r.log).With(zap.Int64("test_id", t.ID), zap.String("url", t.URL))

	out := r.prober.Probe(ctx, t.URL)

	r.m.mProbes.Inc()
	if out.Matches(t.ExpectedStatus) {
		r.m.mUp.Inc()
	} else {
		r.m.mDown.Inc()
	}

	mu.Lock()
	sum.Probed++
	if !out.Received {
		sum.TransportFailures++
	}
	mu.Unlock()

	if !out.Received {
		log.Warn("probe got no response", zap.Error(out.Err))
	}

	// Response handlers always run, success or transport failure. A
	// faulting handler is isolated to this test.
	r.runChain(ctx, t, out, log)

	since := r.clock.Now().UTC().Add(-r.cfg.Window)
	last, err := r.changes.LastForTest(ctx, t.ID, since)
	if err != nil {
		r.m.mErrors.Inc()
		mu.Lock()
		sum.Skipped++
		mu.Unlock()
		log.Error("load last status change", zap.Error(err))
		return
	}

	shouldLog := ShouldLog(out, t.ExpectedStatus, last)

	projLock.Lock()
	change, err := r.recorder.Record(ctx, t, out, shouldLog)
	projLock.Unlock()
	if err != nil {
		r.m.mErrors.Inc()
		mu.Lock()
		sum.Skipped++
		mu.Unlock()
		log.Error("record probe outcome", zap.Error(err))
		return
	}
	if change == nil {
		return
	}

	r.m.mChanges.Inc()
	mu.Lock()
	sum.ChangesLogged++
	mu.Unlock()
	log.Info("status change recorded",
		zap.String("result", string(change.Result)),
		zap.Int("expected_status", change.ExpectedStatus),
	)

	failed := r.dispatch(ctx, t, change, log)
	if failed > 0 {
		r.m.mNotifErr.Add(float64(failed))
		mu.Lock()
		sum.NotifyFailures += failed
		mu.Unlock()
	}
}

func (r *Runner) runChain(ctx context.Context, t *statustest.StatusTest, out Outcome, log *zap.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			r.m.mErrors.Inc()
			log.Error("response handler panicked", zap.Any("panic", rec))
		}
	}()
	for _, h := range r.chain {
		h.Handle(ctx, t, out)
	}
}

// dispatch resolves the change's ancestry and fans out to the
// notification handlers. A store failure here loses the notifications for
// this change but never the recorded change itself.
func (r *Runner) dispatch(ctx context.Context, t *statustest.StatusTest, change *statuschange.StatusChange, log *zap.Logger) int {
	proj, err := r.projects.GetByID(ctx, t.ProjectID)
	if err != nil {
		log.Error("resolve project for notification", zap.Error(err))
		return 1
	}
	cli, err := r.clients.GetByID(ctx, proj.ClientID)
	if err != nil {
		log.Error("resolve client for notification", zap.Error(err))
		return 1
	}

	return r.notify.Dispatch(ctx, notifier.Event{
		Change:  change,
		Test:    t,
		Project: proj,
		Client:  cli,
		Created: true,
	})
}
