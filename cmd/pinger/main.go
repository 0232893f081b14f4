package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	config "github.com/scout-hq/scout/internal/config/pinger"
	"github.com/scout-hq/scout/internal/obs"
	kafkax "github.com/scout-hq/scout/internal/repository/kafka"
	pg "github.com/scout-hq/scout/internal/repository/postgres"
	"github.com/scout-hq/scout/internal/services/notifier"
	"github.com/scout-hq/scout/internal/services/pinger"
	pingerrepo "github.com/scout-hq/scout/internal/services/pinger/repo"
	"github.com/scout-hq/scout/internal/services/pinger/response"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func wire(cfg *config.Config, db *pg.DB, prod *kafkax.Producer, l *zap.Logger) (*pinger.Runner, error) {
	clients := pingerrepo.Clients{R: pg.NewClientRepo(db)}
	projects := pingerrepo.Projects{R: pg.NewProjectRepo(db)}
	tests := pingerrepo.Tests{R: pg.NewStatusTestRepo(db)}
	changes := pingerrepo.Changes{R: pg.NewStatusChangeRepo(db)}

	chain, err := response.Resolve(cfg.Engine.ResponseHandlers, response.Deps{
		Log:           l,
		Registerer:    prometheus.DefaultRegisterer,
		SlowThreshold: cfg.Engine.SlowProbeThreshold,
	})
	if err != nil {
		return nil, err
	}

	var mailer notifier.EmailSender
	if needsMail(cfg.Engine.NotificationHandlers) {
		mailer = notifier.NewMailer(cfg.SMTP).WithLogger(l)
	}
	handlers, err := notifier.Resolve(cfg.Engine.NotificationHandlers, notifier.Deps{
		Log:           l,
		Mailer:        mailer,
		Producer:      prod,
		Subscriptions: pg.NewSubscriptionRepo(db),
		SubjPrefix:    cfg.SMTP.SubjPrefix,
		AdminEmails:   cfg.Email.AdminEmails,
		ManagerEmails: cfg.Email.ManagerEmails,
	})
	if err != nil {
		return nil, err
	}

	recorder := &pinger.Recorder{
		Changes:  changes,
		Projects: projects,
		Tx:       pg.NewTransactor(db, l),
		Clock:    systemClock{},
	}

	return pinger.NewRunner(
		l,
		pinger.Config{Window: cfg.Engine.Window, Concurrency: cfg.Engine.Concurrency},
		tests,
		projects,
		clients,
		changes,
		recorder,
		pinger.NewProber(cfg.HTTP, l),
		chain,
		notifier.NewDispatcher(l, handlers),
		systemClock{},
		pinger.NewMetrics(prometheus.DefaultRegisterer),
	), nil
}

func needsMail(handlers []string) bool {
	for _, n := range []string{"admin_email", "manager_email", "subscribers"} {
		if slices.Contains(handlers, n) {
			return true
		}
	}
	return false
}

// runOnce executes one lock-guarded batch. Losing the lock race to
// another pinger is a clean no-op.
func runOnce(ctx context.Context, db *pg.DB, key int64, runner *pinger.Runner, l *zap.Logger) error {
	lock := pg.NewRunLock(db, key)
	got, err := lock.TryAcquire(ctx)
	if err != nil {
		return err
	}
	if !got {
		l.Warn("another run holds the lock, skipping")
		return nil
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			l.Error("release run lock", zap.Error(err))
		}
	}()

	_, err = runner.Run(ctx)
	return err
}

func main() {
	cfgPath := flag.String("config", "", "path to config yaml")
	flag.Parse()

	root, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig())
	if err != nil {
		log.Fatal(err)
	}

	otelCloser, err := obs.SetupOTel(root, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	db, err := pg.New(root, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	var ms *http.Server
	if cfg.Server.MetricsAddr != "" {
		ms = obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, func(ctx context.Context) error {
			return db.Pool.Ping(ctx)
		}, l)
	}

	var prod *kafkax.Producer
	if slices.Contains(cfg.Engine.NotificationHandlers, "kafka") {
		prod = kafkax.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic).WithLogger(l)
		defer func() { _ = prod.Close() }()
	}

	runner, err := wire(cfg, db, prod, l)
	if err != nil {
		l.Fatal("wiring", zap.Error(err))
	}

	if err := run(root, cfg, db, runner, l); err != nil && !errors.Is(err, context.Canceled) {
		l.Error("run failed", zap.Error(err))
	}

	if ms != nil {
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = ms.Shutdown(shCtx)
	}
	l.Info("bye")
}

// run executes a single batch, or keeps running on a ticker when an
// interval is configured (for deployments without an external cron).
func run(ctx context.Context, cfg *config.Config, db *pg.DB, runner *pinger.Runner, l *zap.Logger) error {
	if cfg.Engine.Interval <= 0 {
		return runOnce(ctx, db, cfg.Engine.LockKey, runner, l)
	}

	ticker := time.NewTicker(cfg.Engine.Interval)
	defer ticker.Stop()

	if err := runOnce(ctx, db, cfg.Engine.LockKey, runner, l); err != nil {
		l.Error("run failed", zap.Error(err))
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := runOnce(ctx, db, cfg.Engine.LockKey, runner, l); err != nil {
				l.Error("run failed", zap.Error(err))
			}
		}
	}
}
