package pinger_config

import (
	"errors"
	"fmt"
	"time"

	"github.com/scout-hq/scout/internal/obs"
	pginfra "github.com/scout-hq/scout/internal/repository/postgres"
)

type HTTPProbe struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	UserAgent       string        `mapstructure:"user_agent"`
	FollowRedirects bool          `mapstructure:"follow_redirects"`
	VerifyTLS       bool          `mapstructure:"verify_tls"`
}

// Engine holds the parameters of the probing batch itself.
type Engine struct {
	// Window is the trailing lookback applied when loading the most
	// recent status change; older history is treated as absent.
	Window time.Duration `mapstructure:"window"`
	// Concurrency bounds the number of in-flight probes per run.
	Concurrency int `mapstructure:"concurrency"`
	// Interval, when positive, re-runs the batch on a ticker instead of
	// exiting after one pass. External cron setups leave it at zero.
	Interval time.Duration `mapstructure:"interval"`
	// LockKey is the Postgres advisory lock key guarding a run.
	LockKey int64 `mapstructure:"lock_key"`

	ResponseHandlers     []string `mapstructure:"response_handlers"`
	NotificationHandlers []string `mapstructure:"notification_handlers"`

	SlowProbeThreshold time.Duration `mapstructure:"slow_probe_threshold"`
}

type SMTP struct {
	Addr       string        `mapstructure:"addr"`
	From       string        `mapstructure:"from"`
	User       string        `mapstructure:"user"`
	Password   string        `mapstructure:"password"`
	UseTLS     bool          `mapstructure:"use_tls"`
	Timeout    time.Duration `mapstructure:"timeout"`
	SubjPrefix string        `mapstructure:"subj_prefix"`
}

type Email struct {
	AdminEmails   []string `mapstructure:"admin_emails"`
	ManagerEmails []string `mapstructure:"manager_emails"`
}

type KafkaOut struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type Log struct {
	Level   string `mapstructure:"level"`
	Pretty  bool   `mapstructure:"pretty"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

func (l Log) AsLoggerConfig() obs.LogConfig {
	return obs.LogConfig{
		Level:  l.Level,
		Pretty: l.Pretty,
		App:    "pinger",
		Env:    l.Env,
		Ver:    l.Version,
	}
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
}

func (o OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      o.Enable,
		Endpoint:    o.OTLPEndpoint,
		ServiceName: o.ServiceName,
		SampleRatio: o.SampleRatio,
	}
}

type Config struct {
	DB     pginfra.Config `mapstructure:"db"`
	HTTP   HTTPProbe      `mapstructure:"http"`
	Engine Engine         `mapstructure:"pinger"`
	SMTP   SMTP           `mapstructure:"smtp"`
	Email  Email          `mapstructure:"email"`
	Kafka  KafkaOut       `mapstructure:"kafka_out"`
	Server Server         `mapstructure:"server"`
	Log    Log            `mapstructure:"log"`
	OTEL   OTEL           `mapstructure:"otel"`
}

// Validate rejects parameter values that would make a run meaningless.
// Handler identifiers are checked later, at registry resolution.
func (c *Config) Validate() error {
	var errs []error
	if c.Engine.Window <= 0 {
		errs = append(errs, fmt.Errorf("pinger.window must be positive, got %s", c.Engine.Window))
	}
	if c.Engine.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("pinger.concurrency must be at least 1, got %d", c.Engine.Concurrency))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("http.timeout must be positive, got %s", c.HTTP.Timeout))
	}
	if c.Engine.Interval < 0 {
		errs = append(errs, fmt.Errorf("pinger.interval must not be negative, got %s", c.Engine.Interval))
	}
	return errors.Join(errs...)
}
