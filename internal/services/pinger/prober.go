package pinger

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	config "github.com/scout-hq/scout/internal/config/pinger"
)

// Outcome is the result of one probe: either an HTTP status code or a
// transport failure (no response at all). A transport failure is terminal
// for the test within the run but never for the batch.
type Outcome struct {
	Code     int
	Received bool
	Latency  time.Duration
	Err      error
}

// Matches reports whether the probe produced exactly the expected status.
// A transport failure never matches anything.
func (o Outcome) Matches(expected int) bool { return o.Received && o.Code == expected }

type HTTPProber struct {
	c   *http.Client
	ua  string
	log *zap.Logger
}

func NewProber(cfg config.HTTPProbe, log *zap.Logger) *HTTPProber {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !cfg.VerifyTLS,
			MinVersion:         tls.VersionTLS12,
		},
	}
	client := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(transport),
	}
	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return &HTTPProber{
		c:   client,
		ua:  cfg.UserAgent,
		log: log.With(zap.String("component", "pinger.prober")),
	}
}

// Probe issues one GET against the test URL. The response body is drained
// and discarded; only the status code is consumed.
func (p *HTTPProber) Probe(ctx context.Context, rawURL string) Outcome {
	url := normalizeURL(rawURL)

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Outcome{Latency: time.Since(start), Err: err}
	}
	if p.ua != "" {
		req.Header.Set("User-Agent", p.ua)
	}

	resp, err := p.c.Do(req)
	lat := time.Since(start)
	if err != nil {
		p.log.Debug("probe failed", zap.String("url", url), zap.Duration("latency", lat), zap.Error(err))
		return Outcome{Latency: lat, Err: err}
	}
	defer resp.Body.Close()

	p.log.Debug("probe done",
		zap.String("url", url),
		zap.Int("code", resp.StatusCode),
		zap.Duration("latency", lat),
	)
	return Outcome{Code: resp.StatusCode, Received: true, Latency: lat}
}

func normalizeURL(s string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return t
	}
	if strings.HasPrefix(t, "http://") || strings.HasPrefix(t, "https://") {
		return t
	}
	return "http://" + t
}
