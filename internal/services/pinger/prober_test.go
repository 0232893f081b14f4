package pinger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	config "github.com/scout-hq/scout/internal/config/pinger"
)

func testProber(t *testing.T, cfg config.HTTPProbe) *HTTPProber {
	t.Helper()
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	return NewProber(cfg, zap.NewNop())
}

func TestProbe_StatusCodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/teapot":
			w.WriteHeader(http.StatusTeapot)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := testProber(t, config.HTTPProbe{})

	out := p.Probe(context.Background(), srv.URL+"/ok")
	require.True(t, out.Received)
	assert.Equal(t, 200, out.Code)
	assert.True(t, out.Matches(200))
	assert.False(t, out.Matches(404))

	out = p.Probe(context.Background(), srv.URL+"/teapot")
	require.True(t, out.Received)
	assert.Equal(t, 418, out.Code)

	out = p.Probe(context.Background(), srv.URL+"/nope")
	require.True(t, out.Received)
	assert.Equal(t, 404, out.Code)
	assert.True(t, out.Matches(404))
}

func TestProbe_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := testProber(t, config.HTTPProbe{})
	out := p.Probe(context.Background(), url)

	assert.False(t, out.Received)
	assert.Error(t, out.Err)
	assert.False(t, out.Matches(200))
}

func TestProbe_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	p := testProber(t, config.HTTPProbe{Timeout: 50 * time.Millisecond})
	out := p.Probe(context.Background(), srv.URL)

	assert.False(t, out.Received)
	assert.Error(t, out.Err)
}

func TestProbe_RedirectsNotFollowedByDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/from" {
			http.Redirect(w, r, "/to", http.StatusMovedPermanently)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := testProber(t, config.HTTPProbe{FollowRedirects: false})
	out := p.Probe(context.Background(), srv.URL+"/from")
	require.True(t, out.Received)
	assert.Equal(t, 301, out.Code)

	p = testProber(t, config.HTTPProbe{FollowRedirects: true})
	out = p.Probe(context.Background(), srv.URL+"/from")
	require.True(t, out.Received)
	assert.Equal(t, 200, out.Code)
}

func TestProbe_SendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	p := testProber(t, config.HTTPProbe{UserAgent: "scout-pinger/1.0"})
	out := p.Probe(context.Background(), srv.URL)

	require.True(t, out.Received)
	assert.Equal(t, "scout-pinger/1.0", gotUA)
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"example.com", "http://example.com"},
		{"  example.com ", "http://example.com"},
		{"http://example.com", "http://example.com"},
		{"https://example.com/x", "https://example.com/x"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, normalizeURL(tc.in), tc.in)
	}
}
