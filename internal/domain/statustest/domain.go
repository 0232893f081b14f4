package statustest

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// StatusTest is a single probed URL with the HTTP status it is expected to
// return. A test is eligible for probing only when it, its project and the
// project's client are all active.
type StatusTest struct {
	ID             int64     `json:"id"`
	ProjectID      int64     `json:"project_id"`
	URL            string    `json:"url"`
	ExpectedStatus int       `json:"expected_status"`
	DisplayOrder   int       `json:"display_order"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

var (
	ErrEmptyURL      = errors.New("test url is empty")
	ErrInvalidURL    = errors.New("test url is not a valid http(s) url")
	ErrUnknownStatus = errors.New("expected status is not a known http status code")
)

// statusCodes is the fixed set of expectable HTTP statuses. Codes are
// compared as opaque integers; no range semantics are attached.
var statusCodes = map[int]struct{}{
	200: {}, 201: {}, 202: {}, 203: {}, 204: {}, 205: {}, 206: {},
	301: {}, 302: {}, 303: {}, 304: {}, 305: {}, 307: {},
	400: {}, 401: {}, 403: {}, 404: {}, 405: {}, 406: {}, 407: {},
	408: {}, 409: {}, 410: {}, 411: {}, 412: {}, 413: {}, 414: {},
	415: {}, 416: {}, 417: {},
	500: {}, 501: {}, 502: {}, 503: {}, 504: {}, 505: {},
}

// ValidStatus reports whether code is in the expectable status set.
func ValidStatus(code int) bool {
	_, ok := statusCodes[code]
	return ok
}

// Validate checks the user-settable fields before a create or update.
func (t *StatusTest) Validate() error {
	if t.URL == "" {
		return ErrEmptyURL
	}
	u, err := url.Parse(t.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, t.URL)
	}
	if !ValidStatus(t.ExpectedStatus) {
		return fmt.Errorf("%w: %d", ErrUnknownStatus, t.ExpectedStatus)
	}
	return nil
}
