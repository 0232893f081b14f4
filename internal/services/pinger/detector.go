package pinger

import (
	"time"

	"github.com/scout-hq/scout/internal/domain/statuschange"
	"github.com/scout-hq/scout/internal/domain/statustest"
)

// ShouldLog decides whether an observation is a loggable state transition.
// Logging is edge-triggered: only the first occurrence of an unexpected
// outcome and the recovery back to the expected one are recorded. last is
// the most recent status change inside the lookback window, or nil when
// none exists; a stale record outside the window counts as nil, so a
// failure after a long quiet gap logs as a fresh occurrence.
//
//	outcome      last     -> log?
//	expected     none        no
//	expected     error       yes (recovery)
//	expected     ok          no
//	unexpected   none        yes (first occurrence)
//	unexpected   error       no  (already known bad)
//	unexpected   ok          yes (new failure)
func ShouldLog(out Outcome, expected int, last *statuschange.StatusChange) bool {
	healthy := out.Matches(expected)
	if last == nil {
		return !healthy
	}
	if last.IsError() {
		return healthy
	}
	return !healthy
}

// BuildChange snapshots a loggable observation into a status change
// record. The test's expected status is copied so later edits never
// rewrite history; a transport failure leaves ReturnedStatus nil.
func BuildChange(t *statustest.StatusTest, out Outcome, at time.Time) *statuschange.StatusChange {
	c := &statuschange.StatusChange{
		TestID:         t.ID,
		ExpectedStatus: t.ExpectedStatus,
		Result:         statuschange.ResultUnexpected,
		CreatedAt:      at,
	}
	if out.Received {
		code := out.Code
		c.ReturnedStatus = &code
	}
	if out.Matches(t.ExpectedStatus) {
		c.Result = statuschange.ResultExpected
	}
	return c
}
