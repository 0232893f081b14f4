package statuschange

import "time"

type Result string

const (
	ResultExpected   Result = "expected"
	ResultUnexpected Result = "unexpected"
)

// StatusChange is one recorded health transition for a test. Records are
// append-only: ExpectedStatus is a snapshot of the test's configuration at
// probe time and never follows later edits. A nil ReturnedStatus means no
// HTTP response was received at all.
type StatusChange struct {
	ID             int64     `json:"id"`
	TestID         int64     `json:"test_id"`
	ExpectedStatus int       `json:"expected_status"`
	ReturnedStatus *int      `json:"returned_status"`
	Result         Result    `json:"result"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsError reports whether this record logged an unexpected outcome.
func (c *StatusChange) IsError() bool { return c.Result != ResultExpected }

type Clock interface {
	Now() time.Time
}
