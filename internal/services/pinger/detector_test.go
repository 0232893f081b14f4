package pinger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scout-hq/scout/internal/domain/statuschange"
	"github.com/scout-hq/scout/internal/domain/statustest"
)

func lastChange(result statuschange.Result) *statuschange.StatusChange {
	return &statuschange.StatusChange{
		TestID:         1,
		ExpectedStatus: 200,
		Result:         result,
		CreatedAt:      time.Now().Add(-10 * time.Minute),
	}
}

func TestShouldLog_DecisionTable(t *testing.T) {
	ok := Outcome{Code: 200, Received: true}
	bad := Outcome{Code: 500, Received: true}

	cases := []struct {
		name string
		out  Outcome
		last *statuschange.StatusChange
		want bool
	}{
		{"expected, no history", ok, nil, false},
		{"expected after error", ok, lastChange(statuschange.ResultUnexpected), true},
		{"expected after ok", ok, lastChange(statuschange.ResultExpected), false},
		{"unexpected, no history", bad, nil, true},
		{"unexpected after error", bad, lastChange(statuschange.ResultUnexpected), false},
		{"unexpected after ok", bad, lastChange(statuschange.ResultExpected), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShouldLog(tc.out, 200, tc.last))
		})
	}
}

func TestShouldLog_TransportFailureIsUnexpected(t *testing.T) {
	down := Outcome{Received: false, Err: assert.AnError}

	assert.True(t, ShouldLog(down, 200, nil))
	assert.False(t, ShouldLog(down, 200, lastChange(statuschange.ResultUnexpected)))
	assert.True(t, ShouldLog(down, 200, lastChange(statuschange.ResultExpected)))
}

func TestShouldLog_NonDefaultExpectedStatus(t *testing.T) {
	// A 404 is a healthy answer when 404 is what the test expects.
	got404 := Outcome{Code: 404, Received: true}

	assert.False(t, ShouldLog(got404, 404, nil))
	assert.True(t, ShouldLog(got404, 404, lastChange(statuschange.ResultUnexpected)))
	assert.True(t, ShouldLog(got404, 200, lastChange(statuschange.ResultExpected)))
}

func TestBuildChange_SnapshotsExpectedStatus(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	test := &statustest.StatusTest{ID: 7, ProjectID: 3, URL: "https://example.com", ExpectedStatus: 204}

	c := BuildChange(test, Outcome{Code: 500, Received: true}, at)
	require.NotNil(t, c)
	assert.Equal(t, int64(7), c.TestID)
	assert.Equal(t, 204, c.ExpectedStatus)
	require.NotNil(t, c.ReturnedStatus)
	assert.Equal(t, 500, *c.ReturnedStatus)
	assert.Equal(t, statuschange.ResultUnexpected, c.Result)
	assert.Equal(t, at, c.CreatedAt)
	assert.True(t, c.IsError())
}

func TestBuildChange_TransportFailureHasNilReturnedStatus(t *testing.T) {
	test := &statustest.StatusTest{ID: 7, ExpectedStatus: 200}

	c := BuildChange(test, Outcome{Received: false, Err: assert.AnError}, time.Now())
	assert.Nil(t, c.ReturnedStatus)
	assert.Equal(t, statuschange.ResultUnexpected, c.Result)
}

func TestBuildChange_Recovery(t *testing.T) {
	test := &statustest.StatusTest{ID: 7, ExpectedStatus: 301}

	c := BuildChange(test, Outcome{Code: 301, Received: true}, time.Now())
	assert.Equal(t, statuschange.ResultExpected, c.Result)
	assert.False(t, c.IsError())
}
