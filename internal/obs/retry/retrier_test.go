package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quickPolicy(attempts int) Policy {
	return Policy{
		Name:     "test",
		Attempts: attempts,
		Backoff:  ExpoJitter{Base: time.Millisecond, Max: 5 * time.Millisecond},
	}
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, quickPolicy(4))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("still broken")
	var exhausted error

	p := quickPolicy(3)
	p.OnExhaust = func(err error) { exhausted = err }

	err := Do(context.Background(), func() error {
		calls++
		return boom
	}, p)

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, exhausted, boom)
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	fatal := errors.New("bad request")

	p := quickPolicy(5)
	p.Retryable = func(err error) bool { return !errors.Is(err, fatal) }

	err := Do(context.Background(), func() error {
		calls++
		return fatal
	}, p)

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := quickPolicy(3)
	p.Backoff = ExpoJitter{Base: time.Minute}

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Do(ctx, func() error {
			calls++
			return errors.New("transient")
		}, p)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(time.Second):
		t.Fatal("Do did not return after cancel")
	}
}

func TestExpoJitter_CapsAtMax(t *testing.T) {
	b := ExpoJitter{Base: 100 * time.Millisecond, Max: time.Second}
	assert.LessOrEqual(t, b.Next(10), time.Second)
	assert.GreaterOrEqual(t, b.Next(0), 100*time.Millisecond)
}
