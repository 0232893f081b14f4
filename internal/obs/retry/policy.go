package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// TransportPolicy is the shared retry shape for notification transports
// (SMTP, Kafka). Every error is considered retryable; the dispatcher
// isolates an exhausted handler from the rest of the fan-out.
func TransportPolicy(name string, log *zap.Logger) Policy {
	return Policy{
		Name:     name,
		Attempts: 4,
		Backoff:  ExpoJitter{Base: 200 * time.Millisecond, Max: 10 * time.Second, Jitter: 0.2},
		Retryable: func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		},
		OnAttempt: func(i int, err error) {
			if log != nil {
				log.Warn("transport retry", zap.String("transport", name), zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil && !errors.Is(err, context.Canceled) {
				log.Error("transport retries exhausted", zap.String("transport", name), zap.Error(err))
			}
		},
	}
}
