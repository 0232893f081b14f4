package notifier

import (
	"context"

	"go.uber.org/zap"
)

// LoggingHandler emits one structured log line per recorded transition.
// It is the default handler and is always safe to keep enabled; log
// shipping can forward the lines anywhere.
type LoggingHandler struct {
	log *zap.Logger
}

func NewLoggingHandler(log *zap.Logger) *LoggingHandler {
	return &LoggingHandler{log: log.With(zap.String("component", "notifier.logging"))}
}

func (h *LoggingHandler) Name() string { return "logging" }

func (h *LoggingHandler) Notify(_ context.Context, ev Event) error {
	if !ev.Created {
		return nil
	}

	fields := []zap.Field{
		zap.Int64("test_id", ev.Test.ID),
		zap.String("url", ev.Test.URL),
		zap.String("project", ev.Project.Name),
		zap.String("client", ev.Client.Name),
		zap.Int("expected_status", ev.Change.ExpectedStatus),
	}
	if ev.Change.ReturnedStatus != nil {
		fields = append(fields, zap.Int("returned_status", *ev.Change.ReturnedStatus))
	} else {
		fields = append(fields, zap.Bool("no_response", true))
	}

	if ev.Change.IsError() {
		h.log.Warn("unexpected response", fields...)
	} else {
		h.log.Info("recovered from unexpected response", fields...)
	}
	return nil
}
