package notifier

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/scout-hq/scout/internal/obs/retry"
	kafkax "github.com/scout-hq/scout/internal/repository/kafka"
)

// StatusChangedEvent is the wire shape published by the kafka handler.
// Downstream consumers (dashboards, escalation bots) are external.
type StatusChangedEvent struct {
	TestID         int64     `json:"test_id"`
	ProjectID      int64     `json:"project_id"`
	ClientID       int64     `json:"client_id"`
	URL            string    `json:"url"`
	ExpectedStatus int       `json:"expected_status"`
	ReturnedStatus *int      `json:"returned_status"`
	Result         string    `json:"result"`
	At             time.Time `json:"at"`
}

type KafkaHandler struct {
	prod *kafkax.Producer
	log  *zap.Logger
}

func NewKafkaHandler(prod *kafkax.Producer, log *zap.Logger) *KafkaHandler {
	return &KafkaHandler{
		prod: prod,
		log:  log.With(zap.String("component", "notifier.kafka")),
	}
}

func (h *KafkaHandler) Name() string { return "kafka" }

func (h *KafkaHandler) Notify(ctx context.Context, ev Event) error {
	if !ev.Created {
		return nil
	}

	payload := StatusChangedEvent{
		TestID:         ev.Test.ID,
		ProjectID:      ev.Project.ID,
		ClientID:       ev.Client.ID,
		URL:            ev.Test.URL,
		ExpectedStatus: ev.Change.ExpectedStatus,
		ReturnedStatus: ev.Change.ReturnedStatus,
		Result:         string(ev.Change.Result),
		At:             ev.Change.CreatedAt,
	}
	key := kafkax.KeyFromInt64(ev.Test.ID)

	return retry.Do(ctx, func() error {
		return h.prod.PublishJSON(ctx, key, payload)
	}, retry.TransportPolicy("kafka", h.log))
}
