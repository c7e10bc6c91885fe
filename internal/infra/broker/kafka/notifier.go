package kafka

import (
	"context"
	"encoding/json"
	"time"

	"staybook/internal/app/policies"
)

const notificationsTopic = "booking-notifications"

// Notifier publishes booking lifecycle notifications to Kafka. Messages are
// keyed by recipient so per-user ordering is preserved across partitions.
type Notifier struct {
	Producer    *Producer
	TopicPrefix string
}

type notificationEnvelope struct {
	UserID     string          `json:"user_id"`
	Event      string          `json:"event"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (n Notifier) Notify(ctx context.Context, userID, event string, payload any) error {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		raw = data
	}
	envelope := notificationEnvelope{
		UserID:     userID,
		Event:      event,
		Payload:    raw,
		OccurredAt: time.Now().UTC(),
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return n.Producer.Publish(ctx, n.TopicPrefix+notificationsTopic, userID, body, map[string]string{
		"event": event,
	})
}

var _ policies.Notifier = Notifier{}
