package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/alerts"
)

// DefaultAlertChannel is the Pub/Sub channel the messaging workflow listens on.
const DefaultAlertChannel = "EVENT_PRIORITY_ALERT"

// Publisher dispatches priority alerts over Redis Pub/Sub.
type Publisher struct {
	rdb     redis.UniversalClient
	channel string
}

var _ alerts.Dispatcher = (*Publisher)(nil)

// NewPublisher creates a Publisher. An empty channel selects DefaultAlertChannel.
func NewPublisher(rdb redis.UniversalClient, channel string) *Publisher {
	if channel == "" {
		channel = DefaultAlertChannel
	}
	return &Publisher{rdb: rdb, channel: channel}
}

type alertEvent struct {
	Type string `json:"type"`
	alerts.Payload
}

// Encode renders the event published for p.
func (p *Publisher) Encode(payload alerts.Payload) ([]byte, error) {
	return json.Marshal(alertEvent{Type: p.channel, Payload: payload})
}

// Dispatch publishes payload.
func (p *Publisher) Dispatch(ctx context.Context, payload alerts.Payload) error {
	event, err := p.Encode(payload)
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, event).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	return nil
}
