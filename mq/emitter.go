package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"bandhub/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Channel is the pub/sub channel artist change events are published on.
const Channel = "artist-events"

type event struct {
	Name string `json:"event"`
	models.Index
}

// Publisher emits change events to Redis pub/sub. Delivery is fire and
// forget; failures are logged.
type Publisher struct {
	conn   *redis.Client
	logger zerolog.Logger
}

func NewPublisher(conn *redis.Client, logger zerolog.Logger) *Publisher {
	return &Publisher{conn: conn, logger: logger}
}

func Encode(eventName string, content models.Index) ([]byte, error) {
	data, err := json.Marshal(event{Name: eventName, Index: content})
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", eventName, err)
	}
	return data, nil
}

// Emit publishes eventName with its content. The request context is not
// used so that a finished request does not cancel the publish.
func (p *Publisher) Emit(_ context.Context, eventName string, content models.Index) {
	data, err := Encode(eventName, content)
	if err != nil {
		p.logger.Error().Err(err).Msg("emit")
		return
	}
	if err := p.conn.Publish(context.Background(), Channel, data).Err(); err != nil {
		p.logger.Error().Err(err).Str("event", eventName).Msg("publish failed")
		return
	}
	p.logger.Debug().Str("event", eventName).Str("entity", content.EntityId).Msg("event published")
}

// Nop drops every event. Used when Redis is not configured.
type Nop struct{}

func (Nop) Emit(context.Context, string, models.Index) {}
