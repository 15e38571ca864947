// Package events publishes catalog domain events to RabbitMQ. Publishing
// failures are logged and returned so callers can ignore them without
// interrupting the request flow.
package events

import (
	"context"
	"time"
)

const (
	RoutingBeatCreated   = "catalog.beat_created"
	RoutingPricesUpdated = "catalog.prices_updated"
)

// BeatCreatedEvent is emitted for each beat inserted by a migration run.
type BeatCreatedEvent struct {
	BeatID     uint      `json:"beat_id"`
	Title      string    `json:"title"`
	Genre      string    `json:"genre"`
	Mood       string    `json:"mood"`
	Price      float64   `json:"price"`
	RunID      string    `json:"run_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PricesUpdatedEvent is emitted after a catalog edit commits.
type PricesUpdatedEvent struct {
	BeatIDs    []uint    `json:"beat_ids"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher sends an event under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event interface{}) error
	Close() error
}

// NopPublisher discards events. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error {
	return nil
}

func (NopPublisher) Close() error {
	return nil
}
