package events

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/storerating-backend/internal/app/model"
)

type Type string

const (
	RatingCreated Type = "rating.created"
	RatingUpdated Type = "rating.updated"
)

// RatingEvent is published after a rating is stored.
type RatingEvent struct {
	Type       Type      `json:"type"`
	RatingID   uint      `json:"rating_id"`
	StoreID    uint      `json:"store_id"`
	UserID     uint      `json:"user_id"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewRatingEvent describes rating after an upsert.
func NewRatingEvent(rating *model.Rating, created bool) RatingEvent {
	eventType := RatingUpdated
	if created {
		eventType = RatingCreated
	}
	return RatingEvent{
		Type:       eventType,
		RatingID:   rating.ID,
		StoreID:    rating.StoreID,
		UserID:     rating.UserID,
		Rating:     rating.Rating,
		Comment:    rating.Comment,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers rating events to one sink.
type Publisher interface {
	Publish(ctx context.Context, event RatingEvent) error
}

// Fanout publishes every event to all of its publishers.
type Fanout struct {
	publishers []Publisher
}

// NewFanout skips nil publishers, so optional sinks can be passed unconditionally.
func NewFanout(publishers ...Publisher) *Fanout {
	f := &Fanout{}
	for _, p := range publishers {
		if p != nil {
			f.publishers = append(f.publishers, p)
		}
	}
	return f
}

// Publish tries every publisher and joins their errors.
func (f *Fanout) Publish(ctx context.Context, event RatingEvent) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of configured publishers.
func (f *Fanout) Len() int {
	return len(f.publishers)
}

// JSONPublisher sends a JSON payload under a routing key.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, payload interface{}) error
}

// BrokerPublisher routes rating events to a message broker keyed by event type.
type BrokerPublisher struct {
	broker JSONPublisher
}

func NewBrokerPublisher(broker JSONPublisher) *BrokerPublisher {
	return &BrokerPublisher{broker: broker}
}

func (p *BrokerPublisher) Publish(ctx context.Context, event RatingEvent) error {
	return p.broker.PublishJSON(ctx, string(event.Type), event)
}
