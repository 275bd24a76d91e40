package interfaces

import "context"

// Invalidation announces that cached lists of entities are stale
type Invalidation struct {
	Origin   string   `json:"origin"`
	Entities []string `json:"entities"`
}

// Publisher broadcasts invalidations to other instances
type Publisher interface {
	Publish(ctx context.Context, inv Invalidation) error
	Close() error
}

// Subscriber receives invalidations broadcast by any instance
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan Invalidation, error)
	Close() error
}

// EventBus both publishes and receives invalidations
type EventBus interface {
	Publisher
	Subscriber
}
