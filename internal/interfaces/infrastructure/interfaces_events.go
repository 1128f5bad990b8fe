package interfaces

import "context"

// EventPublisher emits domain events after writes commit.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
