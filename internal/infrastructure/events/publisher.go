package events

import (
	"context"
	"encoding/json"
	"fmt"

	interfaces "course-marketplace/internal/interfaces/infrastructure"
	"course-marketplace/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const (
	DriverGoChannel = "gochannel"
	DriverKafka     = "kafka"
	DriverNone      = "none"
)

type Config struct {
	Driver        string
	Brokers       []string
	ConsumerGroup string
}

// Bus owns the publisher and, when the transport allows it, the subscriber
// used by the audit consumer.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     watermill.LoggerAdapter
}

// NewBus builds the transport selected by cfg.Driver. For gochannel the
// same in-process channel serves both sides.
func NewBus(cfg Config) (*Bus, error) {
	wmLogger := NewLogrusAdapter(logger.GetLogger())

	switch cfg.Driver {
	case DriverGoChannel, "":
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
		return &Bus{publisher: ch, subscriber: ch, logger: wmLogger}, nil

	case DriverKafka:
		pub, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.Brokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		sub, err := kafka.NewSubscriber(kafka.SubscriberConfig{
			Brokers:       cfg.Brokers,
			Unmarshaler:   kafka.DefaultMarshaler{},
			ConsumerGroup: cfg.ConsumerGroup,
		}, wmLogger)
		if err != nil {
			_ = pub.Close()
			return nil, fmt.Errorf("failed to create kafka subscriber: %w", err)
		}
		return &Bus{publisher: pub, subscriber: sub, logger: wmLogger}, nil

	case DriverNone:
		return &Bus{logger: wmLogger}, nil

	default:
		return nil, fmt.Errorf("unsupported events driver: %s", cfg.Driver)
	}
}

func (b *Bus) Subscriber() message.Subscriber {
	return b.subscriber
}

func (b *Bus) Logger() watermill.LoggerAdapter {
	return b.logger
}

// Publish encodes event as JSON. With the none driver it is a no-op.
func (b *Bus) Publish(ctx context.Context, topic string, event any) error {
	if b.publisher == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("topic", topic)
	if requestID := logger.RequestIDFrom(ctx); requestID != "" {
		msg.Metadata.Set("request_id", requestID)
	}

	if err := b.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}
	return nil
}

func (b *Bus) Close() error {
	var firstErr error
	if b.publisher != nil {
		if err := b.publisher.Close(); err != nil {
			firstErr = err
		}
	}
	// gochannel uses one object for both sides
	if b.subscriber != nil && any(b.subscriber) != any(b.publisher) {
		if err := b.subscriber.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ interfaces.EventPublisher = (*Bus)(nil)
