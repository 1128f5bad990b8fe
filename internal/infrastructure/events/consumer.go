package events

import (
	"context"
	"encoding/json"
	"fmt"

	"course-marketplace/internal/domain"
	"course-marketplace/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/sirupsen/logrus"
)

// AuditTopics are the topics consumed by the audit handler.
var AuditTopics = []string{
	domain.TopicRegistrationCreated,
	domain.TopicRegistrationStatusChanged,
	domain.TopicRegistrationDeleted,
	domain.TopicCourseOccupancyCorrected,
}

// AuditHandler logs every domain event it receives. Sink, when set, also
// receives the decoded topic and payload.
type AuditHandler struct {
	Sink func(topic string, payload map[string]any)
}

func (h *AuditHandler) handle(topic string) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		var payload map[string]any
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			// malformed payloads are dropped
			logger.Warn("Dropping malformed event %s on %s: %v", msg.UUID, topic, err)
			return nil
		}

		logger.WithFields(logrus.Fields{
			"event_id":   msg.UUID,
			"topic":      topic,
			"request_id": msg.Metadata.Get("request_id"),
			"payload":    payload,
		}).Info("Domain event received")

		if h.Sink != nil {
			h.Sink(topic, payload)
		}
		return nil
	}
}

// NewAuditRouter wires the audit handler to every audit topic.
func NewAuditRouter(bus *Bus, h *AuditHandler) (*message.Router, error) {
	if bus.Subscriber() == nil {
		return nil, fmt.Errorf("events driver has no subscriber")
	}

	router, err := message.NewRouter(message.RouterConfig{}, bus.Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	for _, topic := range AuditTopics {
		router.AddNoPublisherHandler("audit_"+topic, topic, bus.Subscriber(), h.handle(topic))
	}

	return router, nil
}

// RunAudit runs the audit router until ctx is cancelled.
func RunAudit(ctx context.Context, bus *Bus, h *AuditHandler) error {
	router, err := NewAuditRouter(bus, h)
	if err != nil {
		return err
	}
	return router.Run(ctx)
}
