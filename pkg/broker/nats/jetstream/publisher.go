package jetstream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is the generic envelope published onto a JetStream subject; callers
// supply Type and Data, Publisher stamps ID/Source/Timestamp.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

type Publisher struct {
	js     *JetStream
	logger *zap.Logger
	source string
}

func NewPublisher(js *JetStream, logger *zap.Logger, source string) *Publisher {
	return &Publisher{js: js, logger: logger, source: source}
}

// PublishEvent wraps data in an Event and publishes it to subject.
func (p *Publisher) PublishEvent(ctx context.Context, subject, eventType string, data map[string]interface{}) error {
	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    p.source,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal event", zap.Error(err), zap.String("event_type", eventType))
		return err
	}

	if err := p.js.Publish(ctx, subject, eventData); err != nil {
		p.logger.Error("failed to publish event", zap.Error(err), zap.String("subject", subject), zap.String("event_type", eventType))
		return err
	}

	p.logger.Debug("event published", zap.String("subject", subject), zap.String("event_type", eventType), zap.String("event_id", event.ID))
	return nil
}
