// Package notify implements payment.Notifier as a durable JetStream outbox
// with a RabbitMQ dead-letter queue for webhooks that exhaust their retry
// budget — grounded on pkg/broker/nats/jetstream and pkg/broker/rabbitmq,
// with the retry-count bookkeeping pattern taken from the ancestor's
// ProcessCallbackRetriesUseCase.
package notify

import (
	"context"
	"encoding/json"

	"payment-gateway/internal/payment"
	"payment-gateway/pkg/broker/nats/jetstream"
)

const (
	OutboxSubject    = "webhooks.outbox"
	OutboxStream     = "WEBHOOKS"
	OutboxConsumer   = "webhook-delivery"
	EventTypeWebhook = "webhook.deliver"
)

// outboxPayload is what Enqueue publishes onto OutboxSubject; Delivery's
// consumer decodes it back out of the raw message body.
type outboxPayload struct {
	PaymentID       string                 `json:"payment_id"`
	MerchantKey     string                 `json:"merchant_key"`
	NotificationURL string                 `json:"notification_url"`
	Status          string                 `json:"status"`
	FromStatus      string                 `json:"from_status"`
	Body            map[string]interface{} `json:"body"`
}

// Outbox is the payment.Notifier implementation: Enqueue only publishes,
// actual delivery happens in the Delivery consumer running separately.
type Outbox struct {
	js *jetstream.JetStream
}

var _ payment.Notifier = (*Outbox)(nil)

func NewOutbox(js *jetstream.JetStream) *Outbox {
	return &Outbox{js: js}
}

func (o *Outbox) Enqueue(ctx context.Context, p payment.Payment, entry payment.HistoryEntry) error {
	if p.Intent.NotificationURL == "" {
		return nil
	}

	body := map[string]interface{}{
		"payment_id": p.PaymentID,
		"order_id":   p.Intent.OrderID,
		"status":     string(p.Status),
		"amount":     p.Intent.Amount,
		"currency":   p.Intent.Currency,
	}

	payload := outboxPayload{
		PaymentID:       p.PaymentID,
		MerchantKey:     p.Intent.MerchantKey,
		NotificationURL: p.Intent.NotificationURL,
		Status:          string(p.Status),
		FromStatus:      string(entry.FromStatus),
		Body:            body,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return o.js.Publish(ctx, OutboxSubject, data)
}
