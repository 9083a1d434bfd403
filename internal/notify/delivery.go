package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"payment-gateway/internal/logging"
	"payment-gateway/internal/merchant"
	"payment-gateway/internal/metrics"
	"payment-gateway/internal/signing"
	"payment-gateway/pkg/broker/nats/jetstream"
	"payment-gateway/pkg/broker/rabbitmq"
	"payment-gateway/pkg/constants"
)

const (
	maxDeliveryAttempts = 8
	backoffBase         = 1 * time.Second
	backoffCap          = 10 * time.Minute
	deadLetterQueue     = "webhooks.dead-letter"
)

// Delivery consumes OutboxSubject events and POSTs the signed webhook body,
// retrying with exponential backoff before routing exhausted deliveries to
// a RabbitMQ dead-letter queue for operator triage.
type Delivery struct {
	js        *jetstream.JetStream
	http      *resty.Client
	signer    *signing.Signer
	merchants merchant.Source
	dlq       *rabbitmq.RabbitMQ
	metrics   *metrics.Registry
}

func NewDelivery(js *jetstream.JetStream, signer *signing.Signer, merchants merchant.Source, dlq *rabbitmq.RabbitMQ, metricsReg *metrics.Registry) *Delivery {
	return &Delivery{
		js:        js,
		http:      resty.New().SetTimeout(constants.WebhookHTTPTimeout),
		signer:    signer,
		merchants: merchants,
		dlq:       dlq,
		metrics:   metricsReg,
	}
}

func (d *Delivery) record(outcome metrics.WebhookOutcome) {
	if d.metrics != nil {
		d.metrics.ObserveWebhookDelivery(outcome)
	}
}

// Run creates the durable consumer on streamName and blocks consuming
// webhook outbox messages until ctx is cancelled.
func (d *Delivery) Run(ctx context.Context, streamName string) error {
	consumer, err := d.js.CreateConsumer(ctx, streamName, OutboxConsumer, []string{OutboxSubject})
	if err != nil {
		return fmt.Errorf("notify: create consumer: %w", err)
	}
	return d.js.ConsumeMessages(ctx, consumer, d.deliver)
}

func (d *Delivery) deliver(msg natsjs.Msg) error {
	ctx := context.Background()
	log := logging.FromContext(ctx)

	var payload outboxPayload
	if err := json.Unmarshal(msg.Data(), &payload); err != nil {
		log.Error("webhook delivery: malformed outbox message", zap.Error(err))
		return nil
	}

	m, ok, err := d.merchants.GetByKey(ctx, payload.MerchantKey)
	if err != nil || !ok {
		log.Error("webhook delivery: merchant lookup failed", zap.String("merchant_key", payload.MerchantKey), zap.Error(err))
		return nil
	}

	params := flattenForSigning(payload.Body)
	token := d.signer.Sign(params, m.Secret)
	payload.Body["token"] = token

	for attempt := 0; attempt < maxDeliveryAttempts; attempt++ {
		resp, reqErr := d.http.R().SetContext(ctx).SetBody(payload.Body).Post(payload.NotificationURL)
		if reqErr == nil && !resp.IsError() {
			log.Info("webhook delivered", zap.String("payment_id", payload.PaymentID), zap.Int("attempt", attempt))
			d.record(metrics.WebhookDelivered)
			return nil
		}

		wait := backoff(attempt)
		log.Warn("webhook delivery attempt failed",
			zap.String("payment_id", payload.PaymentID), zap.Int("attempt", attempt), zap.Duration("retry_in", wait), zap.Error(reqErr))
		d.record(metrics.WebhookRetried)
		if attempt < maxDeliveryAttempts-1 {
			time.Sleep(wait)
		}
	}

	log.Error("webhook delivery exhausted, routing to dead-letter queue", zap.String("payment_id", payload.PaymentID))
	d.record(metrics.WebhookDeadLettered)
	d.deadLetter(payload)
	return nil
}

func (d *Delivery) deadLetter(payload outboxPayload) {
	if d.dlq == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := d.dlq.Publish(deadLetterQueue, body); err != nil {
		logging.GetLogger().Error("dead-letter publish failed", zap.Error(err))
	}
}

func backoff(attempt int) time.Duration {
	d := backoffBase * time.Duration(1<<uint(attempt))
	if d > backoffCap {
		return backoffCap
	}
	return d
}

func flattenForSigning(body map[string]interface{}) map[string]string {
	out := make(map[string]string, len(body))
	for k, v := range body {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = fmt.Sprintf("%v", val)
		case bool:
			if val {
				out[k] = "true"
			} else {
				out[k] = "false"
			}
		}
	}
	return out
}
