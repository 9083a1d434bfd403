package main

import (
	"log"

	"payment-gateway/internal/app"
)

// @title Payment Gateway API
// @version 1.0
// @description Merchant-facing HTTP API for the card payment lifecycle: init, 3-D Secure, confirm, cancel, check-order.
// @termsOfService http://swagger.io/terms/

// @contact.name Platform Team

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

/*
Application entry point for the payment gateway's HTTP API.

Boot sequence (internal/app.New):
 1. Logger (zap, apmzap core)
 2. Config (.env + process environment, validated)
 3. Tracing (OTLP exporter, no-op when disabled) and metrics registry
 4. Postgres payment store, optionally wrapped with Mongo/ClickHouse mirrors
 5. Merchant directory (Redis-backed, Postgres source of truth)
 6. Bank client, JetStream outbox, RabbitMQ dead-letter queue
 7. payment.Service and the chi router

Required environment variables: POSTGRES_DSN, REDIS_ADDR, NATS_URL,
RABBITMQ_URL, BANK_BASEURL. See internal/config for the full set and
defaults.

Background reconciliation (expiry sweep, webhook delivery) runs in the
separate cmd/worker binary, not here, so the two can scale independently.
*/
func main() {
	application, err := app.New()
	if err != nil {
		log.Fatalf("failed to create application: %v", err)
	}

	if err := application.RunAPI(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
