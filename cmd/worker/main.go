// Command worker runs the payment gateway's background reconciliation: the
// deadline expiry sweep (internal/sweeper) and the webhook outbox delivery
// consumer (internal/notify.Delivery). It shares internal/app's boot
// sequence with cmd/api but only starts these two loops, never the HTTP
// server, so the two binaries scale independently.
package main

import (
	"log"

	"payment-gateway/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		log.Fatalf("failed to create application: %v", err)
	}

	if err := application.RunWorker(); err != nil {
		log.Fatalf("worker error: %v", err)
	}
}
