package payment

import (
	"context"
	"time"

	"payment-gateway/pkg/timeutil"
)

// Store is the persistence contract payments, transitions, and status
// history must satisfy. Implementations live in payment/paymentmem
// (in-memory, for tests) and payment/pgstore (Postgres, CAS on Version).
type Store interface {
	// GetByID returns the current row for id, or gwerrors.NotFound.
	GetByID(ctx context.Context, paymentID string) (Payment, error)

	// GetByOrderID returns the live payment for (merchantKey, orderID), if any.
	GetByOrderID(ctx context.Context, merchantKey, orderID string) (Payment, bool, error)

	// CreateIfAbsent inserts p atomically, enforcing the (merchant_key,
	// order_id) uniqueness invariant. Returns gwerrors.CodeDuplicateOrder
	// (wrapping the live payment id) if a live payment already exists.
	CreateIfAbsent(ctx context.Context, p Payment) error

	// UpdateConditional performs a compare-and-swap on expectedVersion; it
	// also appends entry in the same unit of work. Returns
	// gwerrors.CodeConcurrentModified on a version mismatch.
	UpdateConditional(ctx context.Context, p Payment, expectedVersion int64, entry HistoryEntry) error

	// AppendHistory appends entry outside of a status transition (e.g. a
	// rollback annotation).
	AppendHistory(ctx context.Context, entry HistoryEntry) error

	// History returns the full transition log for paymentID, oldest first.
	History(ctx context.Context, paymentID string) ([]HistoryEntry, error)

	// ListByOrderID returns every payment (live or historical) for the pair,
	// ordered by CreatedAt ascending, for CheckOrder.
	ListByOrderID(ctx context.Context, merchantKey, orderID string) ([]Payment, error)

	// FindExpiredSince returns non-terminal payments whose ExpiresAt is
	// before cutoff, for the expiry sweeper.
	FindExpiredSince(ctx context.Context, cutoff time.Time, limit int) ([]Payment, error)

	// ListByStatus returns up to limit payments currently in status.
	ListByStatus(ctx context.Context, status Status, limit int) ([]Payment, error)
}

// IdGen generates the server-side payment_id: 20 characters, sortable by
// creation order.
type IdGen interface {
	NewPaymentID() string
}

// Clock is the time source threaded through the service so tests can pin it.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, backed by timeutil.Now so every
// timestamp a payment ever carries (Postgres row, Mongo/ClickHouse mirror,
// webhook body) is UTC-normalized at the source.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return timeutil.Now() }
