// Package mirrorstore decorates the canonical Postgres payment.Store with
// best-effort async mirrors into MongoDB (intentstore, free-form intent
// documents) and ClickHouse (auditstore, append-only status history), so a
// slow or unavailable mirror never blocks the payment lifecycle's critical
// path. Grounded on the ancestor's layering of a primary store plus
// secondary read-model projections behind the same Store interface.
package mirrorstore

import (
	"context"

	"go.uber.org/zap"

	"payment-gateway/internal/logging"
	"payment-gateway/internal/payment"
	"payment-gateway/internal/payment/auditstore"
	"payment-gateway/internal/payment/intentstore"
)

// Store wraps a canonical payment.Store, mirroring writes into intentstore
// and auditstore on a best-effort basis. Either mirror may be nil, in which
// case that mirror is simply skipped.
type Store struct {
	payment.Store
	intents *intentstore.Store
	audit   *auditstore.Store
}

var _ payment.Store = (*Store)(nil)

// New wraps primary with the given mirrors.
func New(primary payment.Store, intents *intentstore.Store, audit *auditstore.Store) *Store {
	return &Store{Store: primary, intents: intents, audit: audit}
}

// CreateIfAbsent writes through to the canonical store, then mirrors the
// intent document asynchronously.
func (s *Store) CreateIfAbsent(ctx context.Context, p payment.Payment) error {
	if err := s.Store.CreateIfAbsent(ctx, p); err != nil {
		return err
	}
	s.mirrorIntent(p)
	return nil
}

// UpdateConditional writes through to the canonical store, then mirrors the
// appended history entry asynchronously.
func (s *Store) UpdateConditional(ctx context.Context, p payment.Payment, expectedVersion int64, entry payment.HistoryEntry) error {
	if err := s.Store.UpdateConditional(ctx, p, expectedVersion, entry); err != nil {
		return err
	}
	s.mirrorHistory(entry)
	return nil
}

// AppendHistory writes through to the canonical store, then mirrors entry.
func (s *Store) AppendHistory(ctx context.Context, entry payment.HistoryEntry) error {
	if err := s.Store.AppendHistory(ctx, entry); err != nil {
		return err
	}
	s.mirrorHistory(entry)
	return nil
}

func (s *Store) mirrorIntent(p payment.Payment) {
	if s.intents == nil {
		return
	}
	go func() {
		ctx := context.Background()
		if err := s.intents.Upsert(ctx, p.PaymentID, p.Intent); err != nil {
			logging.GetLogger().Warn("intent mirror failed",
				zap.String("payment_id", p.PaymentID), zap.Error(err))
		}
	}()
}

func (s *Store) mirrorHistory(entry payment.HistoryEntry) {
	if s.audit == nil {
		return
	}
	go func() {
		ctx := context.Background()
		if err := s.audit.Append(ctx, entry.PaymentID, entry); err != nil {
			logging.GetLogger().Warn("audit mirror failed",
				zap.String("payment_id", entry.PaymentID), zap.Error(err))
		}
	}()
}
