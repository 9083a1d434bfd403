// Package paymentmem is an in-memory payment.Store used by unit tests and
// local development, grounded on the ancestor's
// internal/payments/repository/memory/payment.go RWMutex+map pattern.
package paymentmem

import (
	"context"
	"sort"
	"sync"
	"time"

	gwerrors "payment-gateway/internal/errors"
	"payment-gateway/internal/payment"
)

type orderKey struct {
	merchantKey string
	orderID     string
}

// Store is a goroutine-safe in-memory implementation of payment.Store.
type Store struct {
	mu       sync.RWMutex
	payments map[string]payment.Payment
	history  map[string][]payment.HistoryEntry
	liveIdx  map[orderKey]string
}

var _ payment.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		payments: make(map[string]payment.Payment),
		history:  make(map[string][]payment.HistoryEntry),
		liveIdx:  make(map[orderKey]string),
	}
}

func (s *Store) GetByID(_ context.Context, paymentID string) (payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[paymentID]
	if !ok {
		return payment.Payment{}, gwerrors.NotFound("payment", paymentID)
	}
	return p, nil
}

func (s *Store) GetByOrderID(_ context.Context, merchantKey, orderID string) (payment.Payment, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.liveIdx[orderKey{merchantKey, orderID}]
	if !ok {
		return payment.Payment{}, false, nil
	}
	return s.payments[id], true, nil
}

func (s *Store) CreateIfAbsent(_ context.Context, p payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := orderKey{p.Intent.MerchantKey, p.Intent.OrderID}
	if existingID, ok := s.liveIdx[key]; ok {
		return gwerrors.DuplicateOrder(p.Intent.MerchantKey, p.Intent.OrderID).WithDetail("payment_id", existingID)
	}

	s.payments[p.PaymentID] = p
	s.liveIdx[key] = p.PaymentID
	return nil
}

func (s *Store) UpdateConditional(_ context.Context, p payment.Payment, expectedVersion int64, entry payment.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.payments[p.PaymentID]
	if !ok {
		return gwerrors.NotFound("payment", p.PaymentID)
	}
	if current.Version != expectedVersion {
		return gwerrors.ConcurrentModification(p.PaymentID)
	}

	p.Version = expectedVersion + 1
	s.payments[p.PaymentID] = p

	key := orderKey{p.Intent.MerchantKey, p.Intent.OrderID}
	if !p.IsLive() {
		delete(s.liveIdx, key)
	}

	entry.ID = int64(len(s.history[p.PaymentID]) + 1)
	s.history[p.PaymentID] = append(s.history[p.PaymentID], entry)
	return nil
}

func (s *Store) AppendHistory(_ context.Context, entry payment.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = int64(len(s.history[entry.PaymentID]) + 1)
	s.history[entry.PaymentID] = append(s.history[entry.PaymentID], entry)
	return nil
}

func (s *Store) History(_ context.Context, paymentID string) ([]payment.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]payment.HistoryEntry, len(s.history[paymentID]))
	copy(out, s.history[paymentID])
	return out, nil
}

func (s *Store) ListByOrderID(_ context.Context, merchantKey, orderID string) ([]payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []payment.Payment
	for _, p := range s.payments {
		if p.Intent.MerchantKey == merchantKey && p.Intent.OrderID == orderID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) FindExpiredSince(_ context.Context, cutoff time.Time, limit int) ([]payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []payment.Payment
	for _, p := range s.payments {
		if !p.Status.IsTerminal() && p.ExpiresAt.Before(cutoff) {
			out = append(out, p)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (s *Store) ListByStatus(_ context.Context, status payment.Status, limit int) ([]payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []payment.Payment
	for _, p := range s.payments {
		if p.Status == status {
			out = append(out, p)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}
