// Package sweeper implements the background expiry sweep described by
// spec §4.6, grounded on the ancestor's ExpirePaymentsUseCase
// (internal/payments/service/payment/payment_callbacks.go): scan
// non-terminal payments past their deadline and transition each to
// DEADLINE_EXPIRED where that edge exists.
package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"

	gwerrors "payment-gateway/internal/errors"
	"payment-gateway/internal/logging"
	"payment-gateway/internal/payment"
	"payment-gateway/pkg/constants"
)

const DefaultInterval = 30 * time.Second

// Sweeper periodically reconciles payments whose deadline has passed.
type Sweeper struct {
	store    payment.Store
	sm       *payment.StateMachine
	notifier payment.Notifier
	clock    payment.Clock
	interval time.Duration
}

func New(store payment.Store, notifier payment.Notifier, clock payment.Clock, interval time.Duration) *Sweeper {
	if clock == nil {
		clock = payment.SystemClock{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{
		store:    store,
		sm:       payment.NewStateMachine(store, clock),
		notifier: notifier,
		clock:    clock,
		interval: interval,
	}
}

// Run blocks, ticking every s.interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs a single sweep pass, returning the number of payments expired.
func (s *Sweeper) Tick(ctx context.Context) int {
	log := logging.FromContext(ctx)
	now := s.clock.Now()

	expired, err := s.store.FindExpiredSince(ctx, now, constants.DefaultExpiryBatchSize)
	if err != nil {
		log.Error("sweeper: find expired failed", zap.Error(err))
		return 0
	}

	count := 0
	for _, p := range expired {
		if !payment.CanTransition(p.Status, payment.StatusDeadlineExpired) {
			continue
		}
		next, err := s.sm.Transition(ctx, p.PaymentID, payment.StatusDeadlineExpired, payment.TransitionOpts{Actor: "sweeper"})
		if err != nil {
			if gwErr, ok := err.(*gwerrors.Error); ok && gwErr.Code == gwerrors.CodeConcurrentModified {
				continue // another writer raced us to a terminal state; not our concern
			}
			log.Warn("sweeper: transition failed", zap.String("payment_id", p.PaymentID), zap.Error(err))
			continue
		}
		count++
		if s.notifier != nil && next.Intent.NotificationURL != "" {
			if err := s.notifier.Enqueue(ctx, next, payment.HistoryEntry{
				PaymentID: p.PaymentID, FromStatus: p.Status, ToStatus: payment.StatusDeadlineExpired, At: now,
			}); err != nil {
				log.Warn("sweeper: webhook enqueue failed", zap.String("payment_id", p.PaymentID), zap.Error(err))
			}
		}
	}

	if count > 0 {
		log.Info("sweeper: expired payments", zap.Int("count", count))
	}
	return count
}
