package payment

import (
	"context"
	"math/rand"
	"time"

	gwerrors "payment-gateway/internal/errors"
)

const (
	maxTransitionRetries = 3
	retryJitter          = 5 * time.Millisecond
)

// TransitionObserver is notified after every attempted transition, successful
// or not, along with how long the attempt took. Bound to a prometheus-backed
// adapter in internal/metrics; nil is a valid StateMachine configuration and
// simply means nothing gets recorded.
type TransitionObserver interface {
	ObserveTransition(from, to Status, d time.Duration, err error)
}

// StateMachine atomically advances a payment's status, applying the side
// effects spec'd in §4.3 and persisting the new row plus one StatusHistory
// entry through a single Store.UpdateConditional call.
type StateMachine struct {
	store    Store
	clock    Clock
	observer TransitionObserver
}

func NewStateMachine(store Store, clock Clock) *StateMachine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &StateMachine{store: store, clock: clock}
}

// WithObserver attaches a TransitionObserver, returning sm for chaining.
func (sm *StateMachine) WithObserver(o TransitionObserver) *StateMachine {
	sm.observer = o
	return sm
}

// TransitionOpts carries the optional annotations a caller can attach to a
// single transition.
type TransitionOpts struct {
	ErrorCode string
	Message   string
	Actor     string
}

// Transition reads paymentID, verifies CanTransition(current, to), applies
// side effects, and persists under optimistic concurrency control, retrying
// up to maxTransitionRetries times on a lost CAS race before surfacing
// CONCURRENT_MODIFICATION to the caller.
func (sm *StateMachine) Transition(ctx context.Context, paymentID string, to Status, opts TransitionOpts) (Payment, error) {
	start := time.Now()
	var last error
	var lastFrom Status
	for attempt := 0; attempt <= maxTransitionRetries; attempt++ {
		p, err := sm.store.GetByID(ctx, paymentID)
		if err != nil {
			return Payment{}, err
		}

		if !CanTransition(p.Status, to) {
			err := gwerrors.InvalidTransition(string(p.Status), string(to))
			sm.notify(p.Status, to, time.Since(start), err)
			return Payment{}, err
		}
		lastFrom = p.Status

		now := sm.clock.Now()
		next := p
		next.Status = to
		next.UpdatedAt = now

		if to == StatusAuthorizing {
			next.AttemptCount = p.AttemptCount + 1
		}
		if to == StatusNew || to == StatusFormShowed {
			extended := now.Add(FormDeadlineExtend)
			if extended.After(next.ExpiresAt) {
				next.ExpiresAt = extended
			}
		}
		if !bankRefRetained[to] {
			next.BankRef = ""
		}
		if opts.ErrorCode != "" {
			next.LastErrorCode = opts.ErrorCode
			next.LastErrorMessage = opts.Message
		}

		entry := HistoryEntry{
			PaymentID:  paymentID,
			FromStatus: p.Status,
			ToStatus:   to,
			At:         now,
			Actor:      opts.Actor,
			ErrorCode:  opts.ErrorCode,
			Message:    opts.Message,
		}

		err = sm.store.UpdateConditional(ctx, next, p.Version, entry)
		if err == nil {
			next.Version = p.Version + 1
			sm.notify(p.Status, to, time.Since(start), nil)
			return next, nil
		}

		gwErr, ok := err.(*gwerrors.Error)
		if !ok || gwErr.Code != gwerrors.CodeConcurrentModified {
			sm.notify(p.Status, to, time.Since(start), err)
			return Payment{}, err
		}
		last = err

		time.Sleep(time.Duration(rand.Int63n(int64(retryJitter))))
	}
	sm.notify(lastFrom, to, time.Since(start), last)
	return Payment{}, last
}

func (sm *StateMachine) notify(from, to Status, d time.Duration, err error) {
	if sm.observer != nil {
		sm.observer.ObserveTransition(from, to, d, err)
	}
}
