package payment

import (
	"context"
	"sync"
	"testing"
	"time"

	gwerrors "payment-gateway/internal/errors"
	"payment-gateway/internal/payment/paymentmem"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) ObserveTransition(from, to Status, d time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, string(from)+"->"+string(to))
}

func newTestPayment(store *paymentmem.Store, t *testing.T) Payment {
	t.Helper()
	now := time.Now()
	p := NewPayment("pay_test_0001", Intent{MerchantKey: "m1", OrderID: "o1", Amount: 1000, Currency: "KZT"}, now)
	if err := store.CreateIfAbsent(context.Background(), p); err != nil {
		t.Fatalf("seed CreateIfAbsent failed: %v", err)
	}
	return p
}

func TestStateMachine_Transition_Success(t *testing.T) {
	store := paymentmem.New()
	newTestPayment(store, t)

	sm := NewStateMachine(store, fixedClock{time.Now()})
	got, err := sm.Transition(context.Background(), "pay_test_0001", StatusNew, TransitionOpts{Actor: "system"})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if got.Status != StatusNew {
		t.Errorf("expected status NEW, got %s", got.Status)
	}
	if got.Version != 1 {
		t.Errorf("expected version 1, got %d", got.Version)
	}

	history, err := store.History(context.Background(), "pay_test_0001")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 || history[0].FromStatus != StatusInit || history[0].ToStatus != StatusNew {
		t.Errorf("unexpected history: %v", history)
	}
}

func TestStateMachine_Transition_InvalidEdgeRejected(t *testing.T) {
	store := paymentmem.New()
	newTestPayment(store, t)

	sm := NewStateMachine(store, SystemClock{})
	_, err := sm.Transition(context.Background(), "pay_test_0001", StatusConfirmed, TransitionOpts{})
	if err == nil {
		t.Fatal("expected invalid transition error, got nil")
	}
	gwErr, ok := err.(*gwerrors.Error)
	if !ok || gwErr.Code != gwerrors.CodeInvalidTransition {
		t.Errorf("expected CodeInvalidTransition, got %v", err)
	}
}

func TestStateMachine_Transition_ClearsBankRefOnNonRetainingStatus(t *testing.T) {
	store := paymentmem.New()
	p := newTestPayment(store, t)
	p.BankRef = "should-be-cleared"
	p.Status = StatusAuthorizing
	if err := store.UpdateConditional(context.Background(), p, 0, HistoryEntry{PaymentID: p.PaymentID, FromStatus: StatusInit, ToStatus: StatusAuthorizing}); err != nil {
		t.Fatalf("seed UpdateConditional failed: %v", err)
	}

	sm := NewStateMachine(store, SystemClock{})
	got, err := sm.Transition(context.Background(), "pay_test_0001", StatusRejected, TransitionOpts{ErrorCode: "FRAUD"})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if got.BankRef != "" {
		t.Errorf("expected BankRef cleared on REJECTED, got %q", got.BankRef)
	}
}

func TestStateMachine_Transition_RetainsBankRefOnAuthorized(t *testing.T) {
	store := paymentmem.New()
	p := newTestPayment(store, t)
	p.BankRef = "bank-ref-123"
	p.Status = StatusAuthorizing
	if err := store.UpdateConditional(context.Background(), p, 0, HistoryEntry{PaymentID: p.PaymentID, FromStatus: StatusInit, ToStatus: StatusAuthorizing}); err != nil {
		t.Fatalf("seed UpdateConditional failed: %v", err)
	}

	sm := NewStateMachine(store, SystemClock{})
	got, err := sm.Transition(context.Background(), "pay_test_0001", StatusAuthorized, TransitionOpts{})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if got.BankRef != "bank-ref-123" {
		t.Errorf("expected BankRef retained on AUTHORIZED, got %q", got.BankRef)
	}
}

func TestStateMachine_Transition_ExtendsDeadlineOnFormShow(t *testing.T) {
	store := paymentmem.New()
	p := newTestPayment(store, t)
	p.ExpiresAt = time.Now().Add(time.Minute)
	p.Status = StatusNew
	if err := store.UpdateConditional(context.Background(), p, 0, HistoryEntry{PaymentID: p.PaymentID, FromStatus: StatusInit, ToStatus: StatusNew}); err != nil {
		t.Fatalf("seed UpdateConditional failed: %v", err)
	}

	before, _ := store.GetByID(context.Background(), p.PaymentID)

	sm := NewStateMachine(store, SystemClock{})
	got, err := sm.Transition(context.Background(), "pay_test_0001", StatusFormShowed, TransitionOpts{})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if !got.ExpiresAt.After(before.ExpiresAt) {
		t.Errorf("expected ExpiresAt extended past %v, got %v", before.ExpiresAt, got.ExpiresAt)
	}
}

func TestStateMachine_Transition_NotFoundPropagates(t *testing.T) {
	store := paymentmem.New()
	sm := NewStateMachine(store, SystemClock{})
	_, err := sm.Transition(context.Background(), "does-not-exist", StatusNew, TransitionOpts{})
	if err == nil {
		t.Fatal("expected not found error, got nil")
	}
}

func TestStateMachine_WithObserver_RecordsSuccessAndFailure(t *testing.T) {
	store := paymentmem.New()
	newTestPayment(store, t)
	obs := &recordingObserver{}

	sm := NewStateMachine(store, SystemClock{}).WithObserver(obs)

	if _, err := sm.Transition(context.Background(), "pay_test_0001", StatusNew, TransitionOpts{}); err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if _, err := sm.Transition(context.Background(), "pay_test_0001", StatusConfirmed, TransitionOpts{}); err == nil {
		t.Fatal("expected invalid transition error")
	}

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if len(obs.calls) != 2 {
		t.Fatalf("expected 2 observed transitions, got %d: %v", len(obs.calls), obs.calls)
	}
	if obs.calls[0] != "INIT->NEW" {
		t.Errorf("expected first call INIT->NEW, got %s", obs.calls[0])
	}
}

func TestStateMachine_NilClockDefaultsToSystemClock(t *testing.T) {
	sm := NewStateMachine(paymentmem.New(), nil)
	if sm.clock == nil {
		t.Fatal("expected NewStateMachine to default a nil clock to SystemClock")
	}
}
