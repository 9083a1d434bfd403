//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	gwerrors "payment-gateway/internal/errors"
	"payment-gateway/internal/payment"
	"payment-gateway/internal/payment/pgstore"
	"payment-gateway/test/fixtures"
)

func newStore(t *testing.T) (*pgstore.Store, *TestDB) {
	t.Helper()
	db := Setup(t)
	store, err := pgstore.Connect(context.Background(), getTestDSN())
	if err != nil {
		t.Fatalf("pgstore.Connect failed: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
		db.Cleanup()
	})
	return store, db
}

func TestPgStore_CreateAndGetByID(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()
	db.SeedMerchant("merchant-1", "secret-1")

	p := fixtures.ForCreate()
	p.PaymentID = "pay_create_0001"
	if err := store.CreateIfAbsent(ctx, p); err != nil {
		t.Fatalf("CreateIfAbsent failed: %v", err)
	}
	db.AssertExists("payments", p.PaymentID)

	got, err := store.GetByID(ctx, p.PaymentID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.PaymentID != p.PaymentID {
		t.Errorf("PaymentID mismatch: expected %s, got %s", p.PaymentID, got.PaymentID)
	}
	if got.Intent.OrderID != p.Intent.OrderID {
		t.Errorf("OrderID mismatch: expected %s, got %s", p.Intent.OrderID, got.Intent.OrderID)
	}
	if got.Status != payment.StatusInit {
		t.Errorf("expected status INIT, got %s", got.Status)
	}
}

func TestPgStore_CreateIfAbsent_DuplicateLiveOrder(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()
	db.SeedMerchant("merchant-1", "secret-1")

	first := fixtures.ForCreate()
	first.PaymentID = "pay_dup_0001"
	if err := store.CreateIfAbsent(ctx, first); err != nil {
		t.Fatalf("first CreateIfAbsent failed: %v", err)
	}

	second := fixtures.ForCreate()
	second.PaymentID = "pay_dup_0002"
	err := store.CreateIfAbsent(ctx, second)
	if err == nil {
		t.Fatal("expected duplicate order error, got nil")
	}
	if !errors.Is(err, &gwerrors.Error{Code: gwerrors.CodeDuplicateOrder}) {
		t.Errorf("expected CodeDuplicateOrder, got %v", err)
	}
}

func TestPgStore_GetByOrderID_ExcludesTerminalStatuses(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()
	db.SeedMerchant("merchant-1", "secret-1")

	p := fixtures.ForCreate()
	p.PaymentID = "pay_order_0001"
	if err := store.CreateIfAbsent(ctx, p); err != nil {
		t.Fatalf("CreateIfAbsent failed: %v", err)
	}

	_, found, err := store.GetByOrderID(ctx, p.Intent.MerchantKey, p.Intent.OrderID)
	if err != nil {
		t.Fatalf("GetByOrderID failed: %v", err)
	}
	if !found {
		t.Fatal("expected live payment to be found")
	}

	cancelled := p
	cancelled.Status = payment.StatusCancelled
	cancelled.UpdatedAt = time.Now()
	entry := payment.HistoryEntry{PaymentID: p.PaymentID, FromStatus: payment.StatusInit, ToStatus: payment.StatusCancelled, At: time.Now(), Actor: "merchant"}
	if err := store.UpdateConditional(ctx, cancelled, p.Version, entry); err != nil {
		t.Fatalf("UpdateConditional failed: %v", err)
	}

	_, found, err = store.GetByOrderID(ctx, p.Intent.MerchantKey, p.Intent.OrderID)
	if err != nil {
		t.Fatalf("GetByOrderID after cancel failed: %v", err)
	}
	if found {
		t.Error("expected no live payment after cancellation")
	}
}

func TestPgStore_UpdateConditional_VersionMismatch(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()
	db.SeedMerchant("merchant-1", "secret-1")

	p := fixtures.ForCreate()
	p.PaymentID = "pay_cas_0001"
	if err := store.CreateIfAbsent(ctx, p); err != nil {
		t.Fatalf("CreateIfAbsent failed: %v", err)
	}

	updated := p
	updated.Status = payment.StatusNew
	entry := payment.HistoryEntry{PaymentID: p.PaymentID, FromStatus: payment.StatusInit, ToStatus: payment.StatusNew, At: time.Now(), Actor: "system"}

	const staleVersion = 99
	err := store.UpdateConditional(ctx, updated, staleVersion, entry)
	if err == nil {
		t.Fatal("expected concurrent modification error, got nil")
	}
	if !errors.Is(err, &gwerrors.Error{Code: gwerrors.CodeConcurrentModified}) {
		t.Errorf("expected CodeConcurrentModified, got %v", err)
	}
}

func TestPgStore_UpdateConditional_AppendsHistory(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()
	db.SeedMerchant("merchant-1", "secret-1")

	p := fixtures.ForCreate()
	p.PaymentID = "pay_history_0001"
	if err := store.CreateIfAbsent(ctx, p); err != nil {
		t.Fatalf("CreateIfAbsent failed: %v", err)
	}

	updated := p
	updated.Status = payment.StatusNew
	entry := payment.HistoryEntry{PaymentID: p.PaymentID, FromStatus: payment.StatusInit, ToStatus: payment.StatusNew, At: time.Now(), Actor: "system"}
	if err := store.UpdateConditional(ctx, updated, p.Version, entry); err != nil {
		t.Fatalf("UpdateConditional failed: %v", err)
	}

	history, err := store.History(ctx, p.PaymentID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
	if history[0].ToStatus != payment.StatusNew {
		t.Errorf("expected ToStatus NEW, got %s", history[0].ToStatus)
	}

	got, err := store.GetByID(ctx, p.PaymentID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Version != p.Version+1 {
		t.Errorf("expected version %d, got %d", p.Version+1, got.Version)
	}
}

func TestPgStore_ListByStatus(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()
	db.SeedMerchant("merchant-1", "secret-1")

	for i := 0; i < 3; i++ {
		p := fixtures.ForCreate()
		p.PaymentID = fmt.Sprintf("pay_list_%04d", i+1)
		p.Intent.OrderID = fmt.Sprintf("%s-%d", p.Intent.OrderID, i+1)
		if err := store.CreateIfAbsent(ctx, p); err != nil {
			t.Fatalf("CreateIfAbsent failed: %v", err)
		}
	}

	found, err := store.ListByStatus(ctx, payment.StatusInit, 10)
	if err != nil {
		t.Fatalf("ListByStatus failed: %v", err)
	}
	if len(found) != 3 {
		t.Errorf("expected 3 payments in INIT, got %d", len(found))
	}
}

func TestPgStore_FindExpiredSince(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()
	db.SeedMerchant("merchant-1", "secret-1")

	expired := fixtures.ForCreate()
	expired.PaymentID = "pay_expired_0001"
	expired.Status = payment.StatusNew
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	if err := store.CreateIfAbsent(ctx, expired); err != nil {
		t.Fatalf("CreateIfAbsent failed: %v", err)
	}

	live := fixtures.ForCreate()
	live.PaymentID = "pay_live_0001"
	live.Intent.OrderID = "order-live"
	live.ExpiresAt = time.Now().Add(time.Hour)
	if err := store.CreateIfAbsent(ctx, live); err != nil {
		t.Fatalf("CreateIfAbsent failed: %v", err)
	}

	due, err := store.FindExpiredSince(ctx, time.Now(), 10)
	if err != nil {
		t.Fatalf("FindExpiredSince failed: %v", err)
	}
	if len(due) != 1 || due[0].PaymentID != expired.PaymentID {
		t.Errorf("expected only %s to be expired, got %v", expired.PaymentID, due)
	}
}
