package merchant

import (
	"context"
	"testing"
	"time"
)

func TestDirectory_Lookup_FallsBackToSource(t *testing.T) {
	source := NewMemorySource(Merchant{MerchantKey: "m1", Secret: "s1", Active: true})
	dir := NewDirectory(nil, source, time.Minute)

	m, ok, err := dir.Lookup(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if !ok {
		t.Fatal("expected m1 to resolve via the source fallback")
	}
	if m.Secret != "s1" {
		t.Errorf("expected secret s1, got %s", m.Secret)
	}
}

func TestDirectory_Lookup_UnknownMerchant(t *testing.T) {
	dir := NewDirectory(nil, NewMemorySource(), time.Minute)
	_, ok, err := dir.Lookup(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if ok {
		t.Error("expected an unknown merchant not to resolve")
	}
}

func TestDirectory_Lookup_CachesLocally(t *testing.T) {
	source := NewMemorySource(Merchant{MerchantKey: "m1", Active: true})
	dir := NewDirectory(nil, source, time.Minute)

	if _, _, err := dir.Lookup(context.Background(), "m1"); err != nil {
		t.Fatalf("first Lookup failed: %v", err)
	}

	if _, ok := dir.local.Get("m1"); !ok {
		t.Error("expected a source hit to populate the local snapshot")
	}
}

func TestDirectory_IsActive(t *testing.T) {
	source := NewMemorySource(
		Merchant{MerchantKey: "active", Active: true},
		Merchant{MerchantKey: "inactive", Active: false},
	)
	dir := NewDirectory(nil, source, time.Minute)

	if !dir.IsActive(context.Background(), "active") {
		t.Error("expected active merchant to report active")
	}
	if dir.IsActive(context.Background(), "inactive") {
		t.Error("expected inactive merchant to report inactive")
	}
	if dir.IsActive(context.Background(), "unknown") {
		t.Error("expected an unknown merchant to report inactive")
	}
}

func TestDirectory_ValidateCredentials(t *testing.T) {
	source := NewMemorySource(Merchant{MerchantKey: "m1", Secret: "correct", Active: true})
	dir := NewDirectory(nil, source, time.Minute)

	ok, err := dir.ValidateCredentials(context.Background(), "m1", "correct")
	if err != nil {
		t.Fatalf("ValidateCredentials failed: %v", err)
	}
	if !ok {
		t.Error("expected matching secret to validate")
	}

	ok, err = dir.ValidateCredentials(context.Background(), "m1", "wrong")
	if err != nil {
		t.Fatalf("ValidateCredentials failed: %v", err)
	}
	if ok {
		t.Error("expected mismatched secret to fail validation")
	}
}

func TestDirectory_Refresh_ReloadsFromSource(t *testing.T) {
	source := NewMemorySource(Merchant{MerchantKey: "m1", Active: true})
	dir := NewDirectory(nil, source, time.Minute)

	if _, _, err := dir.Lookup(context.Background(), "m1"); err != nil {
		t.Fatalf("initial Lookup failed: %v", err)
	}

	if err := dir.Refresh(context.Background(), "m1"); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if _, ok := dir.local.Get("m1"); !ok {
		t.Error("expected Refresh to repopulate the local snapshot")
	}
}
