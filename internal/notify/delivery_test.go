package notify

import "testing"

func TestBackoff_GrowsExponentially(t *testing.T) {
	if got := backoff(0); got != backoffBase {
		t.Errorf("expected attempt 0 to wait %v, got %v", backoffBase, got)
	}
	if got := backoff(1); got != 2*backoffBase {
		t.Errorf("expected attempt 1 to wait %v, got %v", 2*backoffBase, got)
	}
	if got := backoff(2); got != 4*backoffBase {
		t.Errorf("expected attempt 2 to wait %v, got %v", 4*backoffBase, got)
	}
}

func TestBackoff_CapsAtBackoffCap(t *testing.T) {
	if got := backoff(30); got != backoffCap {
		t.Errorf("expected a large attempt count to cap at %v, got %v", backoffCap, got)
	}
}

func TestFlattenForSigning_KeepsScalarTypes(t *testing.T) {
	body := map[string]interface{}{
		"status":   "CONFIRMED",
		"amount":   float64(10000),
		"active":   true,
		"inactive": false,
	}
	got := flattenForSigning(body)

	if got["status"] != "CONFIRMED" {
		t.Errorf("expected status to pass through unchanged, got %q", got["status"])
	}
	if got["amount"] != "10000" {
		t.Errorf("expected amount to stringify, got %q", got["amount"])
	}
	if got["active"] != "true" {
		t.Errorf("expected true to become %q, got %q", "true", got["active"])
	}
	if got["inactive"] != "false" {
		t.Errorf("expected false to become %q, got %q", "false", got["inactive"])
	}
}

func TestFlattenForSigning_DropsNonScalarValues(t *testing.T) {
	body := map[string]interface{}{
		"meta":  map[string]interface{}{"nested": true},
		"items": []string{"a", "b"},
		"kept":  "value",
	}
	got := flattenForSigning(body)

	if len(got) != 1 {
		t.Fatalf("expected only scalar fields to survive, got %v", got)
	}
	if got["kept"] != "value" {
		t.Errorf("expected kept field to survive, got %v", got)
	}
}

func TestFlattenForSigning_EmptyBody(t *testing.T) {
	got := flattenForSigning(map[string]interface{}{})
	if len(got) != 0 {
		t.Errorf("expected an empty body to flatten to nothing, got %v", got)
	}
}
