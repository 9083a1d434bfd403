package helpers

import (
	"time"

	"payment-gateway/internal/payment"
)

// Common test IDs
const (
	TestMerchantKey = "test-merchant-123"
	TestPaymentID   = "TEST0000000000000001"
	TestOrderID     = "test-order-123"
)

// ValidPaymentStatuses returns CONFIRMED plus five terminal statuses a
// payment can settle in; PARTIAL_REVERSED and PARTIAL_REFUNDED are not listed.
func ValidPaymentStatuses() []payment.Status {
	return []payment.Status{
		payment.StatusConfirmed,
		payment.StatusCancelled,
		payment.StatusDeadlineExpired,
		payment.StatusRejected,
		payment.StatusReversed,
		payment.StatusRefunded,
	}
}

// ValidCurrencies returns the currencies test merchants are seeded to accept.
func ValidCurrencies() []string {
	return []string{"KZT", "USD", "EUR", "RUB"}
}

// FutureTime returns a time in the future
func FutureTime(days int) time.Time {
	return time.Now().Add(time.Duration(days) * 24 * time.Hour)
}

// PastTime returns a time in the past
func PastTime(days int) time.Time {
	return time.Now().Add(-time.Duration(days) * 24 * time.Hour)
}

// TestAmount returns a standard test payment amount, in minor units.
func TestAmount() int64 {
	return 10000 // 100.00
}

// StringPtr returns a pointer to a string
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to an int
func IntPtr(i int) *int {
	return &i
}

// Int64Ptr returns a pointer to an int64
func Int64Ptr(i int64) *int64 {
	return &i
}

// TimePtr returns a pointer to a time
func TimePtr(t time.Time) *time.Time {
	return &t
}

// BoolPtr returns a pointer to a bool
func BoolPtr(b bool) *bool {
	return &b
}
