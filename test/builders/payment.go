// Package builders provides test fixture builders for creating test data.
// These builders implement the Builder pattern to create domain entities
// with sensible defaults that can be overridden as needed.
package builders

import (
	"time"

	"payment-gateway/internal/payment"
)

// PaymentBuilder provides a fluent interface for building Payment test fixtures.
type PaymentBuilder struct {
	payment payment.Payment
}

// NewPayment creates a PaymentBuilder with sensible defaults: an INIT-state
// aggregate for a single-stage KZT payment.
func NewPayment() *PaymentBuilder {
	now := time.Now()
	return &PaymentBuilder{
		payment: payment.Payment{
			PaymentID: "TEST0000000000000001",
			Intent: payment.Intent{
				MerchantKey: "test-merchant-123",
				OrderID:     "test-order-123",
				Amount:      10000,
				Currency:    "KZT",
				PayType:     payment.PayTypeSingleStage,
			},
			Status:    payment.StatusInit,
			CreatedAt: now,
			UpdatedAt: now,
			ExpiresAt: now.Add(payment.DefaultExpiryFromNow),
			Version:   0,
		},
	}
}

// WithID sets the payment ID.
func (b *PaymentBuilder) WithID(id string) *PaymentBuilder {
	b.payment.PaymentID = id
	return b
}

// WithMerchantKey sets the owning merchant.
func (b *PaymentBuilder) WithMerchantKey(merchantKey string) *PaymentBuilder {
	b.payment.Intent.MerchantKey = merchantKey
	return b
}

// WithOrderID sets the merchant's order ID.
func (b *PaymentBuilder) WithOrderID(orderID string) *PaymentBuilder {
	b.payment.Intent.OrderID = orderID
	return b
}

// WithAmount sets the payment amount, in minor currency units.
func (b *PaymentBuilder) WithAmount(amount int64) *PaymentBuilder {
	b.payment.Intent.Amount = amount
	return b
}

// WithCurrency sets the ISO 4217 currency code.
func (b *PaymentBuilder) WithCurrency(currency string) *PaymentBuilder {
	b.payment.Intent.Currency = currency
	return b
}

// WithStatus sets the payment status.
func (b *PaymentBuilder) WithStatus(status payment.Status) *PaymentBuilder {
	b.payment.Status = status
	return b
}

// WithPayType sets single- or two-stage authorization.
func (b *PaymentBuilder) WithPayType(payType payment.PayType) *PaymentBuilder {
	b.payment.Intent.PayType = payType
	return b
}

// WithBankRef sets the issuing bank's reference for the current attempt.
func (b *PaymentBuilder) WithBankRef(ref string) *PaymentBuilder {
	b.payment.BankRef = ref
	return b
}

// WithCardFingerprint sets the tokenized card fingerprint.
func (b *PaymentBuilder) WithCardFingerprint(fp string) *PaymentBuilder {
	b.payment.CardFingerprint = fp
	return b
}

// WithExpiresAt sets the deadline the sweeper expires this payment against.
func (b *PaymentBuilder) WithExpiresAt(t time.Time) *PaymentBuilder {
	b.payment.ExpiresAt = t
	return b
}

// WithVersion sets the optimistic concurrency version.
func (b *PaymentBuilder) WithVersion(v int64) *PaymentBuilder {
	b.payment.Version = v
	return b
}

// WithLastError sets the last bank/validation error recorded on the payment.
func (b *PaymentBuilder) WithLastError(code, message string) *PaymentBuilder {
	b.payment.LastErrorCode = code
	b.payment.LastErrorMessage = message
	return b
}

// WithNotificationURL sets the merchant's webhook callback URL.
func (b *PaymentBuilder) WithNotificationURL(url string) *PaymentBuilder {
	b.payment.Intent.NotificationURL = url
	return b
}

// WithConfirmedStatus sets status to CONFIRMED.
func (b *PaymentBuilder) WithConfirmedStatus() *PaymentBuilder {
	b.payment.Status = payment.StatusConfirmed
	return b
}

// WithCancelledStatus sets status to CANCELLED.
func (b *PaymentBuilder) WithCancelledStatus() *PaymentBuilder {
	b.payment.Status = payment.StatusCancelled
	return b
}

// WithExpiredStatus sets status to DEADLINE_EXPIRED.
func (b *PaymentBuilder) WithExpiredStatus() *PaymentBuilder {
	b.payment.Status = payment.StatusDeadlineExpired
	return b
}

// Build returns the constructed Payment.
func (b *PaymentBuilder) Build() payment.Payment {
	return b.payment
}

// HistoryEntryBuilder builds payment.HistoryEntry test fixtures.
type HistoryEntryBuilder struct {
	entry payment.HistoryEntry
}

// NewHistoryEntry creates a HistoryEntryBuilder with sensible defaults.
func NewHistoryEntry() *HistoryEntryBuilder {
	return &HistoryEntryBuilder{
		entry: payment.HistoryEntry{
			PaymentID:  "TEST0000000000000001",
			FromStatus: payment.StatusNew,
			ToStatus:   payment.StatusFormShowed,
			At:         time.Now(),
			Actor:      "system",
		},
	}
}

// WithPaymentID sets the owning payment.
func (b *HistoryEntryBuilder) WithPaymentID(id string) *HistoryEntryBuilder {
	b.entry.PaymentID = id
	return b
}

// WithTransition sets the from/to statuses.
func (b *HistoryEntryBuilder) WithTransition(from, to payment.Status) *HistoryEntryBuilder {
	b.entry.FromStatus = from
	b.entry.ToStatus = to
	return b
}

// WithActor sets who/what triggered the transition.
func (b *HistoryEntryBuilder) WithActor(actor string) *HistoryEntryBuilder {
	b.entry.Actor = actor
	return b
}

// Build returns the constructed HistoryEntry.
func (b *HistoryEntryBuilder) Build() payment.HistoryEntry {
	return b.entry
}
