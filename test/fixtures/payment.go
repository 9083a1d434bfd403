package fixtures

import (
	"time"

	"payment-gateway/internal/payment"
)

func baseIntent(merchantKey, orderID string, amount int64) payment.Intent {
	return payment.Intent{
		MerchantKey: merchantKey,
		OrderID:     orderID,
		Amount:      amount,
		Currency:    "KZT",
		Description: "test order",
		PayType:     payment.PayTypeSingleStage,
		Language:    payment.DefaultLanguage,
	}
}

// Init returns a freshly created payment still in INIT.
func Init() payment.Payment {
	now := time.Now()
	p := payment.NewPayment("pay_550e8400e29b41d4a716446655440000", baseIntent("merchant-1", "order-001", 5000), now)
	return p
}

// New returns a payment that has moved past INIT into NEW (awaiting the
// hosted form to render).
func New() payment.Payment {
	p := Init()
	p.Status = payment.StatusNew
	p.UpdatedAt = p.CreatedAt.Add(time.Second)
	return p
}

// Authorizing returns a payment mid-authorization with a bank reference
// already assigned.
func Authorizing() payment.Payment {
	now := time.Now()
	createdAt := now.Add(-5 * time.Minute)
	p := payment.NewPayment("pay_550e8400e29b41d4a716446655440001", baseIntent("merchant-1", "order-002", 15000), createdAt)
	p.Status = payment.StatusAuthorizing
	p.UpdatedAt = now
	p.AttemptCount = 1
	p.BankRef = "GW_TX_789ABC"
	p.CardFingerprint = "fp_4405_62xx_1448"
	return p
}

// Confirmed returns a successfully confirmed (captured) payment.
func Confirmed() payment.Payment {
	now := time.Now()
	createdAt := now.Add(-1 * time.Hour)
	p := payment.NewPayment("pay_550e8400e29b41d4a716446655440002", baseIntent("merchant-1", "order-003", 10000), createdAt)
	p.Status = payment.StatusConfirmed
	p.UpdatedAt = now.Add(-55 * time.Minute)
	p.AttemptCount = 1
	p.BankRef = "GW_TX_COMPLETED_123"
	p.CardFingerprint = "fp_4405_62xx_1448"
	return p
}

// AuthFail returns a payment that failed authorization with bank error
// details recorded.
func AuthFail() payment.Payment {
	now := time.Now()
	createdAt := now.Add(-2 * time.Hour)
	p := payment.NewPayment("pay_550e8400e29b41d4a716446655440003", baseIntent("merchant-1", "order-004", 7500), createdAt)
	p.Status = payment.StatusAuthFail
	p.UpdatedAt = now.Add(-115 * time.Minute)
	p.AttemptCount = 1
	p.BankRef = "GW_TX_FAILED_456"
	p.LastErrorCode = "INSUFFICIENT_FUNDS"
	p.LastErrorMessage = "Insufficient funds"
	return p
}

// Cancelled returns a payment cancelled by the merchant or customer before
// authorization.
func Cancelled() payment.Payment {
	now := time.Now()
	createdAt := now.Add(-3 * time.Hour)
	p := payment.NewPayment("pay_550e8400e29b41d4a716446655440004", baseIntent("merchant-1", "order-005", 20000), createdAt)
	p.Status = payment.StatusCancelled
	p.UpdatedAt = now.Add(-175 * time.Minute)
	return p
}

// Refunded returns a payment that was confirmed and later fully refunded.
func Refunded() payment.Payment {
	now := time.Now()
	createdAt := now.Add(-24 * time.Hour)
	p := payment.NewPayment("pay_550e8400e29b41d4a716446655440005", baseIntent("merchant-1", "order-006", 12500), createdAt)
	p.Status = payment.StatusRefunded
	p.UpdatedAt = now.Add(-1 * time.Hour)
	p.AttemptCount = 1
	p.BankRef = "GW_TX_REFUNDED_321"
	p.CardFingerprint = "fp_5536_91xx_2847"
	return p
}

// Expired returns a payment the sweeper should move to DEADLINE_EXPIRED: its
// ExpiresAt is already in the past and its status is non-terminal.
func Expired() payment.Payment {
	now := time.Now()
	createdAt := now.Add(-2 * time.Hour)
	p := payment.NewPayment("pay_550e8400e29b41d4a716446655440006", baseIntent("merchant-1", "order-007", 3000), createdAt)
	p.Status = payment.StatusNew
	p.ExpiresAt = now.Add(-90 * time.Minute)
	return p
}

// Recurrent returns a confirmed payment created from a recurrent intent,
// suitable for testing the customer-key/recurrent plumbing.
func Recurrent() payment.Payment {
	now := time.Now()
	createdAt := now.Add(-10 * time.Minute)
	intent := baseIntent("merchant-2", "order-008", 25000)
	intent.CustomerKey = "cust-777"
	intent.Recurrent = true
	p := payment.NewPayment("pay_550e8400e29b41d4a716446655440007", intent, createdAt)
	p.Status = payment.StatusConfirmed
	p.UpdatedAt = now.Add(-8 * time.Minute)
	p.AttemptCount = 1
	p.BankRef = "GW_TX_WALLET_555"
	return p
}

// HighValue returns a payment with an unusually large amount, for limit and
// overflow-adjacent test cases.
func HighValue() payment.Payment {
	now := time.Now()
	intent := baseIntent("merchant-1", "order-009-premium", 500000)
	return payment.NewPayment("pay_550e8400e29b41d4a716446655440008", intent, now)
}

// PaymentsList returns a mixed batch of payments across several statuses,
// for list/pagination tests.
func PaymentsList() []payment.Payment {
	return []payment.Payment{
		Confirmed(),
		New(),
		AuthFail(),
		Refunded(),
	}
}

// ForCreate returns a payment shaped the way PaymentService.Init hands one
// to the store: INIT status, zero version, no history yet.
func ForCreate() payment.Payment {
	now := time.Now()
	return payment.NewPayment("", baseIntent("merchant-1", "order-new", 10000), now)
}

// HistoryFor returns a plausible status_history trail for p, ending at its
// current status.
func HistoryFor(p payment.Payment) []payment.HistoryEntry {
	return []payment.HistoryEntry{
		{PaymentID: p.PaymentID, FromStatus: payment.StatusInit, ToStatus: payment.StatusNew, At: p.CreatedAt, Actor: "system"},
		{PaymentID: p.PaymentID, FromStatus: payment.StatusNew, ToStatus: p.Status, At: p.UpdatedAt, Actor: "system"},
	}
}
