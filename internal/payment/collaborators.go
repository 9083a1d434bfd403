package payment

import "context"

// BankCode is the result vocabulary the simulated issuing bank uses to
// answer every operation.
type BankCode string

const (
	BankOK           BankCode = "OK"
	BankAuthRequired BankCode = "AUTH_REQUIRED"
	BankInvalidCard  BankCode = "INVALID_CARD"
	BankFraud        BankCode = "FRAUD"
	BankRejected     BankCode = "REJECTED"
	BankUnavailable  BankCode = "UNAVAILABLE"
)

// Card is the raw card data collected by the hosted form; it never persists
// beyond the call into BankClient.
type Card struct {
	Number string
	Expiry string // MM/YY
	CVV    string
	Holder string
}

// BankClient is the gateway's only collaborator for moving money. Bound to
// a concrete resty-based simulator in internal/bank.
type BankClient interface {
	RequestPayment(ctx context.Context, card Card, amountMinor int64) (BankCode, string, error)
	Authorize(ctx context.Context, bankRef, otp string) (BankCode, string, error)
	Capture(ctx context.Context, bankRef string) (BankCode, error)
	Reverse(ctx context.Context, bankRef string, amountMinor *int64) (BankCode, error)
	Refund(ctx context.Context, bankRef string, amountMinor *int64) (BankCode, error)
}

// Notifier dispatches the webhook POST for a persisted transition,
// asynchronously and independently of the request path.
type Notifier interface {
	Enqueue(ctx context.Context, p Payment, entry HistoryEntry) error
}

// FormRenderer is the out-of-scope hosted-payment-form collaborator; its
// Submit delegates into PaymentService.AcceptCard.
type FormRenderer interface {
	Render(ctx context.Context, paymentID string) (string, error)
	Submit(ctx context.Context, paymentID string, formValues map[string]string) (Result, error)
}

// Result is the generic outcome of a state-changing operation.
type Result struct {
	PaymentID string
	Status    Status
	Message   string
}
