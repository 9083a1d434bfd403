//go:build integration

package integration

import (
	"context"

	"payment-gateway/internal/payment"
)

// MockBankClient is a scripted payment.BankClient for integration tests that
// need deterministic bank responses without hitting the simulated bank over
// HTTP. Zero value behaves as an always-OK bank.
type MockBankClient struct {
	RequestPaymentCode payment.BankCode
	AuthorizeCode      payment.BankCode
	CaptureCode        payment.BankCode
	ReverseCode        payment.BankCode
	RefundCode         payment.BankCode
	BankRef            string
}

var _ payment.BankClient = (*MockBankClient)(nil)

func (m *MockBankClient) code(c payment.BankCode) payment.BankCode {
	if c == "" {
		return payment.BankOK
	}
	return c
}

func (m *MockBankClient) ref() string {
	if m.BankRef == "" {
		return "mock-bank-ref"
	}
	return m.BankRef
}

func (m *MockBankClient) RequestPayment(ctx context.Context, card payment.Card, amountMinor int64) (payment.BankCode, string, error) {
	return m.code(m.RequestPaymentCode), m.ref(), nil
}

func (m *MockBankClient) Authorize(ctx context.Context, bankRef, otp string) (payment.BankCode, string, error) {
	return m.code(m.AuthorizeCode), m.ref(), nil
}

func (m *MockBankClient) Capture(ctx context.Context, bankRef string) (payment.BankCode, error) {
	return m.code(m.CaptureCode), nil
}

func (m *MockBankClient) Reverse(ctx context.Context, bankRef string, amountMinor *int64) (payment.BankCode, error) {
	return m.code(m.ReverseCode), nil
}

func (m *MockBankClient) Refund(ctx context.Context, bankRef string, amountMinor *int64) (payment.BankCode, error) {
	return m.code(m.RefundCode), nil
}

// MockNotifier records webhook enqueues instead of publishing them to a
// broker, for tests asserting notification side effects.
type MockNotifier struct {
	Enqueued []payment.Payment
}

var _ payment.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Enqueue(ctx context.Context, p payment.Payment, entry payment.HistoryEntry) error {
	m.Enqueued = append(m.Enqueued, p)
	return nil
}
