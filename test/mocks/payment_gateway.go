package mocks

import (
	"context"
	"sync"

	"payment-gateway/internal/merchant"
	"payment-gateway/internal/payment"
)

// BankClient is a scripted payment.BankClient. Every *Code field defaults to
// payment.BankOK when unset, so the zero value is an always-succeeding bank.
type BankClient struct {
	RequestPaymentCode payment.BankCode
	AuthorizeCode      payment.BankCode
	CaptureCode        payment.BankCode
	ReverseCode        payment.BankCode
	RefundCode         payment.BankCode
	BankRef            string
	Err                error

	mu    sync.Mutex
	Calls []string
}

var _ payment.BankClient = (*BankClient)(nil)

// NewBankClient returns a BankClient that approves every operation.
func NewBankClient() *BankClient {
	return &BankClient{}
}

func (m *BankClient) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

func (m *BankClient) code(c payment.BankCode) payment.BankCode {
	if c == "" {
		return payment.BankOK
	}
	return c
}

func (m *BankClient) ref() string {
	if m.BankRef == "" {
		return "mock-bank-ref"
	}
	return m.BankRef
}

func (m *BankClient) RequestPayment(ctx context.Context, card payment.Card, amountMinor int64) (payment.BankCode, string, error) {
	m.record("RequestPayment")
	return m.code(m.RequestPaymentCode), m.ref(), m.Err
}

func (m *BankClient) Authorize(ctx context.Context, bankRef, otp string) (payment.BankCode, string, error) {
	m.record("Authorize")
	return m.code(m.AuthorizeCode), m.ref(), m.Err
}

func (m *BankClient) Capture(ctx context.Context, bankRef string) (payment.BankCode, error) {
	m.record("Capture")
	return m.code(m.CaptureCode), m.Err
}

func (m *BankClient) Reverse(ctx context.Context, bankRef string, amountMinor *int64) (payment.BankCode, error) {
	m.record("Reverse")
	return m.code(m.ReverseCode), m.Err
}

func (m *BankClient) Refund(ctx context.Context, bankRef string, amountMinor *int64) (payment.BankCode, error) {
	m.record("Refund")
	return m.code(m.RefundCode), m.Err
}

// Notifier records every enqueued webhook instead of publishing it.
type Notifier struct {
	mu       sync.Mutex
	Enqueued []payment.Payment
}

var _ payment.Notifier = (*Notifier)(nil)

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (m *Notifier) Enqueue(ctx context.Context, p payment.Payment, entry payment.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Enqueued = append(m.Enqueued, p)
	return nil
}

// MerchantLookup is a scripted payment.MerchantLookup backed by an
// in-memory map, for tests that need a merchant directory without Redis.
type MerchantLookup struct {
	Merchants map[string]merchant.Merchant
}

var _ interface {
	Lookup(ctx context.Context, merchantKey string) (merchant.Merchant, bool, error)
	IsActive(ctx context.Context, merchantKey string) bool
} = (*MerchantLookup)(nil)

// NewMerchantLookup returns a lookup seeded with a single active merchant.
func NewMerchantLookup(merchantKey, secret string) *MerchantLookup {
	return &MerchantLookup{
		Merchants: map[string]merchant.Merchant{
			merchantKey: {MerchantKey: merchantKey, Secret: secret, Active: true, SupportedCurrencies: []string{"KZT", "USD", "EUR", "RUB"}},
		},
	}
}

func (m *MerchantLookup) Lookup(ctx context.Context, merchantKey string) (merchant.Merchant, bool, error) {
	mm, ok := m.Merchants[merchantKey]
	return mm, ok, nil
}

func (m *MerchantLookup) IsActive(ctx context.Context, merchantKey string) bool {
	mm, ok := m.Merchants[merchantKey]
	return ok && mm.Active
}
