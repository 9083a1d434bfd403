package payment_test

import (
	"context"
	"testing"
	"time"

	gwerrors "payment-gateway/internal/errors"
	"payment-gateway/internal/merchant"
	"payment-gateway/internal/payment"
	"payment-gateway/internal/payment/paymentmem"
	"payment-gateway/internal/signing"
	"payment-gateway/test/mocks"
)

const testMerchantKey = "merchant-1"
const testSecret = "top-secret"

type fakeLookup struct {
	merchants map[string]merchant.Merchant
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{merchants: map[string]merchant.Merchant{
		testMerchantKey: {MerchantKey: testMerchantKey, Secret: testSecret, Active: true, SupportedCurrencies: []string{"KZT", "USD"}},
	}}
}

func (f *fakeLookup) Lookup(ctx context.Context, merchantKey string) (merchant.Merchant, bool, error) {
	m, ok := f.merchants[merchantKey]
	return m, ok, nil
}

func (f *fakeLookup) IsActive(ctx context.Context, merchantKey string) bool {
	m, ok := f.merchants[merchantKey]
	return ok && m.Active
}

func newTestService(t *testing.T, bank *mocks.BankClient) (*payment.Service, *paymentmem.Store, *mocks.Notifier) {
	t.Helper()
	store := paymentmem.New()
	notifier := mocks.NewNotifier()
	signer := signing.NewSigner()
	svc := payment.NewService(store, newFakeLookup(), signer, bank, notifier, payment.NewIDGen(), payment.SystemClock{})
	return svc, store, notifier
}

func signedParams(t *testing.T, signer *signing.Signer, params map[string]string) string {
	t.Helper()
	return signer.Sign(params, testSecret)
}

func validIntent() payment.Intent {
	return payment.Intent{MerchantKey: testMerchantKey, OrderID: "order-1", Amount: 10000, Currency: "KZT"}
}

func TestService_Init_CreatesPaymentInNewStatus(t *testing.T) {
	svc, _, _ := newTestService(t, mocks.NewBankClient())
	signer := signing.NewSigner()

	params := map[string]string{"merchant_key": testMerchantKey, "order_id": "order-1", "amount": "10000"}
	token := signedParams(t, signer, params)

	result, err := svc.Init(context.Background(), validIntent(), params, token)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if result.Status != payment.StatusNew {
		t.Errorf("expected status NEW, got %s", result.Status)
	}
	if result.PaymentID == "" {
		t.Error("expected non-empty payment ID")
	}
}

func TestService_Init_RejectsBadSignature(t *testing.T) {
	svc, _, _ := newTestService(t, mocks.NewBankClient())
	params := map[string]string{"merchant_key": testMerchantKey, "order_id": "order-1", "amount": "10000"}

	_, err := svc.Init(context.Background(), validIntent(), params, "wrong-token")
	if err == nil {
		t.Fatal("expected signature error, got nil")
	}
	gwErr, ok := err.(*gwerrors.Error)
	if !ok || gwErr.Code != gwerrors.CodeInvalidToken {
		t.Errorf("expected CodeInvalidToken, got %v", err)
	}
}

func TestService_Init_RejectsInactiveMerchant(t *testing.T) {
	svc, _, _ := newTestService(t, mocks.NewBankClient())
	signer := signing.NewSigner()
	intent := validIntent()
	intent.MerchantKey = "unknown-merchant"

	params := map[string]string{"merchant_key": "unknown-merchant", "order_id": "order-1"}
	token := signedParams(t, signer, params)

	_, err := svc.Init(context.Background(), intent, params, token)
	if err == nil {
		t.Fatal("expected terminal blocked error, got nil")
	}
	gwErr, ok := err.(*gwerrors.Error)
	if !ok || gwErr.Code != gwerrors.CodeTerminalBlocked {
		t.Errorf("expected CodeTerminalBlocked, got %v", err)
	}
}

func TestService_Init_RejectsUnsupportedCurrency(t *testing.T) {
	svc, _, _ := newTestService(t, mocks.NewBankClient())
	signer := signing.NewSigner()
	intent := validIntent()
	intent.Currency = "JPY"

	params := map[string]string{"merchant_key": testMerchantKey, "order_id": "order-1"}
	token := signedParams(t, signer, params)

	_, err := svc.Init(context.Background(), intent, params, token)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	gwErr, ok := err.(*gwerrors.Error)
	if !ok || gwErr.Code != gwerrors.CodeValidation {
		t.Errorf("expected CodeValidation, got %v", err)
	}
}

func TestService_Init_RejectsDuplicateLiveOrder(t *testing.T) {
	svc, _, _ := newTestService(t, mocks.NewBankClient())
	signer := signing.NewSigner()
	params := map[string]string{"merchant_key": testMerchantKey, "order_id": "order-1"}
	token := signedParams(t, signer, params)

	if _, err := svc.Init(context.Background(), validIntent(), params, token); err != nil {
		t.Fatalf("first Init failed: %v", err)
	}

	_, err := svc.Init(context.Background(), validIntent(), params, token)
	if err == nil {
		t.Fatal("expected duplicate order error, got nil")
	}
	gwErr, ok := err.(*gwerrors.Error)
	if !ok || gwErr.Code != gwerrors.CodeDuplicateOrder {
		t.Errorf("expected CodeDuplicateOrder, got %v", err)
	}
}

func initPayment(t *testing.T, svc *payment.Service) string {
	t.Helper()
	signer := signing.NewSigner()
	params := map[string]string{"merchant_key": testMerchantKey, "order_id": "order-1"}
	token := signedParams(t, signer, params)
	result, err := svc.Init(context.Background(), validIntent(), params, token)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return result.PaymentID
}

func validCard() payment.Card {
	return payment.Card{Number: "4242424242424242", Expiry: "12/39", CVV: "123", Holder: "Test Holder"}
}

func TestService_AcceptCard_SingleStageAutoConfirms(t *testing.T) {
	bank := mocks.NewBankClient()
	svc, _, _ := newTestService(t, bank)
	paymentID := initPayment(t, svc)

	result, err := svc.AcceptCard(context.Background(), paymentID, validCard())
	if err != nil {
		t.Fatalf("AcceptCard failed: %v", err)
	}
	if result.Status != payment.StatusConfirmed {
		t.Errorf("expected status CONFIRMED for single-stage auto-confirm, got %s", result.Status)
	}
}

func TestService_AcceptCard_TwoStageStopsAtAuthorized(t *testing.T) {
	bank := mocks.NewBankClient()
	svc, _, _ := newTestService(t, bank)

	signer := signing.NewSigner()
	params := map[string]string{"merchant_key": testMerchantKey, "order_id": "order-two-stage"}
	token := signedParams(t, signer, params)
	intent := validIntent()
	intent.OrderID = "order-two-stage"
	intent.PayType = payment.PayTypeTwoStage
	result, err := svc.Init(context.Background(), intent, params, token)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	accepted, err := svc.AcceptCard(context.Background(), result.PaymentID, validCard())
	if err != nil {
		t.Fatalf("AcceptCard failed: %v", err)
	}
	if accepted.Status != payment.StatusAuthorized {
		t.Errorf("expected status AUTHORIZED for two-stage payment, got %s", accepted.Status)
	}
}

func TestService_AcceptCard_BankFraudRejectsPayment(t *testing.T) {
	bank := mocks.NewBankClient()
	bank.RequestPaymentCode = payment.BankFraud
	svc, _, _ := newTestService(t, bank)
	paymentID := initPayment(t, svc)

	result, err := svc.AcceptCard(context.Background(), paymentID, validCard())
	if err != nil {
		t.Fatalf("AcceptCard failed: %v", err)
	}
	if result.Status != payment.StatusRejected {
		t.Errorf("expected status REJECTED on bank fraud signal, got %s", result.Status)
	}
}

func TestService_AcceptCard_BankUnavailableLeavesPaymentAuthorizing(t *testing.T) {
	bank := mocks.NewBankClient()
	bank.RequestPaymentCode = payment.BankUnavailable
	svc, store, _ := newTestService(t, bank)
	paymentID := initPayment(t, svc)

	_, err := svc.AcceptCard(context.Background(), paymentID, validCard())
	if err == nil {
		t.Fatal("expected an error on a bank UNAVAILABLE signal, got nil")
	}
	gwErr, ok := err.(*gwerrors.Error)
	if !ok || gwErr.Code != gwerrors.CodeBankUnavailable {
		t.Errorf("expected CodeBankUnavailable, got %v", err)
	}

	got, err := store.GetByID(context.Background(), paymentID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != payment.StatusAuthorizing {
		t.Errorf("expected a transient bank outage to leave the payment in AUTHORIZING for the sweeper to reconcile, got %s", got.Status)
	}
}

func TestService_AcceptCard_InvalidCardBelowMaxAttemptsGetsAuthFail(t *testing.T) {
	bank := mocks.NewBankClient()
	bank.RequestPaymentCode = payment.BankInvalidCard
	svc, _, _ := newTestService(t, bank)
	paymentID := initPayment(t, svc)

	result, err := svc.AcceptCard(context.Background(), paymentID, validCard())
	if err != nil {
		t.Fatalf("AcceptCard failed: %v", err)
	}
	if result.Status != payment.StatusAuthFail {
		t.Errorf("expected AUTH_FAIL below max attempts, got %s", result.Status)
	}
}

// TestService_AcceptCard_InvalidCardAtMaxAttemptsRejects seeds a payment
// already one attempt away from the limit, in FINISHAUTHORIZE so AcceptCard
// accepts it without replaying the form-advance steps.
func TestService_AcceptCard_InvalidCardAtMaxAttemptsRejects(t *testing.T) {
	bank := mocks.NewBankClient()
	bank.RequestPaymentCode = payment.BankInvalidCard
	store := paymentmem.New()
	notifier := mocks.NewNotifier()
	signer := signing.NewSigner()
	svc := payment.NewService(store, newFakeLookup(), signer, bank, notifier, payment.NewIDGen(), payment.SystemClock{})

	now := time.Now()
	p := payment.NewPayment("pay_retry_test_0001", validIntent(), now)
	p.Status = payment.StatusFinishAuthorize
	p.AttemptCount = payment.DefaultMaxAttempts - 1
	p.ExpiresAt = now.Add(time.Hour)
	if err := store.CreateIfAbsent(context.Background(), p); err != nil {
		t.Fatalf("seed CreateIfAbsent failed: %v", err)
	}

	result, err := svc.AcceptCard(context.Background(), p.PaymentID, validCard())
	if err != nil {
		t.Fatalf("AcceptCard failed: %v", err)
	}
	if result.Status != payment.StatusRejected {
		t.Errorf("expected REJECTED once attempts are exhausted, got %s", result.Status)
	}
}

// TestService_AcceptCard_ExpiredPaymentMovesToDeadlineExpired seeds a
// payment directly past its deadline, bypassing Init's own expires_at
// validation window (which never allows creating an already-expired intent).
func TestService_AcceptCard_ExpiredPaymentMovesToDeadlineExpired(t *testing.T) {
	bank := mocks.NewBankClient()
	store := paymentmem.New()
	notifier := mocks.NewNotifier()
	signer := signing.NewSigner()
	svc := payment.NewService(store, newFakeLookup(), signer, bank, notifier, payment.NewIDGen(), payment.SystemClock{})

	now := time.Now()
	p := payment.NewPayment("pay_expiry_test_0001", validIntent(), now)
	p.Status = payment.StatusNew
	p.ExpiresAt = now.Add(-time.Hour)
	if err := store.CreateIfAbsent(context.Background(), p); err != nil {
		t.Fatalf("seed CreateIfAbsent failed: %v", err)
	}

	_, err := svc.AcceptCard(context.Background(), p.PaymentID, validCard())
	if err == nil {
		t.Fatal("expected expired error, got nil")
	}
	gwErr, ok := err.(*gwerrors.Error)
	if !ok || gwErr.Code != gwerrors.CodeExpired {
		t.Errorf("expected CodeExpired, got %v", err)
	}

	got, err := store.GetByID(context.Background(), p.PaymentID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != payment.StatusDeadlineExpired {
		t.Errorf("expected status DEADLINE_EXPIRED, got %s", got.Status)
	}
}

// TestService_Submit3DS_BankUnavailableLeavesPaymentChecking seeds a payment
// directly into THREE_DS_CHECKING with a bank_ref already attached, mirroring
// how TestService_AcceptCard_InvalidCardAtMaxAttemptsRejects seeds state that
// Submit3DS itself has no path to construct short of a full 3-D Secure round
// trip through AcceptCard.
func TestService_Submit3DS_BankUnavailableLeavesPaymentChecking(t *testing.T) {
	bank := mocks.NewBankClient()
	bank.AuthorizeCode = payment.BankUnavailable
	store := paymentmem.New()
	notifier := mocks.NewNotifier()
	signer := signing.NewSigner()
	svc := payment.NewService(store, newFakeLookup(), signer, bank, notifier, payment.NewIDGen(), payment.SystemClock{})

	now := time.Now()
	p := payment.NewPayment("pay_3ds_unavailable_0001", validIntent(), now)
	p.Status = payment.StatusThreeDSChecking
	p.BankRef = "bank_ref_123"
	if err := store.CreateIfAbsent(context.Background(), p); err != nil {
		t.Fatalf("seed CreateIfAbsent failed: %v", err)
	}

	_, err := svc.Submit3DS(context.Background(), p.PaymentID, "000")
	if err == nil {
		t.Fatal("expected an error on a bank UNAVAILABLE signal, got nil")
	}
	gwErr, ok := err.(*gwerrors.Error)
	if !ok || gwErr.Code != gwerrors.CodeBankUnavailable {
		t.Errorf("expected CodeBankUnavailable, got %v", err)
	}

	got, err := store.GetByID(context.Background(), p.PaymentID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != payment.StatusThreeDSChecking {
		t.Errorf("expected a transient bank outage to leave the payment in THREE_DS_CHECKING for the sweeper to reconcile, got %s", got.Status)
	}
}

func TestService_Cancel_BeforeAuthorizationIsFree(t *testing.T) {
	svc, _, _ := newTestService(t, mocks.NewBankClient())
	signer := signing.NewSigner()
	paymentID := initPayment(t, svc)

	params := map[string]string{"payment_id": paymentID}
	token := signedParams(t, signer, params)
	result, err := svc.Cancel(context.Background(), paymentID, params, token, nil)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if result.Status != payment.StatusCancelled {
		t.Errorf("expected status CANCELLED, got %s", result.Status)
	}
}

func TestService_Cancel_ConfirmedPaymentRefunds(t *testing.T) {
	bank := mocks.NewBankClient()
	svc, _, _ := newTestService(t, bank)
	signer := signing.NewSigner()
	paymentID := initPayment(t, svc)

	if _, err := svc.AcceptCard(context.Background(), paymentID, validCard()); err != nil {
		t.Fatalf("AcceptCard failed: %v", err)
	}

	params := map[string]string{"payment_id": paymentID}
	token := signedParams(t, signer, params)
	result, err := svc.Cancel(context.Background(), paymentID, params, token, nil)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if result.Status != payment.StatusRefunded {
		t.Errorf("expected status REFUNDED, got %s", result.Status)
	}
}

func TestService_Cancel_InvalidStateRejected(t *testing.T) {
	bank := mocks.NewBankClient()
	bank.RequestPaymentCode = payment.BankFraud
	svc, _, _ := newTestService(t, bank)
	signer := signing.NewSigner()
	paymentID := initPayment(t, svc)

	if _, err := svc.AcceptCard(context.Background(), paymentID, validCard()); err != nil {
		t.Fatalf("AcceptCard failed: %v", err)
	}

	params := map[string]string{"payment_id": paymentID}
	token := signedParams(t, signer, params)
	_, err := svc.Cancel(context.Background(), paymentID, params, token, nil)
	if err == nil {
		t.Fatal("expected invalid state error for already-rejected payment, got nil")
	}
	gwErr, ok := err.(*gwerrors.Error)
	if !ok || gwErr.Code != gwerrors.CodeInvalidState {
		t.Errorf("expected CodeInvalidState, got %v", err)
	}
}

func TestService_CheckOrder_ReturnsHistoryPerPayment(t *testing.T) {
	svc, _, _ := newTestService(t, mocks.NewBankClient())
	signer := signing.NewSigner()
	paymentID := initPayment(t, svc)

	params := map[string]string{"merchant_key": testMerchantKey, "order_id": "order-1"}
	token := signedParams(t, signer, params)
	summaries, err := svc.CheckOrder(context.Background(), testMerchantKey, "order-1", params, token)
	if err != nil {
		t.Fatalf("CheckOrder failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].PaymentID != paymentID {
		t.Errorf("expected payment ID %s, got %s", paymentID, summaries[0].PaymentID)
	}
	if len(summaries[0].History) == 0 {
		t.Error("expected non-empty history")
	}
}

func TestService_Get_RejectsBadSignature(t *testing.T) {
	svc, _, _ := newTestService(t, mocks.NewBankClient())
	paymentID := initPayment(t, svc)

	_, err := svc.Get(context.Background(), paymentID, map[string]string{}, "bad-token")
	if err == nil {
		t.Fatal("expected signature error, got nil")
	}
	gwErr, ok := err.(*gwerrors.Error)
	if !ok || gwErr.Code != gwerrors.CodeInvalidToken {
		t.Errorf("expected CodeInvalidToken, got %v", err)
	}
}

func TestService_Get_ReturnsPayment(t *testing.T) {
	svc, _, _ := newTestService(t, mocks.NewBankClient())
	signer := signing.NewSigner()
	paymentID := initPayment(t, svc)

	params := map[string]string{"payment_id": paymentID}
	token := signedParams(t, signer, params)
	p, err := svc.Get(context.Background(), paymentID, params, token)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p.PaymentID != paymentID {
		t.Errorf("expected payment ID %s, got %s", paymentID, p.PaymentID)
	}
}

func TestService_Dispatch_EnqueuesWebhookWhenNotificationURLSet(t *testing.T) {
	bank := mocks.NewBankClient()
	store := paymentmem.New()
	notifier := mocks.NewNotifier()
	signer := signing.NewSigner()
	svc := payment.NewService(store, newFakeLookup(), signer, bank, notifier, payment.NewIDGen(), payment.SystemClock{})

	params := map[string]string{"merchant_key": testMerchantKey, "order_id": "order-webhook"}
	token := signedParams(t, signer, params)
	intent := validIntent()
	intent.OrderID = "order-webhook"
	intent.NotificationURL = "https://merchant.example.com/webhook"
	if _, err := svc.Init(context.Background(), intent, params, token); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if len(notifier.Enqueued) == 0 {
		t.Error("expected at least one webhook to be enqueued")
	}
}
