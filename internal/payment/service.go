// Package payment implements the payment lifecycle state machine and the
// PaymentService orchestration described by spec §4.3–§4.5: Init, AcceptCard,
// Submit3DS, Confirm, Cancel, CheckOrder, and Get.
package payment

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	gwerrors "payment-gateway/internal/errors"
	"payment-gateway/internal/logging"
	"payment-gateway/internal/merchant"
	"payment-gateway/internal/signing"
	"payment-gateway/internal/tracing"
	"payment-gateway/pkg/constants"
)

const historyTailSize = 20

// MerchantLookup is the subset of merchant.Directory the service needs,
// expressed narrowly so tests can fake it without a Redis/Source pair.
type MerchantLookup interface {
	Lookup(ctx context.Context, merchantKey string) (merchant.Merchant, bool, error)
	IsActive(ctx context.Context, merchantKey string) bool
}

// Service is the PaymentService: it composes Signer, Store, StateMachine,
// BankClient, Notifier and MerchantLookup to satisfy every operation in
// spec §4.5.
type Service struct {
	store       Store
	sm          *StateMachine
	merchants   MerchantLookup
	signer      *signing.Signer
	bank        BankClient
	notifier    Notifier
	ids         IdGen
	clock       Clock
	maxAttempts int
	formBaseURL string
}

// Option configures a Service at construction time.
type Option func(*Service)

func WithMaxAttempts(n int) Option {
	return func(s *Service) { s.maxAttempts = n }
}

func WithFormBaseURL(url string) Option {
	return func(s *Service) { s.formBaseURL = url }
}

// WithTransitionObserver attaches a TransitionObserver to the Service's
// internal StateMachine, e.g. the prometheus-backed adapter in internal/metrics.
func WithTransitionObserver(o TransitionObserver) Option {
	return func(s *Service) { s.sm.WithObserver(o) }
}

func NewService(store Store, merchants MerchantLookup, signer *signing.Signer, bank BankClient, notifier Notifier, ids IdGen, clock Clock, opts ...Option) *Service {
	if clock == nil {
		clock = SystemClock{}
	}
	s := &Service{
		store:       store,
		sm:          NewStateMachine(store, clock),
		merchants:   merchants,
		signer:      signer,
		bank:        bank,
		notifier:    notifier,
		ids:         ids,
		clock:       clock,
		maxAttempts: DefaultMaxAttempts,
		formBaseURL: "/pay?payment_id=",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InitResult is the Init operation's output.
type InitResult struct {
	PaymentID string
	Status    Status
	PaymentURL string
	ExpiresAt time.Time
}

// Init validates and creates a fresh payment, advancing it INIT → NEW.
func (s *Service) Init(ctx context.Context, intent Intent, params map[string]string, token string) (result InitResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "PaymentService.Init")
	defer func() { tracing.End(span, err) }()

	log := logging.FromContext(ctx)

	m, ok, err := s.merchants.Lookup(ctx, intent.MerchantKey)
	if err != nil {
		return InitResult{}, gwerrors.Internal("merchant lookup failed", err)
	}
	if !ok || !m.Active {
		return InitResult{}, gwerrors.TerminalBlocked(intent.MerchantKey)
	}

	if !s.signer.Verify(params, m.Secret, token) {
		return InitResult{}, gwerrors.InvalidToken("signature mismatch")
	}

	if err := validateIntent(intent, m); err != nil {
		return InitResult{}, err
	}

	if existing, ok, err := s.store.GetByOrderID(ctx, intent.MerchantKey, intent.OrderID); err != nil {
		return InitResult{}, gwerrors.Internal("order lookup failed", err)
	} else if ok && existing.IsLive() {
		return InitResult{}, gwerrors.DuplicateOrder(intent.MerchantKey, intent.OrderID).WithDetail("payment_id", existing.PaymentID)
	}

	now := s.clock.Now()
	id := s.ids.NewPaymentID()
	p := NewPayment(id, intent, now)

	if err := s.store.CreateIfAbsent(ctx, p); err != nil {
		if gwErr, ok := err.(*gwerrors.Error); ok && gwErr.Code == gwerrors.CodeDuplicateOrder {
			return InitResult{}, err
		}
		return InitResult{}, gwerrors.Internal("payment creation failed", err)
	}

	next, err := s.sm.Transition(ctx, id, StatusNew, TransitionOpts{Actor: "system"})
	if err != nil {
		return InitResult{}, err
	}

	log.Info("payment initiated",
		zap.String("payment_id", id),
		zap.String("merchant_key", intent.MerchantKey),
		zap.String("order_id", intent.OrderID))

	s.dispatch(ctx, next, HistoryEntry{PaymentID: id, FromStatus: StatusInit, ToStatus: StatusNew, At: now})

	return InitResult{
		PaymentID:  id,
		Status:     next.Status,
		PaymentURL: s.formBaseURL + id,
		ExpiresAt:  next.ExpiresAt,
	}, nil
}

func validateIntent(intent Intent, m merchant.Merchant) error {
	if intent.Amount < constants.MinPaymentAmount {
		return gwerrors.Validation("amount", "below the minimum chargeable amount")
	}
	if intent.Amount > constants.MaxPaymentAmount {
		return gwerrors.Validation("amount", "exceeds the maximum chargeable amount")
	}
	if len(intent.Description) > constants.MaxDescriptionLength {
		return gwerrors.Validation("description", "too long")
	}
	if !m.SupportsCurrency(intent.Currency) {
		return gwerrors.Validation("currency", "not supported by merchant")
	}
	if intent.ExpiresAt != nil {
		now := time.Now()
		if intent.ExpiresAt.Before(now.Add(MinExpiryFromNow)) || intent.ExpiresAt.After(now.Add(MaxExpiryFromNow)) {
			return gwerrors.Validation("expires_at", "must be between 5 minutes and 24 hours from now")
		}
	}
	for _, u := range []string{intent.SuccessURL, intent.FailURL, intent.NotificationURL} {
		if u == "" {
			continue
		}
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return gwerrors.Validation("url", "must be well-formed http(s) URL")
		}
	}
	return nil
}

var cardNumberRe = regexp.MustCompile(`^[0-9]{12,19}$`)
var expiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2})$`)
var cvvRe = regexp.MustCompile(`^[0-9]{3,4}$`)

func validateCard(c Card, now time.Time) error {
	if !cardNumberRe.MatchString(c.Number) || !luhnValid(c.Number) {
		return gwerrors.NewError(gwerrors.CodeInvalidCard).WithDetail("field", "card_number").Build()
	}
	match := expiryRe.FindStringSubmatch(c.Expiry)
	if match == nil {
		return gwerrors.NewError(gwerrors.CodeInvalidCard).WithDetail("field", "expiry").Build()
	}
	month, _ := strconv.Atoi(match[1])
	year, _ := strconv.Atoi(match[2])
	expiry := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	if !expiry.After(now) {
		return gwerrors.NewError(gwerrors.CodeInvalidCard).WithDetail("field", "expiry").WithMessage("card expired").Build()
	}
	if !cvvRe.MatchString(c.CVV) {
		return gwerrors.NewError(gwerrors.CodeInvalidCard).WithDetail("field", "cvv").Build()
	}
	if strings.TrimSpace(c.Holder) == "" {
		return gwerrors.NewError(gwerrors.CodeInvalidCard).WithDetail("field", "holder").Build()
	}
	return nil
}

func luhnValid(number string) bool {
	sum := 0
	alt := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if alt {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		alt = !alt
	}
	return sum%10 == 0
}

var acceptableCardStates = map[Status]bool{
	StatusNew: true, StatusFormShowed: true, StatusOneChooseVision: true, StatusFinishAuthorize: true,
}

// AcceptCard drives the hosted form's card submission through AUTHORIZING
// and into whatever the simulated bank decides next.
func (s *Service) AcceptCard(ctx context.Context, paymentID string, card Card) (result Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "PaymentService.AcceptCard")
	defer func() { tracing.End(span, err) }()

	now := s.clock.Now()

	p, err := s.store.GetByID(ctx, paymentID)
	if err != nil {
		return Result{}, err
	}
	if !acceptableCardStates[p.Status] {
		return Result{}, gwerrors.NewError(gwerrors.CodeInvalidState).WithDetail("status", string(p.Status)).Build()
	}
	if now.After(p.ExpiresAt) {
		_, _ = s.sm.Transition(ctx, paymentID, StatusDeadlineExpired, TransitionOpts{Actor: "system"})
		return Result{}, gwerrors.NewError(gwerrors.CodeExpired).Build()
	}
	if err := validateCard(card, now); err != nil {
		return Result{}, err
	}

	if p.Status != StatusFinishAuthorize {
		if p.Status == StatusNew {
			if p, err = s.advance(ctx, paymentID, StatusFormShowed); err != nil {
				return Result{}, err
			}
		}
		if p.Status == StatusFormShowed {
			if p, err = s.advance(ctx, paymentID, StatusOneChooseVision); err != nil {
				return Result{}, err
			}
		}
		if p.Status == StatusOneChooseVision {
			if p, err = s.advance(ctx, paymentID, StatusFinishAuthorize); err != nil {
				return Result{}, err
			}
		}
	}

	p, err = s.advance(ctx, paymentID, StatusAuthorizing)
	if err != nil {
		return Result{}, err
	}

	code, bankRef, err := s.bank.RequestPayment(ctx, card, p.Intent.Amount)
	if err != nil {
		return Result{}, gwerrors.BankUnavailable(err)
	}

	return s.handleAuthResult(ctx, paymentID, code, bankRef)
}

func (s *Service) handleAuthResult(ctx context.Context, paymentID string, code BankCode, bankRef string) (Result, error) {
	switch code {
	case BankOK:
		p, err := s.advance(ctx, paymentID, StatusAuthorized)
		if err != nil {
			return Result{}, err
		}
		if p.Intent.normalizedPayType() == PayTypeSingleStage {
			return s.autoConfirm(ctx, paymentID)
		}
		return Result{PaymentID: paymentID, Status: p.Status}, nil

	case BankAuthRequired:
		if err := s.persistBankRef(ctx, paymentID, bankRef); err != nil {
			return Result{}, err
		}
		p, err := s.advance(ctx, paymentID, StatusThreeDSChecking)
		if err != nil {
			return Result{}, err
		}
		return Result{PaymentID: paymentID, Status: p.Status, Message: bankRef}, nil

	case BankInvalidCard:
		return s.authFailOrReject(ctx, paymentID, "bank reported invalid card info")

	case BankUnavailable:
		// Transient: leave the payment in AUTHORIZING for the sweeper to
		// reconcile rather than driving it to a terminal state the bank
		// never actually decided.
		return Result{}, gwerrors.BankUnavailable(fmt.Errorf("bank: %s reported code=%s", paymentID, code))

	default: // BankFraud, BankRejected
		p, err := s.advance(ctx, paymentID, StatusRejected)
		if err != nil {
			return Result{}, err
		}
		return Result{PaymentID: paymentID, Status: p.Status}, nil
	}
}

// persistBankRef stamps bankRef onto the payment row ahead of a transition
// that expects it already present (the state machine itself never mutates
// BankRef outside of a Transition call).
func (s *Service) persistBankRef(ctx context.Context, paymentID, bankRef string) error {
	p, err := s.store.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	p.BankRef = bankRef
	return s.store.UpdateConditional(ctx, p, p.Version, HistoryEntry{
		PaymentID: paymentID, FromStatus: p.Status, ToStatus: p.Status, At: s.clock.Now(), Actor: "system", Message: "bank_ref persisted",
	})
}

func (s *Service) authFailOrReject(ctx context.Context, paymentID, reason string) (Result, error) {
	p, err := s.store.GetByID(ctx, paymentID)
	if err != nil {
		return Result{}, err
	}
	if p.AttemptCount >= s.maxAttempts {
		p, err = s.sm.Transition(ctx, paymentID, StatusRejected, TransitionOpts{ErrorCode: "INVALID_CARD_INFO", Message: reason, Actor: "bank"})
	} else {
		p, err = s.sm.Transition(ctx, paymentID, StatusAuthFail, TransitionOpts{ErrorCode: "INVALID_CARD_INFO", Message: reason, Actor: "bank"})
	}
	if err != nil {
		return Result{}, err
	}
	return Result{PaymentID: paymentID, Status: p.Status}, nil
}

// Submit3DS verifies an OTP challenge against the bank and advances the
// payment out of THREE_DS_CHECKING (or its opaque sub-states).
func (s *Service) Submit3DS(ctx context.Context, paymentID, otp string) (result Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "PaymentService.Submit3DS")
	defer func() { tracing.End(span, err) }()

	p, err := s.store.GetByID(ctx, paymentID)
	if err != nil {
		return Result{}, err
	}
	switch p.Status {
	case StatusThreeDSChecking, StatusSubmitPassivization, StatusSubmitPassivization2:
	default:
		return Result{}, gwerrors.NewError(gwerrors.CodeInvalidState).WithDetail("status", string(p.Status)).Build()
	}
	if p.BankRef == "" {
		return Result{}, gwerrors.Internal("missing bank_ref for 3DS check", nil)
	}

	code, _, err := s.bank.Authorize(ctx, p.BankRef, otp)
	if err != nil {
		return Result{}, gwerrors.BankUnavailable(err)
	}

	switch code {
	case BankOK:
		if _, err := s.advance(ctx, paymentID, StatusThreeDSChecked); err != nil {
			return Result{}, err
		}
		p, err = s.advance(ctx, paymentID, StatusAuthorized)
		if err != nil {
			return Result{}, err
		}
		if p.Intent.normalizedPayType() == PayTypeSingleStage {
			return s.autoConfirm(ctx, paymentID)
		}
		return Result{PaymentID: paymentID, Status: p.Status}, nil
	case BankUnavailable:
		// Transient: leave the payment in THREE_DS_CHECKING (or its opaque
		// sub-state) for the sweeper to reconcile rather than driving it to
		// a terminal state the bank never actually decided.
		return Result{}, gwerrors.BankUnavailable(fmt.Errorf("bank: %s reported code=%s", paymentID, code))
	default:
		return s.authFailOrReject(ctx, paymentID, "bank rejected 3DS challenge")
	}
}

func (s *Service) autoConfirm(ctx context.Context, paymentID string) (Result, error) {
	if _, err := s.advance(ctx, paymentID, StatusConfirming); err != nil {
		return Result{}, err
	}
	code, err := s.bank.Capture(ctx, mustBankRef(ctx, s.store, paymentID))
	if err != nil || code != BankOK {
		p, tErr := s.advance(ctx, paymentID, StatusAuthFail)
		if tErr != nil {
			return Result{}, tErr
		}
		return Result{PaymentID: paymentID, Status: p.Status}, nil
	}
	p, err := s.advance(ctx, paymentID, StatusConfirmed)
	if err != nil {
		return Result{}, err
	}
	return Result{PaymentID: paymentID, Status: p.Status}, nil
}

func mustBankRef(ctx context.Context, store Store, paymentID string) string {
	p, err := store.GetByID(ctx, paymentID)
	if err != nil {
		return ""
	}
	return p.BankRef
}

// Confirm captures a two-stage AUTHORIZED payment.
func (s *Service) Confirm(ctx context.Context, paymentID string, params map[string]string, token string) (result Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "PaymentService.Confirm")
	defer func() { tracing.End(span, err) }()

	p, err := s.verifyRequest(ctx, paymentID, params, token)
	if err != nil {
		return Result{}, err
	}
	if p.Status != StatusAuthorized {
		return Result{}, gwerrors.NewError(gwerrors.CodeInvalidState).WithDetail("status", string(p.Status)).Build()
	}
	return s.autoConfirm(ctx, paymentID)
}

// CancelResult extends Result with the refunded amount, when partial.
type CancelResult struct {
	Result
	RefundedAmount *int64
}

// Cancel behaves per current status: free cancel before authorization,
// reversal of an authorized-not-captured payment, or refund of a captured one.
func (s *Service) Cancel(ctx context.Context, paymentID string, params map[string]string, token string, amount *int64) (result CancelResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "PaymentService.Cancel")
	defer func() { tracing.End(span, err) }()

	p, err := s.verifyRequest(ctx, paymentID, params, token)
	if err != nil {
		return CancelResult{}, err
	}

	switch p.Status {
	case StatusNew, StatusFormShowed:
		next, err := s.advance(ctx, paymentID, StatusCancelled)
		if err != nil {
			return CancelResult{}, err
		}
		return CancelResult{Result: Result{PaymentID: paymentID, Status: next.Status}}, nil

	case StatusAuthorized:
		if _, err := s.advance(ctx, paymentID, StatusReversing); err != nil {
			return CancelResult{}, err
		}
		code, err := s.bank.Reverse(ctx, p.BankRef, amount)
		if err != nil {
			return CancelResult{}, gwerrors.BankUnavailable(err)
		}
		to := StatusReversed
		if amount != nil && *amount < p.Intent.Amount {
			to = StatusPartialReversed
		}
		if code != BankOK {
			return CancelResult{}, gwerrors.BankRejected("reverse declined")
		}
		next, err := s.advance(ctx, paymentID, to)
		if err != nil {
			return CancelResult{}, err
		}
		return CancelResult{Result: Result{PaymentID: paymentID, Status: next.Status}, RefundedAmount: amount}, nil

	case StatusConfirmed:
		if _, err := s.advance(ctx, paymentID, StatusRefunding); err != nil {
			return CancelResult{}, err
		}
		code, err := s.bank.Refund(ctx, p.BankRef, amount)
		if err != nil {
			return CancelResult{}, gwerrors.BankUnavailable(err)
		}
		to := StatusRefunded
		if amount != nil && *amount < p.Intent.Amount {
			to = StatusPartialRefunded
		}
		if code != BankOK {
			return CancelResult{}, gwerrors.BankRejected("refund declined")
		}
		next, err := s.advance(ctx, paymentID, to)
		if err != nil {
			return CancelResult{}, err
		}
		return CancelResult{Result: Result{PaymentID: paymentID, Status: next.Status}, RefundedAmount: amount}, nil

	default:
		return CancelResult{}, gwerrors.NewError(gwerrors.CodeInvalidState).WithDetail("status", string(p.Status)).Build()
	}
}

// CheckOrder returns every payment (live or historical) for the pair.
func (s *Service) CheckOrder(ctx context.Context, merchantKey, orderID string, params map[string]string, token string) (result []Summary, err error) {
	ctx, span := tracing.StartSpan(ctx, "PaymentService.CheckOrder")
	defer func() { tracing.End(span, err) }()

	m, ok, err := s.merchants.Lookup(ctx, merchantKey)
	if err != nil {
		return nil, gwerrors.Internal("merchant lookup failed", err)
	}
	if !ok {
		return nil, gwerrors.TerminalBlocked(merchantKey)
	}
	if !s.signer.Verify(params, m.Secret, token) {
		return nil, gwerrors.InvalidToken("signature mismatch")
	}

	payments, err := s.store.ListByOrderID(ctx, merchantKey, orderID)
	if err != nil {
		return nil, gwerrors.Internal("order lookup failed", err)
	}

	summaries := make([]Summary, 0, len(payments))
	for _, p := range payments {
		hist, err := s.store.History(ctx, p.PaymentID)
		if err != nil {
			return nil, gwerrors.Internal("history lookup failed", err)
		}
		if len(hist) > historyTailSize {
			hist = hist[len(hist)-historyTailSize:]
		}
		summaries = append(summaries, Summary{
			PaymentID: p.PaymentID, Status: p.Status, Amount: p.Intent.Amount, Currency: p.Intent.Currency,
			CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt, History: hist,
		})
	}
	return summaries, nil
}

// Get is a point-in-time read of a single payment.
func (s *Service) Get(ctx context.Context, paymentID string, params map[string]string, token string) (result Payment, err error) {
	ctx, span := tracing.StartSpan(ctx, "PaymentService.Get")
	defer func() { tracing.End(span, err) }()

	p, err := s.store.GetByID(ctx, paymentID)
	if err != nil {
		return Payment{}, err
	}
	m, ok, err := s.merchants.Lookup(ctx, p.Intent.MerchantKey)
	if err != nil {
		return Payment{}, gwerrors.Internal("merchant lookup failed", err)
	}
	if !ok || !s.signer.Verify(params, m.Secret, token) {
		return Payment{}, gwerrors.InvalidToken("signature mismatch")
	}
	return p, nil
}

func (s *Service) verifyRequest(ctx context.Context, paymentID string, params map[string]string, token string) (Payment, error) {
	p, err := s.store.GetByID(ctx, paymentID)
	if err != nil {
		return Payment{}, err
	}
	m, ok, err := s.merchants.Lookup(ctx, p.Intent.MerchantKey)
	if err != nil {
		return Payment{}, gwerrors.Internal("merchant lookup failed", err)
	}
	if !ok || !s.signer.Verify(params, m.Secret, token) {
		return Payment{}, gwerrors.InvalidToken("signature mismatch")
	}
	return p, nil
}

func (s *Service) advance(ctx context.Context, paymentID string, to Status) (Payment, error) {
	p, err := s.sm.Transition(ctx, paymentID, to, TransitionOpts{Actor: "system"})
	if err != nil {
		return Payment{}, err
	}
	s.dispatch(ctx, p, HistoryEntry{PaymentID: paymentID, ToStatus: to, At: s.clock.Now()})
	return p, nil
}

func (s *Service) dispatch(ctx context.Context, p Payment, entry HistoryEntry) {
	if s.notifier == nil || p.Intent.NotificationURL == "" {
		return
	}
	if err := s.notifier.Enqueue(ctx, p, entry); err != nil {
		logging.FromContext(ctx).Warn("webhook enqueue failed",
			zap.String("payment_id", p.PaymentID), zap.Error(err))
	}
}
