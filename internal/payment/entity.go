package payment

import "time"

// PayType selects single- or two-stage authorization.
type PayType string

const (
	PayTypeSingleStage PayType = "single-stage"
	PayTypeTwoStage    PayType = "two-stage"
)

const (
	DefaultLanguage    = "ru"
	MinExpiryFromNow   = 5 * time.Minute
	MaxExpiryFromNow   = 24 * time.Hour
	DefaultExpiryFromNow = 24 * time.Hour
	FormDeadlineExtend = 30 * time.Minute
	DefaultMaxAttempts = 3
)

// Intent is the caller-supplied, immutable-once-bound description of a
// payment to create. Field names mirror spec's PaymentIntent.
type Intent struct {
	MerchantKey     string                 `json:"merchant_key" bson:"merchant_key"`
	OrderID         string                 `json:"order_id" bson:"order_id"`
	Amount          int64                  `json:"amount" bson:"amount"`
	Currency        string                 `json:"currency" bson:"currency"`
	Description     string                 `json:"description,omitempty" bson:"description,omitempty"`
	CustomerKey     string                 `json:"customer_key,omitempty" bson:"customer_key,omitempty"`
	PayType         PayType                `json:"pay_type,omitempty" bson:"pay_type,omitempty"`
	Language        string                 `json:"language,omitempty" bson:"language,omitempty"`
	SuccessURL      string                 `json:"success_url,omitempty" bson:"success_url,omitempty"`
	FailURL         string                 `json:"fail_url,omitempty" bson:"fail_url,omitempty"`
	NotificationURL string                 `json:"notification_url,omitempty" bson:"notification_url,omitempty"`
	ExpiresAt       *time.Time             `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	Receipt         map[string]interface{} `json:"receipt,omitempty" bson:"receipt,omitempty"`
	Items           []map[string]interface{} `json:"items,omitempty" bson:"items,omitempty"`
	Shops           []map[string]interface{} `json:"shops,omitempty" bson:"shops,omitempty"`
	Recurrent       bool                   `json:"recurrent,omitempty" bson:"recurrent,omitempty"`
	Data            map[string]interface{} `json:"data,omitempty" bson:"data,omitempty"`
}

// normalizedPayType returns the intent's pay type, defaulted to single-stage.
func (i Intent) normalizedPayType() PayType {
	if i.PayType == "" {
		return PayTypeSingleStage
	}
	return i.PayType
}

// Payment is the persistent aggregate driven through the lifecycle state
// machine. `version` backs optimistic concurrency at the store boundary.
type Payment struct {
	PaymentID        string    `db:"payment_id" bson:"_id"`
	Intent           Intent    `db:"-" bson:"intent"`
	Status           Status    `db:"status" bson:"status"`
	AttemptCount     int       `db:"attempt_count" bson:"attempt_count"`
	CreatedAt        time.Time `db:"created_at" bson:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" bson:"updated_at"`
	ExpiresAt        time.Time `db:"expires_at" bson:"expires_at"`
	LastErrorCode    string    `db:"last_error_code" bson:"last_error_code,omitempty"`
	LastErrorMessage string    `db:"last_error_message" bson:"last_error_message,omitempty"`
	BankRef          string    `db:"bank_ref" bson:"bank_ref,omitempty"`
	CardFingerprint  string    `db:"card_fingerprint" bson:"card_fingerprint,omitempty"`
	Version          int64     `db:"version" bson:"version"`
}

// NewPayment creates the INIT-state aggregate for a freshly validated intent.
func NewPayment(id string, intent Intent, now time.Time) Payment {
	expiresAt := now.Add(DefaultExpiryFromNow)
	if intent.ExpiresAt != nil {
		expiresAt = *intent.ExpiresAt
	}
	return Payment{
		PaymentID: id,
		Intent:    intent,
		Status:    StatusInit,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: expiresAt,
		Version:   0,
	}
}

// IsLive reports whether p still occupies the (merchant_key, order_id) slot
// per spec's uniqueness invariant — everything except DEADLINE_EXPIRED,
// CANCELLED and REJECTED.
func (p Payment) IsLive() bool {
	switch p.Status {
	case StatusDeadlineExpired, StatusCancelled, StatusRejected:
		return false
	default:
		return true
	}
}

// IsExpired reports whether p is non-terminal and past its deadline.
func (p Payment) IsExpired(now time.Time) bool {
	return !p.Status.IsTerminal() && now.After(p.ExpiresAt)
}

// bankRefRetained mirrors the invariant in spec §3: bank_ref is only
// meaningful while the payment is in one of these in-flight/settled states.
var bankRefRetained = map[Status]bool{
	StatusAuthorizing:          true,
	StatusThreeDSChecking:      true,
	StatusSubmitPassivization:  true,
	StatusSubmitPassivization2: true,
	StatusThreeDSChecked:       true,
	StatusAuthorized:           true,
	StatusConfirming:           true,
	StatusConfirmed:            true,
	StatusReversing:            true,
	StatusRefunding:            true,
	StatusReversed:             true,
	StatusPartialReversed:      true,
	StatusRefunded:             true,
	StatusPartialRefunded:      true,
}

// HistoryEntry is one append-only row of the status history log.
type HistoryEntry struct {
	ID           int64     `db:"id" bson:"id,omitempty"`
	PaymentID    string    `db:"payment_id" bson:"payment_id"`
	FromStatus   Status    `db:"from_status" bson:"from_status"`
	ToStatus     Status    `db:"to_status" bson:"to_status"`
	At           time.Time `db:"at" bson:"at"`
	Actor        string    `db:"actor" bson:"actor,omitempty"`
	ErrorCode    string    `db:"error_code" bson:"error_code,omitempty"`
	Message      string    `db:"message" bson:"message,omitempty"`
	IsRollback   bool      `db:"is_rollback" bson:"is_rollback"`
	RollbackFrom int64     `db:"rollback_from" bson:"rollback_from,omitempty"`
}

// Summary is the truncated view CheckOrder returns per payment.
type Summary struct {
	PaymentID string    `json:"payment_id"`
	Status    Status    `json:"status"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	History   []HistoryEntry `json:"history"`
}
