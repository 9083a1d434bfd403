package httpapi

import (
	"strconv"
	"time"

	gwerrors "payment-gateway/internal/errors"
	"payment-gateway/internal/payment"
)

// initRequest mirrors payment.Intent on the wire; Amount travels as a
// string so its canonical form participates unchanged in signature
// canonicalization (spec §4.1).
type initRequest struct {
	MerchantKey     string                    `json:"merchant_key" validate:"required"`
	OrderID         string                    `json:"order_id" validate:"required"`
	Amount          string                    `json:"amount" validate:"required,numeric"`
	Currency        string                    `json:"currency" validate:"required,len=3"`
	Description     string                    `json:"description,omitempty"`
	CustomerKey     string                    `json:"customer_key,omitempty"`
	PayType         string                    `json:"pay_type,omitempty"`
	Language        string                    `json:"language,omitempty"`
	SuccessURL      string                    `json:"success_url,omitempty"`
	FailURL         string                    `json:"fail_url,omitempty"`
	NotificationURL string                    `json:"notification_url,omitempty"`
	ExpiresAt       *time.Time                `json:"expires_at,omitempty"`
	Receipt         map[string]interface{}    `json:"receipt,omitempty"`
	Items           []map[string]interface{}  `json:"items,omitempty"`
	Shops           []map[string]interface{}  `json:"shops,omitempty"`
	Recurrent       bool                      `json:"recurrent,omitempty"`
	Data            map[string]interface{}    `json:"data,omitempty"`
}

func (req initRequest) toIntent() (payment.Intent, error) {
	amount, err := strconv.ParseInt(req.Amount, 10, 64)
	if err != nil {
		return payment.Intent{}, gwerrors.Validation("amount", "must be an integer string")
	}
	return payment.Intent{
		MerchantKey:     req.MerchantKey,
		OrderID:         req.OrderID,
		Amount:          amount,
		Currency:        req.Currency,
		Description:     req.Description,
		CustomerKey:     req.CustomerKey,
		PayType:         payment.PayType(req.PayType),
		Language:        req.Language,
		SuccessURL:      req.SuccessURL,
		FailURL:         req.FailURL,
		NotificationURL: req.NotificationURL,
		ExpiresAt:       req.ExpiresAt,
		Receipt:         req.Receipt,
		Items:           req.Items,
		Shops:           req.Shops,
		Recurrent:       req.Recurrent,
		Data:            req.Data,
	}, nil
}

type initResponse struct {
	PaymentID  string    `json:"payment_id"`
	Status     string    `json:"status"`
	PaymentURL string    `json:"payment_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func toInitResponse(r payment.InitResult) initResponse {
	return initResponse{PaymentID: r.PaymentID, Status: string(r.Status), PaymentURL: r.PaymentURL, ExpiresAt: r.ExpiresAt}
}

type acceptCardRequest struct {
	CardNumber string `json:"card_number" validate:"required"`
	Expiry     string `json:"expiry" validate:"required"`
	CVV        string `json:"cvv" validate:"required"`
	Holder     string `json:"holder" validate:"required"`
}

func (req acceptCardRequest) toCard() payment.Card {
	return payment.Card{Number: req.CardNumber, Expiry: req.Expiry, CVV: req.CVV, Holder: req.Holder}
}

type submit3DSRequest struct {
	OTP string `json:"otp" validate:"required"`
}

type resultResponse struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

func toResultResponse(r payment.Result) resultResponse {
	return resultResponse{PaymentID: r.PaymentID, Status: string(r.Status), Message: r.Message}
}

type cancelRequest struct {
	Amount *int64 `json:"amount,omitempty"`
}

type cancelResponse struct {
	PaymentID      string `json:"payment_id"`
	Status         string `json:"status"`
	RefundedAmount *int64 `json:"refunded_amount,omitempty"`
}

func toCancelResponse(r payment.CancelResult) cancelResponse {
	return cancelResponse{PaymentID: r.PaymentID, Status: string(r.Status), RefundedAmount: r.RefundedAmount}
}

type summaryResponse struct {
	PaymentID string                 `json:"payment_id"`
	Status    string                 `json:"status"`
	Amount    int64                  `json:"amount"`
	Currency  string                 `json:"currency"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	History   []historyEntryResponse `json:"history"`
}

type historyEntryResponse struct {
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	At         time.Time `json:"at"`
	ErrorCode  string    `json:"error_code,omitempty"`
	Message    string    `json:"message,omitempty"`
}

func toSummaryResponse(s payment.Summary) summaryResponse {
	hist := make([]historyEntryResponse, 0, len(s.History))
	for _, h := range s.History {
		hist = append(hist, historyEntryResponse{
			FromStatus: string(h.FromStatus), ToStatus: string(h.ToStatus), At: h.At,
			ErrorCode: h.ErrorCode, Message: h.Message,
		})
	}
	return summaryResponse{
		PaymentID: s.PaymentID, Status: string(s.Status), Amount: s.Amount, Currency: s.Currency,
		CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt, History: hist,
	}
}

type paymentViewResponse struct {
	PaymentID       string    `json:"payment_id"`
	Status          string    `json:"status"`
	Amount          int64     `json:"amount"`
	Currency        string    `json:"currency"`
	OrderID         string    `json:"order_id"`
	AttemptCount    int       `json:"attempt_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	ExpiresAt       time.Time `json:"expires_at"`
	LastErrorCode   string    `json:"last_error_code,omitempty"`
	LastErrorMessage string   `json:"last_error_message,omitempty"`
}

func toPaymentViewResponse(p payment.Payment) paymentViewResponse {
	return paymentViewResponse{
		PaymentID: p.PaymentID, Status: string(p.Status), Amount: p.Intent.Amount, Currency: p.Intent.Currency,
		OrderID: p.Intent.OrderID, AttemptCount: p.AttemptCount, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
		ExpiresAt: p.ExpiresAt, LastErrorCode: p.LastErrorCode, LastErrorMessage: p.LastErrorMessage,
	}
}
