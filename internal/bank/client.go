// Package bank implements payment.BankClient against a simulated issuing
// bank HTTP backend, grounded on the ancestor's
// internal/payments/provider/epayment Gateway interface (RequestPayment ~
// ChargeCard, Authorize ~ CheckPaymentStatus's 3-D Secure step, Capture/
// Reverse/Refund mirroring its confirm/cancel/refund calls), the resty
// retry idiom and decimal-formatted amount wire field used by the
// ancestor's epay provider client.
package bank

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"payment-gateway/internal/metrics"
	"payment-gateway/internal/payment"
	"payment-gateway/pkg/constants"
)

const retryBase = 100 * time.Millisecond

// Config configures the simulated bank backend.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// Client is a resty-backed payment.BankClient.
type Client struct {
	http    *resty.Client
	metrics *metrics.Registry
}

var _ payment.BankClient = (*Client)(nil)

func New(cfg Config, metricsReg *metrics.Registry) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetBasicAuth(cfg.Username, cfg.Password).
		SetRetryCount(constants.MaxGatewayRetries).
		SetRetryWaitTime(retryBase).
		SetRetryMaxWaitTime(2 * time.Second)
	httpClient.SetTransport(otelhttp.NewTransport(http.DefaultTransport))

	return &Client{http: httpClient, metrics: metricsReg}
}

func (c *Client) record(operation string, start time.Time, code payment.BankCode, err error) {
	if c.metrics == nil {
		return
	}
	outcome := metrics.BankOutcomeSuccess
	switch {
	case err != nil, code == payment.BankUnavailable:
		outcome = metrics.BankOutcomeUnavailable
	case code == payment.BankRejected, code == payment.BankInvalidCard, code == payment.BankFraud:
		outcome = metrics.BankOutcomeDeclined
	}
	c.metrics.ObserveBankCall(operation, outcome, time.Since(start))
}

// minorToDecimal renders amountMinor (the smallest currency unit, e.g.
// cents) as a fixed-point decimal string, the wire format the ancestor's
// epay provider used for every amount field rather than a raw integer.
func minorToDecimal(amountMinor int64) string {
	return decimal.New(amountMinor, -2).StringFixed(2)
}

type chargeRequest struct {
	CardNumber string `json:"card_number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
	Holder     string `json:"holder"`
	Amount     string `json:"amount"`
}

type bankResponse struct {
	Code    string `json:"code"`
	BankRef string `json:"bank_ref"`
}

func (c *Client) RequestPayment(ctx context.Context, card payment.Card, amountMinor int64) (code payment.BankCode, bankRef string, err error) {
	start := time.Now()
	defer func() { c.record("request_payment", start, code, err) }()

	var out bankResponse
	resp, reqErr := c.http.R().SetContext(ctx).
		SetBody(chargeRequest{
			CardNumber: card.Number, Expiry: card.Expiry, CVV: card.CVV, Holder: card.Holder,
			Amount: minorToDecimal(amountMinor),
		}).
		SetResult(&out).
		Post("/v1/charge")
	if reqErr != nil {
		return payment.BankUnavailable, "", reqErr
	}
	if resp.IsError() {
		return payment.BankUnavailable, "", fmt.Errorf("bank: charge failed status=%d", resp.StatusCode())
	}
	return payment.BankCode(out.Code), out.BankRef, nil
}

func (c *Client) Authorize(ctx context.Context, bankRef, otp string) (code payment.BankCode, outRef string, err error) {
	start := time.Now()
	defer func() { c.record("authorize", start, code, err) }()

	var out bankResponse
	resp, reqErr := c.http.R().SetContext(ctx).
		SetBody(map[string]string{"bank_ref": bankRef, "otp": otp}).
		SetResult(&out).
		Post("/v1/3ds/authorize")
	if reqErr != nil {
		return payment.BankUnavailable, "", reqErr
	}
	if resp.IsError() {
		return payment.BankUnavailable, "", fmt.Errorf("bank: authorize failed status=%d", resp.StatusCode())
	}
	return payment.BankCode(out.Code), out.BankRef, nil
}

func (c *Client) Capture(ctx context.Context, bankRef string) (code payment.BankCode, err error) {
	start := time.Now()
	defer func() { c.record("capture", start, code, err) }()

	var out bankResponse
	resp, reqErr := c.http.R().SetContext(ctx).
		SetBody(map[string]string{"bank_ref": bankRef}).
		SetResult(&out).
		Post("/v1/capture")
	if reqErr != nil {
		return payment.BankUnavailable, reqErr
	}
	if resp.IsError() {
		return payment.BankUnavailable, fmt.Errorf("bank: capture failed status=%d", resp.StatusCode())
	}
	return payment.BankCode(out.Code), nil
}

func (c *Client) Reverse(ctx context.Context, bankRef string, amountMinor *int64) (payment.BankCode, error) {
	return c.amountOp(ctx, "reverse", "/v1/reverse", bankRef, amountMinor)
}

func (c *Client) Refund(ctx context.Context, bankRef string, amountMinor *int64) (payment.BankCode, error) {
	return c.amountOp(ctx, "refund", "/v1/refund", bankRef, amountMinor)
}

func (c *Client) amountOp(ctx context.Context, operation, path, bankRef string, amountMinor *int64) (code payment.BankCode, err error) {
	start := time.Now()
	defer func() { c.record(operation, start, code, err) }()

	body := map[string]interface{}{"bank_ref": bankRef}
	if amountMinor != nil {
		body["amount"] = minorToDecimal(*amountMinor)
	}
	var out bankResponse
	resp, reqErr := c.http.R().SetContext(ctx).SetBody(body).SetResult(&out).Post(path)
	if reqErr != nil {
		return payment.BankUnavailable, reqErr
	}
	if resp.IsError() {
		return payment.BankUnavailable, fmt.Errorf("bank: %s failed status=%d", path, resp.StatusCode())
	}
	return payment.BankCode(out.Code), nil
}
