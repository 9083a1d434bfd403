package httpapi

import (
	"bytes"
	"context"
	"html/template"
	"net/http"

	"payment-gateway/internal/payment"
)

// HostedForm is the minimal FormRenderer the Init operation's payment_url
// resolves to: a card-entry page that submits straight into AcceptCard.
// Everything about its markup is out of this module's core scope (spec §1)
// and exists only so the gateway is browser-testable end to end.
type HostedForm struct {
	service *payment.Service
	tmpl    *template.Template
}

var _ payment.FormRenderer = (*HostedForm)(nil)

var formTemplate = template.Must(template.New("pay").Parse(`<!doctype html>
<html><head><title>Pay</title></head>
<body>
<form method="post" action="/pay/{{.PaymentID}}/accept">
  <input name="card_number" placeholder="Card number" />
  <input name="expiry" placeholder="MM/YY" />
  <input name="cvv" placeholder="CVV" />
  <input name="holder" placeholder="Cardholder" />
  <button type="submit">Pay</button>
</form>
</body></html>`))

func NewHostedForm(service *payment.Service) *HostedForm {
	return &HostedForm{service: service, tmpl: formTemplate}
}

func (f *HostedForm) Render(ctx context.Context, paymentID string) (string, error) {
	var buf bytes.Buffer
	if err := f.tmpl.Execute(&buf, struct{ PaymentID string }{paymentID}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (f *HostedForm) Submit(ctx context.Context, paymentID string, formValues map[string]string) (payment.Result, error) {
	card := payment.Card{
		Number: formValues["card_number"],
		Expiry: formValues["expiry"],
		CVV:    formValues["cvv"],
		Holder: formValues["holder"],
	}
	return f.service.AcceptCard(ctx, paymentID, card)
}

func (h *Handler) renderForm(renderer payment.FormRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paymentID := r.URL.Query().Get("payment_id")
		html, err := renderer.Render(r.Context(), paymentID)
		if err != nil {
			h.RespondError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}
}
