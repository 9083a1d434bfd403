package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	gwerrors "payment-gateway/internal/errors"
	"payment-gateway/internal/payment"
)

// Handler binds payment.Service's operations onto HTTP handlers.
type Handler struct {
	BaseHandler
	service  *payment.Service
	validate *validator.Validate
}

func NewHandler(service *payment.Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

func (h *Handler) init(w http.ResponseWriter, r *http.Request) {
	raw, params, token, err := decodeSigned(r)
	if err != nil {
		h.RespondError(w, r, err)
		return
	}

	reqBytes, _ := json.Marshal(raw)
	var req initRequest
	if err := json.Unmarshal(reqBytes, &req); err != nil {
		h.RespondError(w, r, gwerrors.Validation("body", "malformed intent"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.RespondError(w, r, gwerrors.Validation("body", err.Error()))
		return
	}

	intent, err := req.toIntent()
	if err != nil {
		h.RespondError(w, r, err)
		return
	}

	result, err := h.service.Init(r.Context(), intent, params, token)
	if err != nil {
		h.RespondError(w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, toInitResponse(result))
}

func (h *Handler) acceptCard(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "id")
	var req acceptCardRequest
	if r.Header.Get("Content-Type") == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			h.RespondError(w, r, gwerrors.Validation("body", "invalid form"))
			return
		}
		req = acceptCardRequest{
			CardNumber: r.PostForm.Get("card_number"), Expiry: r.PostForm.Get("expiry"),
			CVV: r.PostForm.Get("cvv"), Holder: r.PostForm.Get("holder"),
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, r, gwerrors.Validation("body", "invalid JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.RespondError(w, r, gwerrors.Validation("body", err.Error()))
		return
	}

	result, err := h.service.AcceptCard(r.Context(), paymentID, req.toCard())
	if err != nil {
		h.RespondError(w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, toResultResponse(result))
}

func (h *Handler) submit3DS(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "id")
	var req submit3DSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, r, gwerrors.Validation("body", "invalid JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.RespondError(w, r, gwerrors.Validation("body", err.Error()))
		return
	}

	result, err := h.service.Submit3DS(r.Context(), paymentID, req.OTP)
	if err != nil {
		h.RespondError(w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, toResultResponse(result))
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "id")
	_, params, token, err := decodeSigned(r)
	if err != nil {
		h.RespondError(w, r, err)
		return
	}

	result, err := h.service.Confirm(r.Context(), paymentID, params, token)
	if err != nil {
		h.RespondError(w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, toResultResponse(result))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "id")
	raw, params, token, err := decodeSigned(r)
	if err != nil {
		h.RespondError(w, r, err)
		return
	}

	var amount *int64
	if v, ok := raw["amount"]; ok {
		if s, ok := v.(string); ok {
			parsed, perr := strconv.ParseInt(s, 10, 64)
			if perr != nil {
				h.RespondError(w, r, gwerrors.Validation("amount", "must be an integer string"))
				return
			}
			amount = &parsed
		}
	}

	result, err := h.service.Cancel(r.Context(), paymentID, params, token, amount)
	if err != nil {
		h.RespondError(w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, toCancelResponse(result))
}

func (h *Handler) checkOrder(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	merchantKey := q.Get("merchant_key")
	orderID := q.Get("order_id")
	token := q.Get("token")
	if merchantKey == "" || orderID == "" {
		h.RespondError(w, r, gwerrors.Validation("merchant_key/order_id", "both are required"))
		return
	}

	summaries, err := h.service.CheckOrder(r.Context(), merchantKey, orderID, queryParams(r), token)
	if err != nil {
		h.RespondError(w, r, err)
		return
	}
	out := make([]summaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, toSummaryResponse(s))
	}
	h.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "id")
	token := r.URL.Query().Get("token")

	p, err := h.service.Get(r.Context(), paymentID, queryParams(r), token)
	if err != nil {
		h.RespondError(w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, toPaymentViewResponse(p))
}
