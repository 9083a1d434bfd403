// Package httpapi binds PaymentService's operations onto HTTP per the
// gateway's external interface: chi routing, encoding/json enveloped responses,
// and a base handler grounded on the ancestor's internal/pkg/handlers.BaseHandler.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	gwerrors "payment-gateway/internal/errors"
	"payment-gateway/internal/logging"
)

// envelope is the JSON shape every response (success or error) is wrapped in.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
}

type errorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// BaseHandler carries the response helpers every operation handler embeds.
type BaseHandler struct{}

// RespondJSON writes data wrapped in the success envelope at the given status.
func (BaseHandler) RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		zap.L().Error("failed to encode json response", zap.Error(err))
	}
}

// RespondError maps err onto the gateway's error taxonomy and writes the
// corresponding HTTP status; only this HTTP transport layer ever turns an
// error into a status code and body.
func (BaseHandler) RespondError(w http.ResponseWriter, r *http.Request, err error) {
	log := logging.FromContext(r.Context())

	var gwErr *gwerrors.Error
	if !errors.As(err, &gwErr) {
		gwErr = gwerrors.Internal("unexpected error", err)
	}

	status := gwErr.HTTPStatus()
	if status >= 500 {
		log.Error("request failed", zap.String("code", string(gwErr.Code)), zap.Error(err))
	} else {
		log.Warn("request rejected", zap.String("code", string(gwErr.Code)), zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := envelope{Success: false, Error: &errorBody{
		Code: string(gwErr.Code), Message: gwErr.Message, Details: gwErr.Details,
	}}
	if encErr := json.NewEncoder(w).Encode(body); encErr != nil {
		zap.L().Error("failed to encode error response", zap.Error(encErr))
	}
}
