package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	gwerrors "payment-gateway/internal/errors"
	"payment-gateway/internal/logging"
)

// Recover middleware turns a panic into an INTERNAL error response instead
// of crashing the request goroutine.
func Recover() func(http.Handler) http.Handler {
	base := BaseHandler{}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = gwerrors.Internal("panic", nil).WithDetail("recovered", rec)
					}
					logging.FromContext(r.Context()).Error("panic recovered",
						zap.Any("panic", rec), zap.String("path", r.URL.Path))
					base.RespondError(w, r, gwerrors.Internal("internal error", err))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger attaches logger to the request context and logs one line per
// request at completion (method, path, status, duration). Neither the
// attached logger nor that line carries the chi request ID.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := logging.WithLogger(r.Context(), logger)
			ww := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(ww, r.WithContext(ctx))

			logger.Info("request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
