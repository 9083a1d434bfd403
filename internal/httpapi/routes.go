package httpapi

import (
	"time"

	chiprometheus "github.com/766b/chi-prometheus"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"payment-gateway/internal/metrics"
	"payment-gateway/internal/payment"
)

// Router wires every operation from spec §6 onto chi, the same middleware
// stack shape the ancestor uses (request id, real ip, structured logging,
// panic recovery, timeout, heartbeat) plus CORS, served swagger docs, and a
// scrapeable /metrics endpoint when metricsReg is non-nil.
func Router(service *payment.Service, form payment.FormRenderer, logger *zap.Logger, requestTimeout time.Duration, metricsReg *metrics.Registry) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(Recover())
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Heartbeat("/health"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if metricsReg != nil {
		r.Use(chiprometheus.NewMiddleware("payment_gateway"))
		r.Get("/metrics", metricsReg.Handler().ServeHTTP)
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	h := NewHandler(service)

	r.Get("/pay", h.renderForm(form))

	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Post("/", h.init)
		r.Get("/check-order", h.checkOrder)
		r.Get("/{id}", h.get)
		r.Post("/{id}/confirm", h.confirm)
		r.Post("/{id}/cancel", h.cancel)
	})

	r.Route("/pay/{id}", func(r chi.Router) {
		r.Post("/accept", h.acceptCard)
		r.Post("/3ds", h.submit3DS)
	})

	return r
}
