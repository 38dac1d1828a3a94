package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/chainvault/internal/adapter/http/handler"
	"github.com/iho/chainvault/internal/adapter/http/middleware"
	"github.com/iho/chainvault/internal/infrastructure/metrics"
	"github.com/iho/chainvault/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AddressHandler     *handler.AddressHandler
	BalanceHandler     *handler.BalanceHandler
	TransactionHandler *handler.TransactionHandler
	WithdrawHandler    *handler.WithdrawHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	Metrics            *metrics.Metrics
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	if cfg.Metrics != nil {
		metricsMiddleware := middleware.NewMetricsMiddleware(cfg.Metrics)
		r.Use(metricsMiddleware.Wrap)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Addresses
		r.Route("/addresses", func(r chi.Router) {
			r.Post("/", cfg.AddressHandler.Generate)
			r.Get("/", cfg.AddressHandler.List)
			r.Get("/{address}", cfg.AddressHandler.Get)
			r.Get("/{address}/balance", cfg.BalanceHandler.Get)
			r.Get("/{address}/history", cfg.TransactionHandler.History)
		})

		// Deposits and withdrawals
		r.Post("/process-transaction", cfg.TransactionHandler.Process)
		r.Post("/withdraw", cfg.WithdrawHandler.Submit)
	})

	return r
}
