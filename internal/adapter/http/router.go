package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/finvault/bankd/internal/adapter/http/handler"
	"github.com/finvault/bankd/internal/adapter/http/middleware"
	"github.com/finvault/bankd/internal/infrastructure/auth"
	"github.com/finvault/bankd/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	UserHandler           *handler.UserHandler
	AccountHandler        *handler.AccountHandler
	TransactionHandler    *handler.TransactionHandler
	TransferHandler       *handler.TransferHandler
	BeneficiaryHandler    *handler.BeneficiaryHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler

	JWTManager       *auth.JWTManager
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	Logger           zerolog.Logger

	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", cfg.UserHandler.Register)
		r.Post("/auth/login", cfg.UserHandler.Login)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))

			// Idempotency runs after auth so keys are scoped per user.
			if cfg.IdempotencyStore != nil {
				idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
				r.Use(idempotencyMiddleware.Wrap)
			}

			// Profile
			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", cfg.UserHandler.GetProfile)
				r.Put("/", cfg.UserHandler.UpdateProfile)
				r.Put("/password", cfg.UserHandler.ChangePassword)
				r.Get("/reconciliation", cfg.ReconciliationHandler.ReconcileUser)
			})

			// Accounts
			r.Route("/accounts", func(r chi.Router) {
				r.Post("/", cfg.AccountHandler.Open)
				r.Get("/", cfg.AccountHandler.List)
				r.Get("/{id}", cfg.AccountHandler.Get)
				r.Delete("/{id}", cfg.AccountHandler.Deactivate)
				r.Post("/{id}/deposit", cfg.AccountHandler.Deposit)
				r.Get("/{id}/transactions", cfg.AccountHandler.ListTransactions)
				r.Get("/{id}/transfers", cfg.TransferHandler.ListByAccount)
				r.Get("/{id}/reconciliation", cfg.ReconciliationHandler.ReconcileAccount)
			})

			// Transactions
			r.Route("/transactions", func(r chi.Router) {
				r.Post("/", cfg.TransactionHandler.Create)
				r.Get("/", cfg.TransactionHandler.ListByUser)
				r.Get("/{id}", cfg.TransactionHandler.Get)
				r.Get("/reference/{reference}", cfg.TransactionHandler.GetByReference)
			})

			// Transfers
			r.Route("/transfers", func(r chi.Router) {
				r.Post("/", cfg.TransferHandler.Create)
				r.Get("/", cfg.TransferHandler.ListByUser)
				r.Get("/{id}", cfg.TransferHandler.Get)
			})

			// Beneficiaries
			r.Route("/beneficiaries", func(r chi.Router) {
				r.Post("/", cfg.BeneficiaryHandler.Add)
				r.Get("/", cfg.BeneficiaryHandler.List)
				r.Delete("/{id}", cfg.BeneficiaryHandler.Remove)
			})
		})
	})

	return r
}
