package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mdaffar/marketledger/internal/adapter/http/handler"
	"github.com/mdaffar/marketledger/internal/adapter/http/middleware"
	"github.com/mdaffar/marketledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	PartyHandler     *handler.PartyHandler
	AccountHandler   *handler.AccountHandler
	ItemHandler      *handler.ItemHandler
	OrderHandler     *handler.OrderHandler
	ReportHandler    *handler.ReportHandler
	HealthHandler    *handler.HealthHandler
	Logger           zerolog.Logger
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.NewRecoveryMiddleware(cfg.Logger).Wrap)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Parties
		r.Route("/parties", func(r chi.Router) {
			r.Post("/", cfg.PartyHandler.Register)
			r.Get("/", cfg.PartyHandler.List)
			r.Get("/{id}", cfg.PartyHandler.Get)
			r.Post("/{id}/storefront", cfg.PartyHandler.OpenStorefront)
		})

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Post("/{id}/credit", cfg.AccountHandler.Credit)
			r.Post("/{id}/debit", cfg.AccountHandler.Debit)
			r.Get("/{id}/transactions", cfg.AccountHandler.Transactions)
			r.Get("/{id}/cashflow", cfg.AccountHandler.CashFlow)
		})

		// Items
		r.Route("/items", func(r chi.Router) {
			r.Post("/", cfg.ItemHandler.Create)
			r.Get("/", cfg.ItemHandler.List)
			r.Get("/{id}", cfg.ItemHandler.Get)
			r.Put("/{id}", cfg.ItemHandler.Update)
			r.Post("/{id}/replenish", cfg.ItemHandler.Replenish)
			r.Post("/{id}/discard", cfg.ItemHandler.Discard)
			r.Put("/{id}/price", cfg.ItemHandler.SetPrice)
			r.Put("/{id}/visibility", cfg.ItemHandler.SetVisibility)
		})

		// Orders
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", cfg.OrderHandler.Create)
			r.Get("/", cfg.OrderHandler.List)
			r.Get("/{id}", cfg.OrderHandler.Get)
			r.Post("/{id}/pay", cfg.OrderHandler.Pay)
			r.Post("/{id}/complete", cfg.OrderHandler.Complete)
			r.Post("/{id}/cancel", cfg.OrderHandler.Cancel)
		})

		// Reports
		r.Route("/reports", func(r chi.Router) {
			r.Get("/top-active-accounts", cfg.ReportHandler.TopActiveAccounts)
			r.Get("/dormant-accounts", cfg.ReportHandler.DormantAccounts)
			r.Get("/top-sold-items", cfg.ReportHandler.TopSoldItems)
			r.Get("/active-buyers-today", cfg.ReportHandler.ActiveBuyersToday)
			r.Get("/active-sellers-today", cfg.ReportHandler.ActiveSellersToday)
			r.Get("/spending", cfg.ReportHandler.Spending)
			r.Get("/loyal-customers", cfg.ReportHandler.LoyalCustomers)
		})
	})

	return r
}
