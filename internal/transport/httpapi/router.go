package httpapi

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/homebooks/ledger/internal/transport/httpapi/handler"
	"github.com/homebooks/ledger/internal/transport/httpapi/middleware"
	"github.com/homebooks/ledger/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger         *logger.Logger
	AllowedOrigins []string
	RateLimitRPS   int
	RateLimitBurst int

	AccountHandler     *handler.AccountHandler
	TransactionHandler *handler.TransactionHandler
	LedgerHandler      *handler.LedgerHandler
	HierarchyHandler   *handler.HierarchyHandler
	BudgetHandler      *handler.BudgetHandler
	CurrencyHandler    *handler.CurrencyHandler
	HealthHandler      *handler.HealthHandler
	DocsHandler        *handler.DocsHandler
}

// NewRouter creates a new HTTP router
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Get("/health", handler.GetHealth)
	r.Get("/health/live", handler.GetLiveness)
	if cfg.HealthHandler != nil {
		r.Get("/health/ready", cfg.HealthHandler.GetReadiness)
		r.Get("/health/detailed", cfg.HealthHandler.GetHealthDetailed)
	}

	if cfg.DocsHandler != nil {
		r.Get("/docs", cfg.DocsHandler.GetOpenAPISpec)
		r.Get("/docs/info", cfg.DocsHandler.GetOpenAPIInfo)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.AccountHandler != nil {
			r.Route("/accounts", func(r chi.Router) {
				r.Post("/", cfg.AccountHandler.CreateAccount)
				r.Get("/", cfg.AccountHandler.ListAccounts)
				r.Get("/{id}", cfg.AccountHandler.GetAccount)
				r.Delete("/{id}", cfg.AccountHandler.DeleteAccount)
				r.Get("/{id}/balance", cfg.AccountHandler.GetBalance)
			})
		}

		if cfg.TransactionHandler != nil {
			r.Route("/transactions", func(r chi.Router) {
				r.Post("/", cfg.TransactionHandler.CreateTransaction)
				r.Get("/", cfg.TransactionHandler.GetTransactions)
				r.Get("/{id}", cfg.TransactionHandler.GetTransaction)
				r.Put("/{id}", cfg.TransactionHandler.UpdateTransaction)
				r.Delete("/{id}", cfg.TransactionHandler.DeleteTransaction)
			})
		}

		if cfg.LedgerHandler != nil {
			r.Get("/ledger/integrity", cfg.LedgerHandler.GetIntegrity)
		}

		if cfg.HierarchyHandler != nil {
			r.Route("/hierarchy", func(r chi.Router) {
				r.Get("/", cfg.HierarchyHandler.GetHierarchy)
				r.Post("/groups", cfg.HierarchyHandler.CreateGroup)
				r.Post("/leaves", cfg.HierarchyHandler.AttachAccount)
				r.Delete("/{id}", cfg.HierarchyHandler.DeleteNode)
			})
		}

		if cfg.BudgetHandler != nil {
			r.Route("/budgets", func(r chi.Router) {
				r.Post("/", cfg.BudgetHandler.CreateBudget)
				r.Get("/", cfg.BudgetHandler.ListBudgets)
				r.Get("/{id}", cfg.BudgetHandler.GetBudget)
				r.Delete("/{id}", cfg.BudgetHandler.DeleteBudget)
				r.Get("/{id}/report", cfg.BudgetHandler.GetReport)
				r.Put("/{id}/entries/{accountID}", cfg.BudgetHandler.SetEntry)
				r.Delete("/{id}/entries/{accountID}", cfg.BudgetHandler.RemoveEntry)
			})
		}

		if cfg.CurrencyHandler != nil {
			r.Get("/currencies", cfg.CurrencyHandler.ListCurrencies)
			r.Get("/currencies/{code}", cfg.CurrencyHandler.GetCurrency)
		}
	})

	return r
}
