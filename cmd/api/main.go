package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/homebooks/ledger/api"
	"github.com/homebooks/ledger/internal/infra/postgres"
	infraRedis "github.com/homebooks/ledger/internal/infra/redis"
	"github.com/homebooks/ledger/internal/ledger"
	"github.com/homebooks/ledger/internal/platform/account"
	"github.com/homebooks/ledger/internal/platform/budget"
	"github.com/homebooks/ledger/internal/platform/currency"
	"github.com/homebooks/ledger/internal/platform/hierarchy"
	"github.com/homebooks/ledger/internal/transport/httpapi"
	"github.com/homebooks/ledger/internal/transport/httpapi/handler"
	"github.com/homebooks/ledger/pkg/config"
	"github.com/homebooks/ledger/pkg/logger"
)

func main() {
	// Create context that listens for termination signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewDefault(cfg.Env)
	log.Info("Starting ledger API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"orphan_policy", cfg.HierarchyOrphanPolicy,
	)

	orphanPolicy, err := hierarchy.ParseOrphanPolicy(cfg.HierarchyOrphanPolicy)
	if err != nil {
		log.Error("Invalid hierarchy orphan policy", "error", err)
		os.Exit(1)
	}

	// Initialize database connection pool
	db, err := postgres.NewPool(ctx, postgres.Config{
		URL:      cfg.DatabaseURL,
		MaxConns: int32(cfg.DBMaxConns),
	})
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("Database connection established")

	healthHandler := handler.NewHealthHandler(db).
		WithStats(func() interface{} { return db.Stats() })

	// The currency cache is optional; without Redis every lookup hits Postgres
	var currencyCache currency.Cache
	if cfg.CacheEnabled() {
		redisClient, err := infraRedis.NewClient(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			log.Warn("Redis unavailable, currency cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cache := infraRedis.NewCache(redisClient, cfg.CurrencyCacheTTL, log)
			currencyCache = cache
			healthHandler.WithCheck("redis", cache)
			log.Info("Redis connection established", "ttl", cfg.CurrencyCacheTTL)
		}
	} else {
		log.Info("REDIS_URL not configured, currency cache disabled")
	}

	// Initialize repositories
	currencyRepo := postgres.NewCurrencyRepository(db.Pool)
	accountRepo := postgres.NewAccountRepository(db.Pool)
	ledgerRepo := postgres.NewLedgerRepository(db.Pool)
	hierarchyRepo := postgres.NewHierarchyRepository(db.Pool)
	budgetRepo := postgres.NewBudgetRepository(db.Pool)

	// Initialize services
	currencySvc := currency.NewService(currencyRepo, currencyCache, log)
	accountSvc := account.NewService(accountRepo, currencySvc, log)
	ledgerSvc := ledger.NewService(ledgerRepo, accountSvc, log)
	hierarchySvc := hierarchy.NewService(hierarchyRepo, accountSvc, orphanPolicy, log)
	budgetSvc := budget.NewService(budgetRepo, ledgerSvc, accountSvc, log)

	// Start background integrity checks; a failed check degrades /health/detailed
	if cfg.IntegrityCheckInterval > 0 {
		monitor := ledger.NewIntegrityMonitor(ledgerSvc, cfg.IntegrityCheckInterval, log)
		healthHandler.WithCheck("ledger", monitor)
		go monitor.Run(ctx)
	} else {
		log.Info("INTEGRITY_CHECK_INTERVAL is 0, background integrity checks disabled")
	}

	// Create HTTP router
	r := httpapi.NewRouter(httpapi.Config{
		Logger:             log,
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
		AccountHandler:     handler.NewAccountHandler(accountSvc, ledgerSvc),
		TransactionHandler: handler.NewTransactionHandler(ledgerSvc, accountSvc),
		LedgerHandler:      handler.NewLedgerHandler(ledgerSvc),
		HierarchyHandler:   handler.NewHierarchyHandler(hierarchySvc),
		BudgetHandler:      handler.NewBudgetHandler(budgetSvc),
		CurrencyHandler:    handler.NewCurrencyHandler(currencySvc),
		HealthHandler:      healthHandler,
		DocsHandler:        handler.NewDocsHandler(api.OpenAPI),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()
	log.Info("Shutdown signal received")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped gracefully")
}
