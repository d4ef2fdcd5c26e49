package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/homebooks/ledger/internal/infra/postgres"
	infraRedis "github.com/homebooks/ledger/internal/infra/redis"
	"github.com/homebooks/ledger/internal/ledger"
	"github.com/homebooks/ledger/internal/platform/account"
	"github.com/homebooks/ledger/internal/platform/currency"
	"github.com/homebooks/ledger/internal/platform/hierarchy"
	"github.com/homebooks/ledger/pkg/config"
	"github.com/homebooks/ledger/pkg/logger"
)

// app holds the connections a command needs. Logs go to stderr so stdout
// stays clean for command output.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *postgres.DB
	redis *goredis.Client
}

func openApp(cmd *cobra.Command) (*app, error) {
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		color.NoColor = true
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.Env, os.Stderr).WithComponent("ledgerctl")

	db, err := postgres.NewPool(cmd.Context(), postgres.Config{URL: cfg.DatabaseURL, MaxConns: 4})
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, db: db}, nil
}

func (a *app) close() error {
	var err error
	if a.redis != nil {
		err = multierr.Append(err, a.redis.Close())
	}
	a.db.Close()
	return err
}

// currencyCache connects to Redis when configured. A nil cache is valid.
func (a *app) currencyCache(ctx context.Context) currency.Cache {
	if !a.cfg.CacheEnabled() {
		return nil
	}
	client, err := infraRedis.NewClient(ctx, a.cfg.RedisURL, a.cfg.RedisPassword)
	if err != nil {
		a.log.Warn("redis unavailable, currency cache will not be cleared", "error", err)
		return nil
	}
	a.redis = client
	return infraRedis.NewCache(client, a.cfg.CurrencyCacheTTL, a.log)
}

func (a *app) currencies(ctx context.Context) *currency.Service {
	return currency.NewService(postgres.NewCurrencyRepository(a.db.Pool), a.currencyCache(ctx), a.log)
}

func (a *app) accounts() *account.Service {
	// Accounts are only read here, so no currency checker is needed
	return account.NewService(postgres.NewAccountRepository(a.db.Pool), nil, a.log)
}

func (a *app) ledger() *ledger.Service {
	return ledger.NewService(postgres.NewLedgerRepository(a.db.Pool), a.accounts(), a.log)
}

func (a *app) hierarchy() (*hierarchy.Service, error) {
	policy, err := hierarchy.ParseOrphanPolicy(a.cfg.HierarchyOrphanPolicy)
	if err != nil {
		return nil, fmt.Errorf("HIERARCHY_ORPHAN_POLICY: %w", err)
	}
	return hierarchy.NewService(postgres.NewHierarchyRepository(a.db.Pool), a.accounts(), policy, a.log), nil
}

// withApp opens the app for the duration of fn and folds the cleanup error
// into the result
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) (err error) {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, a.close())
	}()
	return fn(cmd.Context(), a)
}
