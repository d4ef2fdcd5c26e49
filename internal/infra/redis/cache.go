package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/homebooks/ledger/internal/platform/currency"
	"github.com/homebooks/ledger/pkg/logger"
)

const (
	// DefaultTTL is how long currency master data stays cached
	DefaultTTL = 10 * time.Minute

	// KeyPrefix is the prefix for currency cache keys
	KeyPrefix = "currency:"

	allKey = KeyPrefix + "_all"
)

// Cache is a Redis-backed currency master data cache
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewCache creates a currency cache. A non-positive ttl uses DefaultTTL.
func NewCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: log.WithComponent("cache"),
	}
}

// NewClient connects to Redis from a redis:// URL or a bare host:port
func NewClient(ctx context.Context, url, password string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	if password != "" {
		opts.Password = password
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func codeKey(code string) string {
	return KeyPrefix + code
}

// Get retrieves one cached currency
func (c *Cache) Get(ctx context.Context, code string) (*currency.Currency, bool, error) {
	var cur currency.Currency
	ok, err := c.get(ctx, codeKey(code), &cur)
	if !ok || err != nil {
		return nil, false, err
	}
	return &cur, true, nil
}

// Set caches one currency
func (c *Cache) Set(ctx context.Context, cur *currency.Currency) error {
	return c.set(ctx, codeKey(cur.Code), cur)
}

// GetAll retrieves the cached currency list
func (c *Cache) GetAll(ctx context.Context) ([]*currency.Currency, bool, error) {
	var all []*currency.Currency
	ok, err := c.get(ctx, allKey, &all)
	if !ok || err != nil {
		return nil, false, err
	}
	return all, true, nil
}

// SetAll caches the full currency list and each currency on its own key
func (c *Cache) SetAll(ctx context.Context, currencies []*currency.Currency) error {
	data, err := json.Marshal(currencies)
	if err != nil {
		return fmt.Errorf("failed to marshal currencies: %w", err)
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, allKey, data, c.ttl)
	for _, cur := range currencies {
		one, err := json.Marshal(cur)
		if err != nil {
			return fmt.Errorf("failed to marshal currency %s: %w", cur.Code, err)
		}
		pipe.Set(ctx, codeKey(cur.Code), one, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Error("cache error", "operation", "set_all", "error", err)
		return fmt.Errorf("failed to cache currencies: %w", err)
	}
	return nil
}

// Clear removes every cached currency
func (c *Cache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, KeyPrefix+"*", 0).Iterator()

	pipe := c.client.Pipeline()
	count := 0
	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
		count++
		if count >= 100 {
			if _, err := pipe.Exec(ctx); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			pipe = c.client.Pipeline()
			count = 0
		}
	}

	if count > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}

	return iter.Err()
}

// Health pings Redis
func (c *Cache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) get(ctx context.Context, key string, dst any) (bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("cache miss", "key", key)
		return false, nil
	}
	if err != nil {
		c.logger.Error("cache error", "operation", "get", "key", key, "error", err)
		return false, fmt.Errorf("failed to get cached %s: %w", key, err)
	}

	if err := json.Unmarshal(val, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached %s: %w", key, err)
	}

	c.logger.Debug("cache hit", "key", key)
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Error("cache error", "operation", "set", "key", key, "error", err)
		return fmt.Errorf("failed to set cached %s: %w", key, err)
	}
	return nil
}
