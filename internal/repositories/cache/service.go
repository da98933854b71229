// Package cache provides the Redis read-through cache for account balances.
// The database stays authoritative; every ledger mutation invalidates the
// cached balance before returning.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// ErrMiss is returned when the key is absent from the cache.
var ErrMiss = errors.New("cache miss")

const balanceTTL = 5 * time.Minute

// BalanceCache caches account balances keyed by account id.
type BalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBalanceCache(client *redis.Client) *BalanceCache {
	return &BalanceCache{client: client, ttl: balanceTTL}
}

func balanceKey(accountID uint) string {
	return fmt.Sprintf("account:balance:%d", accountID)
}

func (c *BalanceCache) GetBalance(ctx context.Context, accountID uint) (decimal.Decimal, error) {
	val, err := c.client.Get(ctx, balanceKey(accountID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, ErrMiss
		}
		return decimal.Zero, fmt.Errorf("failed to get cached balance: %w", err)
	}
	balance, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt cached balance %q: %w", val, err)
	}
	return balance, nil
}

func (c *BalanceCache) SetBalance(ctx context.Context, accountID uint, balance decimal.Decimal) error {
	return c.client.Set(ctx, balanceKey(accountID), balance.String(), c.ttl).Err()
}

func (c *BalanceCache) Invalidate(ctx context.Context, accountIDs ...uint) error {
	keys := make([]string, len(accountIDs))
	for i, id := range accountIDs {
		keys[i] = balanceKey(id)
	}
	return c.client.Del(ctx, keys...).Err()
}

// HealthCheck pings Redis.
func (c *BalanceCache) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *BalanceCache) Close() error {
	return c.client.Close()
}
