package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	appledger "github.com/peerrank/backend/internal/application/ledger"
	"github.com/peerrank/backend/internal/infrastructure/config"
)

// RedisBalanceCache implements BalanceCache using Redis. Suitable for
// distributed deployments where multiple instances share the cache.
type RedisBalanceCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// DefaultBalanceTTL bounds staleness when an invalidation is lost
const DefaultBalanceTTL = 10 * time.Minute

// NewRedisBalanceCache creates a Redis-backed balance cache
func NewRedisBalanceCache(cfg *config.RedisConfig) (*RedisBalanceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisBalanceCache{
		client:    client,
		keyPrefix: "ledger:balance:",
		ttl:       DefaultBalanceTTL,
	}, nil
}

// NewRedisBalanceCacheWithClient creates a cache over an existing Redis
// client. Useful for testing or when sharing a client across components.
func NewRedisBalanceCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisBalanceCache {
	if keyPrefix == "" {
		keyPrefix = "ledger:balance:"
	}
	if ttl <= 0 {
		ttl = DefaultBalanceTTL
	}
	return &RedisBalanceCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Get returns the cached balance and whether it was present
func (c *RedisBalanceCache) Get(ctx context.Context, projectID uuid.UUID, userID string) (int64, bool, error) {
	val, err := c.client.Get(ctx, c.key(projectID, userID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get cached balance: %w", err)
	}
	balance, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt cached balance %q: %w", val, err)
	}
	return balance, true, nil
}

// Set stores the balance with the configured TTL
func (c *RedisBalanceCache) Set(ctx context.Context, projectID uuid.UUID, userID string, balance int64) error {
	if err := c.client.Set(ctx, c.key(projectID, userID), strconv.FormatInt(balance, 10), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache balance: %w", err)
	}
	return nil
}

// Invalidate drops the cached balance after a ledger write
func (c *RedisBalanceCache) Invalidate(ctx context.Context, projectID uuid.UUID, userID string) error {
	if err := c.client.Del(ctx, c.key(projectID, userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached balance: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisBalanceCache) Close() error {
	return c.client.Close()
}

func (c *RedisBalanceCache) key(projectID uuid.UUID, userID string) string {
	return c.keyPrefix + projectID.String() + ":" + userID
}

// Ensure RedisBalanceCache implements BalanceCache
var _ appledger.BalanceCache = (*RedisBalanceCache)(nil)
