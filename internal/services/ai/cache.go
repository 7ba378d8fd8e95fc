package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/plume/internal/models"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

const modelCacheKeyPrefix = "plume:models"

// ModelCache stores live model catalogs between requests
type ModelCache interface {
	Get(ctx context.Context, key string) ([]models.ModelInfo, bool, error)
	Set(ctx context.Context, key string, list []models.ModelInfo, ttl time.Duration) error
}

// ModelCacheKey builds the cache key for a provider catalog. Catalogs can
// differ per account, so the key carries a fingerprint of the credential
// (never the credential itself).
func ModelCacheKey(provider models.Provider, settings models.ProviderSettings) string {
	scope := settings.Endpoint
	if settings.APIKey != "" {
		sum := sha256.Sum256([]byte(settings.APIKey))
		scope = hex.EncodeToString(sum[:])[:16]
	}
	return fmt.Sprintf("%s:%s:%s", modelCacheKeyPrefix, provider, scope)
}

// RedisModelCache is a ModelCache backed by Redis
type RedisModelCache struct {
	client *redis.Client
}

// NewRedisModelCache connects to redisURL and verifies the connection
func NewRedisModelCache(ctx context.Context, redisURL string) (*RedisModelCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisModelCache{client: client}, nil
}

func (c *RedisModelCache) Get(ctx context.Context, key string) ([]models.ModelInfo, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var list []models.ModelInfo
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, false, fmt.Errorf("decode cached models: %w", err)
	}
	return list, true, nil
}

func (c *RedisModelCache) Set(ctx context.Context, key string, list []models.ModelInfo, ttl time.Duration) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode models: %w", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping checks if Redis is reachable
func (c *RedisModelCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisModelCache) Close() error {
	return c.client.Close()
}

// DefaultMemoryCacheSize bounds the number of catalogs kept in process
const DefaultMemoryCacheSize = 64

// MemoryModelCache is an in-process ModelCache used when Redis is not
// configured. Entries expire after the TTL given at construction.
type MemoryModelCache struct {
	lru *expirable.LRU[string, []models.ModelInfo]
}

// NewMemoryModelCache creates an empty in-process cache holding up to size
// catalogs for ttl each
func NewMemoryModelCache(size int, ttl time.Duration) *MemoryModelCache {
	if size <= 0 {
		size = DefaultMemoryCacheSize
	}
	return &MemoryModelCache{lru: expirable.NewLRU[string, []models.ModelInfo](size, nil, ttl)}
}

func (c *MemoryModelCache) Get(_ context.Context, key string) ([]models.ModelInfo, bool, error) {
	list, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]models.ModelInfo(nil), list...), true, nil
}

// Set stores list. The per-call ttl is ignored in favour of the cache TTL.
func (c *MemoryModelCache) Set(_ context.Context, key string, list []models.ModelInfo, _ time.Duration) error {
	c.lru.Add(key, append([]models.ModelInfo(nil), list...))
	return nil
}
