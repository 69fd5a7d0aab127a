// internal/flags/cache.go

package flags

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Cache stores one FlagAnalysis per interest id. Get returns (nil, nil) on
// a miss. Entries have no TTL; they live until Delete is called.
type Cache interface {
	Get(ctx context.Context, interestID uuid.UUID) (*FlagAnalysis, error)
	Set(ctx context.Context, analysis *FlagAnalysis) error
	Delete(ctx context.Context, interestID uuid.UUID) error
}

type redisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func cacheKey(interestID uuid.UUID) string {
	return fmt.Sprintf("flags:analysis:%s", interestID)
}

func (c *redisCache) Get(ctx context.Context, interestID uuid.UUID) (*FlagAnalysis, error) {
	data, err := c.client.Get(ctx, cacheKey(interestID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read flag analysis cache: %w", err)
	}

	var analysis FlagAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode cached flag analysis: %w", err)
	}

	return &analysis, nil
}

func (c *redisCache) Set(ctx context.Context, analysis *FlagAnalysis) error {
	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to encode flag analysis: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(analysis.InterestID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write flag analysis cache: %w", err)
	}

	return nil
}

func (c *redisCache) Delete(ctx context.Context, interestID uuid.UUID) error {
	if err := c.client.Del(ctx, cacheKey(interestID)).Err(); err != nil {
		return fmt.Errorf("failed to delete flag analysis cache: %w", err)
	}
	return nil
}

// memoryCache is an in-process Cache used in tests and when Redis is not
// configured
type memoryCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*FlagAnalysis
}

func NewMemoryCache() Cache {
	return &memoryCache{
		entries: make(map[uuid.UUID]*FlagAnalysis),
	}
}

func (c *memoryCache) Get(ctx context.Context, interestID uuid.UUID) (*FlagAnalysis, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	analysis, ok := c.entries[interestID]
	if !ok {
		return nil, nil
	}

	copied := *analysis
	return &copied, nil
}

func (c *memoryCache) Set(ctx context.Context, analysis *FlagAnalysis) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := *analysis
	c.entries[analysis.InterestID] = &copied
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, interestID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, interestID)
	return nil
}
