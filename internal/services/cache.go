package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// CacheProvider is the cache surface the stats and prefetch services need;
// tests substitute an in-memory implementation.
type CacheProvider interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type CacheService struct {
	client *redis.Client
}

func NewCacheService(client *redis.Client) *CacheService {
	return &CacheService{
		client: client,
	}
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := s.client.Set(ctx, key, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get cache: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}

	return nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// Flush clears all cache entries. The importer calls this after loading new
// season files, since fresh rows invalidate every cached aggregate.
func (s *CacheService) Flush(ctx context.Context) error {
	return s.client.FlushDB(ctx).Err()
}

// NoopCache satisfies CacheProvider without storing anything. Used when
// Redis is unavailable so the service keeps answering from the database.
type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, key string, dest interface{}) error {
	return ErrCacheMiss
}

func (NoopCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

func (NoopCache) Delete(ctx context.Context, keys ...string) error {
	return nil
}

// Cache key generators. Key layout follows the original service so warm
// caches survive a rollover.
func PlayersCacheKey(search string, minShots, limit int) string {
	return fmt.Sprintf("players|%s|%d|%d", search, minShots, limit)
}

func YearsCacheKey() string {
	return "years"
}

func PlayerCacheKey(name string, years []int) string {
	return fmt.Sprintf("player|%s|%s", name, yearsKey(years))
}

func ShotsCacheKey(name string, years []int, limit int) string {
	return fmt.Sprintf("shots|%s|%s|%d", name, yearsKey(years), limit)
}

func CompareCacheKey(player1, player2 string, years []int) string {
	return fmt.Sprintf("compare|%s|%s|%s", player1, player2, yearsKey(years))
}

func yearsKey(years []int) string {
	if len(years) == 0 {
		return "all"
	}
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ",")
}
