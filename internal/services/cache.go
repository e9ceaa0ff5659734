package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrCacheMiss is returned when a key is absent
var ErrCacheMiss = fmt.Errorf("key not found")

// CacheService wraps Redis with JSON marshaling. It is the injectable
// cache component every other service takes; swapping the backing store
// means swapping this one constructor.
type CacheService struct {
	client *redis.Client
}

// NewCacheService creates a cache service over a connected Redis client
func NewCacheService(client *redis.Client) *CacheService {
	return &CacheService{
		client: client,
	}
}

// Set stores a value as JSON. A zero expiration means no Redis TTL;
// freshness is then the caller's concern.
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

// Get loads a value into dest, returning ErrCacheMiss when absent
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

// Delete removes keys
func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// SetWithRetry retries transient Set failures with linear backoff
func (s *CacheService) SetWithRetry(ctx context.Context, key string, value interface{}, expiration time.Duration, maxRetries int) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = s.Set(ctx, key, value, expiration); err == nil {
			return nil
		}
		logrus.Warnf("Cache set failed (attempt %d/%d): %v", i+1, maxRetries, err)
		time.Sleep(time.Millisecond * 100 * time.Duration(i+1))
	}
	return err
}

// Cache key generators

// LeaderboardCacheKey keys the API-facing leaderboard response
func LeaderboardCacheKey(tournamentID string) string {
	return fmt.Sprintf("leaderboard:%s", tournamentID)
}

// SnapshotCacheKey keys a normalized provider snapshot. Snapshots are
// scoped per provider event and reused across tournaments that point at
// the same event.
func SnapshotCacheKey(season int, eventID string) string {
	return fmt.Sprintf("snapshot:%d-%s", season, eventID)
}
