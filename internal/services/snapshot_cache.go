package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Schless09/Fore-cast-sub001/internal/providers"
)

// Freshness classifies a snapshot read
type Freshness string

const (
	// SnapshotFresh means the entry is within the configured TTL
	SnapshotFresh Freshness = "fresh"
	// SnapshotStale means the entry exists but the TTL has lapsed; it is
	// served only when a live refresh is impossible or fails
	SnapshotStale Freshness = "stale"
	// SnapshotMissing means no entry has ever been written for the key
	SnapshotMissing Freshness = "missing"
)

// kvStore is the narrow surface the snapshot cache needs from the cache
// component. *CacheService satisfies it.
type kvStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
}

// SnapshotCache holds the last successfully normalized leaderboard per
// (season, provider event). Writes are last-write-wins with no merge: only
// one tournament's leaderboard is polled at a time, so write contention is
// not a problem this cache needs to solve. Entries are never expired out
// of the store; a stale snapshot served with a degraded flag beats no data
// when the provider is down.
type SnapshotCache struct {
	store  kvStore
	ttl    time.Duration
	logger *logrus.Logger
}

// NewSnapshotCache creates a snapshot cache with the given freshness TTL
func NewSnapshotCache(store kvStore, ttl time.Duration, logger *logrus.Logger) *SnapshotCache {
	return &SnapshotCache{
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// Put overwrites the snapshot for its (season, event) key
func (c *SnapshotCache) Put(ctx context.Context, snapshot *providers.LeaderboardSnapshot) error {
	key := SnapshotCacheKey(snapshot.Season, snapshot.EventID)
	// No Redis TTL: stale entries must survive to back the degraded path.
	if err := c.store.Set(ctx, key, snapshot, 0); err != nil {
		return err
	}
	c.logger.WithFields(logrus.Fields{
		"key":     key,
		"players": len(snapshot.Scores),
		"round":   snapshot.CurrentRound,
	}).Debug("Stored leaderboard snapshot")
	return nil
}

// Get returns the snapshot for a (season, event) key with its freshness
func (c *SnapshotCache) Get(ctx context.Context, season int, eventID string) (*providers.LeaderboardSnapshot, Freshness, error) {
	var snapshot providers.LeaderboardSnapshot
	err := c.store.Get(ctx, SnapshotCacheKey(season, eventID), &snapshot)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, SnapshotMissing, nil
		}
		return nil, SnapshotMissing, err
	}

	if time.Since(snapshot.FetchedAt) > c.ttl {
		return &snapshot, SnapshotStale, nil
	}
	return &snapshot, SnapshotFresh, nil
}

// Age returns how old a snapshot is
func (c *SnapshotCache) Age(snapshot *providers.LeaderboardSnapshot) time.Duration {
	return time.Since(snapshot.FetchedAt)
}
