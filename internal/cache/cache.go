// Package cache stores GitHub API responses with their etags so repeated
// lookups can skip the network or revalidate cheaply.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/KOFI-GYIMAH/github-activity/internal/models"
	"github.com/KOFI-GYIMAH/github-activity/pkg/logger"
)

const (
	// DefaultTTL is how long an entry is trusted without revalidation (15 minutes)
	DefaultTTL = 15 * time.Minute

	keyPrefix = "gh-cache:"
)

// Cache reads and writes entries through a KeyValueStore. Store failures are
// never returned: caching only saves requests, so a failed read is a miss and
// a failed write is dropped.
type Cache struct {
	store models.KeyValueStore
	ttl   time.Duration
	now   func() time.Time
}

// New creates a Cache over store. A non-positive ttl falls back to DefaultTTL.
func New(store models.KeyValueStore, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// SetClock replaces the time source
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// ReadFresh returns the entry for key only if it holds data stored within the TTL
func (c *Cache) ReadFresh(ctx context.Context, key string) *models.CacheEntry {
	entry := c.ReadAny(ctx, key)
	if entry == nil || entry.StoredAt == 0 || !entry.HasData() {
		return nil
	}

	if c.now().Sub(entry.StoredTime()) > c.ttl {
		return nil
	}
	return entry
}

// ReadAny returns the latest entry for key whatever its age
func (c *Cache) ReadAny(ctx context.Context, key string) *models.CacheEntry {
	raw, err := c.store.Get(ctx, keyPrefix+key)
	if err != nil {
		logger.Debug("cache read %s failed: %v", key, err)
		return nil
	}
	if raw == nil {
		return nil
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		logger.Debug("cache entry %s is corrupt: %v", key, err)
		return nil
	}
	entry.Key = key
	return &entry
}

// Write stores a new entry for key stamped with the current time
func (c *Cache) Write(ctx context.Context, key, etag string, data json.RawMessage, link string) {
	c.put(ctx, &models.CacheEntry{
		Key:  key,
		ETag: etag,
		Data: data,
		Link: link,
	})
}

// Touch re-stamps an existing entry, restarting its TTL window
func (c *Cache) Touch(ctx context.Context, entry *models.CacheEntry) {
	refreshed := *entry
	c.put(ctx, &refreshed)
}

func (c *Cache) put(ctx context.Context, entry *models.CacheEntry) {
	entry.StoredAt = c.now().UnixMilli()

	raw, err := json.Marshal(entry)
	if err != nil {
		logger.Debug("cache entry %s not serialisable: %v", entry.Key, err)
		return
	}

	if err := c.store.Set(ctx, keyPrefix+entry.Key, raw); err != nil {
		logger.Debug("cache write %s failed: %v", entry.Key, err)
	}
}
