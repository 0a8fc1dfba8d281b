package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mikey/intake-pipeline/internal/core"
	"go.uber.org/zap"
)

// MemoryCache is an in-memory implementation of the CacheRepository and
// ConversationRepository interfaces
type MemoryCache struct {
	entries       map[string]core.CacheEntry
	conversations map[string][]core.ConversationMessage
	mu            sync.RWMutex
	logger        *zap.Logger
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(logger *zap.Logger) *MemoryCache {
	return &MemoryCache{
		entries:       make(map[string]core.CacheEntry),
		conversations: make(map[string][]core.ConversationMessage),
		logger:        logger,
	}
}

// Get retrieves a live entry
func (c *MemoryCache) Get(ctx context.Context, key string, now time.Time) (*core.CacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || !entry.LiveAt(now) {
		return nil, fmt.Errorf("key %q: %w", key, ErrNotFound)
	}
	return cloneEntry(entry), nil
}

// Set stores a cache entry
func (c *MemoryCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[entry.Key] = *cloneEntry(*entry)
	return nil
}

// Delete removes a cache entry
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// List returns live entries, newest first
func (c *MemoryCache) List(ctx context.Context, now time.Time) ([]core.CacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []core.CacheEntry{}
	for _, entry := range c.entries {
		if entry.LiveAt(now) {
			out = append(out, *cloneEntry(entry))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// Cleanup removes expired entries
func (c *MemoryCache) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiredCount int64
	for key, entry := range c.entries {
		if !entry.LiveAt(now) {
			delete(c.entries, key)
			expiredCount++
		}
	}

	c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", expiredCount))
	return expiredCount, nil
}

// Stats counts entries at now
func (c *MemoryCache) Stats(ctx context.Context, now time.Time) (core.CacheStats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := core.CacheStats{TotalEntries: len(c.entries)}
	for _, entry := range c.entries {
		if entry.LiveAt(now) {
			stats.ActiveEntries++
		} else {
			stats.ExpiredEntries++
		}
	}
	stats.CleanupNeeded = stats.ExpiredEntries > 0
	return stats, nil
}

// AppendMessage stores a conversation message with the next sequence number
func (c *MemoryCache) AppendMessage(ctx context.Context, msg *core.ConversationMessage) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	history := c.conversations[msg.ConversationID]
	stored := *msg
	stored.Sequence = int64(len(history)) + 1
	stored.Metadata = append([]byte(nil), msg.Metadata...)
	c.conversations[msg.ConversationID] = append(history, stored)

	msg.Sequence = stored.Sequence
	return stored.Sequence, nil
}

// History returns a conversation in sequence order
func (c *MemoryCache) History(ctx context.Context, conversationID string) ([]core.ConversationMessage, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	history := c.conversations[conversationID]
	out := make([]core.ConversationMessage, len(history))
	copy(out, history)
	return out, nil
}

// Stop is a no-op; the memory cache holds no external resources
func (c *MemoryCache) Stop() {}

func cloneEntry(e core.CacheEntry) *core.CacheEntry {
	out := e
	out.Payload = append([]byte(nil), e.Payload...)
	if e.ExpiresAt != nil {
		t := *e.ExpiresAt
		out.ExpiresAt = &t
	}
	return &out
}
