package core

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTTLHours is the lifetime of an entry stored without an explicit
	// TTL. Store treats a TTL of zero or less as never expires, not as
	// already expired.
	DefaultTTLHours = 24

	// MaxTTLHours caps the TTL Store accepts, about a hundred years. Larger
	// values are clamped so the expiry neither overflows time.Duration nor
	// leaves the range of Unix nanoseconds kept by the SQL repositories.
	MaxTTLHours = 100 * 365 * 24
)

// EphemeralCache is the time-bounded store for pipeline outputs. Every method
// is total: repository faults are logged and reported as false, absent or zero.
type EphemeralCache struct {
	repo          CacheRepository
	conversations ConversationRepository
	logger        *zap.Logger
	now           func() time.Time
}

// NewEphemeralCache creates a cache over repo. If repo also implements
// ConversationRepository the conversation log is enabled.
func NewEphemeralCache(repo CacheRepository, logger *zap.Logger) *EphemeralCache {
	c := &EphemeralCache{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
	if conv, ok := repo.(ConversationRepository); ok {
		c.conversations = conv
	}
	return c
}

// WithClock replaces the clock used for expiry decisions
func (c *EphemeralCache) WithClock(now func() time.Time) *EphemeralCache {
	c.now = now
	return c
}

// Store writes payload under key, replacing any previous entry. A ttlHours of
// zero or less stores an entry that never expires; one above MaxTTLHours is
// clamped to it.
func (c *EphemeralCache) Store(ctx context.Context, key string, payload any, ttlHours int) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("Failed to encode cache payload", zap.Error(err), zap.String("key", key))
		return false
	}

	now := c.now()
	entry := &CacheEntry{
		Key:       key,
		Payload:   data,
		CreatedAt: now,
	}
	if ttlHours > 0 {
		if ttlHours > MaxTTLHours {
			ttlHours = MaxTTLHours
		}
		expiresAt := now.Add(time.Duration(ttlHours) * time.Hour)
		entry.ExpiresAt = &expiresAt
	}

	if err := c.repo.Set(ctx, entry); err != nil {
		c.logger.Error("Failed to store cache entry", zap.Error(err), zap.String("key", key))
		return false
	}
	return true
}

// Get returns the payload stored under key while it is live
func (c *EphemeralCache) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	entry, err := c.repo.Get(ctx, key, c.now())
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Error("Failed to read cache entry", zap.Error(err), zap.String("key", key))
		}
		return nil, false
	}
	return entry.Payload, true
}

// GetInto decodes the payload stored under key into dst
func (c *EphemeralCache) GetInto(ctx context.Context, key string, dst any) bool {
	payload, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		c.logger.Error("Failed to decode cache payload", zap.Error(err), zap.String("key", key))
		return false
	}
	return true
}

// Delete removes key. Removing an absent key succeeds.
func (c *EphemeralCache) Delete(ctx context.Context, key string) bool {
	if err := c.repo.Delete(ctx, key); err != nil {
		c.logger.Error("Failed to delete cache entry", zap.Error(err), zap.String("key", key))
		return false
	}
	return true
}

// ListLive returns all live entries, newest created first
func (c *EphemeralCache) ListLive(ctx context.Context) []CacheEntry {
	entries, err := c.repo.List(ctx, c.now())
	if err != nil {
		c.logger.Error("Failed to list cache entries", zap.Error(err))
		return []CacheEntry{}
	}
	return entries
}

// SweepExpired removes every entry whose expiry has passed and returns how
// many were removed
func (c *EphemeralCache) SweepExpired(ctx context.Context) int {
	removed, err := c.repo.Cleanup(ctx, c.now())
	if err != nil {
		c.logger.Error("Failed to clean up expired cache entries", zap.Error(err))
		return 0
	}
	c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", removed))
	return int(removed)
}

// Stats counts total, live and expired entries
func (c *EphemeralCache) Stats(ctx context.Context) (CacheStats, bool) {
	stats, err := c.repo.Stats(ctx, c.now())
	if err != nil {
		c.logger.Error("Failed to get cache stats", zap.Error(err))
		return CacheStats{}, false
	}
	return stats, true
}

// AppendConversation adds a message to a conversation log
func (c *EphemeralCache) AppendConversation(ctx context.Context, conversationID, messageType, content string, metadata any) bool {
	if c.conversations == nil {
		c.logger.Warn("Conversation log not supported by cache backend")
		return false
	}

	msg := &ConversationMessage{
		ConversationID: conversationID,
		MessageType:    messageType,
		Content:        content,
		CreatedAt:      c.now(),
	}
	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err != nil {
			c.logger.Error("Failed to encode conversation metadata", zap.Error(err))
			return false
		}
		msg.Metadata = data
	}

	seq, err := c.conversations.AppendMessage(ctx, msg)
	if err != nil {
		c.logger.Error("Failed to store conversation message",
			zap.Error(err),
			zap.String("conversation_id", conversationID))
		return false
	}
	c.logger.Debug("Stored conversation message",
		zap.String("conversation_id", conversationID),
		zap.Int64("sequence", seq))
	return true
}

// ConversationHistory returns the messages of a conversation in order
func (c *EphemeralCache) ConversationHistory(ctx context.Context, conversationID string) []ConversationMessage {
	if c.conversations == nil {
		return []ConversationMessage{}
	}
	history, err := c.conversations.History(ctx, conversationID)
	if err != nil {
		c.logger.Error("Failed to get conversation history",
			zap.Error(err),
			zap.String("conversation_id", conversationID))
		return []ConversationMessage{}
	}
	return history
}
