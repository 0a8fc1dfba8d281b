package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/mikey/intake-pipeline/internal/core"
	"go.uber.org/zap"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS memory_store (
		cache_key TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		expires_at INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_memory_store_expires_at ON memory_store(expires_at)`,
	`CREATE TABLE IF NOT EXISTS conversation_history (
		conversation_id TEXT NOT NULL,
		sequence INTEGER NOT NULL,
		message_type TEXT NOT NULL,
		content TEXT NOT NULL,
		metadata TEXT,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (conversation_id, sequence)
	)`,
}

const sqliteUpsertSQL = `
	INSERT OR REPLACE INTO memory_store (cache_key, data, created_at, expires_at)
	VALUES (?, ?, ?, ?)`

// SQLiteCache is a SQLite implementation of the CacheRepository and
// ConversationRepository interfaces
type SQLiteCache struct {
	store  sqlStore
	logger *zap.Logger
}

// NewSQLiteCache opens dbPath and creates the cache tables if needed
func NewSQLiteCache(dbPath string, logger *zap.Logger) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	logger.Info("Opened SQLite cache", zap.String("path", dbPath))
	return &SQLiteCache{store: sqlStore{db: db, isDuplicate: isSQLiteDuplicate}, logger: logger}, nil
}

// Get retrieves a live entry
func (c *SQLiteCache) Get(ctx context.Context, key string, now time.Time) (*core.CacheEntry, error) {
	return c.store.get(ctx, key, now)
}

// Set stores an entry, replacing any previous entry with the same key
func (c *SQLiteCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	return c.store.set(ctx, sqliteUpsertSQL, entry)
}

// Delete removes an entry
func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	return c.store.delete(ctx, key)
}

// List returns live entries, newest first
func (c *SQLiteCache) List(ctx context.Context, now time.Time) ([]core.CacheEntry, error) {
	return c.store.list(ctx, now)
}

// Cleanup removes expired entries
func (c *SQLiteCache) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	n, err := c.store.cleanup(ctx, now)
	if err != nil {
		return 0, err
	}
	c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", n))
	return n, nil
}

// Stats counts entries at now
func (c *SQLiteCache) Stats(ctx context.Context, now time.Time) (core.CacheStats, error) {
	return c.store.stats(ctx, now)
}

// AppendMessage stores a conversation message with the next sequence number
func (c *SQLiteCache) AppendMessage(ctx context.Context, msg *core.ConversationMessage) (int64, error) {
	return c.store.appendMessage(ctx, msg)
}

// History returns a conversation in sequence order
func (c *SQLiteCache) History(ctx context.Context, conversationID string) ([]core.ConversationMessage, error) {
	return c.store.history(ctx, conversationID)
}

// Stop closes the database connection
func (c *SQLiteCache) Stop() {
	if err := c.store.db.Close(); err != nil {
		c.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}

func isSQLiteDuplicate(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
