package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/mikey/intake-pipeline/internal/core"
	"go.uber.org/zap"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS memory_store (
		cache_key VARCHAR(255) PRIMARY KEY,
		data LONGTEXT NOT NULL,
		created_at BIGINT NOT NULL,
		expires_at BIGINT NULL,
		INDEX idx_expires_at (expires_at)
	)`,
	`CREATE TABLE IF NOT EXISTS conversation_history (
		conversation_id VARCHAR(255) NOT NULL,
		sequence BIGINT NOT NULL,
		message_type VARCHAR(64) NOT NULL,
		content LONGTEXT NOT NULL,
		metadata LONGTEXT NULL,
		created_at BIGINT NOT NULL,
		PRIMARY KEY (conversation_id, sequence)
	)`,
}

const mysqlUpsertSQL = `
	INSERT INTO memory_store (cache_key, data, created_at, expires_at)
	VALUES (?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
		data = VALUES(data),
		created_at = VALUES(created_at),
		expires_at = VALUES(expires_at)`

// MySQLCache is a MySQL implementation of the CacheRepository and
// ConversationRepository interfaces
type MySQLCache struct {
	store  sqlStore
	logger *zap.Logger
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	cache, err := NewMySQLCacheWithDB(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return cache, nil
}

// NewMySQLCacheWithDB creates the cache tables on an open pool
func NewMySQLCacheWithDB(db *sql.DB, logger *zap.Logger) (*MySQLCache, error) {
	for _, stmt := range mysqlSchema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return &MySQLCache{store: sqlStore{db: db, isDuplicate: isMySQLDuplicate}, logger: logger}, nil
}

// Get retrieves a live entry
func (c *MySQLCache) Get(ctx context.Context, key string, now time.Time) (*core.CacheEntry, error) {
	return c.store.get(ctx, key, now)
}

// Set stores a cache entry
func (c *MySQLCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	return c.store.set(ctx, mysqlUpsertSQL, entry)
}

// Delete removes a cache entry
func (c *MySQLCache) Delete(ctx context.Context, key string) error {
	return c.store.delete(ctx, key)
}

// List returns live entries, newest first
func (c *MySQLCache) List(ctx context.Context, now time.Time) ([]core.CacheEntry, error) {
	return c.store.list(ctx, now)
}

// Cleanup removes expired entries
func (c *MySQLCache) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	n, err := c.store.cleanup(ctx, now)
	if err != nil {
		return 0, err
	}
	c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", n))
	return n, nil
}

// Stats counts entries at now
func (c *MySQLCache) Stats(ctx context.Context, now time.Time) (core.CacheStats, error) {
	return c.store.stats(ctx, now)
}

// AppendMessage stores a conversation message with the next sequence number
func (c *MySQLCache) AppendMessage(ctx context.Context, msg *core.ConversationMessage) (int64, error) {
	return c.store.appendMessage(ctx, msg)
}

// History returns a conversation in sequence order
func (c *MySQLCache) History(ctx context.Context, conversationID string) ([]core.ConversationMessage, error) {
	return c.store.history(ctx, conversationID)
}

// Stop closes the database connection
func (c *MySQLCache) Stop() {
	if err := c.store.db.Close(); err != nil {
		c.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}

// mysqlDuplicateEntry is ER_DUP_ENTRY
const mysqlDuplicateEntry = 1062

func isMySQLDuplicate(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
