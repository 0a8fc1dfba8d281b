package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/intake-pipeline/internal/core"
)

// ErrNotFound is returned when a key has no live entry
var ErrNotFound = core.ErrNotFound

// maxAppendAttempts bounds the retries of a conversation append that lost a
// sequence number to a concurrent writer
const maxAppendAttempts = 5

// Queries shared by the SQL adapters. Timestamps are Unix nanoseconds and a
// NULL expires_at never expires.
const (
	selectEntrySQL = `
		SELECT cache_key, data, created_at, expires_at
		FROM memory_store
		WHERE cache_key = ? AND (expires_at IS NULL OR expires_at > ?)`

	listEntriesSQL = `
		SELECT cache_key, data, created_at, expires_at
		FROM memory_store
		WHERE expires_at IS NULL OR expires_at > ?
		ORDER BY created_at DESC, cache_key ASC`

	deleteEntrySQL = `DELETE FROM memory_store WHERE cache_key = ?`

	cleanupSQL = `DELETE FROM memory_store WHERE expires_at IS NOT NULL AND expires_at <= ?`

	statsSQL = `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN expires_at IS NOT NULL AND expires_at <= ? THEN 1 ELSE 0 END), 0)
		FROM memory_store`

	nextSequenceSQL = `
		SELECT COALESCE(MAX(sequence), 0) + 1
		FROM conversation_history
		WHERE conversation_id = ?`

	appendMessageSQL = `
		INSERT INTO conversation_history
			(conversation_id, sequence, message_type, content, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	historySQL = `
		SELECT conversation_id, sequence, message_type, content, metadata, created_at
		FROM conversation_history
		WHERE conversation_id = ?
		ORDER BY sequence ASC`
)

func toNanos(t time.Time) int64 {
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n)
}

func expiryArg(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toNanos(*t), Valid: true}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*core.CacheEntry, error) {
	var (
		entry     core.CacheEntry
		data      string
		createdAt int64
		expiresAt sql.NullInt64
	)
	if err := row.Scan(&entry.Key, &data, &createdAt, &expiresAt); err != nil {
		return nil, err
	}
	entry.Payload = []byte(data)
	entry.CreatedAt = fromNanos(createdAt)
	if expiresAt.Valid {
		t := fromNanos(expiresAt.Int64)
		entry.ExpiresAt = &t
	}
	return &entry, nil
}

// sqlStore holds the statements both SQL dialects agree on
type sqlStore struct {
	db *sql.DB
	// isDuplicate reports a primary key violation from the driver
	isDuplicate func(error) bool
}

func (s *sqlStore) get(ctx context.Context, key string, now time.Time) (*core.CacheEntry, error) {
	entry, err := scanEntry(s.db.QueryRowContext(ctx, selectEntrySQL, key, toNanos(now)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("key %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}
	return entry, nil
}

func (s *sqlStore) set(ctx context.Context, upsert string, entry *core.CacheEntry) error {
	_, err := s.db.ExecContext(ctx, upsert,
		entry.Key, string(entry.Payload), toNanos(entry.CreatedAt), expiryArg(entry.ExpiresAt))
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

func (s *sqlStore) delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, deleteEntrySQL, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

func (s *sqlStore) list(ctx context.Context, now time.Time) ([]core.CacheEntry, error) {
	rows, err := s.db.QueryContext(ctx, listEntriesSQL, toNanos(now))
	if err != nil {
		return nil, fmt.Errorf("failed to list cache entries: %w", err)
	}
	defer rows.Close()

	entries := []core.CacheEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list cache entries: %w", err)
	}
	return entries, nil
}

func (s *sqlStore) cleanup(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, cleanupSQL, toNanos(now))
	if err != nil {
		return 0, fmt.Errorf("failed to clean up expired entries: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleaned up entries: %w", err)
	}
	return n, nil
}

func (s *sqlStore) stats(ctx context.Context, now time.Time) (core.CacheStats, error) {
	var total, expired int
	if err := s.db.QueryRowContext(ctx, statsSQL, toNanos(now)).Scan(&total, &expired); err != nil {
		return core.CacheStats{}, fmt.Errorf("failed to get cache stats: %w", err)
	}
	return core.CacheStats{
		TotalEntries:   total,
		ActiveEntries:  total - expired,
		ExpiredEntries: expired,
		CleanupNeeded:  expired > 0,
	}, nil
}

// appendMessage reads the next sequence and inserts with it. A writer that
// loses the sequence to another insert sees a duplicate key and tries again.
func (s *sqlStore) appendMessage(ctx context.Context, msg *core.ConversationMessage) (int64, error) {
	var metadata sql.NullString
	if len(msg.Metadata) > 0 {
		metadata = sql.NullString{String: string(msg.Metadata), Valid: true}
	}

	for attempt := 1; ; attempt++ {
		var seq int64
		if err := s.db.QueryRowContext(ctx, nextSequenceSQL, msg.ConversationID).Scan(&seq); err != nil {
			return 0, fmt.Errorf("failed to read conversation sequence: %w", err)
		}

		_, err := s.db.ExecContext(ctx, appendMessageSQL,
			msg.ConversationID, seq, msg.MessageType, msg.Content, metadata, toNanos(msg.CreatedAt))
		if err == nil {
			msg.Sequence = seq
			return seq, nil
		}
		if s.isDuplicate == nil || !s.isDuplicate(err) || attempt == maxAppendAttempts {
			return 0, fmt.Errorf("failed to store conversation message: %w", err)
		}
	}
}

func (s *sqlStore) history(ctx context.Context, conversationID string) ([]core.ConversationMessage, error) {
	rows, err := s.db.QueryContext(ctx, historySQL, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation history: %w", err)
	}
	defer rows.Close()

	history := []core.ConversationMessage{}
	for rows.Next() {
		var (
			msg       core.ConversationMessage
			metadata  sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&msg.ConversationID, &msg.Sequence, &msg.MessageType, &msg.Content, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation message: %w", err)
		}
		if metadata.Valid {
			msg.Metadata = []byte(metadata.String)
		}
		msg.CreatedAt = fromNanos(createdAt)
		history = append(history, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query conversation history: %w", err)
	}
	return history, nil
}
