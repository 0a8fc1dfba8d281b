package core

import (
	"context"
	"time"
)

// Classifier assigns format, intent and urgency to a file
type Classifier interface {
	// Classify never fails; faults are reported in the record's Error field
	Classify(filePath string, declaredKind InputKind) ClassificationRecord
}

// Extractor turns a file into an extraction record
type Extractor interface {
	// Extract never fails; faults are reported in the record's Error field
	Extract(filePath string, kind InputKind) ExtractionRecord
}

// CacheRepository is the backing store of the ephemeral cache.
// Reads take the caller's clock so expiry is decided in one place.
type CacheRepository interface {
	// Get retrieves a live entry, or an error wrapping ErrNotFound
	Get(ctx context.Context, key string, now time.Time) (*CacheEntry, error)

	// Set stores an entry, replacing any entry with the same key
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes an entry; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// List returns live entries, newest first
	List(ctx context.Context, now time.Time) ([]CacheEntry, error)

	// Cleanup removes entries whose expiry is at or before now
	Cleanup(ctx context.Context, now time.Time) (int64, error)

	// Stats counts entries at now
	Stats(ctx context.Context, now time.Time) (CacheStats, error)
}

// ConversationRepository is the conversation log kept next to the cache
type ConversationRepository interface {
	// AppendMessage stores msg with the next sequence number of its
	// conversation and returns that number
	AppendMessage(ctx context.Context, msg *ConversationMessage) (int64, error)

	// History returns a conversation in sequence order
	History(ctx context.Context, conversationID string) ([]ConversationMessage, error)
}

// RecordStore is the durable store for saved extraction records
type RecordStore interface {
	Save(ctx context.Context, rec *SavedRecord) error
	Get(ctx context.Context, id string) (*SavedRecord, error)
	Recent(ctx context.Context, limit int) ([]RecordSummary, error)
}
