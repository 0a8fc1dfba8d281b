package core

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultHistoryLimit is the number of saved records History returns when
// the caller passes no limit
const DefaultHistoryLimit = 50

// ExtensionPolicy decides whether an upload's filename is accepted
type ExtensionPolicy interface {
	IsAllowed(filename string) bool
}

// IngestRequest describes one upload
type IngestRequest struct {
	// Key names the cache entry; a UUID is generated when empty
	Key      string
	FilePath string
	// Filename is the name the upload arrived with; defaults to the base of FilePath
	Filename       string
	Kind           InputKind
	ConversationID string
}

// IngestResult is the outcome of a successful Ingest
type IngestResult struct {
	Key      string
	Envelope IntakeEnvelope
	// Cached is false when the cache backend rejected the write
	Cached bool
}

// IntakeService is the core service tying classification, extraction and
// storage together
type IntakeService struct {
	classifier Classifier
	extractor  Extractor
	cache      *EphemeralCache
	records    RecordStore
	policy     ExtensionPolicy
	ttlHours   int
	logger     *zap.Logger
	now        func() time.Time
}

// NewIntakeService creates a new intake service. records may be nil, in
// which case Save and History report ErrNoRecordStore.
func NewIntakeService(
	classifier Classifier,
	extractor Extractor,
	cache *EphemeralCache,
	records RecordStore,
	policy ExtensionPolicy,
	ttlHours int,
	logger *zap.Logger,
) *IntakeService {
	return &IntakeService{
		classifier: classifier,
		extractor:  extractor,
		cache:      cache,
		records:    records,
		policy:     policy,
		ttlHours:   ttlHours,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the clock used for envelope and record timestamps
func (s *IntakeService) WithClock(now func() time.Time) *IntakeService {
	s.now = now
	return s
}

// Ingest validates an upload, classifies and extracts it and caches the
// resulting envelope
func (s *IntakeService) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	filename := req.Filename
	if filename == "" {
		filename = filepath.Base(req.FilePath)
	}

	if s.policy != nil && !s.policy.IsAllowed(filename) {
		s.logger.Warn("Rejected upload",
			zap.String("filename", filename),
			zap.String("reason", "extension"))
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, strings.ToLower(filepath.Ext(filename)))
	}

	kind, ok := ParseInputKind(string(req.Kind))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidKind, req.Kind)
	}

	key := req.Key
	if key == "" {
		key = uuid.NewString()
	}

	classification := s.classifier.Classify(req.FilePath, kind)
	extraction := s.extractor.Extract(req.FilePath, kind)

	envelope := IntakeEnvelope{
		Filename:       filename,
		Type:           kind,
		Classification: classification,
		Timestamp:      s.now().UTC(),
		FilePath:       req.FilePath,
		ExtractedData:  &extraction,
	}

	cached := s.cache.Store(ctx, key, envelope, s.ttlHours)
	if !cached {
		s.logger.Warn("Upload processed but not cached", zap.String("key", key))
	}

	if req.ConversationID != "" {
		s.cache.AppendConversation(ctx, req.ConversationID, "upload", filename, map[string]any{
			"key":     key,
			"type":    kind,
			"format":  classification.Format,
			"intent":  classification.Intent,
			"urgency": classification.Urgency,
		})
	}

	s.logger.Info("Processed upload",
		zap.String("key", key),
		zap.String("filename", filename),
		zap.String("kind", string(kind)),
		zap.String("format", string(classification.Format)),
		zap.String("intent", string(classification.Intent)),
		zap.String("urgency", string(classification.Urgency)),
		zap.Float64("confidence", classification.ConfidenceScore),
		zap.Bool("classification_degraded", classification.Degraded()),
		zap.Bool("extraction_degraded", extraction.Degraded()))

	return &IngestResult{Key: key, Envelope: envelope, Cached: cached}, nil
}

// Lookup returns the cached envelope for key. An envelope cached without an
// extraction gets one regenerated from its file path and kind.
func (s *IntakeService) Lookup(ctx context.Context, key string) (*IntakeEnvelope, bool) {
	var envelope IntakeEnvelope
	if !s.cache.GetInto(ctx, key, &envelope) {
		return nil, false
	}
	if envelope.ExtractedData == nil {
		s.logger.Debug("Regenerating extraction", zap.String("key", key), zap.String("file", envelope.FilePath))
		rec := s.Regenerate(envelope.FilePath, envelope.Type)
		envelope.ExtractedData = &rec
	}
	return &envelope, true
}

// Regenerate runs extraction again for a stored file
func (s *IntakeService) Regenerate(filePath string, kind InputKind) ExtractionRecord {
	return s.extractor.Extract(filePath, kind)
}

// Save copies a cached upload into the durable store under its cache key,
// recording its intent as the classification. A nil extracted saves the
// cached extraction; otherwise extracted replaces it and must be valid JSON.
func (s *IntakeService) Save(ctx context.Context, key string, extracted json.RawMessage) error {
	if s.records == nil {
		return ErrNoRecordStore
	}

	envelope, ok := s.Lookup(ctx, key)
	if !ok {
		return fmt.Errorf("key %q: %w", key, ErrNotFound)
	}

	data := extracted
	if len(data) == 0 {
		var err error
		if data, err = json.Marshal(envelope.ExtractedData); err != nil {
			return fmt.Errorf("failed to encode extraction: %w", err)
		}
	} else if !json.Valid(data) {
		return fmt.Errorf("key %q: %w", key, ErrInvalidExtraction)
	}

	intent := envelope.Classification.Intent
	if intent == "" {
		intent = IntentUnknown
	}

	rec := &SavedRecord{
		ID:               key,
		OriginalFilename: envelope.Filename,
		FileType:         string(envelope.Type),
		Classification:   string(intent),
		ExtractedData:    data,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.records.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	s.logger.Info("Saved record", zap.String("id", rec.ID), zap.String("filename", rec.OriginalFilename))
	return nil
}

// History lists the most recently saved records
func (s *IntakeService) History(ctx context.Context, limit int) ([]RecordSummary, error) {
	if s.records == nil {
		return nil, ErrNoRecordStore
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	summaries, err := s.records.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return summaries, nil
}

// Cache exposes the underlying ephemeral cache
func (s *IntakeService) Cache() *EphemeralCache {
	return s.cache
}
