package records

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mikey/intake-pipeline/internal/core"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS extracted_data (
		id TEXT PRIMARY KEY,
		original_filename TEXT NOT NULL,
		file_type TEXT NOT NULL,
		classification TEXT,
		extracted_data TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_extracted_data_created_at ON extracted_data(created_at)`,
}

const sqliteUpsertSQL = `
	INSERT OR REPLACE INTO extracted_data
		(id, original_filename, file_type, classification, extracted_data, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`

// SQLiteStore is a SQLite implementation of core.RecordStore
type SQLiteStore struct {
	store  sqlStore
	logger *zap.Logger
}

// NewSQLiteStore opens dbPath and creates the records table if needed
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
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
	return &SQLiteStore{store: sqlStore{db: db}, logger: logger}, nil
}

// Save inserts or replaces rec
func (s *SQLiteStore) Save(ctx context.Context, rec *core.SavedRecord) error {
	if err := s.store.save(ctx, sqliteUpsertSQL, rec); err != nil {
		return err
	}
	s.logger.Debug("Saved record", zap.String("id", rec.ID), zap.String("filename", rec.OriginalFilename))
	return nil
}

// Get returns the record with id
func (s *SQLiteStore) Get(ctx context.Context, id string) (*core.SavedRecord, error) {
	return s.store.get(ctx, id)
}

// Recent lists the newest records
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]core.RecordSummary, error) {
	return s.store.recent(ctx, limit)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.store.db.Close()
}
