package records

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mikey/intake-pipeline/internal/core"
)

const mysqlSchema = `
	CREATE TABLE IF NOT EXISTS extracted_data (
		id VARCHAR(64) PRIMARY KEY,
		original_filename VARCHAR(512) NOT NULL,
		file_type VARCHAR(32) NOT NULL,
		classification TEXT NULL,
		extracted_data LONGTEXT NOT NULL,
		created_at BIGINT NOT NULL,
		INDEX idx_created_at (created_at)
	)`

const mysqlUpsertSQL = `
	INSERT INTO extracted_data
		(id, original_filename, file_type, classification, extracted_data, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
		original_filename = VALUES(original_filename),
		file_type = VALUES(file_type),
		classification = VALUES(classification),
		extracted_data = VALUES(extracted_data),
		created_at = VALUES(created_at)`

// MySQLStore is a MySQL implementation of core.RecordStore
type MySQLStore struct {
	store  sqlStore
	logger *zap.Logger
}

// NewMySQLStore connects to dsn and creates the records table if needed
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}
	if _, err := db.Exec(mysqlSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return &MySQLStore{store: sqlStore{db: db}, logger: logger}, nil
}

// Save inserts rec or updates the row with the same id
func (s *MySQLStore) Save(ctx context.Context, rec *core.SavedRecord) error {
	if err := s.store.save(ctx, mysqlUpsertSQL, rec); err != nil {
		return err
	}
	s.logger.Debug("Saved record", zap.String("id", rec.ID), zap.String("filename", rec.OriginalFilename))
	return nil
}

// Get returns the record with id
func (s *MySQLStore) Get(ctx context.Context, id string) (*core.SavedRecord, error) {
	return s.store.get(ctx, id)
}

// Recent lists the newest records
func (s *MySQLStore) Recent(ctx context.Context, limit int) ([]core.RecordSummary, error) {
	return s.store.recent(ctx, limit)
}

// Close closes the database connection
func (s *MySQLStore) Close() error {
	return s.store.db.Close()
}
