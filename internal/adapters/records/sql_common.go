// Package records implements the durable store for saved extraction records.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/intake-pipeline/internal/core"
)

// DefaultRecentLimit bounds Recent when the caller passes no limit
const DefaultRecentLimit = 50

const (
	selectRecordSQL = `
		SELECT id, original_filename, file_type, classification, extracted_data, created_at
		FROM extracted_data
		WHERE id = ?`

	recentRecordsSQL = `
		SELECT id, original_filename, file_type, classification, created_at
		FROM extracted_data
		ORDER BY created_at DESC, id ASC
		LIMIT ?`
)

type sqlStore struct {
	db *sql.DB
}

func (s *sqlStore) save(ctx context.Context, upsert string, rec *core.SavedRecord) error {
	_, err := s.db.ExecContext(ctx, upsert,
		rec.ID,
		rec.OriginalFilename,
		rec.FileType,
		nullString(rec.Classification),
		string(rec.ExtractedData),
		rec.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *sqlStore) get(ctx context.Context, id string) (*core.SavedRecord, error) {
	var (
		rec            core.SavedRecord
		classification sql.NullString
		data           string
		createdAt      int64
	)
	err := s.db.QueryRowContext(ctx, selectRecordSQL, id).
		Scan(&rec.ID, &rec.OriginalFilename, &rec.FileType, &classification, &data, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("record %s: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query record: %w", err)
	}
	rec.Classification = classification.String
	rec.ExtractedData = []byte(data)
	rec.CreatedAt = fromNanos(createdAt)
	return &rec, nil
}

func (s *sqlStore) recent(ctx context.Context, limit int) ([]core.RecordSummary, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	rows, err := s.db.QueryContext(ctx, recentRecordsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	out := []core.RecordSummary{}
	for rows.Next() {
		var (
			sum            core.RecordSummary
			classification sql.NullString
			createdAt      int64
		)
		if err := rows.Scan(&sum.ID, &sum.Filename, &sum.FileType, &classification, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		sum.Classification = classification.String
		sum.CreatedAt = fromNanos(createdAt)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n)
}
