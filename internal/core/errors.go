package core

import "errors"

var (
	// ErrNotFound is returned when a key has no live entry or record
	ErrNotFound = errors.New("entry not found")
	// ErrUnsupportedFormat is returned for extensions outside the allow-list
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrInvalidKind is returned for declared input kinds the pipeline does not know
	ErrInvalidKind = errors.New("invalid input kind")
	// ErrNoRecordStore is returned when saving without a durable store configured
	ErrNoRecordStore = errors.New("no record store configured")
	// ErrInvalidExtraction is returned when a caller-supplied extraction is not valid JSON
	ErrInvalidExtraction = errors.New("extraction is not valid JSON")
)
