package ports

import (
	"context"

	"github.com/mikey/intake-pipeline/internal/core"
)

// IntakeListener receives uploads from an outside source and hands them to
// the intake service
type IntakeListener interface {
	// ProcessFile ingests one file already on disk
	ProcessFile(ctx context.Context, req core.IngestRequest) (*core.IngestResult, error)

	// Start starts the listener
	Start() error

	// Stop stops the listener
	Stop() error
}
