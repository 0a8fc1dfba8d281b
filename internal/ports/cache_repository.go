package ports

import (
	"github.com/mikey/intake-pipeline/internal/core"
)

// CacheRepository is a cache backend that owns resources released by Stop
type CacheRepository interface {
	core.CacheRepository

	// Stop releases the backend's connections
	Stop()
}
