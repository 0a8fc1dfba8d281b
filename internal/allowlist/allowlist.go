// Package allowlist decides which upload file extensions the intake accepts.
package allowlist

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultExtensions are accepted when no allow-list is configured
var DefaultExtensions = []string{".pdf", ".json", ".txt", ".eml"}

// Checker provides functionality to check if a filename has an allowed extension
type Checker struct {
	extensions []string
	logger     *zap.Logger
}

// NewChecker creates a new allow-list checker. Entries are lower-cased and
// given a leading dot if they lack one.
func NewChecker(extensions []string, logger *zap.Logger) *Checker {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}

	if logger != nil {
		logger.Info("Initialized extension allow-list", zap.Strings("extensions", normalized))
	}

	return &Checker{
		extensions: normalized,
		logger:     logger,
	}
}

// IsAllowed checks if the filename's extension is on the allow-list
func (c *Checker) IsAllowed(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return false
	}

	for _, allowed := range c.extensions {
		if allowed == ext {
			return true
		}
	}

	if c.logger != nil {
		c.logger.Debug("Extension not allowed",
			zap.String("extension", ext),
			zap.String("filename", filename))
	}
	return false
}

// Extensions returns a copy of the allow-list
func (c *Checker) Extensions() []string {
	out := make([]string, len(c.extensions))
	copy(out, c.extensions)
	return out
}
