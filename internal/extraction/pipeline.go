// Package extraction turns uploaded files into structured extraction records.
package extraction

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/intake-pipeline/internal/core"
	"github.com/mikey/intake-pipeline/internal/rules"
	"github.com/mikey/intake-pipeline/internal/scoring"
	"github.com/mikey/intake-pipeline/internal/utils"
)

// Pipeline implements core.Extractor
type Pipeline struct {
	rules  rules.Rules
	scorer *scoring.Scorer
	text   *utils.TextProcessor
	pages  PageSource
	logger *zap.Logger
}

// New creates a Pipeline over a private copy of r
func New(r rules.Rules, text *utils.TextProcessor, logger *zap.Logger) *Pipeline {
	owned := r.Clone()
	return &Pipeline{
		rules:  owned,
		scorer: scoring.NewScorer(owned),
		text:   text,
		pages:  ReadPDFPages,
		logger: logger,
	}
}

// WithPageSource replaces the PDF page reader
func (p *Pipeline) WithPageSource(src PageSource) *Pipeline {
	p.pages = src
	return p
}

// Extract implements core.Extractor. The declared kind picks the entry point;
// kind file dispatches on the extension.
func (p *Pipeline) Extract(filePath string, kind core.InputKind) core.ExtractionRecord {
	switch kind {
	case core.KindFile:
		return p.FromFile(filePath)
	case core.KindEmail:
		return p.FromEmail(filePath)
	case core.KindJSON:
		return p.FromJSON(filePath)
	default:
		return core.FailedExtraction(fmt.Sprintf("Invalid input kind: %s", kind))
	}
}

// FromFile picks a reader from the file extension alone
func (p *Pipeline) FromFile(filePath string) core.ExtractionRecord {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		return p.fromPDF(filePath)
	case ".json":
		return p.FromJSON(filePath)
	case ".txt":
		return p.fromText(filePath)
	case ".eml":
		return p.FromEmail(filePath)
	default:
		p.logger.Warn("Unsupported file format", zap.String("file", filePath), zap.String("extension", ext))
		return core.FailedExtraction(fmt.Sprintf("Unsupported file format: %s", ext))
	}
}

func (p *Pipeline) failed(prefix, path string, err error) core.ExtractionRecord {
	p.logger.Warn("Extraction failed", zap.String("file", path), zap.Error(err))
	return core.FailedExtraction(fmt.Sprintf("%s: %v", prefix, err))
}
