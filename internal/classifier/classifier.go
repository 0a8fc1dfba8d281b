// Package classifier determines the format, intent and urgency of an upload.
package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/intake-pipeline/internal/core"
	"github.com/mikey/intake-pipeline/internal/extraction"
	"github.com/mikey/intake-pipeline/internal/rules"
	"github.com/mikey/intake-pipeline/internal/scoring"
	"github.com/mikey/intake-pipeline/internal/utils"
)

var formatNotes = map[core.Format]string{
	core.FormatPDF:   "PDF document detected - text extraction required",
	core.FormatJSON:  "JSON data detected - structure validation recommended",
	core.FormatEmail: "Email content detected - sender and metadata extraction needed",
}

var intentNotes = map[core.Intent]string{
	core.IntentInvoice:   "Invoice processing - extract amounts and dates",
	core.IntentRFQ:       "RFQ processing - identify requirements and pricing requests",
	core.IntentComplaint: "Complaint processing - prioritize for customer service",
}

// Classifier implements core.Classifier with keyword scoring
type Classifier struct {
	rules  rules.Rules
	scorer *scoring.Scorer
	text   *utils.TextProcessor
	logger *zap.Logger
}

// New creates a Classifier over a private copy of r
func New(r rules.Rules, text *utils.TextProcessor, logger *zap.Logger) *Classifier {
	owned := r.Clone()
	return &Classifier{
		rules:  owned,
		scorer: scoring.NewScorer(owned),
		text:   text,
		logger: logger,
	}
}

// Classify implements core.Classifier
func (c *Classifier) Classify(filePath string, declaredKind core.InputKind) core.ClassificationRecord {
	ext := strings.ToLower(filepath.Ext(filePath))
	format := c.rules.FormatFor(ext)

	info, err := os.Stat(filePath)
	if err != nil {
		return c.degraded(filePath, err)
	}

	content, err := c.readContent(filePath, ext)
	if err != nil {
		return c.degraded(filePath, err)
	}

	intent, matched := c.scorer.Intent(content)
	record := core.ClassificationRecord{
		Format:          format,
		Intent:          intent,
		Urgency:         c.scorer.Urgency(content),
		ConfidenceScore: c.scorer.Confidence(intent, matched),
		FileSize:        info.Size(),
		ProcessingNotes: processingNotes(format, intent, declaredKind),
	}

	c.logger.Debug("Classified document",
		zap.String("file", filePath),
		zap.String("format", string(record.Format)),
		zap.String("intent", string(record.Intent)),
		zap.String("urgency", string(record.Urgency)),
		zap.Float64("confidence", record.ConfidenceScore))

	return record
}

// readContent returns the text keywords are searched in. JSON is decoded and
// re-encoded with two-space indentation, so escapes are resolved and only
// the last of any duplicate keys remains.
func (c *Classifier) readContent(filePath, ext string) (string, error) {
	if ext != ".json" {
		return c.text.ReadText(filePath)
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	tree, err := extraction.ParseTree(raw)
	if err != nil {
		return "", fmt.Errorf("invalid JSON in %s: %w", filepath.Base(filePath), err)
	}
	compact, err := tree.MarshalJSON()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (c *Classifier) degraded(filePath string, err error) core.ClassificationRecord {
	c.logger.Warn("Classification failed", zap.String("file", filePath), zap.Error(err))
	return core.ClassificationRecord{
		Format:  core.FormatUnknown,
		Intent:  core.IntentUnknown,
		Urgency: core.UrgencyLow,
		Error:   fmt.Sprintf("Classification error: %v", err),
	}
}

func processingNotes(format core.Format, intent core.Intent, kind core.InputKind) []string {
	var notes []string
	if note, ok := formatNotes[format]; ok {
		notes = append(notes, note)
	}
	if note, ok := intentNotes[intent]; ok {
		notes = append(notes, note)
	}
	if mismatch(format, kind) {
		notes = append(notes, fmt.Sprintf("Declared input kind %q does not match detected format %s", kind, format))
	}
	return notes
}

func mismatch(format core.Format, kind core.InputKind) bool {
	switch kind {
	case core.KindEmail:
		return format != core.FormatEmail
	case core.KindJSON:
		return format != core.FormatJSON
	default:
		return false
	}
}
