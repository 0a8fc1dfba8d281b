package extraction

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"

	"github.com/mikey/intake-pipeline/internal/core"
)

// ProcessedAt is the fixed processing stamp written into normalized JSON
const ProcessedAt = "2025-01-22T10:00:00Z"

var unknownValue = json.RawMessage(`"unknown"`)

// FromJSON parses a JSON document and reports its structure and quality
func (p *Pipeline) FromJSON(path string) core.ExtractionRecord {
	raw, err := os.ReadFile(path)
	if err != nil {
		return p.failed("Error extracting from JSON", path, err)
	}

	root, err := ParseTree(raw)
	if err != nil {
		return p.failed("Error extracting from JSON", path, err)
	}
	if root.Kind != ObjectNode {
		return p.failed("Error extracting from JSON", path, fmt.Errorf("top-level value must be an object"))
	}

	original, err := root.MarshalJSON()
	if err != nil {
		return p.failed("Error extracting from JSON", path, err)
	}

	formatted := core.FormattedData{
		ID:          unknownValue,
		Timestamp:   unknownValue,
		Type:        unknownValue,
		Data:        original,
		ProcessedAt: ProcessedAt,
	}
	for key, dst := range map[string]*json.RawMessage{
		"id":        &formatted.ID,
		"timestamp": &formatted.Timestamp,
		"type":      &formatted.Type,
	} {
		if v, ok := root.Get(key); ok {
			b, err := v.MarshalJSON()
			if err != nil {
				return p.failed("Error extracting from JSON", path, err)
			}
			*dst = b
		}
	}

	data := &core.JSONData{
		OriginalData:     original,
		FormattedData:    formatted,
		Anomalies:        anomalies(root),
		MissingFields:    missingFields(root, p.rules.RequiredFields),
		DataQualityScore: dataQuality(root, p.rules.RequiredFields),
	}

	p.logger.Debug("Extracted JSON document",
		zap.String("file", path),
		zap.Int("top_level_fields", len(root.Members)),
		zap.Float64("quality", data.DataQualityScore))

	return core.ExtractionRecord{
		Type: core.ExtractionJSON,
		JSON: data,
	}
}

func anomalies(root *Node) []string {
	out := []string{}
	if root.AnyDescendant(func(n *Node) bool { return n.Kind == NullNode }) {
		out = append(out, "Contains null values")
	}
	if root.AnyDescendant(func(n *Node) bool { return n.Kind == StringNode && n.String == "" }) {
		out = append(out, "Contains empty strings")
	}
	return out
}

func missingFields(root *Node, required []string) []string {
	out := []string{}
	for _, field := range required {
		if _, ok := root.Get(field); !ok {
			out = append(out, field)
		}
	}
	return out
}

// dataQuality weighs completeness of the top-level fields at 0.5, presence of
// the required fields at 0.3 and syntactic validity at a fixed 0.2
func dataQuality(root *Node, required []string) float64 {
	total := len(root.Members)
	if total == 0 {
		return 0.0
	}

	filled := 0
	for _, m := range root.Members {
		if !m.Value.IsBlank() {
			filled++
		}
	}
	score := float64(filled) / float64(total) * 0.5

	if len(required) > 0 {
		present := len(required) - len(missingFields(root, required))
		score += float64(present) / float64(len(required)) * 0.3
	}

	score += 0.2
	return math.Min(score, 1.0)
}
