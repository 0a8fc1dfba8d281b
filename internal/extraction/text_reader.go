package extraction

import (
	"strings"

	"github.com/mikey/intake-pipeline/internal/core"
	"github.com/mikey/intake-pipeline/internal/fields"
)

// fromText reads a plain text document
func (p *Pipeline) fromText(path string) core.ExtractionRecord {
	content, err := p.text.ReadText(path)
	if err != nil {
		return p.failed("Error extracting from text file", path, err)
	}

	return core.ExtractionRecord{
		Type: core.ExtractionText,
		Text: &core.TextData{
			Content:   content,
			WordCount: len(strings.Fields(content)),
			Sentiment: p.scorer.Sentiment(content),
			Intent:    p.scorer.EmailIntent(content),
			Urgency:   p.scorer.Urgency(content),
		},
		Fields: fields.Contact(content),
	}
}
