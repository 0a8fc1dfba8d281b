// Package rules holds the keyword tables and extension maps that drive
// classification and extraction. Tables are plain values: build them once,
// hand them to constructors, and never mutate them afterwards.
package rules

import (
	"strings"

	"github.com/mikey/intake-pipeline/internal/core"
)

// IntentRule maps an intent to the keywords that signal it
type IntentRule struct {
	Intent   core.Intent `mapstructure:"intent"`
	Keywords []string    `mapstructure:"keywords"`
}

// DocumentRule maps a document subtype to the keywords that signal it
type DocumentRule struct {
	Type     string   `mapstructure:"type"`
	Keywords []string `mapstructure:"keywords"`
}

// Rules is the full rule set. Ordered slices are significant: earlier
// entries win ties and priority ladders.
type Rules struct {
	Formats         map[string]core.Format `mapstructure:"formats"`
	Intents         []IntentRule           `mapstructure:"intents"`
	EmailIntents    []IntentRule           `mapstructure:"email_intents"`
	DocumentTypes   []DocumentRule         `mapstructure:"document_types"`
	DefaultDocument string                 `mapstructure:"default_document"`
	HighUrgency     []string               `mapstructure:"high_urgency"`
	MediumUrgency   []string               `mapstructure:"medium_urgency"`
	PositiveWords   []string               `mapstructure:"positive_words"`
	NegativeWords   []string               `mapstructure:"negative_words"`
	RequiredFields  []string               `mapstructure:"required_fields"`
}

// Default returns a fresh copy of the built-in rule set
func Default() Rules {
	return Rules{
		Formats: map[string]core.Format{
			".pdf":  core.FormatPDF,
			".json": core.FormatJSON,
			".txt":  core.FormatEmail,
			".eml":  core.FormatEmail,
		},
		Intents: []IntentRule{
			{Intent: core.IntentInvoice, Keywords: []string{"invoice", "bill", "payment", "amount due", "billing"}},
			{Intent: core.IntentRFQ, Keywords: []string{"rfq", "quote", "quotation", "pricing", "request for quote"}},
			{Intent: core.IntentComplaint, Keywords: []string{"complaint", "issue", "problem", "dissatisfied", "error"}},
			{Intent: core.IntentRegulation, Keywords: []string{"regulation", "compliance", "policy", "guideline", "standard"}},
			{Intent: core.IntentContract, Keywords: []string{"contract", "agreement", "terms", "conditions"}},
			{Intent: core.IntentReport, Keywords: []string{"report", "analysis", "summary", "findings"}},
		},
		EmailIntents: []IntentRule{
			{Intent: core.IntentRFQ, Keywords: []string{"rfq", "quote", "quotation", "pricing"}},
			{Intent: core.IntentComplaint, Keywords: []string{"complaint", "issue", "problem", "dissatisfied"}},
			{Intent: core.IntentInvoice, Keywords: []string{"invoice", "bill", "payment", "amount due"}},
			{Intent: core.IntentRegulation, Keywords: []string{"regulation", "compliance", "policy"}},
		},
		DocumentTypes: []DocumentRule{
			{Type: "Invoice", Keywords: []string{"invoice", "bill", "amount due"}},
			{Type: "Contract", Keywords: []string{"contract", "agreement", "terms"}},
			{Type: "Report", Keywords: []string{"report", "analysis", "summary"}},
		},
		DefaultDocument: "Document",
		HighUrgency:     []string{"urgent", "asap", "immediate", "emergency", "critical"},
		MediumUrgency:   []string{"soon", "priority", "important", "timely"},
		PositiveWords:   []string{"good", "great", "excellent", "satisfied", "happy", "pleased"},
		NegativeWords:   []string{"bad", "terrible", "awful", "dissatisfied", "angry", "frustrated"},
		RequiredFields:  []string{"id", "timestamp", "type"},
	}
}

// Clone returns a deep copy so the receiver can be owned by one component
func (r Rules) Clone() Rules {
	out := Rules{
		Formats:         make(map[string]core.Format, len(r.Formats)),
		Intents:         cloneIntents(r.Intents),
		EmailIntents:    cloneIntents(r.EmailIntents),
		DocumentTypes:   make([]DocumentRule, len(r.DocumentTypes)),
		DefaultDocument: r.DefaultDocument,
		HighUrgency:     cloneStrings(r.HighUrgency),
		MediumUrgency:   cloneStrings(r.MediumUrgency),
		PositiveWords:   cloneStrings(r.PositiveWords),
		NegativeWords:   cloneStrings(r.NegativeWords),
		RequiredFields:  cloneStrings(r.RequiredFields),
	}
	for ext, f := range r.Formats {
		out.Formats[ext] = f
	}
	for i, d := range r.DocumentTypes {
		out.DocumentTypes[i] = DocumentRule{Type: d.Type, Keywords: cloneStrings(d.Keywords)}
	}
	return out
}

// Merge overlays the non-empty tables of override onto r
func (r Rules) Merge(override Rules) Rules {
	out := r.Clone()
	o := override.Clone()
	if len(o.Formats) > 0 {
		out.Formats = normalizeFormats(o.Formats)
	}
	if len(o.Intents) > 0 {
		out.Intents = o.Intents
	}
	if len(o.EmailIntents) > 0 {
		out.EmailIntents = o.EmailIntents
	}
	if len(o.DocumentTypes) > 0 {
		out.DocumentTypes = o.DocumentTypes
	}
	if o.DefaultDocument != "" {
		out.DefaultDocument = o.DefaultDocument
	}
	if len(o.HighUrgency) > 0 {
		out.HighUrgency = o.HighUrgency
	}
	if len(o.MediumUrgency) > 0 {
		out.MediumUrgency = o.MediumUrgency
	}
	if len(o.PositiveWords) > 0 {
		out.PositiveWords = o.PositiveWords
	}
	if len(o.NegativeWords) > 0 {
		out.NegativeWords = o.NegativeWords
	}
	if len(o.RequiredFields) > 0 {
		out.RequiredFields = o.RequiredFields
	}
	return out
}

// NormalizeExtension lower-cases ext and gives it a leading dot. Config
// files name extensions without the dot, since viper splits keys on it.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func normalizeFormats(in map[string]core.Format) map[string]core.Format {
	out := make(map[string]core.Format, len(in))
	for ext, f := range in {
		out[NormalizeExtension(ext)] = f
	}
	return out
}

// KeywordsFor returns the classifier keywords of intent, or nil
func (r Rules) KeywordsFor(intent core.Intent) []string {
	for _, rule := range r.Intents {
		if rule.Intent == intent {
			return rule.Keywords
		}
	}
	return nil
}

// FormatFor maps a lower-cased extension to a format
func (r Rules) FormatFor(ext string) core.Format {
	if f, ok := r.Formats[ext]; ok {
		return f
	}
	return core.FormatUnknown
}

func cloneIntents(in []IntentRule) []IntentRule {
	out := make([]IntentRule, len(in))
	for i, rule := range in {
		out[i] = IntentRule{Intent: rule.Intent, Keywords: cloneStrings(rule.Keywords)}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
