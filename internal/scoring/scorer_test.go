package scoring

import (
	"testing"

	"github.com/mikey/intake-pipeline/internal/core"
	"github.com/mikey/intake-pipeline/internal/rules"
)

func newScorer() *Scorer {
	return NewScorer(rules.Default())
}

func TestIntent(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    core.Intent
		matched int
	}{
		{"invoice", "Invoice - amount due $450.00", core.IntentInvoice, 2},
		{"rfq", "Please send a QUOTE with pricing", core.IntentRFQ, 2},
		{"general", "hello there", core.IntentGeneral, 0},
		// invoice and complaint both match one keyword; invoice is declared first
		{"tie goes to first declared", "an issue with the bill", core.IntentInvoice, 1},
		{"strictly higher wins", "bill: contract agreement terms", core.IntentContract, 3},
		// "billing" also contains "bill"
		{"overlapping keywords", "billing", core.IntentInvoice, 2},
	}
	s := newScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := s.Intent(tt.text)
			if got != tt.want || n != tt.matched {
				t.Fatalf("Intent(%q) = %s/%d, want %s/%d", tt.text, got, n, tt.want, tt.matched)
			}
		})
	}
}

func TestConfidence(t *testing.T) {
	s := newScorer()

	if got := s.Confidence(core.IntentGeneral, 0); got != 0.3 {
		t.Fatalf("General confidence = %v, want 0.3", got)
	}
	if got := s.Confidence(core.IntentInvoice, 2); got != 0.7 {
		t.Fatalf("Invoice 2/5 confidence = %v, want 0.7", got)
	}
	if got := s.Confidence(core.IntentContract, 1); got != 0.55 {
		t.Fatalf("Contract 1/4 confidence = %v, want 0.55", got)
	}
	if got := s.Confidence(core.IntentContract, 4); got != 1.0 {
		t.Fatalf("Contract 4/4 confidence = %v, want 1.0", got)
	}
}

func TestConfidenceMonotonicAndCapped(t *testing.T) {
	s := newScorer()
	prev := 0.0
	for n := 0; n <= 5; n++ {
		c := s.Confidence(core.IntentRFQ, n)
		if c < prev {
			t.Fatalf("confidence decreased at %d matches: %v < %v", n, c, prev)
		}
		if c > 1.0 {
			t.Fatalf("confidence above cap at %d matches: %v", n, c)
		}
		prev = c
	}
}

func TestUrgencyLadder(t *testing.T) {
	s := newScorer()
	tests := map[string]core.Urgency{
		"This is URGENT and important": core.UrgencyHigh,
		"critical outage":              core.UrgencyHigh,
		"reply soon please":            core.UrgencyMedium,
		"a timely response":            core.UrgencyMedium,
		"whenever you like":            core.UrgencyLow,
	}
	for text, want := range tests {
		if got := s.Urgency(text); got != want {
			t.Errorf("Urgency(%q) = %s, want %s", text, got, want)
		}
	}
}

func TestEmailIntentPriority(t *testing.T) {
	s := newScorer()
	tests := map[string]core.Intent{
		"invoice attached, also a quote":         core.IntentRFQ,
		"complaint about the invoice":            core.IntentComplaint,
		"payment reminder":                       core.IntentInvoice,
		"new compliance policy":                  core.IntentRegulation,
		"contract renewal":                       core.IntentGeneral,
		"this report has findings and a summary": core.IntentGeneral,
	}
	for text, want := range tests {
		if got := s.EmailIntent(text); got != want {
			t.Errorf("EmailIntent(%q) = %s, want %s", text, got, want)
		}
	}
}

func TestDocumentType(t *testing.T) {
	s := newScorer()
	tests := map[string]string{
		"Terms of the invoice":   "Invoice",
		"Service Agreement":      "Contract",
		"Quarterly analysis":     "Report",
		"Meeting notes, nothing": "Document",
	}
	for text, want := range tests {
		if got := s.DocumentType(text); got != want {
			t.Errorf("DocumentType(%q) = %s, want %s", text, got, want)
		}
	}
}

func TestSentiment(t *testing.T) {
	s := newScorer()
	tests := map[string]core.Sentiment{
		"great service, very happy": core.SentimentPositive,
		"terrible and awful":        core.SentimentNegative,
		"nothing to report":         core.SentimentNeutral,
		"good but bad":              core.SentimentNeutral,
		// "dissatisfied" also contains "satisfied"
		"dissatisfied": core.SentimentNeutral,
	}
	for text, want := range tests {
		if got := s.Sentiment(text); got != want {
			t.Errorf("Sentiment(%q) = %s, want %s", text, got, want)
		}
	}
}
