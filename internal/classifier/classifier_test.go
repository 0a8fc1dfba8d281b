package classifier

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/mikey/intake-pipeline/internal/core"
	"github.com/mikey/intake-pipeline/internal/rules"
	"github.com/mikey/intake-pipeline/internal/utils"
)

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	logger := zaptest.NewLogger(t)
	return New(rules.Default(), utils.NewTextProcessor(logger), logger)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestClassifyInvoiceText(t *testing.T) {
	c := newClassifier(t)
	content := "Invoice - amount due $450.00, please pay ASAP"
	path := writeFile(t, "invoice.txt", content)

	rec := c.Classify(path, core.KindFile)

	if rec.Degraded() {
		t.Fatalf("unexpected error: %s", rec.Error)
	}
	if rec.Format != core.FormatEmail {
		t.Fatalf("expected Email format for .txt, got %s", rec.Format)
	}
	if rec.Intent != core.IntentInvoice {
		t.Fatalf("expected Invoice, got %s", rec.Intent)
	}
	if rec.Urgency != core.UrgencyHigh {
		t.Fatalf("expected High urgency, got %s", rec.Urgency)
	}
	if rec.ConfidenceScore != 0.7 {
		t.Fatalf("expected confidence 0.7, got %v", rec.ConfidenceScore)
	}
	if rec.FileSize != int64(len(content)) {
		t.Fatalf("expected file size %d, got %d", len(content), rec.FileSize)
	}
	want := "Email content detected - sender and metadata extraction needed; Invoice processing - extract amounts and dates"
	if rec.Notes() != want {
		t.Fatalf("unexpected notes: %q", rec.Notes())
	}
}

func TestClassifyGeneralConfidence(t *testing.T) {
	c := newClassifier(t)
	path := writeFile(t, "note.eml", "see you at lunch")

	rec := c.Classify(path, core.KindEmail)
	if rec.Intent != core.IntentGeneral {
		t.Fatalf("expected General, got %s", rec.Intent)
	}
	if rec.ConfidenceScore != 0.3 {
		t.Fatalf("expected confidence 0.3, got %v", rec.ConfidenceScore)
	}
	if rec.Urgency != core.UrgencyLow {
		t.Fatalf("expected Low urgency, got %s", rec.Urgency)
	}
	if len(rec.ProcessingNotes) != 1 {
		t.Fatalf("expected only the format note, got %v", rec.ProcessingNotes)
	}
}

func TestClassifyFormats(t *testing.T) {
	c := newClassifier(t)
	tests := []struct {
		name string
		want core.Format
	}{
		{"a.json", core.FormatJSON},
		{"b.TXT", core.FormatEmail},
		{"c.eml", core.FormatEmail},
		{"d.csv", core.FormatUnknown},
		{"e", core.FormatUnknown},
	}
	for _, tt := range tests {
		content := "{}"
		path := writeFile(t, tt.name, content)
		rec := c.Classify(path, core.KindFile)
		if rec.Degraded() {
			t.Fatalf("%s: unexpected error %s", tt.name, rec.Error)
		}
		if rec.Format != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, rec.Format)
		}
	}
}

func TestClassifyJSONUsesCanonicalText(t *testing.T) {
	c := newClassifier(t)
	path := writeFile(t, "order.json", `{"kind":"QUOTATION","note":"pricing for 10 units","flag":"urgent"}`)

	rec := c.Classify(path, core.KindJSON)
	if rec.Intent != core.IntentRFQ {
		t.Fatalf("expected RFQ, got %s", rec.Intent)
	}
	if rec.Urgency != core.UrgencyHigh {
		t.Fatalf("expected High urgency, got %s", rec.Urgency)
	}
	// quotation and pricing out of five keywords
	if rec.ConfidenceScore != 0.7 {
		t.Fatalf("expected confidence 0.7, got %v", rec.ConfidenceScore)
	}
	if !strings.HasPrefix(rec.Notes(), "JSON data detected") {
		t.Fatalf("unexpected notes: %q", rec.Notes())
	}
}

func TestClassifyJSONDecodesEscapes(t *testing.T) {
	c := newClassifier(t)
	path := writeFile(t, "escaped.json", `{"note":"\u0069nvoice, \u0061mount due"}`)

	rec := c.Classify(path, core.KindJSON)
	if rec.Intent != core.IntentInvoice {
		t.Fatalf("expected Invoice, got %s", rec.Intent)
	}
	if rec.ConfidenceScore != 0.7 {
		t.Fatalf("expected confidence 0.7, got %v", rec.ConfidenceScore)
	}
}

func TestClassifyJSONLastDuplicateKeyWins(t *testing.T) {
	c := newClassifier(t)
	path := writeFile(t, "dup.json", `{"note":"contract agreement terms","note":"ok"}`)

	rec := c.Classify(path, core.KindJSON)
	if rec.Intent != core.IntentGeneral {
		t.Fatalf("expected General, got %s", rec.Intent)
	}
	if rec.ConfidenceScore != 0.3 {
		t.Fatalf("expected confidence 0.3, got %v", rec.ConfidenceScore)
	}
}

func TestClassifyMalformedJSONDegrades(t *testing.T) {
	c := newClassifier(t)
	path := writeFile(t, "broken.json", `{"id": `)

	rec := c.Classify(path, core.KindJSON)
	if !rec.Degraded() {
		t.Fatalf("expected degraded record")
	}
	if rec.Format != core.FormatUnknown || rec.Intent != core.IntentUnknown || rec.Urgency != core.UrgencyLow {
		t.Fatalf("unexpected degraded record: %+v", rec)
	}
}

func TestClassifyMissingFileDegrades(t *testing.T) {
	c := newClassifier(t)
	rec := c.Classify(filepath.Join(t.TempDir(), "gone.pdf"), core.KindFile)
	if !rec.Degraded() || !strings.HasPrefix(rec.Error, "Classification error:") {
		t.Fatalf("expected classification error, got %+v", rec)
	}
}

func TestClassifyNotesKindMismatch(t *testing.T) {
	c := newClassifier(t)
	path := writeFile(t, "scan.pdf", "not really a pdf")

	rec := c.Classify(path, core.KindEmail)
	if rec.Format != core.FormatPDF {
		t.Fatalf("expected PDF format from extension, got %s", rec.Format)
	}
	last := rec.ProcessingNotes[len(rec.ProcessingNotes)-1]
	if !strings.Contains(last, `"email"`) || !strings.Contains(last, "PDF") {
		t.Fatalf("expected mismatch note, got %v", rec.ProcessingNotes)
	}
}

func TestClassifyHighBeatsMedium(t *testing.T) {
	c := newClassifier(t)
	path := writeFile(t, "mixed.txt", "important: this is an emergency")

	if rec := c.Classify(path, core.KindFile); rec.Urgency != core.UrgencyHigh {
		t.Fatalf("expected High urgency, got %s", rec.Urgency)
	}
}
