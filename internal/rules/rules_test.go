package rules

import (
	"testing"

	"github.com/mikey/intake-pipeline/internal/core"
)

func TestDefaultReturnsIndependentCopies(t *testing.T) {
	a := Default()
	b := Default()

	a.Intents[0].Keywords[0] = "changed"
	a.Formats[".pdf"] = core.FormatUnknown

	if b.Intents[0].Keywords[0] != "invoice" {
		t.Fatalf("mutation leaked across Default() calls: %q", b.Intents[0].Keywords[0])
	}
	if b.FormatFor(".pdf") != core.FormatPDF {
		t.Fatalf("format map shared across Default() calls")
	}
}

func TestIntentDeclarationOrder(t *testing.T) {
	want := []core.Intent{
		core.IntentInvoice, core.IntentRFQ, core.IntentComplaint,
		core.IntentRegulation, core.IntentContract, core.IntentReport,
	}
	got := Default().Intents
	if len(got) != len(want) {
		t.Fatalf("expected %d intents, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Intent != want[i] {
			t.Fatalf("intent %d: expected %s, got %s", i, want[i], got[i].Intent)
		}
	}
}

func TestMergeKeepsDefaultsForEmptyTables(t *testing.T) {
	merged := Default().Merge(Rules{HighUrgency: []string{"now"}})

	if len(merged.HighUrgency) != 1 || merged.HighUrgency[0] != "now" {
		t.Fatalf("expected override of high urgency, got %v", merged.HighUrgency)
	}
	if len(merged.MediumUrgency) != 4 {
		t.Fatalf("expected default medium urgency to survive, got %v", merged.MediumUrgency)
	}
	if merged.FormatFor(".eml") != core.FormatEmail {
		t.Fatalf("expected default formats to survive")
	}
}

func TestMergeNormalizesFormatExtensions(t *testing.T) {
	merged := Default().Merge(Rules{Formats: map[string]core.Format{
		"PDF":   core.FormatPDF,
		"md":    core.FormatEmail,
		".json": core.FormatJSON,
	}})

	for ext, want := range map[string]core.Format{".pdf": core.FormatPDF, ".md": core.FormatEmail, ".json": core.FormatJSON} {
		if got := merged.FormatFor(ext); got != want {
			t.Errorf("%s: expected %s, got %s", ext, want, got)
		}
	}
	if merged.FormatFor(".txt") != core.FormatUnknown {
		t.Errorf("a formats override replaces the whole table")
	}
}

func TestNormalizeExtension(t *testing.T) {
	tests := map[string]string{"pdf": ".pdf", ".EML": ".eml", " txt ": ".txt", "": ""}
	for in, want := range tests {
		if got := NormalizeExtension(in); got != want {
			t.Errorf("NormalizeExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestKeywordsForUnknownIntent(t *testing.T) {
	if kw := Default().KeywordsFor(core.IntentGeneral); kw != nil {
		t.Fatalf("expected nil keywords for General, got %v", kw)
	}
	if kw := Default().KeywordsFor(core.IntentContract); len(kw) != 4 {
		t.Fatalf("expected 4 contract keywords, got %v", kw)
	}
}
