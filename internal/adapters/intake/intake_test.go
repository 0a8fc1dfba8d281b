package intake

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap/zaptest"

	"github.com/mikey/intake-pipeline/internal/adapters/cache"
	"github.com/mikey/intake-pipeline/internal/allowlist"
	"github.com/mikey/intake-pipeline/internal/classifier"
	"github.com/mikey/intake-pipeline/internal/core"
	"github.com/mikey/intake-pipeline/internal/extraction"
	"github.com/mikey/intake-pipeline/internal/rules"
	"github.com/mikey/intake-pipeline/internal/utils"
)

const rfqMessage = "From: buyer@example.com\r\nTo: sales@example.com\r\nSubject: RFQ for bolts\r\n\r\nPlease quote 500 units urgently.\r\n"

func newService(t *testing.T) (*core.IntakeService, *utils.TextProcessor) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	text := utils.NewTextProcessor(logger)
	r := rules.Default()
	svc := core.NewIntakeService(
		classifier.New(r, text, logger),
		extraction.New(r, text, logger),
		core.NewEphemeralCache(cache.NewMemoryCache(logger), logger),
		nil,
		allowlist.NewChecker(nil, logger),
		core.DefaultTTLHours,
		logger,
	)
	return svc, text
}

func TestSMTPSessionStoresAndIngests(t *testing.T) {
	svc, _ := newService(t)
	dir := t.TempDir()
	in := NewSMTPIntake(svc, zaptest.NewLogger(t), "127.0.0.1:0", "", dir, 1<<20)
	in.newID = func() string { return "msg-1" }

	be := &smtpBackend{intake: in}
	sess, err := be.NewSession(nil)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := sess.Mail("buyer@example.com", nil); err != nil {
		t.Fatalf("mail: %v", err)
	}
	if err := sess.Rcpt("sales@example.com", nil); err != nil {
		t.Fatalf("rcpt: %v", err)
	}
	if err := sess.Data(strings.NewReader(rfqMessage)); err != nil {
		t.Fatalf("data: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "msg-1.eml"))
	if err != nil {
		t.Fatalf("message not written: %v", err)
	}
	if string(raw) != rfqMessage {
		t.Fatalf("stored message differs")
	}

	env, ok := svc.Lookup(context.Background(), "msg-1")
	if !ok {
		t.Fatalf("message not cached")
	}
	if env.Type != core.KindEmail || env.ExtractedData.Email == nil {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if env.ExtractedData.Email.Intent != core.IntentRFQ || env.ExtractedData.Email.Urgency != core.UrgencyHigh {
		t.Fatalf("unexpected email extraction %+v", env.ExtractedData.Email)
	}

	history := svc.Cache().ConversationHistory(context.Background(), "buyer@example.com")
	if len(history) != 1 || history[0].Content != "msg-1.eml" {
		t.Fatalf("sender conversation not recorded: %+v", history)
	}
}

func TestSMTPSessionWriteFailureIsTemporary(t *testing.T) {
	svc, _ := newService(t)
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	in := NewSMTPIntake(svc, zaptest.NewLogger(t), "127.0.0.1:0", "", blocker, 1<<20)

	sess := &smtpSession{intake: in}
	err := sess.Data(strings.NewReader(rfqMessage))

	var smtpErr *smtp.SMTPError
	if !errors.As(err, &smtpErr) {
		t.Fatalf("expected SMTP error, got %v", err)
	}
	if smtpErr.Code != 451 {
		t.Fatalf("expected temporary 451, got %d", smtpErr.Code)
	}
}

func TestSMTPSessionReset(t *testing.T) {
	s := &smtpSession{}
	_ = s.Mail("a@example.com", nil)
	_ = s.Rcpt("b@example.com", nil)
	s.Reset()
	if s.sender != "" || len(s.recipients) != 0 {
		t.Fatalf("reset did not clear session state")
	}
}

func TestCLIIntakePrintsSummary(t *testing.T) {
	svc, text := newService(t)
	path := filepath.Join(t.TempDir(), "invoice.txt")
	if err := os.WriteFile(path, []byte("Invoice - amount due $450.00, please pay ASAP"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out bytes.Buffer
	cli := NewCLIIntake(svc, text, zaptest.NewLogger(t), &out, true)
	res, err := cli.ProcessFile(context.Background(), core.IngestRequest{Key: "cli-1", FilePath: path, Kind: core.KindFile})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Key != "cli-1" {
		t.Fatalf("unexpected key %s", res.Key)
	}

	report := out.String()
	for _, want := range []string{
		"Intent: Invoice",
		"Urgency: High",
		"Confidence: 0.70",
		"Type: text",
		"Amounts: $450.00",
		"Preview:",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestCLIIntakeReportsRejection(t *testing.T) {
	svc, text := newService(t)
	var out bytes.Buffer
	cli := NewCLIIntake(svc, text, zaptest.NewLogger(t), &out, false)

	_, err := cli.ProcessFile(context.Background(), core.IngestRequest{FilePath: "/tmp/x.exe", Kind: core.KindFile})
	if !errors.Is(err, core.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if !strings.Contains(out.String(), "Error:") {
		t.Fatalf("expected error line, got %q", out.String())
	}
}
