package intake

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/intake-pipeline/internal/core"
	"github.com/mikey/intake-pipeline/internal/utils"
)

const previewSize = 500

// CLIIntake processes files named on the command line and prints summaries
type CLIIntake struct {
	service *core.IntakeService
	text    *utils.TextProcessor
	logger  *zap.Logger
	out     io.Writer
	verbose bool
}

// NewCLIIntake creates a new CLI intake that writes its report to out
func NewCLIIntake(service *core.IntakeService, text *utils.TextProcessor, logger *zap.Logger, out io.Writer, verbose bool) *CLIIntake {
	return &CLIIntake{
		service: service,
		text:    text,
		logger:  logger,
		out:     out,
		verbose: verbose,
	}
}

// ProcessFile ingests one file and displays the results
func (c *CLIIntake) ProcessFile(ctx context.Context, req core.IngestRequest) (*core.IngestResult, error) {
	c.logger.Debug("Processing file", zap.String("file", req.FilePath), zap.String("kind", string(req.Kind)))

	startTime := time.Now()
	res, err := c.service.Ingest(ctx, req)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return nil, err
	}
	duration := time.Since(startTime)

	env := res.Envelope
	cls := env.Classification

	fmt.Fprintf(c.out, "\n=== Upload ===\n")
	fmt.Fprintf(c.out, "Key: %s\n", res.Key)
	fmt.Fprintf(c.out, "File: %s\n", env.Filename)
	fmt.Fprintf(c.out, "Kind: %s\n", env.Type)
	fmt.Fprintf(c.out, "Cached: %t\n", res.Cached)

	fmt.Fprintf(c.out, "\n=== Classification ===\n")
	if cls.Degraded() {
		fmt.Fprintf(c.out, "Error: %s\n", cls.Error)
	}
	fmt.Fprintf(c.out, "Format: %s\n", cls.Format)
	fmt.Fprintf(c.out, "Intent: %s\n", cls.Intent)
	fmt.Fprintf(c.out, "Urgency: %s\n", cls.Urgency)
	fmt.Fprintf(c.out, "Confidence: %.2f\n", cls.ConfidenceScore)
	fmt.Fprintf(c.out, "File size: %d bytes\n", cls.FileSize)
	if notes := cls.Notes(); notes != "" {
		fmt.Fprintf(c.out, "Notes: %s\n", notes)
	}

	fmt.Fprintf(c.out, "\n=== Extraction ===\n")
	c.printExtraction(env.ExtractedData)
	fmt.Fprintf(c.out, "\nProcessing time: %v\n", duration)

	return res, nil
}

func (c *CLIIntake) printExtraction(rec *core.ExtractionRecord) {
	if rec == nil {
		fmt.Fprintf(c.out, "No extraction\n")
		return
	}
	if rec.Degraded() {
		fmt.Fprintf(c.out, "Error: %s\n", rec.Error)
		return
	}

	fmt.Fprintf(c.out, "Type: %s\n", rec.Type)
	switch {
	case rec.PDF != nil:
		fmt.Fprintf(c.out, "Pages: %d\n", rec.PDF.PageCount)
		fmt.Fprintf(c.out, "Document type: %s\n", rec.PDF.DocumentType)
		c.preview(rec.PDF.TextContent)
	case rec.JSON != nil:
		fmt.Fprintf(c.out, "Data quality: %.2f\n", rec.JSON.DataQualityScore)
		fmt.Fprintf(c.out, "Anomalies: %s\n", joinOrNone(rec.JSON.Anomalies))
		fmt.Fprintf(c.out, "Missing fields: %s\n", joinOrNone(rec.JSON.MissingFields))
	case rec.Email != nil:
		fmt.Fprintf(c.out, "From: %s\n", rec.Email.Sender)
		fmt.Fprintf(c.out, "To: %s\n", rec.Email.To)
		fmt.Fprintf(c.out, "Subject: %s\n", rec.Email.Subject)
		fmt.Fprintf(c.out, "Intent: %s\n", rec.Email.Intent)
		fmt.Fprintf(c.out, "Urgency: %s\n", rec.Email.Urgency)
		c.preview(rec.Email.Body)
	case rec.PlainEmail != nil:
		fmt.Fprintf(c.out, "From: %s\n", rec.PlainEmail.Sender)
		fmt.Fprintf(c.out, "Intent: %s\n", rec.PlainEmail.Intent)
		fmt.Fprintf(c.out, "Urgency: %s\n", rec.PlainEmail.Urgency)
		c.preview(rec.PlainEmail.Content)
	case rec.Text != nil:
		fmt.Fprintf(c.out, "Words: %d\n", rec.Text.WordCount)
		fmt.Fprintf(c.out, "Sentiment: %s\n", rec.Text.Sentiment)
		fmt.Fprintf(c.out, "Intent: %s\n", rec.Text.Intent)
		fmt.Fprintf(c.out, "Urgency: %s\n", rec.Text.Urgency)
		c.preview(rec.Text.Content)
	}

	f := rec.Fields
	if len(f.PhoneNumbers) > 0 {
		fmt.Fprintf(c.out, "Phone numbers: %s\n", strings.Join(f.PhoneNumbers, ", "))
	}
	if len(f.EmailAddresses) > 0 {
		fmt.Fprintf(c.out, "Email addresses: %s\n", strings.Join(f.EmailAddresses, ", "))
	}
	if len(f.Amounts) > 0 {
		fmt.Fprintf(c.out, "Amounts: %s\n", strings.Join(f.Amounts, ", "))
	}
	if len(f.Dates) > 0 {
		fmt.Fprintf(c.out, "Dates: %s\n", strings.Join(f.Dates, ", "))
	}
}

// preview prints the start of the content when verbose
func (c *CLIIntake) preview(content string) {
	if !c.verbose {
		return
	}
	fmt.Fprintf(c.out, "\nPreview:\n%s\n", c.text.TruncateText(content, previewSize))
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, "; ")
}

// Start is a no-op for the CLI intake
func (c *CLIIntake) Start() error {
	return nil
}

// Stop is a no-op for the CLI intake
func (c *CLIIntake) Stop() error {
	return nil
}
