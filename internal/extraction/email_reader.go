package extraction

import (
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/intake-pipeline/internal/core"
	"github.com/mikey/intake-pipeline/internal/fields"
)

// FromEmail reads a message file. It first attempts a structured parse and
// falls back to treating the content as plain text.
func (p *Pipeline) FromEmail(path string) core.ExtractionRecord {
	content, err := p.text.ReadText(path)
	if err != nil {
		return p.failed("Error extracting from email", path, err)
	}
	return p.parseEmail(content)
}

func (p *Pipeline) parseEmail(content string) core.ExtractionRecord {
	if data, ok := p.structuredEmail(content); ok {
		return core.ExtractionRecord{
			Type:   core.ExtractionEmail,
			Email:  data,
			Fields: fields.Contact(content),
		}
	}
	return core.ExtractionRecord{
		Type:       core.ExtractionEmailText,
		PlainEmail: p.plainEmail(content),
		Fields:     fields.Contact(content),
	}
}

// structuredEmail reports false when the content has no parsable header block
func (p *Pipeline) structuredEmail(content string) (*core.EmailData, bool) {
	msg, err := mail.ReadMessage(strings.NewReader(content))
	if err != nil || len(msg.Header) == 0 {
		p.logger.Debug("Falling back to plain text email parsing", zap.Error(err))
		return nil, false
	}

	body, err := extractTextFromMessage(msg)
	if err != nil {
		p.logger.Debug("Failed to read email body", zap.Error(err))
	}
	body = p.text.SanitizeUTF8(body)
	subject := decodeEncodedHeader(msg.Header.Get("Subject"))

	return &core.EmailData{
		Sender:  headerOr(msg.Header, "From", "Unknown"),
		Subject: orDefault(subject, "No Subject"),
		Date:    headerOr(msg.Header, "Date", "Unknown"),
		To:      headerOr(msg.Header, "To", "Unknown"),
		Body:    body,
		Intent:  p.scorer.EmailIntent(subject + " " + body),
		Urgency: p.scorer.Urgency(content),
	}, true
}

func (p *Pipeline) plainEmail(content string) *core.PlainEmailData {
	sender, ok := fields.FirstEmail(content)
	if !ok {
		sender = "Unknown"
	}
	return &core.PlainEmailData{
		Content: content,
		Sender:  sender,
		Intent:  p.scorer.EmailIntent(content),
		Urgency: p.scorer.Urgency(content),
	}
}

func headerOr(h mail.Header, key, fallback string) string {
	return orDefault(decodeEncodedHeader(h.Get(key)), fallback)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
