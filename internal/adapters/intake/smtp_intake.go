// Package intake contains the listeners that feed uploads into the intake
// service.
package intake

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mikey/intake-pipeline/internal/core"
)

// SMTPIntake accepts messages over SMTP, writes each one to the upload
// directory and ingests it as an email
type SMTPIntake struct {
	service         *core.IntakeService
	logger          *zap.Logger
	listenAddr      string
	domain          string
	uploadDir       string
	maxMessageBytes int64
	server          *smtp.Server
	newID           func() string
}

// NewSMTPIntake creates a new SMTP intake listener
func NewSMTPIntake(
	service *core.IntakeService,
	logger *zap.Logger,
	listenAddr string,
	domain string,
	uploadDir string,
	maxMessageBytes int64,
) *SMTPIntake {
	if domain == "" {
		domain = "localhost"
	}
	return &SMTPIntake{
		service:         service,
		logger:          logger,
		listenAddr:      listenAddr,
		domain:          domain,
		uploadDir:       uploadDir,
		maxMessageBytes: maxMessageBytes,
		newID:           uuid.NewString,
	}
}

// Start starts the SMTP server
func (in *SMTPIntake) Start() error {
	if err := os.MkdirAll(in.uploadDir, 0o750); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	in.server = smtp.NewServer(&smtpBackend{intake: in})
	in.server.Addr = in.listenAddr
	in.server.Domain = in.domain
	in.server.ReadTimeout = 30 * time.Second
	in.server.WriteTimeout = 30 * time.Second
	in.server.MaxMessageBytes = in.maxMessageBytes
	in.server.MaxRecipients = 50

	in.logger.Info("SMTP intake starting",
		zap.String("address", in.listenAddr),
		zap.String("upload_dir", in.uploadDir))

	go func() {
		if err := in.server.ListenAndServe(); err != nil && err != smtp.ErrServerClosed {
			in.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the SMTP server
func (in *SMTPIntake) Stop() error {
	if in.server != nil {
		return in.server.Close()
	}
	return nil
}

// ProcessFile ingests a file that is already on disk
func (in *SMTPIntake) ProcessFile(ctx context.Context, req core.IngestRequest) (*core.IngestResult, error) {
	return in.service.Ingest(ctx, req)
}

// store writes a message into the upload directory and returns its key and path
func (in *SMTPIntake) store(raw []byte) (string, string, error) {
	key := in.newID()
	path := filepath.Join(in.uploadDir, key+".eml")
	if err := os.WriteFile(path, raw, 0o640); err != nil {
		return "", "", err
	}
	return key, path, nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	intake *SMTPIntake
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{intake: b.intake}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	intake     *SMTPIntake
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Logout ends the session
func (s *smtpSession) Logout() error {
	return nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data stores and ingests one message
func (s *smtpSession) Data(r io.Reader) error {
	logger := s.intake.logger.With(
		zap.String("sender", s.sender),
		zap.Strings("recipients", s.recipients))

	raw, err := io.ReadAll(r)
	if err != nil {
		logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	key, path, err := s.intake.store(raw)
	if err != nil {
		logger.Error("Failed to write message to upload directory", zap.Error(err))
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 3, 0},
			Message:      "Temporary failure storing message",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := s.intake.service.Ingest(ctx, core.IngestRequest{
		Key:            key,
		FilePath:       path,
		Filename:       filepath.Base(path),
		Kind:           core.KindEmail,
		ConversationID: s.sender,
	})
	if err != nil {
		logger.Error("Failed to ingest message", zap.Error(err), zap.String("key", key))
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 3, 0},
			Message:      "Temporary failure processing message",
		}
	}

	logger.Info("Accepted message",
		zap.String("key", res.Key),
		zap.Int("size", len(raw)),
		zap.String("intent", string(res.Envelope.Classification.Intent)),
		zap.String("urgency", string(res.Envelope.Classification.Urgency)))
	return nil
}
