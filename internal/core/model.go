package core

import (
	"encoding/json"
	"strings"
	"time"
)

// Format is the document format derived from the file extension
type Format string

const (
	FormatPDF     Format = "PDF"
	FormatJSON    Format = "JSON"
	FormatEmail   Format = "Email"
	FormatUnknown Format = "Unknown"
)

// Intent is the business purpose inferred for a document
type Intent string

const (
	IntentInvoice    Intent = "Invoice"
	IntentRFQ        Intent = "RFQ"
	IntentComplaint  Intent = "Complaint"
	IntentRegulation Intent = "Regulation"
	IntentContract   Intent = "Contract"
	IntentReport     Intent = "Report"
	IntentGeneral    Intent = "General"
	IntentUnknown    Intent = "Unknown"
)

// Urgency is a coarse priority tier
type Urgency string

const (
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyLow    Urgency = "Low"
)

// Sentiment is the polarity label computed for plain text
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// InputKind is the caller-declared kind of an upload
type InputKind string

const (
	KindFile  InputKind = "file"
	KindEmail InputKind = "email"
	KindJSON  InputKind = "json"
)

// ParseInputKind normalizes a declared kind. The second result is false for
// kinds the pipeline does not know.
func ParseInputKind(s string) (InputKind, bool) {
	switch k := InputKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindFile, KindEmail, KindJSON:
		return k, true
	default:
		return k, false
	}
}

// ClassificationRecord is the output of one classification call
type ClassificationRecord struct {
	Format          Format   `json:"format"`
	Intent          Intent   `json:"intent"`
	Urgency         Urgency  `json:"urgency"`
	ConfidenceScore float64  `json:"confidence_score"`
	FileSize        int64    `json:"file_size"`
	ProcessingNotes []string `json:"processing_notes,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// Notes returns the processing notes joined the way they are displayed
func (r ClassificationRecord) Notes() string {
	return strings.Join(r.ProcessingNotes, "; ")
}

// Degraded reports whether the record was produced in place of a fault
func (r ClassificationRecord) Degraded() bool {
	return r.Error != ""
}

// ExtractionType tags the variant carried by an ExtractionRecord
type ExtractionType string

const (
	ExtractionPDF       ExtractionType = "pdf"
	ExtractionJSON      ExtractionType = "json"
	ExtractionEmail     ExtractionType = "email"
	ExtractionEmailText ExtractionType = "email_text"
	ExtractionText      ExtractionType = "text"
)

// Fields holds pattern-matched values in order of first appearance
type Fields struct {
	PhoneNumbers   []string `json:"phone_numbers,omitempty"`
	EmailAddresses []string `json:"email_addresses,omitempty"`
	Amounts        []string `json:"amounts,omitempty"`
	Dates          []string `json:"dates,omitempty"`
}

// Empty reports whether no category matched
func (f Fields) Empty() bool {
	return len(f.PhoneNumbers) == 0 && len(f.EmailAddresses) == 0 && len(f.Amounts) == 0 && len(f.Dates) == 0
}

// PDFData is the payload of a pdf extraction
type PDFData struct {
	TextContent  string `json:"text_content"`
	PageCount    int    `json:"page_count"`
	DocumentType string `json:"document_type"`
}

// FormattedData is the normalized envelope built from a JSON upload
type FormattedData struct {
	ID          json.RawMessage `json:"id"`
	Timestamp   json.RawMessage `json:"timestamp"`
	Type        json.RawMessage `json:"type"`
	Data        json.RawMessage `json:"data"`
	ProcessedAt string          `json:"processed_at"`
}

// JSONData is the payload of a json extraction
type JSONData struct {
	OriginalData     json.RawMessage `json:"original_data"`
	FormattedData    FormattedData   `json:"formatted_data"`
	Anomalies        []string        `json:"anomalies"`
	MissingFields    []string        `json:"missing_fields"`
	DataQualityScore float64         `json:"data_quality_score"`
}

// EmailData is the payload of a structured email parse
type EmailData struct {
	Sender  string  `json:"sender"`
	Subject string  `json:"subject"`
	Date    string  `json:"date"`
	To      string  `json:"to"`
	Body    string  `json:"body"`
	Intent  Intent  `json:"intent"`
	Urgency Urgency `json:"urgency"`
}

// PlainEmailData is the payload produced when an email could not be parsed
// and was treated as plain text
type PlainEmailData struct {
	Content string  `json:"content"`
	Sender  string  `json:"sender"`
	Intent  Intent  `json:"intent"`
	Urgency Urgency `json:"urgency"`
}

// TextData is the payload of a plain text extraction
type TextData struct {
	Content   string    `json:"content"`
	WordCount int       `json:"word_count"`
	Sentiment Sentiment `json:"sentiment"`
	Intent    Intent    `json:"intent"`
	Urgency   Urgency   `json:"urgency"`
}

// ExtractionRecord is a tagged union: Type names the one non-nil variant.
// A degraded record carries only Error.
type ExtractionRecord struct {
	Type       ExtractionType  `json:"type,omitempty"`
	PDF        *PDFData        `json:"pdf,omitempty"`
	JSON       *JSONData       `json:"json,omitempty"`
	Email      *EmailData      `json:"email,omitempty"`
	PlainEmail *PlainEmailData `json:"email_text,omitempty"`
	Text       *TextData       `json:"text,omitempty"`
	Fields     Fields          `json:"extracted_fields"`
	Error      string          `json:"error,omitempty"`
}

// Degraded reports whether the record was produced in place of a fault
func (r ExtractionRecord) Degraded() bool {
	return r.Error != ""
}

// FailedExtraction builds a degraded extraction record
func FailedExtraction(msg string) ExtractionRecord {
	return ExtractionRecord{Error: msg}
}

// CacheEntry is one row of the ephemeral cache. A nil ExpiresAt never expires.
type CacheEntry struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// LiveAt reports whether the entry is readable at now
func (e *CacheEntry) LiveAt(now time.Time) bool {
	return e.ExpiresAt == nil || now.Before(*e.ExpiresAt)
}

// CacheStats summarizes the cache contents
type CacheStats struct {
	TotalEntries   int  `json:"total_entries"`
	ActiveEntries  int  `json:"active_entries"`
	ExpiredEntries int  `json:"expired_entries"`
	CleanupNeeded  bool `json:"cleanup_needed"`
}

// ConversationMessage is one entry of a conversation log
type ConversationMessage struct {
	ConversationID string          `json:"conversation_id"`
	Sequence       int64           `json:"sequence"`
	MessageType    string          `json:"message_type"`
	Content        string          `json:"content"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// IntakeEnvelope is what the intake service caches for each upload
type IntakeEnvelope struct {
	Filename       string               `json:"filename"`
	Type           InputKind            `json:"type"`
	Classification ClassificationRecord `json:"classification"`
	Timestamp      time.Time            `json:"timestamp"`
	FilePath       string               `json:"file_path"`
	ExtractedData  *ExtractionRecord    `json:"extracted_data,omitempty"`
}

// SavedRecord is a row of the durable record store. Classification holds the
// upload's intent.
type SavedRecord struct {
	ID               string          `json:"id"`
	OriginalFilename string          `json:"original_filename"`
	FileType         string          `json:"file_type"`
	Classification   string          `json:"classification,omitempty"`
	ExtractedData    json.RawMessage `json:"extracted_data"`
	CreatedAt        time.Time       `json:"created_at"`
}

// RecordSummary is the listing view of a saved record
type RecordSummary struct {
	ID             string    `json:"id"`
	Filename       string    `json:"filename"`
	FileType       string    `json:"file_type"`
	Classification string    `json:"classification,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
