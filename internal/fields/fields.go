// Package fields pulls dates, amounts, phone numbers and email addresses out
// of raw text.
package fields

import (
	"regexp"

	"github.com/mikey/intake-pipeline/internal/core"
)

var (
	phonePattern  = regexp.MustCompile(`\b\d{3}-\d{3}-\d{4}\b|\(\d{3}\)\s?\d{3}-\d{4}\b`)
	emailPattern  = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	amountPattern = regexp.MustCompile(`\$\d+(?:,\d{3})*(?:\.\d{2})?`)
	datePattern   = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
)

// PhoneNumbers returns NNN-NNN-NNNN and (NNN) NNN-NNNN matches
func PhoneNumbers(text string) []string {
	return phonePattern.FindAllString(text, -1)
}

// EmailAddresses returns local@domain.tld matches
func EmailAddresses(text string) []string {
	return emailPattern.FindAllString(text, -1)
}

// Amounts returns dollar amounts such as $450, $1,200 or $99.95
func Amounts(text string) []string {
	return amountPattern.FindAllString(text, -1)
}

// Dates returns D/M/YY style dates with / or - separators
func Dates(text string) []string {
	return datePattern.FindAllString(text, -1)
}

// FirstEmail returns the first email address in text
func FirstEmail(text string) (string, bool) {
	m := emailPattern.FindString(text)
	return m, m != ""
}

// Contact extracts the fields used for email and plain text documents
func Contact(text string) core.Fields {
	return core.Fields{
		PhoneNumbers:   PhoneNumbers(text),
		EmailAddresses: EmailAddresses(text),
		Amounts:        Amounts(text),
	}
}

// Document extracts the fields used for PDF documents
func Document(text string) core.Fields {
	return core.Fields{
		Dates:   Dates(text),
		Amounts: Amounts(text),
	}
}
