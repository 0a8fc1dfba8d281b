package extraction

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/mikey/intake-pipeline/internal/core"
	"github.com/mikey/intake-pipeline/internal/fields"
)

// PageSource returns the plain text of each page of a PDF file
type PageSource func(path string) ([]string, error)

// ReadPDFPages is the default PageSource
func ReadPDFPages(path string) (pages []string, err error) {
	// the parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	n := r.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// fromPDF extracts page text, dates and amounts and names the document subtype
func (p *Pipeline) fromPDF(path string) core.ExtractionRecord {
	pages, err := p.pages(path)
	if err != nil {
		return p.failed("Error extracting from PDF", path, err)
	}

	var sb strings.Builder
	for _, page := range pages {
		sb.WriteString(p.text.SanitizeUTF8(page))
		sb.WriteString("\n")
	}
	text := sb.String()

	data := &core.PDFData{
		TextContent:  text,
		PageCount:    len(pages),
		DocumentType: p.scorer.DocumentType(text),
	}

	p.logger.Debug("Extracted PDF document",
		zap.String("file", path),
		zap.Int("pages", data.PageCount),
		zap.String("document_type", data.DocumentType))

	return core.ExtractionRecord{
		Type:   core.ExtractionPDF,
		PDF:    data,
		Fields: fields.Document(text),
	}
}
