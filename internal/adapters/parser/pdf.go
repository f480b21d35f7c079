// Package parser provides text extraction adapters, one per file format.
// Each implements ports.TextExtractor; the loader selects by extension.
package parser

import (
	"fmt"
	"strings"

	"github.com/dslipak/pdf"
)

// PDFExtractor extracts text from PDF files using a pure Go parser.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF text extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract reads the PDF page by page and concatenates the text with
// page-boundary markers preserved.
func (e *PDFExtractor) Extract(path string) (string, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extracting page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return strings.TrimSpace(sb.String()), nil
}

// Extensions returns the file extensions this extractor handles.
func (e *PDFExtractor) Extensions() []string {
	return []string{".pdf"}
}
