package parser

import (
	"fmt"
	"os"
)

// PlainTextExtractor handles formats that are already text (.txt, .md).
type PlainTextExtractor struct{}

// NewPlainTextExtractor creates a plain-text extractor.
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

// Extract reads the file contents as UTF-8 text.
func (e *PlainTextExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), nil
}

// Extensions returns the file extensions this extractor handles.
func (e *PlainTextExtractor) Extensions() []string {
	return []string{".txt", ".md", ".markdown"}
}
