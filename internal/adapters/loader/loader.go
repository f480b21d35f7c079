// Package loader provides the document loading adapter.
// It implements ports.DocumentSource over a directory of files.
package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nmrocha/munirag-go/internal/domain/entities"
	"github.com/nmrocha/munirag-go/internal/domain/ports"
	"github.com/nmrocha/munirag-go/internal/logger"
)

// DirectoryLoader scans a directory and extracts text from every
// supported file, dispatching to a TextExtractor by extension.
type DirectoryLoader struct {
	extractors map[string]ports.TextExtractor
}

// NewDirectoryLoader creates a loader over the given extractors.
func NewDirectoryLoader(extractors ...ports.TextExtractor) *DirectoryLoader {
	byExt := make(map[string]ports.TextExtractor)
	for _, ex := range extractors {
		for _, ext := range ex.Extensions() {
			byExt[strings.ToLower(ext)] = ex
		}
	}
	return &DirectoryLoader{extractors: byExt}
}

// Load extracts one Document per supported file in dir, in filename
// order. A file that fails to parse is skipped and reported as a warning,
// not fatal. An empty or all-unsupported directory yields an empty slice
// and no error.
func (l *DirectoryLoader) Load(ctx context.Context, dir string) ([]entities.Document, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading documents directory: %w", err)
	}

	var docs []entities.Document
	var warnings []string
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		extractor, ok := l.extractors[ext]
		if !ok {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		text, err := extractor.Extract(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			warnings = append(warnings, fmt.Sprintf("%s: no text extracted", entry.Name()))
			continue
		}

		docs = append(docs, entities.Document{
			ID:       documentID(path),
			Name:     entry.Name(),
			Path:     path,
			Content:  text,
			LoadedAt: time.Now(),
		})
	}

	logger.Info("loaded %d documents from %s (%d skipped)", len(docs), dir, len(warnings))
	return docs, warnings, nil
}

// documentID creates a deterministic ID for a document path.
func documentID(path string) string {
	hash := sha256.Sum256([]byte(path))
	return hex.EncodeToString(hash[:8])
}
