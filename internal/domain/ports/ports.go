// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions, not concrete implementations.
// Adapters implement these interfaces.
package ports

import (
	"context"

	"github.com/nmrocha/munirag-go/internal/domain/entities"
)

// EmbeddingService generates vector embeddings for text.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMService generates text responses from a language model.
// The call blocks until the model finishes or the client times out.
type LLMService interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TextExtractor extracts raw text from a single file format.
// One implementation per supported extension; the loader selects
// by file extension, so new formats are added without touching
// the pipeline.
type TextExtractor interface {
	// Extract reads the file and returns its text content.
	Extract(path string) (string, error)

	// Extensions returns the file extensions this extractor handles.
	Extensions() []string
}

// DocumentSource loads every supported document under a directory.
// A file that fails to parse is skipped and reported as a warning;
// one corrupt document must not abort ingestion of the rest.
type DocumentSource interface {
	Load(ctx context.Context, dir string) (docs []entities.Document, warnings []string, err error)
}

// GenerationStore persists index generations so a restart does not
// require re-embedding. Holds at most one current generation.
type GenerationStore interface {
	// Save replaces the persisted generation with gen.
	Save(ctx context.Context, gen *entities.Generation) error

	// LoadLatest returns the persisted generation, or nil if none exists.
	LoadLatest(ctx context.Context) (*entities.Generation, error)

	// Close releases the store.
	Close() error
}

// FileWatcher monitors the documents directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits the paths of
	// changed files.
	Watch(ctx context.Context, dir string) (<-chan string, error)

	// Stop stops the watcher.
	Stop() error
}
