package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nmrocha/munirag-go/internal/domain/entities"
	"github.com/nmrocha/munirag-go/internal/domain/ports"
	"github.com/nmrocha/munirag-go/internal/logger"
)

// Builder turns loaded documents into a new index generation:
// chunk, embed, validate. It never touches the generation currently
// serving queries.
type Builder struct {
	embedder ports.EmbeddingService
	chunker  *Chunker
}

// NewBuilder creates a Builder with injected dependencies.
func NewBuilder(embedder ports.EmbeddingService, chunker *Chunker) *Builder {
	return &Builder{embedder: embedder, chunker: chunker}
}

// Build chunks and embeds the documents into a fresh immutable generation.
// Returns entities.ErrEmptyCorpus when no document yields any chunk.
// An embedding failure is fatal for this build; the caller keeps the
// previous generation.
func (b *Builder) Build(ctx context.Context, docs []entities.Document) (*entities.Generation, error) {
	var chunks []entities.Chunk
	for _, doc := range docs {
		chunks = append(chunks, b.chunker.Chunk(doc)...)
	}
	if len(chunks) == 0 {
		return nil, entities.ErrEmptyCorpus
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	logger.Info("embedding %d chunks from %d documents", len(chunks), len(docs))
	vectors, err := b.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	gen := &entities.Generation{
		ID:        uuid.NewString(),
		BuiltAt:   time.Now(),
		Dimension: len(vectors[0]),
		Chunks:    chunks,
		Vectors:   vectors,
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}

	return gen, nil
}
