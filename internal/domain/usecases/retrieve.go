package usecases

import (
	"context"
	"fmt"

	"github.com/nmrocha/munirag-go/internal/domain/entities"
	"github.com/nmrocha/munirag-go/internal/domain/ports"
	"github.com/nmrocha/munirag-go/internal/logger"
)

// Retriever embeds a question and returns the most similar chunks from a
// generation, filtered by the relevance threshold.
type Retriever struct {
	embedder ports.EmbeddingService
	topK     int
	minScore float64
}

// NewRetriever creates a Retriever with injected dependencies.
func NewRetriever(embedder ports.EmbeddingService, topK int, minScore float64) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{embedder: embedder, topK: topK, minScore: minScore}
}

// Retrieve returns at most topK chunks scoring at least minScore, highest
// first. When filtering empties the result it returns
// entities.ErrNoRelevantContext: an explicit signal, not an empty list
// silently treated as success.
func (r *Retriever) Retrieve(ctx context.Context, gen *entities.Generation, question string) (entities.RetrievalResult, error) {
	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	results := gen.Search(vector, r.topK)

	filtered := results[:0:0]
	for _, res := range results {
		if res.Score >= r.minScore {
			filtered = append(filtered, res)
		}
	}

	if len(filtered) == 0 {
		logger.Debug("no chunk above threshold %.2f for question %q", r.minScore, question)
		return nil, entities.ErrNoRelevantContext
	}

	logger.Debug("retrieved %d chunks, best score %.3f", len(filtered), filtered[0].Score)
	return filtered, nil
}
