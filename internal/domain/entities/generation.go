package entities

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Generation is one immutable, queryable snapshot of all chunk embeddings.
// The orchestrator holds a single current generation and replaces it only
// via atomic swap; a generation is never mutated after Build returns it.
type Generation struct {
	ID        string
	BuiltAt   time.Time
	Dimension int
	Chunks    []Chunk
	Vectors   [][]float32
}

// Validate checks the generation invariants: every chunk has exactly one
// embedding vector and all vectors share the configured dimensionality.
func (g *Generation) Validate() error {
	if len(g.Chunks) != len(g.Vectors) {
		return fmt.Errorf("generation %s: %d chunks but %d vectors", g.ID, len(g.Chunks), len(g.Vectors))
	}
	for i, v := range g.Vectors {
		if len(v) != g.Dimension {
			return fmt.Errorf("generation %s: vector %d has dimension %d, want %d", g.ID, i, len(v), g.Dimension)
		}
	}
	return nil
}

// Len returns the number of chunks in the generation.
func (g *Generation) Len() int {
	return len(g.Chunks)
}

// Search returns the k chunks closest to the query vector by cosine
// similarity, highest score first. Ties keep original chunk insertion
// order, earlier chunk wins.
func (g *Generation) Search(vector []float32, k int) RetrievalResult {
	if k <= 0 || len(g.Chunks) == 0 {
		return nil
	}

	scored := make(RetrievalResult, len(g.Chunks))
	for i := range g.Chunks {
		scored[i] = ScoredChunk{
			Chunk: g.Chunks[i],
			Score: CosineSimilarity(vector, g.Vectors[i]),
		}
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// CosineSimilarity calculates cosine similarity between two vectors.
// Mismatched or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
