// Package usecases contains application business rules.
// Usecases orchestrate entities and depend on port interfaces only.
package usecases

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/nmrocha/munirag-go/internal/domain/entities"
)

// Chunker splits document text into overlapping passages sized for
// embedding. Chunks are produced deterministically from a document and a
// fixed (size, overlap) policy.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker. Size and overlap are in runes; overlap
// must be strictly less than size (config validation guarantees this,
// the constructor falls back to defaults otherwise).
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return &Chunker{size: size, overlap: overlap}
}

// Chunk splits a document into chunks of at most size runes, each
// consecutive pair sharing exactly overlap runes. Documents shorter than
// size produce exactly one chunk; whitespace-only documents produce none.
// Original offsets are preserved for traceability.
func (c *Chunker) Chunk(doc entities.Document) []entities.Chunk {
	if strings.TrimSpace(doc.Content) == "" {
		return nil
	}

	runes := []rune(doc.Content)
	stride := c.size - c.overlap

	var chunks []entities.Chunk
	index := 0
	for start := 0; start < len(runes); start += stride {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, entities.Chunk{
			ID:           chunkID(doc.ID, index),
			DocumentID:   doc.ID,
			DocumentName: doc.Name,
			Index:        index,
			Content:      string(runes[start:end]),
			StartOffset:  start,
			EndOffset:    end,
		})
		index++

		if end == len(runes) {
			break
		}
	}

	return chunks
}

// chunkID creates a deterministic ID for a chunk.
func chunkID(docID string, index int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", docID, index)))
	return hex.EncodeToString(hash[:8])
}
