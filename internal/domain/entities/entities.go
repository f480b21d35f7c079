// Package entities contains core business entities.
// These are pure domain objects with no external dependencies.
package entities

import "time"

// Document represents a source document loaded from the documents directory.
// Immutable once loaded; replaced wholesale on reload.
type Document struct {
	ID       string
	Name     string // source filename, used for attribution
	Path     string
	Content  string
	LoadedAt time.Time
}

// Chunk is a bounded text passage derived from a document, the unit of
// retrieval. Offsets are rune positions into the document content.
type Chunk struct {
	ID           string
	DocumentID   string
	DocumentName string
	Index        int // position within the document
	Content      string
	StartOffset  int
	EndOffset    int
}

// ScoredChunk pairs a chunk with its similarity score for a query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// RetrievalResult is an ordered sequence of scored chunks,
// descending by score, length at most K.
type RetrievalResult []ScoredChunk

// ChatResponse is the model's answer together with the chunks it was
// grounded on.
type ChatResponse struct {
	Answer  string
	Sources RetrievalResult
}

// ConversationTurn records the last answered request. Ephemeral: scope is
// the current conversation only, never persisted.
type ConversationTurn struct {
	ID        string
	Question  string
	Retrieved RetrievalResult
	Prompt    string
	Answer    string
	Timestamp time.Time
}

// Status reports whether the pipeline can answer questions.
type Status string

const (
	StatusReady    Status = "ready"
	StatusNotReady Status = "not_ready"
)
