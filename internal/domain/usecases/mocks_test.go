package usecases

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/nmrocha/munirag-go/internal/domain/entities"
)

// keywordEmbedder is a deterministic embedding stub: one dimension per
// vocabulary term, valued by occurrence count. Texts sharing terms get a
// high cosine similarity; unrelated texts score zero.
type keywordEmbedder struct {
	vocab []string
	err   error

	mu      sync.Mutex
	blockCh chan struct{} // when set, Embed blocks until the channel closes
}

func newKeywordEmbedder(vocab ...string) *keywordEmbedder {
	if len(vocab) == 0 {
		vocab = []string{"horário", "atendimento", "capital", "frança"}
	}
	return &keywordEmbedder{vocab: vocab}
}

func (e *keywordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	blockCh, err := e.blockCh, e.err
	e.mu.Unlock()
	if blockCh != nil {
		<-blockCh
	}
	if err != nil {
		return nil, err
	}

	low := strings.ToLower(text)
	vec := make([]float32, len(e.vocab))
	for i, term := range e.vocab {
		vec[i] = float32(strings.Count(low, term))
	}
	return vec, nil
}

func (e *keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = vec
	}
	return result, nil
}

func (e *keywordEmbedder) failWith(err error) {
	e.mu.Lock()
	e.err = err
	e.mu.Unlock()
}

func (e *keywordEmbedder) blockUntil(ch chan struct{}) {
	e.mu.Lock()
	e.blockCh = ch
	e.mu.Unlock()
}

// fakeLLM records the last prompt and returns a canned answer.
type fakeLLM struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []string
}

func (l *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prompts = append(l.prompts, prompt)
	if l.err != nil {
		return "", l.err
	}
	if l.answer == "" {
		return "resposta gerada", nil
	}
	return l.answer, nil
}

func (l *fakeLLM) lastPrompt() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.prompts) == 0 {
		return ""
	}
	return l.prompts[len(l.prompts)-1]
}

// memorySource serves documents from memory, ignoring the directory.
type memorySource struct {
	mu       sync.Mutex
	docs     []entities.Document
	warnings []string
	err      error
}

func (s *memorySource) Load(ctx context.Context, dir string) ([]entities.Document, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.docs, s.warnings, nil
}

func (s *memorySource) setDocs(docs ...entities.Document) {
	s.mu.Lock()
	s.docs = docs
	s.mu.Unlock()
}

// fakeStore is an in-memory GenerationStore.
type fakeStore struct {
	mu      sync.Mutex
	saved   *entities.Generation
	saveErr error
}

func (s *fakeStore) Save(ctx context.Context, gen *entities.Generation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = gen
	return nil
}

func (s *fakeStore) LoadLatest(ctx context.Context) (*entities.Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved, nil
}

func (s *fakeStore) Close() error { return nil }

var errEmbedderDown = errors.New("embedding backend unreachable")
