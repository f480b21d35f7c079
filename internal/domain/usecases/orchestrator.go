package usecases

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nmrocha/munirag-go/internal/domain/entities"
	"github.com/nmrocha/munirag-go/internal/domain/ports"
	"github.com/nmrocha/munirag-go/internal/logger"
)

// Orchestrator coordinates the RAG pipeline: loading, building, retrieval,
// context assembly and the language-model call.
//
// The only shared resource is the current generation pointer. Builds run
// entirely off the read path and are published with a single atomic swap,
// so in-flight queries always see one consistent generation. Concurrent
// reloads are serialised: a second reload is rejected, not queued.
type Orchestrator struct {
	source    ports.DocumentSource
	builder   *Builder
	retriever *Retriever
	assembler *Assembler
	llm       ports.LLMService
	store     ports.GenerationStore // optional; nil disables persistence

	documentsDir string

	current  atomic.Pointer[entities.Generation]
	reloadMu sync.Mutex

	// answerSlots bounds concurrent language-model calls.
	answerSlots chan struct{}

	turnMu   sync.Mutex
	lastTurn *entities.ConversationTurn
}

// NewOrchestrator creates an Orchestrator with injected dependencies.
func NewOrchestrator(
	source ports.DocumentSource,
	builder *Builder,
	retriever *Retriever,
	assembler *Assembler,
	llm ports.LLMService,
	store ports.GenerationStore,
	documentsDir string,
	maxConcurrentAnswers int,
) *Orchestrator {
	if maxConcurrentAnswers <= 0 {
		maxConcurrentAnswers = 4
	}
	return &Orchestrator{
		source:       source,
		builder:      builder,
		retriever:    retriever,
		assembler:    assembler,
		llm:          llm,
		store:        store,
		documentsDir: documentsDir,
		answerSlots:  make(chan struct{}, maxConcurrentAnswers),
	}
}

// Status reports whether a generation is available. Never blocks.
func (o *Orchestrator) Status() entities.Status {
	if o.current.Load() == nil {
		return entities.StatusNotReady
	}
	return entities.StatusReady
}

// Generation returns the currently serving generation, or nil.
func (o *Orchestrator) Generation() *entities.Generation {
	return o.current.Load()
}

// Restore loads the persisted generation, if any, so a restart does not
// require re-embedding. Returns true when a generation was restored.
func (o *Orchestrator) Restore(ctx context.Context) (bool, error) {
	if o.store == nil {
		return false, nil
	}
	gen, err := o.store.LoadLatest(ctx)
	if err != nil {
		return false, fmt.Errorf("loading persisted generation: %w", err)
	}
	if gen == nil {
		return false, nil
	}
	if err := gen.Validate(); err != nil {
		return false, fmt.Errorf("persisted generation invalid: %w", err)
	}
	o.current.Store(gen)
	logger.Info("restored generation %s with %d chunks", gen.ID, gen.Len())
	return true, nil
}

// Reload re-runs ingestion against the current documents and atomically
// swaps in the new generation. On any failure the previous generation
// stays in service and the failure is reported to the caller. At most one
// reload runs at a time; a concurrent call gets ErrReloadInProgress.
func (o *Orchestrator) Reload(ctx context.Context) error {
	if !o.reloadMu.TryLock() {
		return entities.ErrReloadInProgress
	}
	defer o.reloadMu.Unlock()

	docs, warnings, err := o.source.Load(ctx, o.documentsDir)
	if err != nil {
		return fmt.Errorf("%w: loading documents: %v", entities.ErrBuildFailure, err)
	}
	for _, w := range warnings {
		logger.Warn("ingestion: %s", w)
	}

	gen, err := o.builder.Build(ctx, docs)
	if err != nil {
		if errors.Is(err, entities.ErrEmptyCorpus) {
			return err
		}
		return fmt.Errorf("%w: %v", entities.ErrBuildFailure, err)
	}

	if o.store != nil {
		if err := o.store.Save(ctx, gen); err != nil {
			// The new generation is still served; only persistence
			// across restarts is lost.
			logger.Warn("persisting generation: %v", err)
		}
	}

	o.current.Store(gen)
	logger.Info("generation %s active: %d documents, %d chunks, dimension %d",
		gen.ID, len(docs), gen.Len(), gen.Dimension)
	return nil
}

// Answer runs Retriever -> Context Assembler -> language-model call for a
// single question. Fails with ErrNotReady when no generation exists.
// Model failures surface as ErrModelUnavailable or ErrModelTimeout,
// distinct from the no-relevant-context policy.
func (o *Orchestrator) Answer(ctx context.Context, question string) (*entities.ChatResponse, error) {
	gen := o.current.Load()
	if gen == nil {
		return nil, entities.ErrNotReady
	}

	result, err := o.retriever.Retrieve(ctx, gen, question)
	var prompt string
	switch {
	case errors.Is(err, entities.ErrNoRelevantContext):
		prompt = o.assembler.AssembleOutOfScope(question)
		result = nil
	case err != nil:
		return nil, err
	default:
		prompt = o.assembler.Assemble(question, result)
	}

	select {
	case o.answerSlots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	answer, err := o.llm.Generate(ctx, prompt)
	<-o.answerSlots
	if err != nil {
		return nil, err
	}

	o.recordTurn(question, result, prompt, answer)

	return &entities.ChatResponse{Answer: answer, Sources: result}, nil
}

// LastTurn returns the most recent conversation turn, or nil. Ephemeral:
// turns are not persisted across restarts.
func (o *Orchestrator) LastTurn() *entities.ConversationTurn {
	o.turnMu.Lock()
	defer o.turnMu.Unlock()
	if o.lastTurn == nil {
		return nil
	}
	turn := *o.lastTurn
	return &turn
}

func (o *Orchestrator) recordTurn(question string, result entities.RetrievalResult, prompt, answer string) {
	o.turnMu.Lock()
	defer o.turnMu.Unlock()
	o.lastTurn = &entities.ConversationTurn{
		ID:        uuid.NewString(),
		Question:  question,
		Retrieved: result,
		Prompt:    prompt,
		Answer:    answer,
		Timestamp: time.Now(),
	}
}
