package entities

import "errors"

// Domain errors represent pipeline failures and answer-scope signals.
// These are distinct from infrastructure errors.
var (
	// ErrNotReady indicates a query arrived before any index generation
	// was built.
	ErrNotReady = errors.New("no index generation available")

	// ErrEmptyCorpus indicates ingestion produced no chunks at all.
	ErrEmptyCorpus = errors.New("no documents produced any chunks")

	// ErrBuildFailure indicates an index build failed during reload.
	// The previously active generation stays in service.
	ErrBuildFailure = errors.New("index build failed")

	// ErrReloadInProgress indicates a reload is already running.
	// Concurrent reloads are rejected, not queued.
	ErrReloadInProgress = errors.New("reload already in progress")

	// ErrNoRelevantContext indicates retrieval found nothing above the
	// relevance threshold. Not a failure: it drives the out-of-scope
	// answer policy.
	ErrNoRelevantContext = errors.New("no relevant context above threshold")

	// ErrModelUnavailable indicates the language-model backend could not
	// be reached.
	ErrModelUnavailable = errors.New("language model unavailable")

	// ErrModelTimeout indicates the language-model call exceeded its
	// timeout.
	ErrModelTimeout = errors.New("language model timed out")
)
