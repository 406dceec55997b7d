package search

import "errors"

// Transient external-service failures are wrapped with these sentinels so
// callers can classify them with errors.Is and decide their own retry
// policy. The orchestrator itself never retries.
var (
	// ErrEmbeddingUnavailable marks a failed or timed-out embedding call.
	// A search without a valid query vector cannot proceed, so no partial
	// or degraded result is returned.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexUnavailable marks a failed or timed-out vector search.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrCatalogUnavailable marks a failed article hydration lookup.
	ErrCatalogUnavailable = errors.New("article catalog unavailable")
)
