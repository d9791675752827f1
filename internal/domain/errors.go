package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery signals malformed search input (bad filter, sort, paging).
	ErrInvalidQuery = errors.New("invalid query")
	// ErrModelUnavailable signals that the embedding model could not be loaded.
	// Sticky for the lifetime of the process: every later call fails the same way.
	ErrModelUnavailable = errors.New("embedding model unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrIndexUnavailable signals that the full-text index service failed or is unreachable.
	ErrIndexUnavailable = errors.New("full-text index unavailable")
	// ErrStoreUnavailable signals a system-of-record failure.
	ErrStoreUnavailable = errors.New("record store unavailable")
	// ErrInvalidSettings signals an invalid full-text index configuration.
	ErrInvalidSettings = errors.New("invalid index settings")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)
