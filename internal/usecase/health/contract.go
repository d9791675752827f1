package health

import "context"

// Pinger checks availability of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding model availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// IndexChecker checks the full-text index and reports its document count.
type IndexChecker interface {
	Health(ctx context.Context) (int, error)
}
