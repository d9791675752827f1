package pkgdex

import "github.com/kailas-cloud/pkgdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery           = domain.ErrInvalidQuery
	ErrModelUnavailable       = domain.ErrModelUnavailable
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrIndexUnavailable       = domain.ErrIndexUnavailable
	ErrStoreUnavailable       = domain.ErrStoreUnavailable
)
