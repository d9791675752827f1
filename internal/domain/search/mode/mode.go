package mode

// Mode is the retrieval strategy selected by the caller.
// There is no fallback between modes within one request.
type Mode string

// Search mode constants.
const (
	// Keyword runs substring matching against the system of record.
	Keyword Mode = "keyword"
	// Semantic ranks by embedding similarity.
	Semantic Mode = "semantic"
	// Hybrid fuses semantic and keyword result lists.
	Hybrid Mode = "hybrid"
	// ExternalIndex delegates to the full-text index service.
	ExternalIndex Mode = "external-index"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Keyword || m == Semantic || m == Hybrid || m == ExternalIndex
}

// RequiresQuery reports whether the mode cannot run without query text.
func (m Mode) RequiresQuery() bool {
	return m == Semantic || m == Hybrid
}
