package chi

import (
	"github.com/kailas-cloud/pkgdex/internal/domain/catalog"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/page"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/result"
)

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeUnauthorized           ErrorCode = "unauthorized"
	CodeConflict               ErrorCode = "conflict"
	CodeModelUnavailable       ErrorCode = "model_unavailable"
	CodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	CodeIndexUnavailable       ErrorCode = "index_unavailable"
	CodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// PackageItem is one search hit.
type PackageItem struct {
	catalog.Summary
	Similarity *float64          `json:"similarity,omitempty"`
	Score      *float64          `json:"score,omitempty"`
	Source     result.Source     `json:"source,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// PagedResponse is returned by the paginated routes.
type PagedResponse struct {
	Data       []PackageItem   `json:"data"`
	Pagination page.Pagination `json:"pagination"`
	Meta       *IndexMeta      `json:"meta,omitempty"`
}

// IndexMeta describes a full-text index query.
type IndexMeta struct {
	ProcessingTimeMs int64  `json:"processingTimeMs"`
	Query            string `json:"query"`
}

// VectorResponse is returned by the semantic and hybrid routes.
type VectorResponse struct {
	Data []PackageItem `json:"data"`
	Meta VectorMeta    `json:"meta"`
}

// VectorMeta describes a semantic or hybrid query.
type VectorMeta struct {
	Query      string `json:"query"`
	Count      int    `json:"count"`
	SearchType string `json:"searchType"`
}

// HealthResponse is the /health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// IndexHealthResponse is the /search/health body.
type IndexHealthResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
	Error     string `json:"error,omitempty"`
}

func keywordItem(r *result.Result) PackageItem {
	return PackageItem{Summary: r.Package()}
}

func vectorItem(r *result.Result) PackageItem {
	sim := r.Relevance()
	return PackageItem{Summary: r.Package(), Similarity: &sim, Source: r.Source()}
}

func indexItem(r *result.Result) PackageItem {
	score := r.Relevance()
	return PackageItem{Summary: r.Package(), Score: &score, Highlights: r.Highlights()}
}

func toItems(results []result.Result, conv func(*result.Result) PackageItem) []PackageItem {
	items := make([]PackageItem, len(results))
	for i := range results {
		items[i] = conv(&results[i])
	}
	return items
}
