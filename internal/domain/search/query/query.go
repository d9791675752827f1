package query

import (
	"github.com/kailas-cloud/pkgdex/internal/domain/catalog"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/filter"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/order"
)

// Keyword is a substring query against the system of record.
type Keyword struct {
	Text     string
	Criteria filter.Criteria
	Sort     order.Key
	Offset   int
	Limit    int
}

// Nearest is a k-nearest-neighbour query over stored embeddings.
// Language narrows membership before ranking and never changes scores.
type Nearest struct {
	Vector   []float32
	K        int
	Language string
}

// ScoredRecord is a record ranked by similarity to a query vector.
type ScoredRecord struct {
	Record     catalog.PackageRecord
	Similarity float64
}

// Page is a slice of records plus the total match count.
type Page struct {
	Records []catalog.PackageRecord
	Total   int
}
