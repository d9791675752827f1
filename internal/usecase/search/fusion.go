package search

import (
	"math"
	"slices"

	"github.com/kailas-cloud/pkgdex/internal/domain/search/result"
)

// Fusion defaults.
const (
	DefaultSemanticShare       = 0.6
	DefaultKeywordWeight       = 0.5
	DefaultHybridMinSimilarity = 0.2
)

// FusionOptions tunes hybrid search.
type FusionOptions struct {
	// SemanticShare is the fraction of limit requested from the semantic leg;
	// the keyword leg gets the rest. Both quotas round up.
	SemanticShare float64
	// KeywordWeight is the relevance assigned to keyword-only hits.
	KeywordWeight float64
	// MinSimilarity is the semantic floor, looser than the semantic route.
	MinSimilarity float64
}

func (o *FusionOptions) applyDefaults() {
	if o.SemanticShare <= 0 || o.SemanticShare >= 1 {
		o.SemanticShare = DefaultSemanticShare
	}
	if o.KeywordWeight <= 0 {
		o.KeywordWeight = DefaultKeywordWeight
	}
	if o.MinSimilarity <= 0 {
		o.MinSimilarity = DefaultHybridMinSimilarity
	}
}

// quotas returns how many results each leg is asked for.
func (o *FusionOptions) quotas(limit int) (semantic, kw int) {
	return ceilShare(limit, o.SemanticShare), ceilShare(limit, 1-o.SemanticShare)
}

func ceilShare(limit int, share float64) int {
	// Guard against 10*0.6 landing a hair above 6.
	return int(math.Ceil(float64(limit)*share - 1e-9))
}

// fuse merges semantic hits (in similarity order) with keyword hits not
// already present, which carry weight. The merged list is sorted by
// relevance descending, stable so semantic hits win ties, and truncated
// to limit. Ids never repeat.
func fuse(semantic, kw []result.Result, weight float64, limit int) []result.Result {
	seen := make(map[int64]struct{}, len(semantic)+len(kw))
	merged := make([]result.Result, 0, len(semantic)+len(kw))

	for _, r := range semantic {
		if _, ok := seen[r.ID()]; ok {
			continue
		}
		seen[r.ID()] = struct{}{}
		merged = append(merged, r)
	}
	for _, r := range kw {
		if _, ok := seen[r.ID()]; ok {
			continue
		}
		seen[r.ID()] = struct{}{}
		merged = append(merged, result.New(r.Package(), weight, result.SourceKeyword))
	}

	slices.SortStableFunc(merged, func(a, b result.Result) int {
		switch {
		case a.Relevance() > b.Relevance():
			return -1
		case a.Relevance() < b.Relevance():
			return 1
		}
		return 0
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
