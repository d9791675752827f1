package catalog

import "time"

// Category is a catalog category a package belongs to.
type Category struct {
	ID   int64
	Slug string
	Name string
}

// PackageRecord is the system-of-record view of a package.
// Slug is unique and is the external key shared by every derived store.
type PackageRecord struct {
	ID          int64
	Slug        string
	Name        string
	Description string
	Readme      string
	Language    string
	License     string
	Categories  []Category
	Stars       int
	Forks       int
	Downloads   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Embedding is nil until the embedding job has processed the record.
	Embedding  []float32
	EmbeddedAt *time.Time
}

// HasEmbedding reports whether a vector has been generated for the record.
func (p *PackageRecord) HasEmbedding() bool {
	return len(p.Embedding) > 0
}

// EmbeddingStale reports whether the record changed after its vector was generated.
func (p *PackageRecord) EmbeddingStale() bool {
	if !p.HasEmbedding() || p.EmbeddedAt == nil {
		return true
	}
	return p.UpdatedAt.After(*p.EmbeddedAt)
}

// CategoryNames returns category names in stored order.
func (p *PackageRecord) CategoryNames() []string {
	out := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		out = append(out, c.Name)
	}
	return out
}

// CategorySlugs returns category slugs in stored order.
func (p *PackageRecord) CategorySlugs() []string {
	out := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		out = append(out, c.Slug)
	}
	return out
}

// Popularity is the composite popularity signal used by the "popularity" sort.
// Forks weigh double, downloads are counted per thousand.
func (p *PackageRecord) Popularity() int64 {
	return int64(p.Stars) + 2*int64(p.Forks) + p.Downloads/1000
}

// Summary is the package projection returned by search endpoints.
type Summary struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	License     string    `json:"license,omitempty"`
	Categories  []string  `json:"categories"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	Downloads   int64     `json:"downloads"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Summary projects the record for API responses.
func (p *PackageRecord) Summary() Summary {
	return Summary{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Description: p.Description,
		Language:    p.Language,
		License:     p.License,
		Categories:  p.CategoryNames(),
		Stars:       p.Stars,
		Forks:       p.Forks,
		Downloads:   p.Downloads,
		UpdatedAt:   p.UpdatedAt,
	}
}
