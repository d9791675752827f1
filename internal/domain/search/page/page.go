package page

// Pagination describes one page of a ranked result set.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// New computes pagination metadata. totalPages = ceil(total/limit).
func New(total, page, limit int) Pagination {
	p := Pagination{Total: total, Page: page, Limit: limit}
	if limit > 0 {
		p.TotalPages = (total + limit - 1) / limit
	}
	return p
}

// Offset returns the zero-based offset of a 1-indexed page.
func Offset(page, limit int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * limit
}

// Slice returns the window [offset, offset+limit) of items, clamped to bounds.
// Stores without native paging use it to cut a page out of a ranked set.
func Slice[T any](items []T, offset, limit int) []T {
	offset = max(offset, 0)
	if offset >= len(items) || limit <= 0 {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
