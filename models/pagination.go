package models

import "math"

// Default page sizing used when no configuration overrides it.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest selects a 1-indexed page of a listing.
type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Normalize clamps the request into a valid window: pages start at 1, a
// missing size falls back to defaultSize and no size exceeds maxSize. Pages
// are capped so that Offset cannot overflow; such a page lies past the end.
func (r PageRequest) Normalize(defaultSize, maxSize int) PageRequest {
	if defaultSize < 1 {
		defaultSize = DefaultPageSize
	}
	if maxSize < 1 {
		maxSize = MaxPageSize
	}
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = defaultSize
	}
	if r.PageSize > maxSize {
		r.PageSize = maxSize
	}
	if limit := math.MaxInt / r.PageSize; r.Page > limit {
		r.Page = limit
	}
	return r
}

// Offset returns the number of rows preceding the page.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// Page is one window of a listing plus the metadata needed to navigate it.
type Page[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Total    int  `json:"total"`
	Pages    int  `json:"pages"`
	HasMore  bool `json:"has_more"`
}

// NewPage builds a page from rows fetched with a limit of PageSize+1; the
// extra row only signals that a further page exists and is dropped.
func NewPage[T any](rows []T, req PageRequest, total int) *Page[T] {
	hasMore := len(rows) > req.PageSize
	if hasMore {
		rows = rows[:req.PageSize]
	}
	if rows == nil {
		rows = []T{}
	}

	pages := 0
	if req.PageSize > 0 {
		pages = (total + req.PageSize - 1) / req.PageSize
	}

	return &Page[T]{
		Items:    rows,
		Page:     req.Page,
		PageSize: req.PageSize,
		Total:    total,
		Pages:    pages,
		HasMore:  hasMore,
	}
}

// HasPrev reports whether a previous page exists.
func (p *Page[T]) HasPrev() bool {
	return p.Page > 1
}

// PrevPage returns the previous page number.
func (p *Page[T]) PrevPage() int {
	if p.Page <= 1 {
		return 1
	}
	return p.Page - 1
}

// NextPage returns the next page number.
func (p *Page[T]) NextPage() int {
	return p.Page + 1
}
