// Package pagination implements the shared page/page_size sanitisation and page
// metadata used by every collection endpoint.
package pagination

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Meta describes the position of a page within a collection.
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Page is the envelope returned by every list endpoint.
type Page[T any] struct {
	Items []T  `json:"items"`
	Meta  Meta `json:"meta"`
}

// Sanitize clamps pagination inputs. Page is floored to 1; a non-positive
// page size falls back to the default and oversized requests are silently
// capped at MaxPageSize — callers can never request unbounded pages.
func Sanitize(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// OffsetLimit converts sanitised (page, pageSize) into SQL offset/limit.
func OffsetLimit(page, pageSize int) (offset, limit int) {
	page, pageSize = Sanitize(page, pageSize)
	return (page - 1) * pageSize, pageSize
}

// BuildMeta computes page metadata. TotalPages is never below 1, even for an
// empty collection, so clients can always render "page 1 of 1".
func BuildMeta(total int64, page, pageSize int) Meta {
	page, pageSize = Sanitize(page, pageSize)
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	return Meta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// NewPage wraps a slice of items with its metadata, normalising nil slices to
// empty ones so JSON always carries an array.
func NewPage[T any](items []T, meta Meta) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Meta: meta}
}
