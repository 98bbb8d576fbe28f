// Package listquery implements the search, status filter and pagination
// shared by every list endpoint.
package listquery

import "strings"

const (
	DefaultPageSize = 6
	MaxPageSize     = 100
	WindowSize      = 5
)

// Item is a record that can be searched and filtered by status.
type Item interface {
	SearchFields() []string
	CurrentStatus() string
}

// Params are the list inputs accepted by every list endpoint.
type Params struct {
	Status   string
	Query    string
	Page     int
	PageSize int
}

// Normalize clamps the page to >= 1 and the size to (0, MaxPageSize].
func (p Params) Normalize(defaultSize int) Params {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	p.Query = strings.TrimSpace(p.Query)
	if strings.EqualFold(p.Status, "all") {
		p.Status = ""
	}
	return p
}

func (p Params) Offset() int { return (p.Page - 1) * p.PageSize }

type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int   `json:"total"`
	TotalPages int   `json:"totalPages"`
	Pages      []int `json:"pages"`
}

// Search keeps items where any search field contains q, case-insensitively.
// An empty query keeps everything.
func Search[T Item](items []T, q string) []T {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		for _, f := range it.SearchFields() {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// FilterStatus keeps items with exactly the given status. "" and "all" keep everything.
func FilterStatus[T Item](items []T, status string) []T {
	if status == "" || strings.EqualFold(status, "all") {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if it.CurrentStatus() == status {
			out = append(out, it)
		}
	}
	return out
}

// Paginate slices one page out of items. Pages past the end are empty.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	var slice []T
	if start < len(items) {
		end := min(start+size, len(items))
		slice = items[start:end]
	}
	return NewPage(slice, len(items), page, size)
}

// NewPage wraps one already-sliced page, e.g. a LIMIT/OFFSET query result.
func NewPage[T any](items []T, total, page, size int) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := TotalPages(total, size)
	return Page[T]{
		Items:      items,
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: totalPages,
		Pages:      Window(page, totalPages, WindowSize),
	}
}

// Apply is Paginate(FilterStatus(Search(items, q), status), page, size).
func Apply[T Item](items []T, p Params) Page[T] {
	p = p.Normalize(DefaultPageSize)
	return Paginate(FilterStatus(Search(items, p.Query), p.Status), p.Page, p.PageSize)
}

func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Window returns at most span page numbers centred on current, clamped to [1, total].
func Window(current, total, span int) []int {
	if total <= 0 || span <= 0 {
		return []int{}
	}
	current = max(1, min(current, total))
	start := max(1, current-span/2)
	end := min(total, start+span-1)
	if end-start+1 < span {
		start = max(1, end-span+1)
	}
	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
