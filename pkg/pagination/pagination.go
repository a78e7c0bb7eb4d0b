package pagination

import (
	"math"
	"net/http"
	"strconv"
)

// DefaultPageSize is used when the caller does not ask for a page size.
const DefaultPageSize = 50

// Options addresses a window into an ordered result set. Nil fields fall back
// to their defaults. Offset, when set, takes precedence over Page.
type Options struct {
	Page     *int `json:"page,omitempty"`
	PageSize *int `json:"page_size,omitempty"`
	Offset   *int `json:"offset,omitempty"`
}

// Int returns a pointer to v, for building Options literals.
func Int(v int) *int {
	return &v
}

// Window resolves the options into a zero-based offset, a page size and the
// 1-based page number. Non-positive page and page size values are clamped to
// 1, negative offsets to 0. An offset that would overflow saturates at
// math.MaxInt.
func (o Options) Window() (offset, pageSize, page int) {
	pageSize = DefaultPageSize
	if o.PageSize != nil {
		pageSize = max(*o.PageSize, 1)
	}

	if o.Offset != nil {
		offset = max(*o.Offset, 0)
		return offset, pageSize, offset/pageSize + 1
	}

	page = 1
	if o.Page != nil {
		page = max(*o.Page, 1)
	}
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt, pageSize, page
	}
	return (page - 1) * pageSize, pageSize, page
}

// Page is one slice of an ordered result set with its pagination metadata.
type Page[T any] struct {
	Results      []T  `json:"results"`
	TotalResults int  `json:"total_results"`
	CurrentPage  int  `json:"current_page"`
	TotalPages   int  `json:"total_pages"`
	PageSize     int  `json:"page_size"`
	HasMore      bool `json:"has_more"`
}

// Paginate slices items according to opts. A window past the end yields an
// empty page with correct metadata rather than an error.
func Paginate[T any](items []T, opts Options) Page[T] {
	offset, pageSize, page := opts.Window()
	total := len(items)

	start := min(offset, total)
	end := start + min(pageSize, total-start)

	results := make([]T, end-start)
	copy(results, items[start:end])

	totalPages := total / pageSize
	if total%pageSize > 0 {
		totalPages++
	}

	return Page[T]{
		Results:      results,
		TotalResults: total,
		CurrentPage:  page,
		TotalPages:   totalPages,
		PageSize:     pageSize,
		HasMore:      end < total,
	}
}

// FromRequest reads page, page_size and offset query parameters. Values that
// do not parse as integers are ignored; range clamping happens in Window.
// A page_size above maxPageSize is capped when maxPageSize is positive.
func FromRequest(r *http.Request, maxPageSize int) Options {
	var opts Options
	q := r.URL.Query()

	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		opts.Page = Int(v)
	}
	if v, err := strconv.Atoi(q.Get("page_size")); err == nil {
		if maxPageSize > 0 && v > maxPageSize {
			v = maxPageSize
		}
		opts.PageSize = Int(v)
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil {
		opts.Offset = Int(v)
	}
	return opts
}
