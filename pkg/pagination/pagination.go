package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultPerPage is the storefront's product grid size.
	DefaultPerPage = 12
	// MaxPerPage bounds client-requested page sizes.
	MaxPerPage = 100
	// DefaultWindow is how many page links a pager shows at once.
	DefaultWindow = 5
	// MaxPage bounds requested page numbers so offsets cannot overflow.
	MaxPage = 1_000_000
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

// DefaultParams returns the storefront pagination defaults.
func DefaultParams() Params {
	return Params{
		Page:    1,
		PerPage: DefaultPerPage,
		Offset:  0,
	}
}

// FromRequest extracts pagination parameters from an HTTP request, falling
// back to perPage when per_page is absent or invalid.
func FromRequest(r *http.Request, perPage int) Params {
	p := DefaultParams()
	if perPage > 0 && perPage <= MaxPerPage {
		p.PerPage = perPage
	}

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if pp := r.URL.Query().Get("per_page"); pp != "" {
		if v, err := strconv.Atoi(pp); err == nil && v > 0 && v <= MaxPerPage {
			p.PerPage = v
		}
	}

	p.Page = ClampPage(p.Page)
	p.Offset = (p.Page - 1) * p.PerPage
	return p
}

// ClampPage limits page to [1, MaxPage].
func ClampPage(page int) int {
	return max(1, min(page, MaxPage))
}

// TotalPages returns how many pages of perPage items hold total items.
func TotalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	pages := total / perPage
	if total%perPage > 0 {
		pages++
	}
	return pages
}

// Slice returns the page-th window of items (1-based). Pages past the end
// yield an empty, non-nil slice. The input is never modified.
func Slice[T any](items []T, page, perPage int) []T {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if len(items) == 0 || page-1 > (len(items)-1)/perPage {
		return []T{}
	}
	start := (page - 1) * perPage
	end := min(start+perPage, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

// VisiblePages returns up to window consecutive page numbers centred on
// current where possible, clamped to [1, totalPages].
func VisiblePages(current, totalPages, window int) []int {
	if totalPages <= 0 {
		return []int{}
	}
	if window <= 0 {
		window = DefaultWindow
	}
	current = max(1, min(current, totalPages))

	if totalPages <= window {
		pages := make([]int, totalPages)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}

	half := window / 2
	start := current - half
	switch {
	case start < 1:
		start = 1
	case start+window-1 > totalPages:
		start = totalPages - window + 1
	}

	pages := make([]int, window)
	for i := range pages {
		pages[i] = start + i
	}
	return pages
}
