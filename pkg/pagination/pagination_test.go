package pagination

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 12, p.PerPage)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		fallback int
		page     int
		perPage  int
		offset   int
	}{
		{"defaults", "", 0, 1, 12, 0},
		{"configured fallback", "", 24, 1, 24, 0},
		{"custom values", "?page=3&per_page=50", 12, 3, 50, 100},
		{"negative page", "?page=-1", 12, 1, 12, 0},
		{"zero page", "?page=0", 12, 1, 12, 0},
		{"non-numeric page", "?page=abc", 12, 1, 12, 0},
		{"per_page over cap", "?per_page=101", 12, 1, 12, 0},
		{"per_page at cap", "?per_page=100", 12, 1, 100, 0},
		{"fallback over cap ignored", "", 500, 1, 12, 0},
		{"page over max clamps", "?page=100000000000000000&per_page=100", 12, MaxPage, 100, (MaxPage - 1) * 100},
		{"page overflowing int", "?page=99999999999999999999", 12, 1, 12, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/products"+tt.query, nil)
			p := FromRequest(req, tt.fallback)
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.perPage, p.PerPage)
			assert.Equal(t, tt.offset, p.Offset)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 12))
	assert.Equal(t, 1, TotalPages(12, 12))
	assert.Equal(t, 2, TotalPages(13, 12))
	assert.Equal(t, 0, TotalPages(10, 0))
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	assert.Equal(t, []int{1, 2, 3}, Slice(items, 1, 3))
	assert.Equal(t, []int{4, 5, 6}, Slice(items, 2, 3))
	assert.Equal(t, []int{7}, Slice(items, 3, 3))
	assert.Equal(t, []int{}, Slice(items, 4, 3))
	assert.Equal(t, []int{1, 2, 3}, Slice(items, 0, 3), "page below 1 clamps to 1")
}

func TestSlice_FarPastEnd(t *testing.T) {
	items := []int{1, 2, 3}
	tests := []struct {
		name    string
		page    int
		perPage int
	}{
		{"huge page", 100000000000000000, 100},
		{"max int page", math.MaxInt, 12},
		{"huge per page and page", 1 << 40, 1 << 40},
		{"max per page", 2, math.MaxInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, []int{}, Slice(items, tt.page, tt.perPage))
			})
		})
	}
	assert.Equal(t, []int{}, Slice([]int{}, 1, 12))
	assert.Equal(t, []int{1, 2, 3}, Slice(items, 1, math.MaxInt))
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(-3))
	assert.Equal(t, 4, ClampPage(4))
	assert.Equal(t, MaxPage, ClampPage(math.MaxInt))
}

func TestSlice_DoesNotAlias(t *testing.T) {
	items := []int{1, 2, 3}
	page := Slice(items, 1, 2)
	page[0] = 99
	assert.Equal(t, 1, items[0])
}

func TestVisiblePages(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    []int
	}{
		{"no pages", 1, 0, []int{}},
		{"fewer than window", 2, 3, []int{1, 2, 3}},
		{"start of range", 1, 10, []int{1, 2, 3, 4, 5}},
		{"middle", 6, 10, []int{4, 5, 6, 7, 8}},
		{"end of range", 10, 10, []int{6, 7, 8, 9, 10}},
		{"current beyond total", 42, 10, []int{6, 7, 8, 9, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VisiblePages(tt.current, tt.total, DefaultWindow))
		})
	}
}
