// Package filter computes the filtered, sorted view of a product collection.
// Every function is pure: inputs are never modified and nothing errors.
package filter

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/utafrali/storefront/internal/domain"
)

// Result is a filtered and sorted product view.
type Result struct {
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
}

// Run filters products by query and opts, then sorts them.
func Run(products []domain.Product, query string, opts domain.FilterOptions) Result {
	out := Sort(Apply(products, query, opts), opts.SortBy, opts.SortOrder)
	return Result{Products: out, Count: len(out)}
}

// Apply returns the products that pass every active predicate, in input
// order. The result is always a fresh, non-nil slice.
func Apply(products []domain.Product, query string, opts domain.FilterOptions) []domain.Product {
	q := strings.ToLower(query)
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if matches(p, q, opts) {
			out = append(out, p)
		}
	}
	return out
}

// Matches reports whether p passes the search query and every active filter.
func Matches(p domain.Product, query string, opts domain.FilterOptions) bool {
	return matches(p, strings.ToLower(query), opts)
}

func matches(p domain.Product, lowerQuery string, opts domain.FilterOptions) bool {
	if lowerQuery != "" &&
		!strings.Contains(strings.ToLower(p.Name), lowerQuery) &&
		!strings.Contains(strings.ToLower(p.Description), lowerQuery) {
		return false
	}
	if opts.Category != "" && p.Category != opts.Category {
		return false
	}
	if opts.Subcategory != "" && p.Subcategory != opts.Subcategory {
		return false
	}
	if len(opts.Brand) > 0 && !slices.Contains(opts.Brand, p.Brand) {
		return false
	}
	if opts.PriceRange != nil && !opts.PriceRange.Contains(p.Price) {
		return false
	}
	if opts.Rating != 0 && p.Rating < opts.Rating {
		return false
	}
	if opts.InStock && !p.InStock() {
		return false
	}
	if opts.IsNew && !p.IsNew {
		return false
	}
	if opts.IsFeatured && !p.IsFeatured {
		return false
	}
	if len(opts.Colors) > 0 && !anyIn(p.Colors, opts.Colors) {
		return false
	}
	if len(opts.Sizes) > 0 && !anyIn(p.Sizes, opts.Sizes) {
		return false
	}
	return true
}

func anyIn(have, want []string) bool {
	for _, h := range have {
		if slices.Contains(want, h) {
			return true
		}
	}
	return false
}

// Sort returns a stably sorted copy of products. An empty or unknown key
// keeps input order; desc reverses the comparison, so ties keep input order
// in both directions.
func Sort(products []domain.Product, by domain.SortBy, order domain.SortOrder) []domain.Product {
	out := slices.Clone(products)
	if out == nil {
		out = []domain.Product{}
	}

	cmp := comparator(by)
	if cmp == nil {
		return out
	}
	if order == domain.SortDesc {
		asc := cmp
		cmp = func(a, b domain.Product) int { return -asc(a, b) }
	}
	slices.SortStableFunc(out, cmp)
	return out
}

func comparator(by domain.SortBy) func(a, b domain.Product) int {
	switch by {
	case domain.SortByName:
		// A Collator keeps internal buffers, so each sort gets its own.
		c := collate.New(language.English)
		return func(a, b domain.Product) int { return c.CompareString(a.Name, b.Name) }
	case domain.SortByPrice:
		return func(a, b domain.Product) int { return compareFloat(a.Price, b.Price) }
	case domain.SortByRating:
		return func(a, b domain.Product) int { return compareFloat(a.Rating, b.Rating) }
	case domain.SortByNewest:
		return func(a, b domain.Product) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case domain.SortByPopularity:
		return func(a, b domain.Product) int { return a.ReviewCount - b.ReviewCount }
	default:
		return nil
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
