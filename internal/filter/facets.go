package filter

import (
	"slices"

	"github.com/utafrali/storefront/internal/domain"
)

// FacetsOf summarizes the filterable values present in products. Lists keep
// first-seen order.
func FacetsOf(products []domain.Product) domain.Facets {
	f := domain.Facets{
		Categories: []domain.CategoryCount{},
		Brands:     []string{},
		Colors:     []string{},
		Sizes:      []string{},
	}
	catIndex := map[string]int{}

	for i, p := range products {
		if idx, ok := catIndex[p.Category]; ok {
			f.Categories[idx].Count++
		} else {
			catIndex[p.Category] = len(f.Categories)
			f.Categories = append(f.Categories, domain.CategoryCount{Category: p.Category, Count: 1})
		}
		f.Brands = appendUnique(f.Brands, p.Brand)
		for _, c := range p.Colors {
			f.Colors = appendUnique(f.Colors, c)
		}
		for _, s := range p.Sizes {
			f.Sizes = appendUnique(f.Sizes, s)
		}

		if i == 0 || p.Price < f.MinPrice {
			f.MinPrice = p.Price
		}
		if i == 0 || p.Price > f.MaxPrice {
			f.MaxPrice = p.Price
		}
	}
	return f
}

func appendUnique(list []string, v string) []string {
	if v == "" || slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}
