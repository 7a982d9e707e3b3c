package domain

import (
	"encoding/json"
	"slices"

	"github.com/utafrali/storefront/pkg/pagination"
)

// SortBy selects the product ordering.
type SortBy string

const (
	SortByName       SortBy = "name"
	SortByPrice      SortBy = "price"
	SortByRating     SortBy = "rating"
	SortByNewest     SortBy = "newest"
	SortByPopularity SortBy = "popularity"
)

// Valid reports whether s is a known sort key. The empty value is valid and
// means input order.
func (s SortBy) Valid() bool {
	switch s {
	case "", SortByName, SortByPrice, SortByRating, SortByNewest, SortByPopularity:
		return true
	}
	return false
}

// SortOrder is asc or desc. Anything other than desc sorts ascending.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// PriceRange is an inclusive [min, max] bound, encoded as a two-element
// JSON array.
type PriceRange [2]float64

func (r PriceRange) Min() float64 { return r[0] }
func (r PriceRange) Max() float64 { return r[1] }

// Contains reports whether price lies within the inclusive bounds.
func (r PriceRange) Contains(price float64) bool {
	return price >= r[0] && price <= r[1]
}

// FilterOptions is a composable filter and sort specification. A zero value
// for any key means "no constraint".
type FilterOptions struct {
	Category    string      `json:"category,omitempty"`
	Subcategory string      `json:"subcategory,omitempty"`
	Brand       []string    `json:"brand,omitempty"`
	PriceRange  *PriceRange `json:"priceRange,omitempty"`
	Rating      float64     `json:"rating,omitempty"`
	InStock     bool        `json:"inStock,omitempty"`
	IsNew       bool        `json:"isNew,omitempty"`
	IsFeatured  bool        `json:"isFeatured,omitempty"`
	Colors      []string    `json:"colors,omitempty"`
	Sizes       []string    `json:"sizes,omitempty"`
	SortBy      SortBy      `json:"sortBy,omitempty"`
	SortOrder   SortOrder   `json:"sortOrder,omitempty"`
}

// IsEmpty reports whether no filter or sort key is set.
func (f FilterOptions) IsEmpty() bool {
	return f.Category == "" && f.Subcategory == "" && len(f.Brand) == 0 &&
		f.PriceRange == nil && f.Rating == 0 && !f.InStock && !f.IsNew &&
		!f.IsFeatured && len(f.Colors) == 0 && len(f.Sizes) == 0 &&
		f.SortBy == "" && f.SortOrder == ""
}

// Clone returns a deep copy.
func (f FilterOptions) Clone() FilterOptions {
	out := f
	out.Brand = slices.Clone(f.Brand)
	out.Colors = slices.Clone(f.Colors)
	out.Sizes = slices.Clone(f.Sizes)
	if f.PriceRange != nil {
		r := *f.PriceRange
		out.PriceRange = &r
	}
	return out
}

// Opt is a patch field that records whether its JSON key was present.
// A present key with a null value clears the target.
type Opt[T any] struct {
	Set   bool
	Value *T
}

// Some returns a present Opt holding v.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Set: true, Value: &v}
}

// Null returns a present Opt that clears its target.
func Null[T any]() Opt[T] {
	return Opt[T]{Set: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Opt[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// MarshalJSON implements json.Marshaler.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

func (o Opt[T]) apply(dst *T) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		var zero T
		*dst = zero
		return
	}
	*dst = *o.Value
}

// FilterPatch is a partial update merged into FilterOptions. Absent keys
// are left untouched.
type FilterPatch struct {
	Category    Opt[string]     `json:"category"`
	Subcategory Opt[string]     `json:"subcategory"`
	Brand       Opt[[]string]   `json:"brand"`
	PriceRange  Opt[PriceRange] `json:"priceRange"`
	Rating      Opt[float64]    `json:"rating"`
	InStock     Opt[bool]       `json:"inStock"`
	IsNew       Opt[bool]       `json:"isNew"`
	IsFeatured  Opt[bool]       `json:"isFeatured"`
	Colors      Opt[[]string]   `json:"colors"`
	Sizes       Opt[[]string]   `json:"sizes"`
	SortBy      Opt[SortBy]     `json:"sortBy"`
	SortOrder   Opt[SortOrder]  `json:"sortOrder"`
}

// Merge returns f with patch applied.
func (f FilterOptions) Merge(patch FilterPatch) FilterOptions {
	out := f.Clone()
	patch.Category.apply(&out.Category)
	patch.Subcategory.apply(&out.Subcategory)
	patch.Brand.apply(&out.Brand)
	patch.Rating.apply(&out.Rating)
	patch.InStock.apply(&out.InStock)
	patch.IsNew.apply(&out.IsNew)
	patch.IsFeatured.apply(&out.IsFeatured)
	patch.Colors.apply(&out.Colors)
	patch.Sizes.apply(&out.Sizes)
	patch.SortBy.apply(&out.SortBy)
	patch.SortOrder.apply(&out.SortOrder)
	if patch.PriceRange.Set {
		if patch.PriceRange.Value == nil {
			out.PriceRange = nil
		} else {
			r := *patch.PriceRange.Value
			out.PriceRange = &r
		}
	}
	out.Brand = slices.Clone(out.Brand)
	out.Colors = slices.Clone(out.Colors)
	out.Sizes = slices.Clone(out.Sizes)
	return out
}

// BrowseState is a session's product-listing state. It is never persisted.
// Any change to the query or filters sends the shopper back to page 1.
type BrowseState struct {
	Query   string        `json:"query"`
	Filters FilterOptions `json:"filters"`
	Page    int           `json:"page"`
}

// NewBrowseState returns an empty state on page 1.
func NewBrowseState() BrowseState {
	return BrowseState{Page: 1}
}

// UpdateFilter merges patch into the filters and resets the page.
func (b *BrowseState) UpdateFilter(patch FilterPatch) {
	b.Filters = b.Filters.Merge(patch)
	b.Page = 1
}

// SetQuery replaces the search query and resets the page.
func (b *BrowseState) SetQuery(q string) {
	b.Query = q
	b.Page = 1
}

// ClearFilters drops every filter and the query.
func (b *BrowseState) ClearFilters() {
	b.Filters = FilterOptions{}
	b.Query = ""
	b.Page = 1
}

// SetPage moves to page p, clamped to [1, pagination.MaxPage].
func (b *BrowseState) SetPage(p int) {
	b.Page = pagination.ClampPage(p)
}

// Clone returns a deep copy.
func (b BrowseState) Clone() BrowseState {
	b.Filters = b.Filters.Clone()
	return b
}
