package domain

import (
	"maps"
	"slices"
	"time"
)

// Product is a catalog entry. Stores hold copies and never mutate them.
// JSON names match the persisted client snapshot format.
type Product struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Price          float64           `json:"price"`
	OriginalPrice  *float64          `json:"originalPrice,omitempty"`
	Images         []string          `json:"images"`
	Category       string            `json:"category"`
	Subcategory    string            `json:"subcategory,omitempty"`
	Brand          string            `json:"brand"`
	Rating         float64           `json:"rating"`
	ReviewCount    int               `json:"reviewCount"`
	Stock          int               `json:"stock"`
	Tags           []string          `json:"tags"`
	Features       []string          `json:"features"`
	Specifications map[string]string `json:"specifications"`
	Dimensions     *Dimensions       `json:"dimensions,omitempty"`
	Colors         []string          `json:"colors,omitempty"`
	Sizes          []string          `json:"sizes,omitempty"`
	IsNew          bool              `json:"isNew"`
	IsFeatured     bool              `json:"isFeatured"`
	IsBestSeller   bool              `json:"isBestSeller"`
	Discount       *float64          `json:"discount,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// Dimensions is the physical size of a product.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
	Weight float64 `json:"weight"`
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// PrimaryImage returns the first image URL, or "" when there is none.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Clone returns a deep copy so callers cannot alias the original's slices
// or maps.
func (p Product) Clone() Product {
	c := p
	c.Images = slices.Clone(p.Images)
	c.Tags = slices.Clone(p.Tags)
	c.Features = slices.Clone(p.Features)
	c.Colors = slices.Clone(p.Colors)
	c.Sizes = slices.Clone(p.Sizes)
	c.Specifications = maps.Clone(p.Specifications)
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		c.OriginalPrice = &v
	}
	if p.Discount != nil {
		v := *p.Discount
		c.Discount = &v
	}
	if p.Dimensions != nil {
		d := *p.Dimensions
		c.Dimensions = &d
	}
	return c
}

// Category is a browsable product category with its product count.
type Category struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	ProductCount int    `json:"productCount"`
}

// CategoryCount is one entry of the category facet.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Facets summarizes the values available for filtering a product set.
type Facets struct {
	Categories []CategoryCount `json:"categories"`
	Brands     []string        `json:"brands"`
	Colors     []string        `json:"colors"`
	Sizes      []string        `json:"sizes"`
	MinPrice   float64         `json:"minPrice"`
	MaxPrice   float64         `json:"maxPrice"`
}
