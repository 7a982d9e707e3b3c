package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemKey identifies a cart line for merge purposes: the same product in the
// same color and size is one line.
type ItemKey struct {
	ProductID string
	Color     string
	Size      string
}

// CartItem is one line of the cart.
type CartItem struct {
	ID            string    `json:"id"`
	Product       Product   `json:"product"`
	Quantity      int       `json:"quantity"`
	SelectedColor string    `json:"selectedColor,omitempty"`
	SelectedSize  string    `json:"selectedSize,omitempty"`
	AddedAt       time.Time `json:"addedAt"`
}

// Key returns the merge identity of the line.
func (i CartItem) Key() ItemKey {
	return ItemKey{ProductID: i.Product.ID, Color: i.SelectedColor, Size: i.SelectedSize}
}

// Subtotal is price × quantity computed in decimal.
func (i CartItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Product.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartState holds the cart lines in insertion order plus derived aggregates.
type CartState struct {
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	ItemCount int        `json:"itemCount"`
	IsOpen    bool       `json:"isOpen"`
}

// Recalculate recomputes Total and ItemCount from Items.
func (c *CartState) Recalculate() {
	total := decimal.Zero
	count := 0
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
		count += item.Quantity
	}
	c.Total = total.InexactFloat64()
	c.ItemCount = count
}

// FindItemIndex returns the index of the line matching key, or -1.
func (c *CartState) FindItemIndex(key ItemKey) int {
	for i := range c.Items {
		if c.Items[i].Key() == key {
			return i
		}
	}
	return -1
}

// IndexOf returns the index of the line with the given item ID, or -1.
func (c *CartState) IndexOf(itemID string) int {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// QuantityOf sums quantities across every variant of productID.
func (c *CartState) QuantityOf(productID string) int {
	n := 0
	for _, item := range c.Items {
		if item.Product.ID == productID {
			n += item.Quantity
		}
	}
	return n
}

// Clone returns a deep copy of the state.
func (c CartState) Clone() CartState {
	out := c
	out.Items = make([]CartItem, len(c.Items))
	for i, item := range c.Items {
		item.Product = item.Product.Clone()
		out.Items[i] = item
	}
	return out
}
