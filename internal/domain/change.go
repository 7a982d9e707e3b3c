package domain

// ChangeKind describes what a store mutation did.
type ChangeKind string

const (
	ChangeAdded     ChangeKind = "added"
	ChangeUpdated   ChangeKind = "updated"
	ChangeRemoved   ChangeKind = "removed"
	ChangeCleared   ChangeKind = "cleared"
	ChangeDuplicate ChangeKind = "duplicate"
	ChangeNoop      ChangeKind = "noop"
)

// Change is returned by every store mutator. Callers decide how to surface
// it; the stores never notify anyone themselves.
type Change struct {
	Kind        ChangeKind `json:"kind"`
	ItemID      string     `json:"item_id,omitempty"`
	ProductID   string     `json:"product_id,omitempty"`
	ProductName string     `json:"product_name,omitempty"`
	Quantity    int        `json:"quantity,omitempty"`
	// QuantityOnly marks an UpdateQuantity that kept the line.
	QuantityOnly bool `json:"-"`
}

// Mutated reports whether the change altered state.
func (c Change) Mutated() bool {
	return c.Kind != ChangeNoop && c.Kind != ChangeDuplicate
}
