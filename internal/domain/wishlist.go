package domain

// WishlistState is a set of products keyed by product ID, kept in insertion
// order.
type WishlistState struct {
	Items     []Product `json:"items"`
	ItemCount int       `json:"itemCount"`
	IsOpen    bool      `json:"isOpen"`
}

// Recount sets ItemCount from the set size.
func (w *WishlistState) Recount() {
	w.ItemCount = len(w.Items)
}

// IndexOf returns the index of productID, or -1.
func (w *WishlistState) IndexOf(productID string) int {
	for i := range w.Items {
		if w.Items[i].ID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the state.
func (w WishlistState) Clone() WishlistState {
	out := w
	out.Items = make([]Product, len(w.Items))
	for i, p := range w.Items {
		out.Items[i] = p.Clone()
	}
	return out
}
