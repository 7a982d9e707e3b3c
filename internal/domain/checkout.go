package domain

// LineItem is the flattened cart line handed to the payment processor.
type LineItem struct {
	Name        string  `json:"name" validate:"required,max=250"`
	Description string  `json:"description,omitempty" validate:"max=2000"`
	Price       float64 `json:"price" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"gte=1,lte=999"`
	Image       string  `json:"image,omitempty" validate:"omitempty,url"`
}

// ShippingOption is a selectable delivery speed.
type ShippingOption struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Time  string  `json:"time"`
}

var shippingOptions = []ShippingOption{
	{ID: "standard", Name: "Standard Shipping", Price: 0, Time: "5-7 business days"},
	{ID: "express", Name: "Express Shipping", Price: 15, Time: "2-3 business days"},
	{ID: "overnight", Name: "Overnight Shipping", Price: 30, Time: "1 business day"},
}

// DefaultShippingID is used when the shopper has not chosen a speed.
const DefaultShippingID = "standard"

// ShippingOptions returns the delivery speeds in display order.
func ShippingOptions() []ShippingOption {
	out := make([]ShippingOption, len(shippingOptions))
	copy(out, shippingOptions)
	return out
}

// ShippingByID looks up a shipping option.
func ShippingByID(id string) (ShippingOption, bool) {
	for _, o := range shippingOptions {
		if o.ID == id {
			return o, true
		}
	}
	return ShippingOption{}, false
}

// OrderSummary is the priced breakdown shown before payment.
type OrderSummary struct {
	Subtotal  float64 `json:"subtotal"`
	Shipping  float64 `json:"shipping"`
	Tax       float64 `json:"tax"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}

// CheckoutSession is what the shopper is redirected to after handoff.
type CheckoutSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}
