package cart

import "math"

// Pricing rules. Rates are applied to the subtotal in dollars.
const (
	TaxRate               = 0.08
	FreeShippingThreshold = 50.0
	FlatShippingFee       = 5.99
	DiscountThreshold     = 100.0
	DiscountRate          = 0.10

	// DefaultMaxQuantity caps a line item when the product carries no
	// explicit per-order limit.
	DefaultMaxQuantity = 10
)

// Item is a single cart line. Two lines for the same product with different
// variants carry different IDs.
type Item struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Image       string  `json:"image,omitempty"`
	SKU         string  `json:"sku,omitempty"`
	Variant     string  `json:"variant,omitempty"`
	MaxQuantity int     `json:"max_quantity,omitempty"`
}

// maxQuantity returns the effective per-line cap.
func (i Item) maxQuantity() int {
	if i.MaxQuantity > 0 {
		return i.MaxQuantity
	}
	return DefaultMaxQuantity
}

// Cart holds the line items for one user. Insertion order is preserved for
// display; pricing does not depend on it. All operations are total functions
// over in-memory state and never fail.
type Cart struct {
	UserID string `json:"user_id"`
	Items  []Item `json:"items"`
}

func New(userID string) *Cart {
	return &Cart{UserID: userID, Items: []Item{}}
}

// AddItem appends the item, or merges it into the existing line with the same
// ID by adding quantities. The merged quantity is clamped to the line's max.
func (c *Cart) AddItem(item Item) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].ID == item.ID {
			q := c.Items[i].Quantity + item.Quantity
			if max := c.Items[i].maxQuantity(); q > max {
				q = max
			}
			c.Items[i].Quantity = q
			return
		}
	}
	if max := item.maxQuantity(); item.Quantity > max {
		item.Quantity = max
	}
	c.Items = append(c.Items, item)
}

// RemoveItem deletes the line with the given ID. No-op if absent.
func (c *Cart) RemoveItem(id string) {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the line's quantity to max(1, quantity). No-op if absent.
func (c *Cart) UpdateQuantity(id string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items[i].Quantity = quantity
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []Item{}
}

// Item returns the line with the given ID.
func (c *Cart) Item(id string) (Item, bool) {
	for _, item := range c.Items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// IsInCart reports whether any line references the product.
func (c *Cart) IsInCart(productID string) bool {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// ItemCount is the sum of quantities across all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Subtotal is Σ(price × quantity) in dollars.
func (c *Cart) Subtotal() float64 {
	sum := 0.0
	for _, item := range c.Items {
		sum += item.Price * float64(item.Quantity)
	}
	return sum
}

func (c *Cart) Tax() float64 {
	return c.Subtotal() * TaxRate
}

// Shipping is flat-rate below the free-shipping threshold. The fee is a
// function of the subtotal alone, so an empty cart still prices at the flat
// rate; checkout rejects empty carts before the figure is ever charged.
func (c *Cart) Shipping() float64 {
	if c.Subtotal() > FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

func (c *Cart) Discount() float64 {
	if s := c.Subtotal(); s > DiscountThreshold {
		return s * DiscountRate
	}
	return 0
}

func (c *Cart) Total() float64 {
	return c.Subtotal() + c.Tax() + c.Shipping() - c.Discount()
}

// MinorUnits returns the grand total in integer cents, as the payment gateway
// expects.
func (c *Cart) MinorUnits() int64 {
	return int64(math.Round(c.Total() * 100))
}
