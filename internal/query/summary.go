package query

import "github.com/example/storefront/internal/domain/cart"

// LineView is one display row of the order summary.
type LineView struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
	Variant   string  `json:"variant,omitempty"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

// Totals is the derived pricing block.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// Summary is a pure projection of a cart for display: its lines in insertion
// order plus the derived totals. It owns no state and is recomputed per call.
type Summary struct {
	Lines     []LineView `json:"lines"`
	ItemCount int        `json:"item_count"`
	Totals    Totals     `json:"totals"`
}

// Summarize projects the cart into its display shape.
func Summarize(c *cart.Cart) Summary {
	lines := make([]LineView, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, LineView{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Variant:   item.Variant,
			UnitPrice: item.Price,
			Quantity:  item.Quantity,
			LineTotal: item.Price * float64(item.Quantity),
		})
	}

	return Summary{
		Lines:     lines,
		ItemCount: c.ItemCount(),
		Totals: Totals{
			Subtotal: c.Subtotal(),
			Tax:      c.Tax(),
			Shipping: c.Shipping(),
			Discount: c.Discount(),
			Total:    c.Total(),
		},
	}
}
