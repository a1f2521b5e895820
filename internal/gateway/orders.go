package gateway

import (
	"context"
	"time"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/checkout"
)

// OrderItem is one line of the order creation request.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type orderRequest struct {
	Items           []OrderItem      `json:"items"`
	ShippingAddress checkout.Address `json:"shippingAddress"`
	PaymentMethod   string           `json:"paymentMethod"`
}

// Order is the backend's record of a placed order.
type Order struct {
	ID        string      `json:"id"`
	Status    string      `json:"status"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	CreatedAt time.Time   `json:"created_at"`
}

// CreateOrder places an order from the cart lines, shipping address and
// payment method. The idempotency key makes a user-driven retry after a
// dropped response safe: the backend returns the original order instead of
// creating a second one.
func (c *Client) CreateOrder(ctx context.Context, items []cart.Item, addr checkout.Address, paymentMethod, idempotencyKey string) (*Order, error) {
	lines := make([]OrderItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}

	var order Order
	req := orderRequest{Items: lines, ShippingAddress: addr, PaymentMethod: paymentMethod}
	if err := c.post(ctx, "/api/v1/orders", headers, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
