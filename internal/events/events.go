package events

import (
	"encoding/json"
	"time"

	"github.com/example/storefront/internal/domain/cart"
)

// Event types carried on the storefront topic.
const (
	TypeItemAdded           = "ItemAddedToCart"
	TypeItemRemoved         = "ItemRemovedFromCart"
	TypeQuantityChanged     = "CartQuantityChanged"
	TypeCartCleared         = "CartCleared"
	TypeCheckoutStarted     = "CheckoutStarted"
	TypePaymentIntentOK     = "PaymentIntentCreated"
	TypePaymentIntentFailed = "PaymentIntentFailed"
	TypeOrderPlaced         = "OrderPlaced"
	TypeOrderCreateFailed   = "OrderCreateFailed"
)

// Envelope is the wire shape on the topic: a type tag plus the typed payload.
type Envelope struct {
	Type       string          `json:"type"`
	UserID     string          `json:"user_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

func NewEnvelope(eventType, userID string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now(),
		Data:       raw,
	}, nil
}

type ItemAdded struct {
	UserID   string    `json:"user_id"`
	Item     cart.Item `json:"item"`
	Subtotal float64   `json:"subtotal"`
}

type ItemRemoved struct {
	UserID string `json:"user_id"`
	LineID string `json:"line_id"`
}

type QuantityChanged struct {
	UserID   string `json:"user_id"`
	LineID   string `json:"line_id"`
	Quantity int    `json:"quantity"`
}

type CartCleared struct {
	UserID string `json:"user_id"`
}

type CheckoutStarted struct {
	UserID    string  `json:"user_id"`
	ItemCount int     `json:"item_count"`
	Total     float64 `json:"total"`
}

type PaymentIntentCreated struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
}

type PaymentIntentFailed struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

type OrderPlaced struct {
	UserID  string      `json:"user_id"`
	OrderID string      `json:"order_id"`
	Items   []cart.Item `json:"items"`
	Total   float64     `json:"total"`
}

type OrderCreateFailed struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}
