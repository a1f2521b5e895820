package gateway

import "context"

// PaymentIntent is the gateway's handle for a pending charge. Opaque to the
// checkout flow beyond the client secret it hands to the payment form; held
// only for the duration of the session.
type PaymentIntent struct {
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type intentRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreatePaymentIntent asks the backend for a payment intent covering the given
// amount in minor currency units.
func (c *Client) CreatePaymentIntent(ctx context.Context, amount int64) (*PaymentIntent, error) {
	var intent PaymentIntent
	req := intentRequest{Amount: amount, Currency: "usd"}
	if err := c.post(ctx, "/api/v1/payments/intent", nil, req, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}
