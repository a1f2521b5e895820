package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/checkout"
)

func testAddress() checkout.Address {
	return checkout.Address{
		FullName:   "Jane Doe",
		Line1:      "1 Main St",
		City:       "Springfield",
		Region:     "IL",
		PostalCode: "62701",
		Country:    "US",
		Phone:      "+1 555 0100",
	}
}

func TestClient_CreatePaymentIntent(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/payments/intent", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"client_secret": "pi_secret_123",
				"amount":        6480,
				"currency":      "usd",
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token")
	intent, err := client.CreatePaymentIntent(context.Background(), 6480)

	require.NoError(t, err)
	assert.Equal(t, "pi_secret_123", intent.ClientSecret)
	assert.Equal(t, int64(6480), intent.Amount)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, float64(6480), gotBody["amount"])
	assert.Equal(t, "usd", gotBody["currency"])
}

func TestClient_CreatePaymentIntent_BackendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "gateway unavailable",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token")
	_, err := client.CreatePaymentIntent(context.Background(), 100)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "gateway unavailable", apiErr.Message)
}

func TestClient_CreatePaymentIntent_SuccessFalseOn200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "amount below minimum",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.CreatePaymentIntent(context.Background(), 1)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "amount below minimum", apiErr.Message)
}

func TestClient_CreatePaymentIntent_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(server.URL, "")
	_, err := client.CreatePaymentIntent(context.Background(), 100)

	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures must not be APIErrors")
}

func TestClient_CreateOrder(t *testing.T) {
	var gotBody orderRequest
	var gotIdempotencyKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/orders", r.URL.Path)
		gotIdempotencyKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"id":     "order-789",
				"status": "pending",
				"total":  64.80,
			},
		})
	}))
	defer server.Close()

	items := []cart.Item{
		{ID: "line-1", ProductID: "prod-1", Price: 60, Quantity: 1},
	}

	client := NewClient(server.URL, "test-token")
	order, err := client.CreateOrder(context.Background(), items, testAddress(), "card", "idem-123")

	require.NoError(t, err)
	assert.Equal(t, "order-789", order.ID)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "idem-123", gotIdempotencyKey)

	require.Len(t, gotBody.Items, 1)
	assert.Equal(t, "prod-1", gotBody.Items[0].ProductID)
	assert.Equal(t, 1, gotBody.Items[0].Quantity)
	assert.Equal(t, 60.0, gotBody.Items[0].Price)
	assert.Equal(t, "card", gotBody.PaymentMethod)
	assert.Equal(t, "Jane Doe", gotBody.ShippingAddress.FullName)
}

func TestClient_CreateOrder_BackendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "order service down"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.CreateOrder(context.Background(), []cart.Item{{ID: "l", ProductID: "p", Price: 1, Quantity: 1}}, testAddress(), "card", "")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}
