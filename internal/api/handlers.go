package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/example/storefront/internal/api/middleware"
	cartsvc "github.com/example/storefront/internal/cart"
	checkoutsvc "github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/checkout"
	"github.com/example/storefront/internal/gateway"
	"github.com/example/storefront/internal/notification"
	"github.com/example/storefront/internal/query"
)

type Handlers struct {
	carts         *cartsvc.Service
	checkout      *checkoutsvc.Orchestrator
	notifications *notification.Store
}

func NewHandlers(carts *cartsvc.Service, orch *checkoutsvc.Orchestrator, notifications *notification.Store) *Handlers {
	return &Handlers{
		carts:         carts,
		checkout:      orch,
		notifications: notifications,
	}
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	respondJSON(w, http.StatusOK, h.carts.Get(r.Context(), userID))
}

// AddItemRequest is the add-to-cart body. ID is optional; when absent the
// line ID is derived from the product and variant, so adding the same
// product+variant twice merges into one line.
type AddItemRequest struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Image       string  `json:"image"`
	SKU         string  `json:"sku"`
	Variant     string  `json:"variant"`
	MaxQuantity int     `json:"max_quantity"`
}

func (h *Handlers) AddCartItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProductID == "" {
		respondJSONError(w, "product_id is required", http.StatusBadRequest)
		return
	}
	if req.Price < 0 {
		respondJSONError(w, "price must not be negative", http.StatusBadRequest)
		return
	}

	lineID := req.ID
	if lineID == "" {
		lineID = req.ProductID
		if req.Variant != "" {
			lineID = req.ProductID + ":" + req.Variant
		}
	}

	c := h.carts.AddItem(r.Context(), userID, cart.Item{
		ID:          lineID,
		ProductID:   req.ProductID,
		Name:        req.Name,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Image:       req.Image,
		SKU:         req.SKU,
		Variant:     req.Variant,
		MaxQuantity: req.MaxQuantity,
	})
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	lineID := extractPathParam(r.URL.Path, "/cart/items/")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	c := h.carts.UpdateQuantity(r.Context(), userID, lineID, req.Quantity)
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	lineID := extractPathParam(r.URL.Path, "/cart/items/")

	c := h.carts.RemoveItem(r.Context(), userID, lineID)
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	respondJSON(w, http.StatusOK, h.carts.Clear(r.Context(), userID))
}

// GetCartSummary serves the order-summary projection: cart lines in display
// order plus the derived totals.
func (h *Handlers) GetCartSummary(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	c := h.carts.Get(r.Context(), userID)
	respondJSON(w, http.StatusOK, query.Summarize(c))
}

// Checkout Handlers

func (h *Handlers) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	session, err := h.checkout.Begin(r.Context(), userID)
	if err != nil {
		respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

func (h *Handlers) GetCheckout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	session, err := h.checkout.Session(userID)
	if err != nil {
		respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (h *Handlers) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var addr checkout.Address
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	session, err := h.checkout.SubmitShipping(r.Context(), userID, addr)
	if err != nil {
		respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (h *Handlers) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		PaymentMethod string `json:"payment_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "card"
	}

	session, err := h.checkout.ConfirmPayment(r.Context(), userID, req.PaymentMethod)
	if err != nil {
		respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// Notification Handlers

func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	items, err := h.notifications.ListByUser(r.Context(), userID, 50)
	if err != nil {
		respondJSONError(w, "failed to load notifications", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	path := strings.TrimPrefix(r.URL.Path, "/notifications/")
	id := strings.TrimSuffix(path, "/read")

	if err := h.notifications.MarkRead(r.Context(), userID, id); err != nil {
		respondJSONError(w, "failed to update notification", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondCheckoutError maps orchestrator errors onto HTTP. Precondition
// failures carry a redirect hint: the flow is not entered at all, the client
// is sent elsewhere.
func respondCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkoutsvc.ErrNotAuthenticated):
		respondJSONRedirect(w, err.Error(), "/login", http.StatusUnauthorized)
	case errors.Is(err, checkoutsvc.ErrEmptyCart):
		respondJSONRedirect(w, err.Error(), "/cart", http.StatusConflict)
	case errors.Is(err, checkoutsvc.ErrNoSession):
		respondJSONRedirect(w, err.Error(), "/cart", http.StatusNotFound)
	case errors.Is(err, checkout.ErrMissingField):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, checkoutsvc.ErrNotInShipping),
		errors.Is(err, checkoutsvc.ErrNoPaymentIntent),
		errors.Is(err, checkoutsvc.ErrSessionComplete),
		errors.Is(err, checkout.ErrInvalidTransition):
		respondJSONError(w, err.Error(), http.StatusConflict)
	default:
		// Gateway failures: backend-reported errors and transport errors
		// both surface as a bad-gateway the client may retry.
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) {
			respondJSONError(w, apiErr.Error(), http.StatusBadGateway)
			return
		}
		respondJSONError(w, err.Error(), http.StatusBadGateway)
	}
}
