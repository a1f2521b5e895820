package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/storefront/internal/email"
	"github.com/example/storefront/internal/events"
	"github.com/example/storefront/internal/user"
)

// Feed is the slice of the store the handler writes to.
type Feed interface {
	Add(ctx context.Context, userID, kind, title, body string) (*Notification, error)
}

// Mailer sends the transactional mail for checkout outcomes.
type Mailer interface {
	SendOrderConfirmation(to, orderID string, total float64, items []email.OrderLine) error
	SendPaymentFailed(to, reason string) error
}

// UserLookup resolves the recipient address for an event's user.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// Handler turns checkout events from Kafka into notification-feed entries and
// transactional email. Mail failures are logged and skipped; the feed entry is
// the durable record.
type Handler struct {
	feed   Feed
	mailer Mailer
	users  UserLookup
}

func NewHandler(feed Feed, mailer Mailer, users UserLookup) *Handler {
	return &Handler{feed: feed, mailer: mailer, users: users}
}

// HandleEvent processes one event from the topic.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var env events.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	switch env.Type {
	case events.TypeOrderPlaced:
		return h.handleOrderPlaced(ctx, env)
	case events.TypePaymentIntentFailed:
		return h.handlePaymentFailed(ctx, env)
	case events.TypeOrderCreateFailed:
		return h.handleOrderFailed(ctx, env)
	}
	return nil
}

func (h *Handler) handleOrderPlaced(ctx context.Context, env events.Envelope) error {
	var e events.OrderPlaced
	if err := json.Unmarshal(env.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderPlaced event: %v", err)
		return err
	}

	log.Printf("[Notifier] Order %s placed by user %s", e.OrderID, e.UserID)

	body := fmt.Sprintf("Order %s has been placed. Total: $%.2f.", e.OrderID, e.Total)
	if _, err := h.feed.Add(ctx, e.UserID, KindOrderConfirmed, "Order confirmed", body); err != nil {
		return err
	}

	u, err := h.users.GetByID(ctx, e.UserID)
	if err != nil {
		log.Printf("[Notifier] No account found for user %s, skipping email: %v", e.UserID, err)
		return nil
	}

	lines := make([]email.OrderLine, len(e.Items))
	for i, item := range e.Items {
		lines[i] = email.OrderLine{Name: item.Name, Quantity: item.Quantity, Price: item.Price}
	}
	if err := h.mailer.SendOrderConfirmation(u.Email, e.OrderID, e.Total, lines); err != nil {
		log.Printf("[Notifier] Failed to send confirmation email to %s: %v", u.Email, err)
	}
	return nil
}

func (h *Handler) handlePaymentFailed(ctx context.Context, env events.Envelope) error {
	var e events.PaymentIntentFailed
	if err := json.Unmarshal(env.Data, &e); err != nil {
		return err
	}

	body := "We couldn't set up your payment. Your cart is unchanged; please try again."
	if _, err := h.feed.Add(ctx, e.UserID, KindPaymentFailed, "Payment problem", body); err != nil {
		return err
	}

	if u, err := h.users.GetByID(ctx, e.UserID); err == nil {
		if err := h.mailer.SendPaymentFailed(u.Email, e.Reason); err != nil {
			log.Printf("[Notifier] Failed to send payment-failed email to %s: %v", u.Email, err)
		}
	}
	return nil
}

func (h *Handler) handleOrderFailed(ctx context.Context, env events.Envelope) error {
	var e events.OrderCreateFailed
	if err := json.Unmarshal(env.Data, &e); err != nil {
		return err
	}

	body := "Your payment went through but placing the order failed. Please retry from checkout; you will not be charged twice."
	_, err := h.feed.Add(ctx, e.UserID, KindOrderFailed, "Order not completed", body)
	return err
}
