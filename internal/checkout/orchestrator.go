package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/checkout"
	"github.com/example/storefront/internal/events"
	"github.com/example/storefront/internal/gateway"
)

var (
	ErrNotAuthenticated = errors.New("checkout requires an authenticated user")
	ErrEmptyCart        = errors.New("checkout requires a non-empty cart")
	ErrNoSession        = errors.New("no active checkout session")
	ErrNotInShipping    = errors.New("shipping can only be submitted from the shipping step")
	ErrNoPaymentIntent  = errors.New("payment cannot be confirmed without a payment intent")
	ErrSessionComplete  = errors.New("checkout session is already complete")
)

// PaymentClient creates payment intents against the payment gateway.
type PaymentClient interface {
	CreatePaymentIntent(ctx context.Context, amount int64) (*gateway.PaymentIntent, error)
}

// OrderClient places orders against the commerce backend.
type OrderClient interface {
	CreateOrder(ctx context.Context, items []cart.Item, addr checkout.Address, paymentMethod, idempotencyKey string) (*gateway.Order, error)
}

// CartService is the slice of the cart service the orchestrator needs.
type CartService interface {
	Get(ctx context.Context, userID string) *cart.Cart
	Clear(ctx context.Context, userID string) *cart.Cart
}

// EventPublisher emits checkout lifecycle events, best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Session is one user's in-progress checkout. Sessions are held in memory
// only; they do not outlive the process, matching their page-session
// lifetime.
type Session struct {
	UserID  string                `json:"user_id"`
	State   checkout.State        `json:"state"`
	Address *checkout.Address     `json:"address,omitempty"`
	Intent  *gateway.PaymentIntent `json:"intent,omitempty"`
	Order   *gateway.Order        `json:"order,omitempty"`

	// IdempotencyKey is fixed when the session starts and sent with every
	// order-creation attempt, so a retry after a dropped response cannot
	// create a second order for a charge that already went through.
	IdempotencyKey string    `json:"-"`
	StartedAt      time.Time `json:"started_at"`
}

// Orchestrator drives the linear checkout flow, one session per user:
// shipping collects an address and creates a payment intent, payment records
// the gateway outcome and places the order, confirmation is terminal.
type Orchestrator struct {
	mu       sync.Mutex
	sessions map[string]*Session

	carts    CartService
	payments PaymentClient
	orders   OrderClient
	events   EventPublisher
}

func NewOrchestrator(carts CartService, payments PaymentClient, orders OrderClient, ev EventPublisher) *Orchestrator {
	return &Orchestrator{
		sessions: make(map[string]*Session),
		carts:    carts,
		payments: payments,
		orders:   orders,
		events:   ev,
	}
}

// Begin opens a checkout session. Preconditions: an authenticated user and a
// non-empty cart; violations are typed errors the API layer maps to a
// redirect. An in-progress session is resumed, a completed one replaced.
func (o *Orchestrator) Begin(ctx context.Context, userID string) (Session, error) {
	if userID == "" {
		return Session{}, ErrNotAuthenticated
	}
	c := o.carts.Get(ctx, userID)
	if c.IsEmpty() {
		return Session{}, ErrEmptyCart
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if existing, ok := o.sessions[userID]; ok && !existing.State.IsTerminal() {
		return *existing, nil
	}

	session := &Session{
		UserID:         userID,
		State:          checkout.StateShipping,
		IdempotencyKey: uuid.New().String(),
		StartedAt:      time.Now(),
	}
	o.sessions[userID] = session

	o.publish(ctx, events.TypeCheckoutStarted, userID, events.CheckoutStarted{
		UserID:    userID,
		ItemCount: c.ItemCount(),
		Total:     c.Total(),
	})

	return *session, nil
}

// Session returns the user's current session.
func (o *Orchestrator) Session(userID string) (Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	s, ok := o.sessions[userID]
	if !ok {
		return Session{}, ErrNoSession
	}
	return *s, nil
}

// SubmitShipping stores the address, moves the session to the payment step
// and creates a payment intent for the cart total. An intent-creation failure
// leaves the session in the payment step with no intent; the caller retries
// by submitting again — there is no automatic retry.
func (o *Orchestrator) SubmitShipping(ctx context.Context, userID string, addr checkout.Address) (Session, error) {
	if err := addr.Validate(); err != nil {
		return Session{}, err
	}

	o.mu.Lock()
	session, ok := o.sessions[userID]
	if !ok {
		o.mu.Unlock()
		return Session{}, ErrNoSession
	}

	switch {
	case session.State == checkout.StateShipping:
		session.State = checkout.StatePayment
	case session.State == checkout.StatePayment && session.Intent == nil:
		// Retry path: a previous intent creation failed.
	default:
		o.mu.Unlock()
		if session.State.IsTerminal() {
			return Session{}, ErrSessionComplete
		}
		return Session{}, ErrNotInShipping
	}
	session.Address = &addr

	amount := o.carts.Get(ctx, userID).MinorUnits()
	o.mu.Unlock()

	intent, err := o.payments.CreatePaymentIntent(ctx, amount)

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.publish(ctx, events.TypePaymentIntentFailed, userID, events.PaymentIntentFailed{
			UserID: userID,
			Reason: err.Error(),
		})
		return *session, fmt.Errorf("failed to create payment intent: %w", err)
	}

	session.Intent = intent
	o.publish(ctx, events.TypePaymentIntentOK, userID, events.PaymentIntentCreated{
		UserID: userID,
		Amount: intent.Amount,
	})
	return *session, nil
}

// ConfirmPayment is invoked after the payment form has confirmed the charge
// against the gateway. It places the order from the cart, the stored address
// and the payment method; on success the cart is cleared and the session
// completes. On failure the session stays in the payment step and the cart is
// untouched, so the caller can retry; the idempotency key keeps the retry
// from double-creating.
func (o *Orchestrator) ConfirmPayment(ctx context.Context, userID, paymentMethod string) (Session, error) {
	o.mu.Lock()
	session, ok := o.sessions[userID]
	if !ok {
		o.mu.Unlock()
		return Session{}, ErrNoSession
	}
	if session.State.IsTerminal() {
		o.mu.Unlock()
		return *session, ErrSessionComplete
	}
	if !session.State.CanTransitionTo(checkout.StateConfirmation) {
		o.mu.Unlock()
		return *session, checkout.TransitionError(session.State, checkout.StateConfirmation)
	}
	if session.Intent == nil {
		o.mu.Unlock()
		return *session, ErrNoPaymentIntent
	}
	addr := *session.Address
	idemKey := session.IdempotencyKey
	o.mu.Unlock()

	c := o.carts.Get(ctx, userID)
	order, err := o.orders.CreateOrder(ctx, c.Items, addr, paymentMethod, idemKey)

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.publish(ctx, events.TypeOrderCreateFailed, userID, events.OrderCreateFailed{
			UserID: userID,
			Reason: err.Error(),
		})
		return *session, fmt.Errorf("failed to create order: %w", err)
	}

	o.carts.Clear(ctx, userID)
	session.Order = order
	session.State = checkout.StateConfirmation

	o.publish(ctx, events.TypeOrderPlaced, userID, events.OrderPlaced{
		UserID:  userID,
		OrderID: order.ID,
		Items:   c.Items,
		Total:   c.Total(),
	})
	return *session, nil
}

func (o *Orchestrator) publish(ctx context.Context, eventType, userID string, data any) {
	if o.events == nil {
		return
	}
	env, err := events.NewEnvelope(eventType, userID, data)
	if err != nil {
		log.Printf("[Checkout] Failed to encode %s event: %v", eventType, err)
		return
	}
	if err := o.events.Publish(ctx, userID, env); err != nil {
		log.Printf("[Checkout] Failed to publish %s event: %v", eventType, err)
	}
}
