package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/email"
	"github.com/example/storefront/internal/events"
	"github.com/example/storefront/internal/user"
)

type feedEntry struct {
	UserID string
	Kind   string
	Title  string
	Body   string
}

type mockFeed struct {
	Entries []feedEntry
	AddErr  error
}

func (m *mockFeed) Add(ctx context.Context, userID, kind, title, body string) (*Notification, error) {
	if m.AddErr != nil {
		return nil, m.AddErr
	}
	m.Entries = append(m.Entries, feedEntry{UserID: userID, Kind: kind, Title: title, Body: body})
	return &Notification{ID: "n-1", UserID: userID, Kind: kind, Title: title, Body: body}, nil
}

type sentMail struct {
	To      string
	OrderID string
	Reason  string
}

type mockMailer struct {
	Confirmations []sentMail
	Failures      []sentMail
	SendErr       error
}

func (m *mockMailer) SendOrderConfirmation(to, orderID string, total float64, items []email.OrderLine) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Confirmations = append(m.Confirmations, sentMail{To: to, OrderID: orderID})
	return nil
}

func (m *mockMailer) SendPaymentFailed(to, reason string) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Failures = append(m.Failures, sentMail{To: to, Reason: reason})
	return nil
}

type mockUsers struct {
	Users map[string]*user.User
}

func (m *mockUsers) GetByID(ctx context.Context, id string) (*user.User, error) {
	if u, ok := m.Users[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func newTestHandler() (*Handler, *mockFeed, *mockMailer) {
	feed := &mockFeed{}
	mailer := &mockMailer{}
	users := &mockUsers{Users: map[string]*user.User{
		"user-123": {ID: "user-123", Email: "jane@example.com", Name: "Jane"},
	}}
	return NewHandler(feed, mailer, users), feed, mailer
}

func envelopeBytes(t *testing.T, eventType, userID string, data any) []byte {
	t.Helper()
	env, err := events.NewEnvelope(eventType, userID, data)
	require.NoError(t, err)
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	return raw
}

func TestHandler_OrderPlaced(t *testing.T) {
	h, feed, mailer := newTestHandler()

	raw := envelopeBytes(t, events.TypeOrderPlaced, "user-123", events.OrderPlaced{
		UserID:  "user-123",
		OrderID: "order-789",
		Items:   []cart.Item{{ID: "line-1", Name: "Widget", Price: 60, Quantity: 1}},
		Total:   64.80,
	})

	err := h.HandleEvent(context.Background(), []byte("user-123"), raw)

	require.NoError(t, err)
	require.Len(t, feed.Entries, 1)
	assert.Equal(t, KindOrderConfirmed, feed.Entries[0].Kind)
	assert.Contains(t, feed.Entries[0].Body, "order-789")

	require.Len(t, mailer.Confirmations, 1)
	assert.Equal(t, "jane@example.com", mailer.Confirmations[0].To)
	assert.Equal(t, "order-789", mailer.Confirmations[0].OrderID)
}

func TestHandler_OrderPlaced_UnknownUserSkipsEmail(t *testing.T) {
	h, feed, mailer := newTestHandler()

	raw := envelopeBytes(t, events.TypeOrderPlaced, "user-999", events.OrderPlaced{
		UserID:  "user-999",
		OrderID: "order-1",
		Total:   10,
	})

	err := h.HandleEvent(context.Background(), []byte("user-999"), raw)

	require.NoError(t, err)
	assert.Len(t, feed.Entries, 1, "feed entry is still written")
	assert.Empty(t, mailer.Confirmations)
}

func TestHandler_PaymentIntentFailed(t *testing.T) {
	h, feed, mailer := newTestHandler()

	raw := envelopeBytes(t, events.TypePaymentIntentFailed, "user-123", events.PaymentIntentFailed{
		UserID: "user-123",
		Reason: "gateway unavailable",
	})

	err := h.HandleEvent(context.Background(), []byte("user-123"), raw)

	require.NoError(t, err)
	require.Len(t, feed.Entries, 1)
	assert.Equal(t, KindPaymentFailed, feed.Entries[0].Kind)
	require.Len(t, mailer.Failures, 1)
	assert.Equal(t, "gateway unavailable", mailer.Failures[0].Reason)
}

func TestHandler_OrderCreateFailed(t *testing.T) {
	h, feed, _ := newTestHandler()

	raw := envelopeBytes(t, events.TypeOrderCreateFailed, "user-123", events.OrderCreateFailed{
		UserID: "user-123",
		Reason: "order service down",
	})

	err := h.HandleEvent(context.Background(), []byte("user-123"), raw)

	require.NoError(t, err)
	require.Len(t, feed.Entries, 1)
	assert.Equal(t, KindOrderFailed, feed.Entries[0].Kind)
	assert.Contains(t, feed.Entries[0].Body, "charged twice")
}

func TestHandler_IgnoresUnrelatedEvents(t *testing.T) {
	h, feed, mailer := newTestHandler()

	raw := envelopeBytes(t, events.TypeItemAdded, "user-123", events.ItemAdded{UserID: "user-123"})

	err := h.HandleEvent(context.Background(), []byte("user-123"), raw)

	require.NoError(t, err)
	assert.Empty(t, feed.Entries)
	assert.Empty(t, mailer.Confirmations)
}

func TestHandler_MailFailureDoesNotFailEvent(t *testing.T) {
	h, feed, mailer := newTestHandler()
	mailer.SendErr = errors.New("smtp down")

	raw := envelopeBytes(t, events.TypeOrderPlaced, "user-123", events.OrderPlaced{
		UserID:  "user-123",
		OrderID: "order-1",
		Total:   10,
	})

	err := h.HandleEvent(context.Background(), []byte("user-123"), raw)

	require.NoError(t, err)
	assert.Len(t, feed.Entries, 1)
}

func TestHandler_MalformedPayload(t *testing.T) {
	h, _, _ := newTestHandler()

	err := h.HandleEvent(context.Background(), []byte("k"), []byte("{not json"))

	assert.Error(t, err)
}
