package cart

import (
	"context"
	"errors"
	"log"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/events"
	"github.com/example/storefront/internal/infrastructure/storage"
)

// EventPublisher emits domain events. Publishing is best-effort; the cart
// never fails a mutation over it.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Service is the single source of truth for per-user carts. Pure state
// transitions live on the domain type; the service wires them to the injected
// storage adapter and event publisher. Cart operations are total: storage and
// publish failures are logged, never surfaced.
type Service struct {
	storage storage.CartStorage
	events  EventPublisher
}

func NewService(st storage.CartStorage, events EventPublisher) *Service {
	return &Service{storage: st, events: events}
}

// Get returns the user's cart, rehydrated from storage. A user with no saved
// cart gets an empty one.
func (s *Service) Get(ctx context.Context, userID string) *cart.Cart {
	c, err := s.storage.Load(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return cart.New(userID)
	}
	if err != nil {
		log.Printf("[Cart] Failed to load cart for user %s: %v", userID, err)
		return cart.New(userID)
	}
	c.UserID = userID
	return c
}

func (s *Service) AddItem(ctx context.Context, userID string, item cart.Item) *cart.Cart {
	c := s.Get(ctx, userID)
	c.AddItem(item)
	s.persist(ctx, userID, c)
	s.publish(ctx, events.TypeItemAdded, userID, events.ItemAdded{
		UserID:   userID,
		Item:     item,
		Subtotal: c.Subtotal(),
	})
	return c
}

func (s *Service) RemoveItem(ctx context.Context, userID, lineID string) *cart.Cart {
	c := s.Get(ctx, userID)
	c.RemoveItem(lineID)
	s.persist(ctx, userID, c)
	s.publish(ctx, events.TypeItemRemoved, userID, events.ItemRemoved{
		UserID: userID,
		LineID: lineID,
	})
	return c
}

func (s *Service) UpdateQuantity(ctx context.Context, userID, lineID string, quantity int) *cart.Cart {
	c := s.Get(ctx, userID)
	c.UpdateQuantity(lineID, quantity)
	s.persist(ctx, userID, c)
	if line, ok := c.Item(lineID); ok {
		s.publish(ctx, events.TypeQuantityChanged, userID, events.QuantityChanged{
			UserID:   userID,
			LineID:   lineID,
			Quantity: line.Quantity,
		})
	}
	return c
}

func (s *Service) Clear(ctx context.Context, userID string) *cart.Cart {
	c := s.Get(ctx, userID)
	c.Clear()
	s.persist(ctx, userID, c)
	s.publish(ctx, events.TypeCartCleared, userID, events.CartCleared{UserID: userID})
	return c
}

func (s *Service) persist(ctx context.Context, userID string, c *cart.Cart) {
	if err := s.storage.Save(ctx, userID, c); err != nil {
		log.Printf("[Cart] Failed to persist cart for user %s: %v", userID, err)
	}
}

func (s *Service) publish(ctx context.Context, eventType, userID string, data any) {
	if s.events == nil {
		return
	}
	env, err := events.NewEnvelope(eventType, userID, data)
	if err != nil {
		log.Printf("[Cart] Failed to encode %s event: %v", eventType, err)
		return
	}
	if err := s.events.Publish(ctx, userID, env); err != nil {
		log.Printf("[Cart] Failed to publish %s event: %v", eventType, err)
	}
}
