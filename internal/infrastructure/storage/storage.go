package storage

import (
	"context"
	"errors"

	"github.com/example/storefront/internal/domain/cart"
)

var ErrNotFound = errors.New("cart not found")

// CartStorage persists one cart per user. Implementations must round-trip the
// item list losslessly; a user with no saved cart yields ErrNotFound.
type CartStorage interface {
	Load(ctx context.Context, userID string) (*cart.Cart, error)
	Save(ctx context.Context, userID string, c *cart.Cart) error
	Delete(ctx context.Context, userID string) error
}
