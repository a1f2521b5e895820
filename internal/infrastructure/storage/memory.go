package storage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/example/storefront/internal/domain/cart"
)

// MemoryStorage keeps carts in a process-local map. Used in tests and for
// single-node development runs.
type MemoryStorage struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{carts: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(ctx context.Context, userID string) (*cart.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (m *MemoryStorage) Save(ctx context.Context, userID string, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[userID] = data
	return nil
}

func (m *MemoryStorage) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	return nil
}
