package favorites

import (
	"context"
	"sync"
)

// MemoryStorage is a Storage backed by a plain map. Used by tests and as the
// fallback when no Badger directory is configured.
type MemoryStorage struct {
	mu   sync.Mutex
	favs map[int64]Favorite
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{favs: make(map[int64]Favorite)}
}

func (m *MemoryStorage) Put(_ context.Context, fav Favorite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.favs[fav.PropertyID] = fav
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, propertyID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.favs, propertyID)
	return nil
}

func (m *MemoryStorage) List(_ context.Context) ([]Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Favorite, 0, len(m.favs))
	for _, fav := range m.favs {
		out = append(out, fav)
	}
	return out, nil
}
