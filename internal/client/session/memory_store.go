package session

import (
	"context"
	"sync"

	"github.com/ajenda/ajenda/internal/client/models"
)

// MemoryStore is a map-backed Store.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	user  *models.Profile
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) SaveToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Token(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryStore) SaveUser(_ context.Context, user *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = user.Clone()
	return nil
}

func (m *MemoryStore) User(_ context.Context) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user.Clone(), nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.user = nil
	return nil
}
