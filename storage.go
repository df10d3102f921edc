package session

import (
	"context"
	"sync"
)

// TokenStorage is the durable cell holding the persisted auth token. Exactly
// one entry: absent token means unauthenticated. Implementations must treat
// an absent value as ("", nil), not an error.
type TokenStorage interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// MemoryTokenStorage keeps the token in process memory. Suited to tests and
// ephemeral processes that re-authenticate on start.
type MemoryTokenStorage struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryTokenStorage() *MemoryTokenStorage {
	return &MemoryTokenStorage{}
}

func (m *MemoryTokenStorage) Read(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryTokenStorage) Write(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokenStorage) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func normalizeStorage(s TokenStorage) TokenStorage {
	if s == nil {
		return NewMemoryTokenStorage()
	}
	return s
}
