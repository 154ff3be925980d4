package platform

import (
	"context"
	"sync"
)

// TokenStore holds platform access tokens per shop domain. Implementations
// must be safe for concurrent use.
type TokenStore interface {
	Get(ctx context.Context, shop string) (string, error)
	Set(ctx context.Context, shop, token string) error
	Delete(ctx context.Context, shop string) error
}

type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]string)}
}

func (s *MemoryTokenStore) Get(_ context.Context, shop string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tok, ok := s.tokens[shop]
	if !ok || tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

func (s *MemoryTokenStore) Set(_ context.Context, shop, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[shop] = token
	return nil
}

func (s *MemoryTokenStore) Delete(_ context.Context, shop string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, shop)
	return nil
}
