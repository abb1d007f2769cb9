package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Token // keyed by mint_address
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		data: make(map[string]*domain.Token),
	}
}

// Upsert inserts or updates a token keyed by mint address.
func (s *TokenStore) Upsert(_ context.Context, t *domain.Token) error {
	if t == nil || t.MintAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external mutation
	tokenCopy := *t
	s.data[t.MintAddress] = &tokenCopy
	return nil
}

// GetByMint retrieves a token by mint address. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByMint(_ context.Context, mint string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[mint]
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Return a copy
	tokenCopy := *t
	return &tokenCopy, nil
}

// GetLaunchedSince retrieves tokens launched at or after sinceMs.
func (s *TokenStore) GetLaunchedSince(_ context.Context, sinceMs int64) ([]*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Token
	for _, t := range s.data {
		if t.LaunchedAt >= sinceMs {
			tokenCopy := *t
			result = append(result, &tokenCopy)
		}
	}

	// Sort by launched_at ASC
	sort.Slice(result, func(i, j int) bool {
		return result[i].LaunchedAt < result[j].LaunchedAt
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.TokenStore = (*TokenStore)(nil)
