package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage"
)

// WalletStatsStore is an in-memory implementation of storage.WalletStatsStore.
type WalletStatsStore struct {
	mu   sync.RWMutex
	data map[string]*domain.WalletStats // keyed by wallet_address
}

// NewWalletStatsStore creates a new in-memory wallet stats store.
func NewWalletStatsStore() *WalletStatsStore {
	return &WalletStatsStore{
		data: make(map[string]*domain.WalletStats),
	}
}

// Upsert inserts or replaces stats for a wallet.
func (s *WalletStatsStore) Upsert(_ context.Context, st *domain.WalletStats) error {
	if st == nil || st.WalletAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	statsCopy := *st
	s.data[st.WalletAddress] = &statsCopy
	return nil
}

// Get retrieves stats for a wallet. Returns ErrNotFound if not exists.
func (s *WalletStatsStore) Get(_ context.Context, wallet string) (*domain.WalletStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, exists := s.data[wallet]
	if !exists {
		return nil, storage.ErrNotFound
	}

	statsCopy := *st
	return &statsCopy, nil
}

// GetKnownProfitable retrieves stats for wallets passing the thresholds,
// ordered by wallet address.
func (s *WalletStatsStore) GetKnownProfitable(_ context.Context, th domain.WalletThresholds) ([]*domain.WalletStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.WalletStats
	for _, st := range s.data {
		if st.KnownProfitable(th) {
			statsCopy := *st
			result = append(result, &statsCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].WalletAddress < result[j].WalletAddress
	})

	return result, nil
}

// All retrieves stats for every tracked wallet, ordered by wallet address.
func (s *WalletStatsStore) All(_ context.Context) ([]*domain.WalletStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.WalletStats, 0, len(s.data))
	for _, st := range s.data {
		statsCopy := *st
		result = append(result, &statsCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].WalletAddress < result[j].WalletAddress
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.WalletStatsStore = (*WalletStatsStore)(nil)
