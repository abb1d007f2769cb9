package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Trade // keyed by signature
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string]*domain.Trade),
	}
}

// Insert adds a new trade. Returns ErrDuplicateKey if the signature exists.
func (s *TradeStore) Insert(_ context.Context, t *domain.Trade) error {
	if t == nil || t.Signature == "" || t.MintAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.Signature]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	tradeCopy := *t
	s.data[t.Signature] = &tradeCopy
	return nil
}

// GetByMintSince retrieves trades for a mint with timestamp >= sinceMs.
func (s *TradeStore) GetByMintSince(_ context.Context, mint string, sinceMs int64) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.data {
		if t.MintAddress == mint && t.Timestamp >= sinceMs {
			tradeCopy := *t
			result = append(result, &tradeCopy)
		}
	}

	// Sort by timestamp ASC
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})

	return result, nil
}

// GetByWallet retrieves all trades for a wallet, ordered by timestamp ASC.
func (s *TradeStore) GetByWallet(_ context.Context, wallet string) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.data {
		if t.WalletAddress == wallet {
			tradeCopy := *t
			result = append(result, &tradeCopy)
		}
	}

	// Sort by timestamp ASC
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})

	return result, nil
}

// GetDistinctWalletsSince retrieves wallet addresses with at least one trade
// at or after sinceMs.
func (s *TradeStore) GetDistinctWalletsSince(_ context.Context, sinceMs int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, t := range s.data {
		if t.Timestamp >= sinceMs {
			seen[t.WalletAddress] = struct{}{}
		}
	}

	result := make([]string, 0, len(seen))
	for w := range seen {
		result = append(result, w)
	}
	sort.Strings(result)

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.TradeStore = (*TradeStore)(nil)
