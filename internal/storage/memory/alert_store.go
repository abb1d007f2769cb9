package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage"
)

type alertKey struct {
	mint string
	tier domain.Tier
}

// AlertStore is an in-memory implementation of storage.AlertStore.
type AlertStore struct {
	mu   sync.RWMutex
	data map[alertKey]*domain.AlertRecord
}

// NewAlertStore creates a new in-memory alert store.
func NewAlertStore() *AlertStore {
	return &AlertStore{
		data: make(map[alertKey]*domain.AlertRecord),
	}
}

// Insert adds a new alert. Returns ErrDuplicateKey if an alert for
// (mint, tier) already exists.
func (s *AlertStore) Insert(_ context.Context, a *domain.AlertRecord) error {
	if a == nil || a.MintAddress == "" || !a.Tier.IsValid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := alertKey{mint: a.MintAddress, tier: a.Tier}
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[key] = copyAlert(a)
	return nil
}

// GetByMint retrieves all alerts for a mint, ordered by trigger time ASC.
func (s *AlertStore) GetByMint(_ context.Context, mint string) ([]*domain.AlertRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AlertRecord
	for _, a := range s.data {
		if a.MintAddress == mint {
			result = append(result, copyAlert(a))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TriggeredAt < result[j].TriggeredAt
	})

	return result, nil
}

// GetByTier retrieves all alerts of a tier, ordered by trigger time ASC.
func (s *AlertStore) GetByTier(_ context.Context, tier domain.Tier) ([]*domain.AlertRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AlertRecord
	for _, a := range s.data {
		if a.Tier == tier {
			result = append(result, copyAlert(a))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TriggeredAt < result[j].TriggeredAt
	})

	return result, nil
}

// GetUnlabeled retrieves alerts without an outcome label, ordered by
// trigger time ASC.
func (s *AlertStore) GetUnlabeled(_ context.Context) ([]*domain.AlertRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AlertRecord
	for _, a := range s.data {
		if a.OutcomeLabel == nil {
			result = append(result, copyAlert(a))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TriggeredAt < result[j].TriggeredAt
	})

	return result, nil
}

// copyAlert deep-copies an alert so callers cannot mutate stored state.
func copyAlert(a *domain.AlertRecord) *domain.AlertRecord {
	alertCopy := *a
	if a.Criteria != nil {
		alertCopy.Criteria = make([]domain.CriterionResult, len(a.Criteria))
		copy(alertCopy.Criteria, a.Criteria)
	}
	if a.OutcomeLabel != nil {
		label := *a.OutcomeLabel
		alertCopy.OutcomeLabel = &label
	}
	return &alertCopy
}

// Verify interface compliance at compile time.
var _ storage.AlertStore = (*AlertStore)(nil)
