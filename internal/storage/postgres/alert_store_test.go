package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage"
)

func TestAlertStore_InsertAndGetByMint(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAlertStore(pool)
	ctx := context.Background()

	alert := &domain.AlertRecord{
		AlertID:     uuid.NewString(),
		MintAddress: "MintAddress123",
		Tier:        domain.TierMotion,
		TriggeredAt: 1700000000000,
		Snapshot: domain.FeatureSnapshot{
			MintAddress:   "MintAddress123",
			BuyVolumeSOL:  13.0,
			SellVolumeSOL: 2.0,
			BuySellRatio:  6.5,
			UniqueBuyers:  2,
		},
		Criteria: []domain.CriterionResult{
			{Name: "min_buy_volume_sol", Threshold: ">= 10.00", Actual: "13.00", Pass: true},
			{Name: "min_unique_buyers", Threshold: ">= 2", Actual: "2", Pass: true},
		},
	}

	err := store.Insert(ctx, alert)
	require.NoError(t, err)

	retrieved, err := store.GetByMint(ctx, "MintAddress123")
	require.NoError(t, err)
	require.Len(t, retrieved, 1)

	assert.Equal(t, alert.AlertID, retrieved[0].AlertID)
	assert.Equal(t, domain.TierMotion, retrieved[0].Tier)
	assert.Equal(t, 6.5, retrieved[0].Snapshot.BuySellRatio)
	require.Len(t, retrieved[0].Criteria, 2)
	assert.True(t, retrieved[0].Criteria[0].Pass)
}

func TestAlertStore_DuplicateMintTier(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAlertStore(pool)
	ctx := context.Background()

	first := &domain.AlertRecord{
		AlertID:     uuid.NewString(),
		MintAddress: "Mint1",
		Tier:        domain.TierMotion,
		TriggeredAt: 1700000000000,
	}
	require.NoError(t, store.Insert(ctx, first))

	second := &domain.AlertRecord{
		AlertID:     uuid.NewString(),
		MintAddress: "Mint1",
		Tier:        domain.TierMotion,
		TriggeredAt: 1700000001000,
	}
	err := store.Insert(ctx, second)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Different tier is a distinct row.
	validated := &domain.AlertRecord{
		AlertID:     uuid.NewString(),
		MintAddress: "Mint1",
		Tier:        domain.TierValidated,
		TriggeredAt: 1700000002000,
	}
	require.NoError(t, store.Insert(ctx, validated))

	retrieved, err := store.GetByMint(ctx, "Mint1")
	require.NoError(t, err)
	assert.Len(t, retrieved, 2)
}
