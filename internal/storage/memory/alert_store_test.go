package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage"
)

func TestAlertStore_InsertAndGet(t *testing.T) {
	store := NewAlertStore()
	ctx := context.Background()

	alert := &domain.AlertRecord{
		AlertID:     uuid.NewString(),
		MintAddress: "mint1",
		Tier:        domain.TierMotion,
		TriggeredAt: 1704067200000,
		Criteria: []domain.CriterionResult{
			{Name: "min_buy_volume_sol", Threshold: ">= 10.00", Actual: "13.00", Pass: true},
		},
	}

	if err := store.Insert(ctx, alert); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := store.GetByMint(ctx, "mint1")
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}

	if len(result) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(result))
	}
	if result[0].Tier != domain.TierMotion {
		t.Errorf("Tier mismatch: got %v", result[0].Tier)
	}
}

func TestAlertStore_DuplicateMintTier(t *testing.T) {
	store := NewAlertStore()
	ctx := context.Background()

	first := &domain.AlertRecord{AlertID: uuid.NewString(), MintAddress: "mint1", Tier: domain.TierMotion, TriggeredAt: 1000}
	if err := store.Insert(ctx, first); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	second := &domain.AlertRecord{AlertID: uuid.NewString(), MintAddress: "mint1", Tier: domain.TierMotion, TriggeredAt: 2000}
	err := store.Insert(ctx, second)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Different tier for the same mint is a distinct alert.
	validated := &domain.AlertRecord{AlertID: uuid.NewString(), MintAddress: "mint1", Tier: domain.TierValidated, TriggeredAt: 3000}
	if err := store.Insert(ctx, validated); err != nil {
		t.Errorf("Tier-1 insert for same mint failed: %v", err)
	}
}

func TestAlertStore_GetByTier(t *testing.T) {
	store := NewAlertStore()
	ctx := context.Background()

	alerts := []*domain.AlertRecord{
		{AlertID: uuid.NewString(), MintAddress: "m1", Tier: domain.TierMotion, TriggeredAt: 3000},
		{AlertID: uuid.NewString(), MintAddress: "m2", Tier: domain.TierMotion, TriggeredAt: 1000},
		{AlertID: uuid.NewString(), MintAddress: "m1", Tier: domain.TierValidated, TriggeredAt: 2000},
	}
	for _, a := range alerts {
		if err := store.Insert(ctx, a); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.GetByTier(ctx, domain.TierMotion)
	if err != nil {
		t.Fatalf("GetByTier failed: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 alerts, got %d", len(result))
	}
	if result[0].TriggeredAt != 1000 {
		t.Errorf("Results not ordered by trigger time: %d first", result[0].TriggeredAt)
	}
}

func TestAlertStore_CopyOnRead(t *testing.T) {
	store := NewAlertStore()
	ctx := context.Background()

	alert := &domain.AlertRecord{
		AlertID:     uuid.NewString(),
		MintAddress: "m1",
		Tier:        domain.TierMotion,
		TriggeredAt: 1000,
		Criteria:    []domain.CriterionResult{{Name: "min_unique_buyers", Threshold: ">= 2", Actual: "2", Pass: true}},
	}
	if err := store.Insert(ctx, alert); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, _ := store.GetByMint(ctx, "m1")
	result[0].Criteria[0].Pass = false

	again, _ := store.GetByMint(ctx, "m1")
	if !again[0].Criteria[0].Pass {
		t.Errorf("Stored criteria mutated through returned copy")
	}
}
