package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage"
)

func TestTokenStore_UpsertAndGet(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	token := &domain.Token{
		MintAddress:     "mint1",
		Name:            "Test Token",
		Symbol:          "TEST",
		CreatorAddress:  "creator1",
		LaunchedAt:      1704067200000,
		MarketCap:       50000,
		BondingCurvePct: 20,
	}

	if err := store.Upsert(ctx, token); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	result, err := store.GetByMint(ctx, "mint1")
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}
	if result.Symbol != "TEST" {
		t.Errorf("Symbol mismatch: got %s", result.Symbol)
	}

	// Upsert replaces the existing record.
	token.MarketCap = 75000
	if err := store.Upsert(ctx, token); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	result, _ = store.GetByMint(ctx, "mint1")
	if result.MarketCap != 75000 {
		t.Errorf("Expected updated market cap 75000, got %f", result.MarketCap)
	}
}

func TestTokenStore_GetByMintNotFound(t *testing.T) {
	store := NewTokenStore()

	_, err := store.GetByMint(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTokenStore_GetLaunchedSince(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	tokens := []*domain.Token{
		{MintAddress: "m1", LaunchedAt: 1000},
		{MintAddress: "m2", LaunchedAt: 3000},
		{MintAddress: "m3", LaunchedAt: 2000},
	}
	for _, tok := range tokens {
		if err := store.Upsert(ctx, tok); err != nil {
			t.Fatalf("Upsert %s failed: %v", tok.MintAddress, err)
		}
	}

	result, err := store.GetLaunchedSince(ctx, 2000)
	if err != nil {
		t.Fatalf("GetLaunchedSince failed: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 tokens, got %d", len(result))
	}
	if result[0].MintAddress != "m3" || result[1].MintAddress != "m2" {
		t.Errorf("Results not ordered by launch time: %s, %s", result[0].MintAddress, result[1].MintAddress)
	}
}

func TestTokenStore_InvalidInput(t *testing.T) {
	store := NewTokenStore()

	err := store.Upsert(context.Background(), &domain.Token{})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
