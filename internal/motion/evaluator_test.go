package motion

import (
	"testing"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
)

// Thresholds loosened to the documented smoke scenario: a token with 13 SOL
// of buys against 2 SOL of sells, 2 buyers, one known wallet.
func smokeTier0() Tier0Thresholds {
	return Tier0Thresholds{
		MinBuyVolumeSOL:    10,
		MinUniqueBuyers:    2,
		MinBuySellRatio:    2.0,
		MinTxnVelocity:     1,
		MinKnownWallets:    1,
		MaxMarketCap:       100_000,
		MaxBondingCurvePct: 60,
		MinAgeSeconds:      60,
	}
}

func smokeSnapshot() domain.FeatureSnapshot {
	return domain.FeatureSnapshot{
		MintAddress:      "mint1",
		TxnCount:         3,
		BuyCount:         2,
		SellCount:        1,
		UniqueBuyers:     2,
		UniqueSellers:    1,
		BuyVolumeSOL:     13,
		SellVolumeSOL:    2,
		BuySellRatio:     6.5,
		TxnVelocity:      2.0,
		KnownWalletCount: 1,
		MarketCap:        50_000,
		BondingCurvePct:  20,
		AgeSeconds:       90,
	}
}

func TestEvaluateTier0_AllCriteriaPass(t *testing.T) {
	e := NewEvaluator()

	result := e.EvaluateTier0(smokeSnapshot(), smokeTier0())

	if !result.Passed {
		t.Fatalf("Expected pass, criteria: %+v", result.Criteria)
	}
	if result.Tier != domain.TierMotion {
		t.Errorf("Tier: got %v, want TierMotion", result.Tier)
	}
	if len(result.Criteria) != 9 {
		t.Errorf("Expected 9 criteria, got %d", len(result.Criteria))
	}
	for _, c := range result.Criteria {
		if !c.Pass {
			t.Errorf("Criterion %s failed: threshold %s, actual %s", c.Name, c.Threshold, c.Actual)
		}
	}
}

func TestEvaluateTier0_NoShortCircuit(t *testing.T) {
	e := NewEvaluator()

	// Fail the very first criterion; the rest must still be evaluated.
	snap := smokeSnapshot()
	snap.BuyVolumeSOL = 0.5

	result := e.EvaluateTier0(snap, smokeTier0())

	if result.Passed {
		t.Fatal("Expected failure")
	}
	if len(result.Criteria) != 9 {
		t.Fatalf("Expected all 9 criteria evaluated, got %d", len(result.Criteria))
	}
	if result.Criteria[0].Pass {
		t.Error("min_buy_volume_sol should fail")
	}
	if !result.Criteria[1].Pass {
		t.Error("min_unique_buyers should still pass and be present")
	}
}

func TestEvaluateTier0_GraduatedBlocks(t *testing.T) {
	e := NewEvaluator()

	snap := smokeSnapshot()
	snap.Graduated = true

	result := e.EvaluateTier0(snap, smokeTier0())

	if result.Passed {
		t.Fatal("Graduated token must not pass")
	}
	last := result.Criteria[len(result.Criteria)-1]
	if last.Name != "not_graduated" || last.Pass {
		t.Errorf("Expected not_graduated failure, got %+v", last)
	}
}

func TestEvaluateTier0_TooYoung(t *testing.T) {
	e := NewEvaluator()

	snap := smokeSnapshot()
	snap.AgeSeconds = 30

	result := e.EvaluateTier0(snap, smokeTier0())

	if result.Passed {
		t.Fatal("Token younger than min age must not pass")
	}
}

func TestEvaluateTier0_ZeroTrades(t *testing.T) {
	e := NewEvaluator()

	// Empty window: count criteria fail, static token criteria still
	// evaluated on their own merits.
	snap := domain.FeatureSnapshot{
		MintAddress: "mint1",
		MarketCap:   50_000,
		AgeSeconds:  120,
	}

	result := e.EvaluateTier0(snap, smokeTier0())

	if result.Passed {
		t.Fatal("Zero-trade snapshot must not pass")
	}
	byName := make(map[string]domain.CriterionResult)
	for _, c := range result.Criteria {
		byName[c.Name] = c
	}
	if byName["min_buy_volume_sol"].Pass {
		t.Error("buy volume should fail with no trades")
	}
	if !byName["max_market_cap"].Pass {
		t.Error("market cap criterion should pass independently of trades")
	}
	if !byName["min_time_since_launch"].Pass {
		t.Error("age criterion should pass independently of trades")
	}
}

func TestEvaluateTier1_Bands(t *testing.T) {
	e := NewEvaluator()
	th := DefaultTier1Thresholds()

	snap := domain.FeatureSnapshot{
		MintAddress:      "mint1",
		MarketCap:        100_000,
		KnownWalletCount: 4,
		Top10HolderPct:   30,
		VolumeMCRatio:    0.8,
		AgeSeconds:       90 * 60,
		HolderCount:      250,
		EnrichmentLoaded: true,
	}

	result := e.EvaluateTier1(snap, th)
	if !result.Passed {
		t.Fatalf("Expected pass, criteria: %+v", result.Criteria)
	}
	if len(result.Criteria) != 6 {
		t.Errorf("Expected 6 criteria, got %d", len(result.Criteria))
	}

	// Volume/MC above the band fails even though everything else passes.
	snap.VolumeMCRatio = 2.0
	result = e.EvaluateTier1(snap, th)
	if result.Passed {
		t.Fatal("Ratio above band must fail")
	}

	// Market cap below the band fails.
	snap.VolumeMCRatio = 0.8
	snap.MarketCap = 10_000
	result = e.EvaluateTier1(snap, th)
	if result.Passed {
		t.Fatal("Market cap below band must fail")
	}
}

func TestEvaluateTier1_UnenrichedFailsHolderCriteria(t *testing.T) {
	e := NewEvaluator()

	snap := domain.FeatureSnapshot{
		MintAddress:      "mint1",
		MarketCap:        100_000,
		KnownWalletCount: 4,
		VolumeMCRatio:    0.8,
		AgeSeconds:       90 * 60,
	}

	result := e.EvaluateTier1(snap, DefaultTier1Thresholds())
	if result.Passed {
		t.Fatal("Snapshot without enrichment must fail holder count")
	}

	byName := make(map[string]domain.CriterionResult)
	for _, c := range result.Criteria {
		byName[c.Name] = c
	}
	if byName["min_holder_count"].Pass {
		t.Error("holder count should fail on zero value")
	}
	if !byName["max_top10_holders_pct"].Pass {
		t.Error("zero concentration trivially passes the max check")
	}
}

func TestDefaultThresholds(t *testing.T) {
	t0 := DefaultTier0Thresholds()
	if t0.MinBuyVolumeSOL != 10.0 || t0.MinUniqueBuyers != 30 || t0.MinBuySellRatio != 2.5 {
		t.Errorf("Unexpected tier0 defaults: %+v", t0)
	}

	t1 := DefaultTier1Thresholds()
	if t1.MinMarketCap != 25_000 || t1.MaxMarketCap != 500_000 || t1.MinHolderCount != 100 {
		t.Errorf("Unexpected tier1 defaults: %+v", t1)
	}
}
