// Package motion holds the rule-based alert criteria. Evaluation is pure:
// thresholds and a feature snapshot in, an ordered checklist out.
package motion

import "github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"

// Tier0Thresholds gate the fast motion signal computed from the short
// trading window alone.
type Tier0Thresholds struct {
	MinBuyVolumeSOL    float64 `yaml:"min_buy_volume_sol"`
	MinUniqueBuyers    int     `yaml:"min_unique_buyers"`
	MinBuySellRatio    float64 `yaml:"min_buy_sell_ratio"`
	MinTxnVelocity     float64 `yaml:"min_txn_velocity"`
	MinKnownWallets    int     `yaml:"min_known_wallets"`
	MaxMarketCap       float64 `yaml:"max_market_cap"`
	MaxBondingCurvePct float64 `yaml:"max_bonding_curve_pct"`
	MinAgeSeconds      float64 `yaml:"min_time_since_launch"`
}

// DefaultTier0Thresholds returns the production Tier-0 configuration.
func DefaultTier0Thresholds() Tier0Thresholds {
	return Tier0Thresholds{
		MinBuyVolumeSOL:    10.0,
		MinUniqueBuyers:    30,
		MinBuySellRatio:    2.5,
		MinTxnVelocity:     15,
		MinKnownWallets:    3,
		MaxMarketCap:       100_000,
		MaxBondingCurvePct: 60,
		MinAgeSeconds:      60,
	}
}

// Tier1Thresholds gate the validated signal, which additionally uses
// externally enriched holder data.
type Tier1Thresholds struct {
	MinMarketCap      float64 `yaml:"min_market_cap"`
	MaxMarketCap      float64 `yaml:"max_market_cap"`
	MinSmartWallets   int     `yaml:"min_smart_wallets"`
	MaxTop10HolderPct float64 `yaml:"max_top10_holders_pct"`
	MinVolumeMCRatio  float64 `yaml:"min_volume_mc_ratio"`
	MaxVolumeMCRatio  float64 `yaml:"max_volume_mc_ratio"`
	MinActiveMinutes  float64 `yaml:"min_active_minutes"`
	MinHolderCount    int     `yaml:"min_holder_count"`
}

// DefaultTier1Thresholds returns the production Tier-1 configuration.
func DefaultTier1Thresholds() Tier1Thresholds {
	return Tier1Thresholds{
		MinMarketCap:      25_000,
		MaxMarketCap:      500_000,
		MinSmartWallets:   3,
		MaxTop10HolderPct: 40,
		MinVolumeMCRatio:  0.5,
		MaxVolumeMCRatio:  1.2,
		MinActiveMinutes:  60,
		MinHolderCount:    100,
	}
}

// EvaluationResult is the outcome of one tier check with the full checklist.
type EvaluationResult struct {
	Tier     domain.Tier
	Passed   bool
	Criteria []domain.CriterionResult
}
