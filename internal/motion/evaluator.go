package motion

import (
	"fmt"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
)

// Evaluator evaluates motion criteria against feature snapshots.
type Evaluator struct{}

// NewEvaluator creates a new motion evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// EvaluateTier0 checks the fast motion criteria. Every criterion is always
// evaluated so the result carries complete diagnostics; there is no
// short-circuit on the first failure.
func (e *Evaluator) EvaluateTier0(snap domain.FeatureSnapshot, th Tier0Thresholds) *EvaluationResult {
	criteria := make([]domain.CriterionResult, 9)

	criteria[0] = domain.CriterionResult{
		Name:      "min_buy_volume_sol",
		Threshold: fmt.Sprintf(">= %.2f", th.MinBuyVolumeSOL),
		Actual:    fmt.Sprintf("%.2f", snap.BuyVolumeSOL),
		Pass:      snap.BuyVolumeSOL >= th.MinBuyVolumeSOL,
	}
	criteria[1] = domain.CriterionResult{
		Name:      "min_unique_buyers",
		Threshold: fmt.Sprintf(">= %d", th.MinUniqueBuyers),
		Actual:    fmt.Sprintf("%d", snap.UniqueBuyers),
		Pass:      snap.UniqueBuyers >= th.MinUniqueBuyers,
	}
	criteria[2] = domain.CriterionResult{
		Name:      "min_buy_sell_ratio",
		Threshold: fmt.Sprintf(">= %.2f", th.MinBuySellRatio),
		Actual:    fmt.Sprintf("%.2f", snap.BuySellRatio),
		Pass:      snap.BuySellRatio >= th.MinBuySellRatio,
	}
	criteria[3] = domain.CriterionResult{
		Name:      "min_txn_velocity",
		Threshold: fmt.Sprintf(">= %.2f/min", th.MinTxnVelocity),
		Actual:    fmt.Sprintf("%.2f/min", snap.TxnVelocity),
		Pass:      snap.TxnVelocity >= th.MinTxnVelocity,
	}
	criteria[4] = domain.CriterionResult{
		Name:      "min_known_wallets",
		Threshold: fmt.Sprintf(">= %d", th.MinKnownWallets),
		Actual:    fmt.Sprintf("%d", snap.KnownWalletCount),
		Pass:      snap.KnownWalletCount >= th.MinKnownWallets,
	}
	criteria[5] = domain.CriterionResult{
		Name:      "max_market_cap",
		Threshold: fmt.Sprintf("<= %.0f", th.MaxMarketCap),
		Actual:    fmt.Sprintf("%.0f", snap.MarketCap),
		Pass:      snap.MarketCap <= th.MaxMarketCap,
	}
	criteria[6] = domain.CriterionResult{
		Name:      "max_bonding_curve_pct",
		Threshold: fmt.Sprintf("<= %.1f%%", th.MaxBondingCurvePct),
		Actual:    fmt.Sprintf("%.1f%%", snap.BondingCurvePct),
		Pass:      snap.BondingCurvePct <= th.MaxBondingCurvePct,
	}
	criteria[7] = domain.CriterionResult{
		Name:      "min_time_since_launch",
		Threshold: fmt.Sprintf(">= %.0fs", th.MinAgeSeconds),
		Actual:    fmt.Sprintf("%.0fs", snap.AgeSeconds),
		Pass:      snap.AgeSeconds >= th.MinAgeSeconds,
	}
	criteria[8] = domain.CriterionResult{
		Name:      "not_graduated",
		Threshold: "false",
		Actual:    fmt.Sprintf("%t", snap.Graduated),
		Pass:      !snap.Graduated,
	}

	return &EvaluationResult{
		Tier:     domain.TierMotion,
		Passed:   allPass(criteria),
		Criteria: criteria,
	}
}

// EvaluateTier1 checks the validated-signal criteria. Requires an enriched
// snapshot; with EnrichmentLoaded false the holder criteria fail on their
// zero values rather than being skipped.
func (e *Evaluator) EvaluateTier1(snap domain.FeatureSnapshot, th Tier1Thresholds) *EvaluationResult {
	criteria := make([]domain.CriterionResult, 6)

	criteria[0] = domain.CriterionResult{
		Name:      "market_cap_band",
		Threshold: fmt.Sprintf("[%.0f, %.0f]", th.MinMarketCap, th.MaxMarketCap),
		Actual:    fmt.Sprintf("%.0f", snap.MarketCap),
		Pass:      snap.MarketCap >= th.MinMarketCap && snap.MarketCap <= th.MaxMarketCap,
	}
	criteria[1] = domain.CriterionResult{
		Name:      "min_smart_wallets",
		Threshold: fmt.Sprintf(">= %d", th.MinSmartWallets),
		Actual:    fmt.Sprintf("%d", snap.KnownWalletCount),
		Pass:      snap.KnownWalletCount >= th.MinSmartWallets,
	}
	criteria[2] = domain.CriterionResult{
		Name:      "max_top10_holders_pct",
		Threshold: fmt.Sprintf("<= %.1f%%", th.MaxTop10HolderPct),
		Actual:    fmt.Sprintf("%.1f%%", snap.Top10HolderPct),
		Pass:      snap.Top10HolderPct <= th.MaxTop10HolderPct,
	}
	criteria[3] = domain.CriterionResult{
		Name:      "volume_mc_ratio_band",
		Threshold: fmt.Sprintf("[%.2f, %.2f]", th.MinVolumeMCRatio, th.MaxVolumeMCRatio),
		Actual:    fmt.Sprintf("%.4f", snap.VolumeMCRatio),
		Pass:      snap.VolumeMCRatio >= th.MinVolumeMCRatio && snap.VolumeMCRatio <= th.MaxVolumeMCRatio,
	}
	criteria[4] = domain.CriterionResult{
		Name:      "min_active_minutes",
		Threshold: fmt.Sprintf(">= %.0fm", th.MinActiveMinutes),
		Actual:    fmt.Sprintf("%.1fm", snap.AgeSeconds/60),
		Pass:      snap.AgeSeconds/60 >= th.MinActiveMinutes,
	}
	criteria[5] = domain.CriterionResult{
		Name:      "min_holder_count",
		Threshold: fmt.Sprintf(">= %d", th.MinHolderCount),
		Actual:    fmt.Sprintf("%d", snap.HolderCount),
		Pass:      snap.HolderCount >= th.MinHolderCount,
	}

	return &EvaluationResult{
		Tier:     domain.TierValidated,
		Passed:   allPass(criteria),
		Criteria: criteria,
	}
}

func allPass(criteria []domain.CriterionResult) bool {
	for _, c := range criteria {
		if !c.Pass {
			return false
		}
	}
	return true
}
