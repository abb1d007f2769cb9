package domain

// Tier identifies the alert tier.
type Tier int

const (
	// TierMotion is the early rule-based signal from trade momentum alone.
	TierMotion Tier = 0
	// TierValidated is the later, stricter signal requiring external
	// holder/concentration validation.
	TierValidated Tier = 1
)

// IsValid checks if the tier is a valid value.
func (t Tier) IsValid() bool {
	return t == TierMotion || t == TierValidated
}

// String returns "tier0" or "tier1".
func (t Tier) String() string {
	if t == TierValidated {
		return "tier1"
	}
	return "tier0"
}

// CriterionResult records a single threshold check with its actual value,
// so callers get full diagnostics even when evaluation fails early.
type CriterionResult struct {
	Name      string // stable criterion identifier
	Threshold string // human-readable threshold description
	Actual    string // formatted actual value
	Pass      bool
}

// AlertRecord is an emitted alert with the full feature snapshot and
// per-criterion detail at trigger time. At most one record exists per
// (mint, tier); re-triggering is suppressed by the tier gate.
// Future-outcome columns on the persisted row are appended by the
// out-of-process labeling job and never written here.
type AlertRecord struct {
	AlertID     string // uuid
	MintAddress string
	Tier        Tier
	TriggeredAt int64 // Unix ms
	Snapshot    FeatureSnapshot
	Criteria    []CriterionResult

	// OutcomeLabel is filled in by the offline labeling job once the
	// token's future price action is known. Nil until labeled.
	OutcomeLabel *string
}
