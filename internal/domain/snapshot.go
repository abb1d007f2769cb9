package domain

// RatioSaturation is the value a ratio takes when the denominator is zero
// but the numerator is positive. Keeps threshold comparisons meaningful
// without producing Inf or NaN.
const RatioSaturation = 999.0

// FeatureSnapshot is a point-in-time, derived view of a token's recent
// activity. Window fields are computed over WindowSeconds; token state
// fields reflect the latest observed values regardless of window.
type FeatureSnapshot struct {
	MintAddress   string
	Timestamp     int64 // snapshot reference time, Unix ms
	WindowSeconds int64 // look-back span for the window fields

	// Window aggregates
	TxnCount      int
	BuyCount      int
	SellCount     int
	UniqueBuyers  int
	UniqueSellers int
	BuyVolumeSOL  float64
	SellVolumeSOL float64
	NetVolumeSOL  float64
	MaxBuySOL     float64

	// Derived ratios. Always finite and non-negative; zero-denominator
	// cases yield 0 (no activity) or RatioSaturation (one-sided flow).
	BuySellRatio  float64 // buy volume / sell volume
	TxnVelocity   float64 // transactions per minute of elapsed window
	VolumeMCRatio float64 // window buy volume (USD) / market cap

	// Wallet intelligence
	KnownWalletCount int
	KnownWalletPct   float64

	// Token state at snapshot time
	MarketCap        float64
	PriceSOL         float64
	BondingCurvePct  float64
	Graduated        bool
	AgeSeconds       float64
	HolderCount      int     // external enrichment; 0 until merged
	Top10HolderPct   float64 // external enrichment; 0 until merged
	EnrichmentLoaded bool    // true once holder fields have been merged
}
