package domain

// Token represents a launched pump.fun token under observation.
// Corresponds to the tokens table in PostgreSQL.
type Token struct {
	MintAddress     string  // PRIMARY KEY, base58 mint address
	Name            string  // display name
	Symbol          string  // display symbol
	CreatorAddress  string  // launching wallet
	LaunchedAt      int64   // launch timestamp, Unix ms
	MarketCap       float64 // latest observed market cap (USD)
	PriceSOL        float64 // latest observed price in SOL
	BondingCurvePct float64 // bonding curve completion, 0-100
	Graduated       bool    // true once the token migrated off the curve
	LastTradeAt     int64   // timestamp of the most recent trade, Unix ms
}

// AgeSeconds returns the token age in seconds relative to now (Unix ms).
func (t *Token) AgeSeconds(nowMs int64) float64 {
	if t.LaunchedAt == 0 || nowMs <= t.LaunchedAt {
		return 0
	}
	return float64(nowMs-t.LaunchedAt) / 1000.0
}
