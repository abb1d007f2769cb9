package domain

// Side represents the direction of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// IsValid checks if the side is a valid value.
func (s Side) IsValid() bool {
	return s == SideBuy || s == SideSell
}

// Trade represents a single buy/sell transaction against a token's
// bonding curve. Immutable once ingested.
// Corresponds to the trades table in PostgreSQL and the trade archive
// table in ClickHouse.
type Trade struct {
	Signature     string  // transaction signature, unique per trade
	MintAddress   string  // token mint address
	WalletAddress string  // trading wallet
	Side          Side    // BUY | SELL
	AmountSOL     float64 // SOL moved by the trade
	TokenAmount   float64 // token units moved
	MarketCap     float64 // market cap observed at trade time (USD)
	Timestamp     int64   // Unix timestamp in milliseconds
}

// IsBuy reports whether the trade is a buy.
func (t *Trade) IsBuy() bool {
	return t.Side == SideBuy
}
