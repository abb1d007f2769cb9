package domain

// WalletStats holds historical performance for a single wallet.
// Corresponds to the wallet_stats table in PostgreSQL. Recomputed by the
// background refresher; read-only on the evaluation path.
type WalletStats struct {
	WalletAddress string  // PRIMARY KEY
	TradeCount    int     // number of tokens traded to completion
	WinCount      int     // tokens closed with positive realized PnL
	LossCount     int     // tokens closed with negative realized PnL
	WinRate       float64 // WinCount / TradeCount, 0 when no trades
	TotalPnLSOL   float64 // realized PnL across all tokens, SOL
	LastUpdated   int64   // Unix ms of last refresh
}

// WalletThresholds are the criteria for classifying a wallet as known
// profitable. All three must hold.
type WalletThresholds struct {
	MinTrades      int
	MinWinRate     float64
	MinTotalPnLSOL float64
}

// KnownProfitable reports whether the wallet meets all classification
// thresholds.
func (w *WalletStats) KnownProfitable(th WalletThresholds) bool {
	return w.TradeCount >= th.MinTrades &&
		w.WinRate >= th.MinWinRate &&
		w.TotalPnLSOL >= th.MinTotalPnLSOL
}
