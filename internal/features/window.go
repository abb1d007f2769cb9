package features

import (
	"sync"
	"time"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
)

// solPriceUSD is a fixed SOL/USD approximation used to relate SOL-denominated
// window volume to the token's USD market cap. Good enough for a ratio band
// check; a live price feed is not worth the dependency here.
const solPriceUSD = 100.0

// Options configures a Window.
type Options struct {
	// MaxWindow is the largest snapshot duration the window must serve.
	// Trades older than MaxWindow relative to the newest trade are evicted.
	MaxWindow time.Duration
	// MaxTrades bounds retained trades per token. Oldest are dropped first.
	MaxTrades int
}

// DefaultOptions returns the production window configuration.
func DefaultOptions() Options {
	return Options{
		MaxWindow: 60 * time.Minute,
		MaxTrades: 1000,
	}
}

// Window holds the recent trades of a single token in timestamp order and
// computes feature snapshots over sub-durations of the retained range.
// Safe for concurrent use: the engine updates while the validation sweep
// snapshots.
type Window struct {
	mu     sync.RWMutex
	mint   string
	opts   Options
	trades []domain.Trade // ordered by Timestamp ASC
}

// NewWindow creates a window for one token.
func NewWindow(mint string, opts Options) *Window {
	if opts.MaxWindow <= 0 {
		opts.MaxWindow = DefaultOptions().MaxWindow
	}
	if opts.MaxTrades <= 0 {
		opts.MaxTrades = DefaultOptions().MaxTrades
	}
	return &Window{mint: mint, opts: opts}
}

// Update appends a trade and evicts entries outside the retention bounds.
// The engine guarantees near-ordered timestamps; a trade slightly older than
// the newest retained one is inserted in order rather than rejected.
func (w *Window) Update(t *domain.Trade) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(w.trades)
	if n == 0 || w.trades[n-1].Timestamp <= t.Timestamp {
		w.trades = append(w.trades, *t)
	} else {
		// Small regression within the engine's tolerance: insert in order,
		// scanning from the back since the displacement is tiny.
		i := n
		for i > 0 && w.trades[i-1].Timestamp > t.Timestamp {
			i--
		}
		w.trades = append(w.trades, domain.Trade{})
		copy(w.trades[i+1:], w.trades[i:])
		w.trades[i] = *t
	}

	w.evictLocked()
}

// evictLocked drops trades older than MaxWindow relative to the newest trade,
// then enforces the retention cap.
func (w *Window) evictLocked() {
	if len(w.trades) == 0 {
		return
	}

	cutoff := w.trades[len(w.trades)-1].Timestamp - w.opts.MaxWindow.Milliseconds()
	first := 0
	for first < len(w.trades) && w.trades[first].Timestamp < cutoff {
		first++
	}
	if over := len(w.trades) - first - w.opts.MaxTrades; over > 0 {
		first += over
	}
	if first > 0 {
		w.trades = append(w.trades[:0], w.trades[first:]...)
	}
}

// Len returns the number of retained trades.
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.trades)
}

// Snapshot computes feature aggregates over trades within [now-d, now],
// combined with the token's current state. Read-only; never mutates the
// retained trades.
func (w *Window) Snapshot(d time.Duration, nowMs int64, tok *domain.Token, isKnownWallet func(string) bool) domain.FeatureSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	snap := domain.FeatureSnapshot{
		MintAddress:   w.mint,
		Timestamp:     nowMs,
		WindowSeconds: int64(d.Seconds()),
	}
	if tok != nil {
		snap.MarketCap = tok.MarketCap
		snap.PriceSOL = tok.PriceSOL
		snap.BondingCurvePct = tok.BondingCurvePct
		snap.Graduated = tok.Graduated
		snap.AgeSeconds = tok.AgeSeconds(nowMs)
	}

	cutoff := nowMs - d.Milliseconds()
	buyers := make(map[string]struct{})
	sellers := make(map[string]struct{})
	knownBuyers := make(map[string]struct{})

	for i := range w.trades {
		t := &w.trades[i]
		if t.Timestamp < cutoff || t.Timestamp > nowMs {
			continue
		}

		snap.TxnCount++
		if t.IsBuy() {
			snap.BuyCount++
			snap.BuyVolumeSOL += t.AmountSOL
			buyers[t.WalletAddress] = struct{}{}
			if t.AmountSOL > snap.MaxBuySOL {
				snap.MaxBuySOL = t.AmountSOL
			}
			if isKnownWallet != nil && isKnownWallet(t.WalletAddress) {
				knownBuyers[t.WalletAddress] = struct{}{}
			}
		} else {
			snap.SellCount++
			snap.SellVolumeSOL += t.AmountSOL
			sellers[t.WalletAddress] = struct{}{}
		}
	}

	snap.UniqueBuyers = len(buyers)
	snap.UniqueSellers = len(sellers)
	snap.NetVolumeSOL = snap.BuyVolumeSOL - snap.SellVolumeSOL
	snap.KnownWalletCount = len(knownBuyers)
	if snap.UniqueBuyers > 0 {
		snap.KnownWalletPct = 100 * float64(snap.KnownWalletCount) / float64(snap.UniqueBuyers)
	}

	snap.BuySellRatio = buySellRatio(snap.BuyVolumeSOL, snap.SellVolumeSOL)
	snap.TxnVelocity = txnVelocity(snap.TxnCount, d, snap.AgeSeconds)
	if snap.MarketCap > 0 {
		buyUSD := snap.BuyVolumeSOL * solPriceUSD
		snap.VolumeMCRatio = buyUSD / snap.MarketCap
	}

	return snap
}

// buySellRatio is volume-based. Zero on an empty window; saturated when
// buys exist without a single sell, so threshold comparisons stay finite.
func buySellRatio(buyVol, sellVol float64) float64 {
	if sellVol <= 0 {
		if buyVol <= 0 {
			return 0
		}
		return domain.RatioSaturation
	}
	ratio := buyVol / sellVol
	if ratio > domain.RatioSaturation {
		return domain.RatioSaturation
	}
	return ratio
}

// txnVelocity is transactions per minute over the effective elapsed window.
// A token younger than the window is measured over its own age, floored at
// one second.
func txnVelocity(count int, d time.Duration, ageSeconds float64) float64 {
	elapsedMin := d.Minutes()
	if ageMin := ageSeconds / 60; ageMin < elapsedMin {
		elapsedMin = ageMin
	}
	if elapsedMin < 1.0/60 {
		elapsedMin = 1.0 / 60
	}
	return float64(count) / elapsedMin
}
