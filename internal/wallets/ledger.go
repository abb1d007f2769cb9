// Package wallets tracks historical wallet profitability and classifies
// wallets as "known profitable" for the motion criteria.
package wallets

import (
	"sync/atomic"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
)

// Ledger holds an immutable wallet-stats snapshot behind an atomic pointer.
// Classify is called on the hot trade path and never takes a lock; the
// background refresher is the only writer and replaces the whole map.
type Ledger struct {
	thresholds domain.WalletThresholds
	snapshot   atomic.Value // map[string]domain.WalletStats
}

// NewLedger creates a ledger with an empty snapshot.
func NewLedger(thresholds domain.WalletThresholds) *Ledger {
	l := &Ledger{thresholds: thresholds}
	l.snapshot.Store(map[string]domain.WalletStats{})
	return l
}

// Classify reports whether the wallet currently meets the profitability
// thresholds. Unknown wallets are not profitable.
func (l *Ledger) Classify(addr string) bool {
	stats, ok := l.snapshot.Load().(map[string]domain.WalletStats)[addr]
	if !ok {
		return false
	}
	return stats.KnownProfitable(l.thresholds)
}

// Get returns the stats for a wallet and whether it is tracked.
func (l *Ledger) Get(addr string) (domain.WalletStats, bool) {
	stats, ok := l.snapshot.Load().(map[string]domain.WalletStats)[addr]
	return stats, ok
}

// Size returns the number of tracked wallets.
func (l *Ledger) Size() int {
	return len(l.snapshot.Load().(map[string]domain.WalletStats))
}

// Replace swaps in a new snapshot. The caller must not mutate the map after
// handing it over.
func (l *Ledger) Replace(stats map[string]domain.WalletStats) {
	if stats == nil {
		stats = map[string]domain.WalletStats{}
	}
	l.snapshot.Store(stats)
}

// Thresholds returns the configured profitability thresholds.
func (l *Ledger) Thresholds() domain.WalletThresholds {
	return l.thresholds
}
