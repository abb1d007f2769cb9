package wallets

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/observability"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage"
)

// RefresherOptions configures the background ledger refresher.
type RefresherOptions struct {
	TradeStore storage.TradeStore
	StatsStore storage.WalletStatsStore
	Ledger     *Ledger
	// Interval between refresh sweeps. Default 1h.
	Interval time.Duration
	// Lookback selects which wallets to recompute: those with at least one
	// trade in the window. Default 7 days.
	Lookback time.Duration
	Logger   *logrus.Logger
	Metrics  *observability.Metrics

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Refresher periodically recomputes realized PnL per wallet from the trade
// history, persists the stats, and swaps the ledger snapshot.
type Refresher struct {
	tradeStore storage.TradeStore
	statsStore storage.WalletStatsStore
	ledger     *Ledger
	interval   time.Duration
	lookback   time.Duration
	log        *logrus.Entry
	metrics    *observability.Metrics
	now        func() time.Time
}

// NewRefresher creates a refresher.
func NewRefresher(opts RefresherOptions) *Refresher {
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.Lookback <= 0 {
		opts.Lookback = 7 * 24 * time.Hour
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.DefaultMetrics
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Refresher{
		tradeStore: opts.TradeStore,
		statsStore: opts.StatsStore,
		ledger:     opts.Ledger,
		interval:   opts.Interval,
		lookback:   opts.Lookback,
		log:        opts.Logger.WithField("component", "wallet_refresher"),
		metrics:    opts.Metrics,
		now:        opts.Now,
	}
}

// Run refreshes immediately, then on every tick until the context is done.
func (r *Refresher) Run(ctx context.Context) error {
	if err := r.RefreshOnce(ctx); err != nil {
		r.log.WithError(err).Error("initial wallet refresh failed")
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.RefreshOnce(ctx); err != nil {
				r.log.WithError(err).Error("wallet refresh failed")
			}
		}
	}
}

// RefreshOnce recomputes stats for every wallet active within the lookback
// window. A failure on one wallet is logged and does not abort the sweep.
func (r *Refresher) RefreshOnce(ctx context.Context) error {
	nowMs := r.now().UnixMilli()
	sinceMs := nowMs - r.lookback.Milliseconds()

	wallets, err := r.tradeStore.GetDistinctWalletsSince(ctx, sinceMs)
	if err != nil {
		return fmt.Errorf("list active wallets: %w", err)
	}

	next := make(map[string]domain.WalletStats, len(wallets))
	for _, addr := range wallets {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		trades, err := r.tradeStore.GetByWallet(ctx, addr)
		if err != nil {
			r.log.WithError(err).WithField("wallet", addr).Error("load wallet trades")
			continue
		}

		stats := ComputeStats(addr, trades, nowMs)
		next[addr] = *stats

		if err := r.statsStore.Upsert(ctx, stats); err != nil {
			r.log.WithError(err).WithField("wallet", addr).Error("persist wallet stats")
		}
	}

	r.ledger.Replace(next)

	var known int
	th := r.ledger.Thresholds()
	for _, st := range next {
		if st.KnownProfitable(th) {
			known++
		}
	}
	r.metrics.WalletRefreshes.Inc()
	r.metrics.TrackedWallets.Set(float64(len(next)))
	r.metrics.KnownWallets.Set(float64(known))

	r.log.WithFields(logrus.Fields{
		"wallets": len(next),
		"known":   known,
	}).Info("wallet ledger refreshed")
	return nil
}

// ComputeStats derives profitability stats from a wallet's full trade
// history. Trades are grouped per token; each token position contributes one
// "trade" with its realized PnL counted as a win or loss.
func ComputeStats(addr string, trades []*domain.Trade, nowMs int64) *domain.WalletStats {
	byMint := make(map[string][]*domain.Trade)
	var mints []string
	for _, t := range trades {
		if _, seen := byMint[t.MintAddress]; !seen {
			mints = append(mints, t.MintAddress)
		}
		byMint[t.MintAddress] = append(byMint[t.MintAddress], t)
	}

	stats := &domain.WalletStats{
		WalletAddress: addr,
		LastUpdated:   nowMs,
	}

	for _, mint := range mints {
		pnl := realizedPnL(byMint[mint])
		stats.TotalPnLSOL += pnl
		stats.TradeCount++

		if pnl > 0 {
			stats.WinCount++
		} else if pnl < 0 {
			stats.LossCount++
		}
	}

	if stats.TradeCount > 0 {
		stats.WinRate = float64(stats.WinCount) / float64(stats.TradeCount)
	}

	return stats
}

// realizedPnL computes FIFO realized PnL for one token position. Buys add
// tokens and cost basis; a sell realizes the proportional share of the cost.
// Unrealized PnL on the remaining position is ignored.
func realizedPnL(trades []*domain.Trade) float64 {
	var position, costBasis, realized float64

	for _, t := range trades {
		if t.IsBuy() {
			position += t.TokenAmount
			costBasis += t.AmountSOL
			continue
		}

		if position <= 0 {
			continue
		}
		sellRatio := t.TokenAmount / position
		if sellRatio > 1 {
			sellRatio = 1
		}
		costOfSold := costBasis * sellRatio
		realized += t.AmountSOL - costOfSold

		position -= t.TokenAmount
		costBasis -= costOfSold
	}

	return realized
}
