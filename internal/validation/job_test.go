package validation

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/alerting"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/config"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/enrichment"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/features"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/ingestion"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/logging"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage/memory"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/wallets"
)

func testAddr(b byte) string {
	return base58.Encode(bytes.Repeat([]byte{b}, 32))
}

// staticRegistry is a fixed token set for sweep tests.
type staticRegistry struct {
	tracked []ingestion.Tracked
}

func (r *staticRegistry) Tracked() []ingestion.Tracked {
	return r.tracked
}

type sweepFixture struct {
	job        *Job
	registry   *staticRegistry
	source     *enrichment.FakeSource
	alertStore *memory.AlertStore
	emitter    *alerting.Emitter
	ledger     *wallets.Ledger
	now        time.Time
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()

	cfg := config.Default()
	cfg.Tier1.MinSmartWallets = 1
	require.NoError(t, cfg.Validate())
	provider := config.NewProvider(cfg)

	smart := testAddr(0xB2)
	ledger := wallets.NewLedger(provider.WalletThresholds())
	ledger.Replace(map[string]domain.WalletStats{
		smart: {
			WalletAddress: smart,
			TradeCount:    10,
			WinCount:      7,
			WinRate:       0.7,
			TotalPnLSOL:   30,
		},
	})

	alertStore := memory.NewAlertStore()
	emitter := alerting.NewEmitter(alerting.EmitterOptions{
		Thresholds: provider,
		Sink:       alerting.NewStoreSink(alertStore),
		Logger:     logging.Discard(),
	})

	now := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	source := enrichment.NewFakeSource()
	registry := &staticRegistry{}

	job := NewJob(JobOptions{
		Registry:      registry,
		Source:        source,
		Ledger:        ledger,
		MinAge:        provider.Tier1MinAge(),
		Tier1Window:   time.Hour,
		EnrichTimeout: 50 * time.Millisecond,
		Logger:        logging.Discard(),
		Now:           func() time.Time { return now },
	})

	return &sweepFixture{
		job:        job,
		registry:   registry,
		source:     source,
		alertStore: alertStore,
		emitter:    emitter,
		ledger:     ledger,
		now:        now,
	}
}

// addEligibleToken registers a 90-minute-old token whose window passes
// every locally computed Tier-1 criterion: market cap 50k, one smart
// wallet buyer, volume/MC ratio 0.6.
func (f *sweepFixture) addEligibleToken(mint string) {
	nowMs := f.now.UnixMilli()
	tok := domain.Token{
		MintAddress: mint,
		LaunchedAt:  nowMs - 90*60*1000,
		MarketCap:   50_000,
		LastTradeAt: nowMs - 20*60*1000,
	}

	w := features.NewWindow(mint, features.DefaultOptions())
	w.Update(&domain.Trade{
		Signature:     "seed-buy-" + mint[:6],
		MintAddress:   mint,
		WalletAddress: testAddr(0xB2),
		Side:          domain.SideBuy,
		AmountSOL:     300,
		Timestamp:     nowMs - 30*60*1000,
	})
	w.Update(&domain.Trade{
		Signature:     "seed-sell-" + mint[:6],
		MintAddress:   mint,
		WalletAddress: testAddr(0xC3),
		Side:          domain.SideSell,
		AmountSOL:     100,
		Timestamp:     nowMs - 20*60*1000,
	})

	f.registry.tracked = append(f.registry.tracked, ingestion.Tracked{
		Token:  tok,
		Window: w,
		Gate:   f.emitter.NewGate(mint),
	})
}

func TestJob_SweepEmitsValidatedAlert(t *testing.T) {
	f := newSweepFixture(t)
	ctx := context.Background()

	mint := testAddr(0x01)
	f.addEligibleToken(mint)
	f.source.Set(mint, enrichment.HolderInfo{HolderCount: 150, Top10Pct: 25})

	f.job.Sweep(ctx)

	alerts, err := f.alertStore.GetByMint(ctx, mint)
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	alert := alerts[0]
	assert.Equal(t, domain.TierValidated, alert.Tier)
	assert.True(t, alert.Snapshot.EnrichmentLoaded)
	assert.Equal(t, 150, alert.Snapshot.HolderCount)
	assert.InDelta(t, 25, alert.Snapshot.Top10HolderPct, 1e-9)
	assert.InDelta(t, 0.6, alert.Snapshot.VolumeMCRatio, 1e-9)
	assert.Equal(t, 1, alert.Snapshot.KnownWalletCount)

	// A second sweep skips the token entirely; no repeat fetch, no repeat
	// alert.
	calls := f.source.Calls()
	f.job.Sweep(ctx)
	assert.Equal(t, calls, f.source.Calls())

	alerts, err = f.alertStore.GetByMint(ctx, mint)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestJob_SkipsYoungTokens(t *testing.T) {
	f := newSweepFixture(t)
	ctx := context.Background()

	mint := testAddr(0x02)
	f.addEligibleToken(mint)
	// Re-launch the token 10 minutes ago.
	f.registry.tracked[0].Token.LaunchedAt = f.now.UnixMilli() - 10*60*1000
	f.source.Set(mint, enrichment.HolderInfo{HolderCount: 150, Top10Pct: 25})

	f.job.Sweep(ctx)

	assert.Equal(t, 0, f.source.Calls())
	alerts, err := f.alertStore.GetByMint(ctx, mint)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestJob_EnrichmentFailureIsolatedPerToken(t *testing.T) {
	f := newSweepFixture(t)
	ctx := context.Background()

	failing := testAddr(0x03)
	healthy := testAddr(0x04)
	f.addEligibleToken(failing)
	f.addEligibleToken(healthy)

	f.source.Fail(failing, errors.New("upstream 500"))
	f.source.Set(healthy, enrichment.HolderInfo{HolderCount: 150, Top10Pct: 25})

	f.job.Sweep(ctx)

	alerts, err := f.alertStore.GetByMint(ctx, healthy)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)

	alerts, err = f.alertStore.GetByMint(ctx, failing)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	// Once the provider recovers, the next sweep picks the token up.
	f.source.Fail(failing, nil)
	f.source.Set(failing, enrichment.HolderInfo{HolderCount: 200, Top10Pct: 10})

	f.job.Sweep(ctx)

	alerts, err = f.alertStore.GetByMint(ctx, failing)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestJob_EnrichmentTimeoutSkipsCycle(t *testing.T) {
	f := newSweepFixture(t)
	ctx := context.Background()

	mint := testAddr(0x05)
	f.addEligibleToken(mint)
	f.source.Set(mint, enrichment.HolderInfo{HolderCount: 150, Top10Pct: 25})
	f.source.Block = make(chan struct{})

	// The fetch hangs past the per-call timeout; the sweep still returns.
	done := make(chan struct{})
	go func() {
		f.job.Sweep(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep did not finish despite enrichment timeout")
	}

	alerts, err := f.alertStore.GetByMint(ctx, mint)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	// The provider unblocks; the next sweep validates normally.
	close(f.source.Block)
	f.source.Block = nil

	f.job.Sweep(ctx)

	alerts, err = f.alertStore.GetByMint(ctx, mint)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestJob_SweepStopsBetweenTokensOnCancel(t *testing.T) {
	f := newSweepFixture(t)

	for b := byte(0x10); b < 0x20; b++ {
		f.addEligibleToken(testAddr(b))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f.job.Sweep(ctx)

	assert.Equal(t, 0, f.source.Calls())
}
