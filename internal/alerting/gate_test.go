package alerting

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/logging"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/motion"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/observability"
)

type staticThresholds struct {
	tier0       motion.Tier0Thresholds
	tier1       motion.Tier1Thresholds
	tier1MinAge time.Duration
}

func (s staticThresholds) Tier0Thresholds() motion.Tier0Thresholds { return s.tier0 }
func (s staticThresholds) Tier1Thresholds() motion.Tier1Thresholds { return s.tier1 }
func (s staticThresholds) Tier1MinAge() time.Duration              { return s.tier1MinAge }

type captureSink struct {
	mu      sync.Mutex
	records []*domain.AlertRecord
	err     error
}

func (c *captureSink) Record(_ context.Context, a *domain.AlertRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, a)
	return c.err
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

func passingTier0Snapshot() domain.FeatureSnapshot {
	return domain.FeatureSnapshot{
		MintAddress:      "mint1",
		UniqueBuyers:     2,
		BuyVolumeSOL:     13,
		SellVolumeSOL:    2,
		BuySellRatio:     6.5,
		TxnVelocity:      2.0,
		KnownWalletCount: 1,
		MarketCap:        50_000,
		BondingCurvePct:  20,
		AgeSeconds:       90,
	}
}

func testThresholds() staticThresholds {
	return staticThresholds{
		tier0: motion.Tier0Thresholds{
			MinBuyVolumeSOL:    10,
			MinUniqueBuyers:    2,
			MinBuySellRatio:    2.0,
			MinTxnVelocity:     1,
			MinKnownWallets:    1,
			MaxMarketCap:       100_000,
			MaxBondingCurvePct: 60,
			MinAgeSeconds:      60,
		},
		tier1:       motion.DefaultTier1Thresholds(),
		tier1MinAge: time.Hour,
	}
}

func TestTierGate_EmitsExactlyOnce(t *testing.T) {
	sink := &captureSink{}
	e := NewEmitter(EmitterOptions{
		Thresholds: testThresholds(),
		Sink:       sink,
		Logger:     logging.Discard(),
	})
	gate := e.NewGate("mint1")

	alert := gate.TryEmit(context.Background(), domain.TierMotion, passingTier0Snapshot())
	if alert == nil {
		t.Fatal("Expected alert on first passing evaluation")
	}
	if alert.Tier != domain.TierMotion || alert.MintAddress != "mint1" {
		t.Errorf("Unexpected alert: %+v", alert)
	}
	if len(alert.Criteria) != 9 {
		t.Errorf("Expected full criteria list, got %d", len(alert.Criteria))
	}

	// Same conditions again: gate is closed.
	again := gate.TryEmit(context.Background(), domain.TierMotion, passingTier0Snapshot())
	if again != nil {
		t.Error("Second emission must be suppressed")
	}
	if sink.count() != 1 {
		t.Errorf("Sink received %d records, want 1", sink.count())
	}
}

func TestTierGate_FailingCriteriaKeepGateOpen(t *testing.T) {
	sink := &captureSink{}
	e := NewEmitter(EmitterOptions{
		Thresholds: testThresholds(),
		Sink:       sink,
		Logger:     logging.Discard(),
	})
	gate := e.NewGate("mint1")

	snap := passingTier0Snapshot()
	snap.AgeSeconds = 30 // too young

	if alert := gate.TryEmit(context.Background(), domain.TierMotion, snap); alert != nil {
		t.Fatal("Expected no alert for failing snapshot")
	}
	if gate.Emitted(domain.TierMotion) {
		t.Error("Failed evaluation must not close the gate")
	}

	// Once conditions pass, the gate fires.
	if alert := gate.TryEmit(context.Background(), domain.TierMotion, passingTier0Snapshot()); alert == nil {
		t.Error("Expected alert after conditions improve")
	}
}

func TestTierGate_SinkFailureClosesGate(t *testing.T) {
	sink := &captureSink{err: errors.New("sink down")}
	e := NewEmitter(EmitterOptions{
		Thresholds: testThresholds(),
		Sink:       sink,
		Logger:     logging.Discard(),
	})
	gate := e.NewGate("mint1")

	alert := gate.TryEmit(context.Background(), domain.TierMotion, passingTier0Snapshot())
	if alert == nil {
		t.Fatal("Emission must succeed even when the sink fails")
	}
	if !gate.Emitted(domain.TierMotion) {
		t.Error("Sink failure must not reopen the gate")
	}
	if again := gate.TryEmit(context.Background(), domain.TierMotion, passingTier0Snapshot()); again != nil {
		t.Error("No re-emission after sink failure")
	}
}

func TestTierGate_Tier1AgeGate(t *testing.T) {
	sink := &captureSink{}
	e := NewEmitter(EmitterOptions{
		Thresholds: testThresholds(),
		Sink:       sink,
		Logger:     logging.Discard(),
	})
	gate := e.NewGate("mint1")

	// A snapshot that would pass Tier-1 on its merits, but the token is
	// younger than the gate minimum.
	snap := domain.FeatureSnapshot{
		MintAddress:      "mint1",
		MarketCap:        100_000,
		KnownWalletCount: 4,
		Top10HolderPct:   30,
		VolumeMCRatio:    0.8,
		HolderCount:      250,
		AgeSeconds:       30 * 60,
		EnrichmentLoaded: true,
	}

	if alert := gate.TryEmit(context.Background(), domain.TierValidated, snap); alert != nil {
		t.Fatal("Tier-1 must not be evaluated under the age minimum")
	}

	snap.AgeSeconds = 90 * 60
	if alert := gate.TryEmit(context.Background(), domain.TierValidated, snap); alert == nil {
		t.Fatal("Expected Tier-1 alert once old enough")
	}
}

func TestTierGate_TiersIndependent(t *testing.T) {
	sink := &captureSink{}
	e := NewEmitter(EmitterOptions{
		Thresholds: testThresholds(),
		Sink:       sink,
		Logger:     logging.Discard(),
	})
	gate := e.NewGate("mint1")

	if alert := gate.TryEmit(context.Background(), domain.TierMotion, passingTier0Snapshot()); alert == nil {
		t.Fatal("Expected tier0 alert")
	}
	if gate.Emitted(domain.TierValidated) {
		t.Error("Tier-0 emission must not mark tier-1")
	}
}

func TestTierGate_ConcurrentTryEmit(t *testing.T) {
	sink := &captureSink{}
	e := NewEmitter(EmitterOptions{
		Thresholds: testThresholds(),
		Sink:       sink,
		Logger:     logging.Discard(),
	})
	gate := e.NewGate("mint1")

	var wg sync.WaitGroup
	var emitted int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if alert := gate.TryEmit(context.Background(), domain.TierMotion, passingTier0Snapshot()); alert != nil {
				atomic.AddInt32(&emitted, 1)
			}
		}()
	}
	wg.Wait()

	if emitted != 1 {
		t.Errorf("Expected exactly one emission, got %d", emitted)
	}
	if sink.count() != 1 {
		t.Errorf("Sink received %d records, want 1", sink.count())
	}
}

func TestTierGate_RecordsEvaluationOutcomes(t *testing.T) {
	m := observability.NewMetrics("alerting_gate_test")
	e := NewEmitter(EmitterOptions{
		Thresholds: testThresholds(),
		Sink:       &captureSink{},
		Logger:     logging.Discard(),
		Metrics:    m,
	})
	gate := e.NewGate("mint1")

	failing := passingTier0Snapshot()
	failing.AgeSeconds = 30
	gate.TryEmit(context.Background(), domain.TierMotion, failing)
	gate.TryEmit(context.Background(), domain.TierMotion, passingTier0Snapshot())
	// Closed gate: no further evaluation happens or is counted.
	gate.TryEmit(context.Background(), domain.TierMotion, passingTier0Snapshot())

	fail := testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues(domain.TierMotion.String(), "fail"))
	pass := testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues(domain.TierMotion.String(), "pass"))
	if fail != 1 {
		t.Errorf("Failed evaluations: got %v, want 1", fail)
	}
	if pass != 1 {
		t.Errorf("Passed evaluations: got %v, want 1", pass)
	}
}
