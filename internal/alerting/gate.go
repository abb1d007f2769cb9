package alerting

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/motion"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/observability"
)

// ThresholdProvider supplies the current evaluation thresholds. The config
// provider implements this; thresholds are read at evaluation time so a
// config reload applies to the next evaluation.
type ThresholdProvider interface {
	Tier0Thresholds() motion.Tier0Thresholds
	Tier1Thresholds() motion.Tier1Thresholds
	Tier1MinAge() time.Duration
}

// EmitterOptions configures an Emitter.
type EmitterOptions struct {
	Evaluator  *motion.Evaluator
	Thresholds ThresholdProvider
	Sink       AlertSink
	Logger     *logrus.Logger
	Metrics    *observability.Metrics

	// Now overrides the clock, for tests and replay.
	Now func() time.Time
}

// Emitter holds the dependencies shared by all tier gates.
type Emitter struct {
	eval       *motion.Evaluator
	thresholds ThresholdProvider
	sink       AlertSink
	log        *logrus.Entry
	metrics    *observability.Metrics
	now        func() time.Time
}

// NewEmitter creates an emitter.
func NewEmitter(opts EmitterOptions) *Emitter {
	if opts.Evaluator == nil {
		opts.Evaluator = motion.NewEvaluator()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.DefaultMetrics
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Emitter{
		eval:       opts.Evaluator,
		thresholds: opts.Thresholds,
		sink:       opts.Sink,
		log:        opts.Logger.WithField("component", "tier_gate"),
		metrics:    opts.Metrics,
		now:        opts.Now,
	}
}

// NewGate creates the per-token gate.
func (e *Emitter) NewGate(mint string) *TierGate {
	return &TierGate{emitter: e, mint: mint}
}

// TierGate enforces at-most-once emission per (token, tier). Once a tier has
// fired it never fires again for that token, regardless of sink outcome:
// delivery is at-least-once downstream, emission is exactly-once here.
type TierGate struct {
	emitter *Emitter
	mint    string

	mu      sync.Mutex
	emitted [2]bool
}

// Emitted reports whether the tier has already fired.
func (g *TierGate) Emitted(tier domain.Tier) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.emitted[int(tier)]
}

// TryEmit evaluates the tier against the snapshot and emits at most once.
// Returns the emitted record, or nil when the gate is closed, the token is
// too young for Tier-1, or the criteria fail. A sink failure is logged and
// does not reopen the gate.
func (g *TierGate) TryEmit(ctx context.Context, tier domain.Tier, snap domain.FeatureSnapshot) *domain.AlertRecord {
	if !tier.IsValid() {
		return nil
	}

	e := g.emitter
	if tier == domain.TierValidated {
		if minAge := e.thresholds.Tier1MinAge(); snap.AgeSeconds < minAge.Seconds() {
			return nil
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.emitted[int(tier)] {
		return nil
	}

	var result *motion.EvaluationResult
	if tier == domain.TierMotion {
		result = e.eval.EvaluateTier0(snap, e.thresholds.Tier0Thresholds())
	} else {
		result = e.eval.EvaluateTier1(snap, e.thresholds.Tier1Thresholds())
	}
	outcome := "fail"
	if result.Passed {
		outcome = "pass"
	}
	e.metrics.EvaluationsTotal.WithLabelValues(tier.String(), outcome).Inc()
	if !result.Passed {
		return nil
	}

	g.emitted[int(tier)] = true

	alert := &domain.AlertRecord{
		AlertID:     uuid.NewString(),
		MintAddress: g.mint,
		Tier:        tier,
		TriggeredAt: e.now().UnixMilli(),
		Snapshot:    snap,
		Criteria:    result.Criteria,
	}

	e.log.WithFields(logrus.Fields{
		"mint":           g.mint,
		"tier":           tier.String(),
		"buy_volume_sol": snap.BuyVolumeSOL,
		"unique_buyers":  snap.UniqueBuyers,
		"market_cap":     snap.MarketCap,
	}).Info("alert emitted")

	if err := e.sink.Record(ctx, alert); err != nil {
		e.log.WithError(err).WithFields(logrus.Fields{
			"mint": g.mint,
			"tier": tier.String(),
		}).Error("alert sink failed, gate stays closed")
	}

	return alert
}
