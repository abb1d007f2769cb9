// Package validation runs the periodic Tier-1 sweep: enrich candidate
// tokens with external holder data and evaluate the validated-signal
// criteria.
package validation

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/enrichment"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/ingestion"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/observability"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/wallets"
)

// Registry enumerates the live tokens; the ingestion engine implements it.
type Registry interface {
	Tracked() []ingestion.Tracked
}

// JobOptions contains configuration for creating a Job.
type JobOptions struct {
	Registry Registry
	Source   enrichment.Source

	// Ledger classifies smart wallets for the validated snapshot. Optional.
	Ledger *wallets.Ledger

	// MinAge filters tokens too young for validation. Default 60m.
	MinAge time.Duration

	// Tier1Window is the look-back for the validated snapshot. Default 60m.
	Tier1Window time.Duration

	// Interval between sweeps. Default 5m. EnrichTimeout bounds each
	// external fetch, default 10s.
	Interval      time.Duration
	EnrichTimeout time.Duration

	Logger  *logrus.Logger
	Metrics *observability.Metrics

	// Now overrides the clock, for tests and replay.
	Now func() time.Time
}

// Job is the Tier-1 validation sweeper. One enrichment failure skips that
// token for the cycle and never aborts the sweep; the token is retried on
// the next pass until its tier fires or it is evicted.
type Job struct {
	registry      Registry
	source        enrichment.Source
	ledger        *wallets.Ledger
	minAge        time.Duration
	tier1Window   time.Duration
	interval      time.Duration
	enrichTimeout time.Duration
	log           *logrus.Entry
	metrics       *observability.Metrics
	now           func() time.Time
}

// NewJob creates a validation job.
func NewJob(opts JobOptions) *Job {
	if opts.MinAge <= 0 {
		opts.MinAge = 60 * time.Minute
	}
	if opts.Tier1Window <= 0 {
		opts.Tier1Window = 60 * time.Minute
	}
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}
	if opts.EnrichTimeout <= 0 {
		opts.EnrichTimeout = 10 * time.Second
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.DefaultMetrics
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Job{
		registry:      opts.Registry,
		source:        opts.Source,
		ledger:        opts.Ledger,
		minAge:        opts.MinAge,
		tier1Window:   opts.Tier1Window,
		interval:      opts.Interval,
		enrichTimeout: opts.EnrichTimeout,
		log:           opts.Logger.WithField("component", "validation"),
		metrics:       opts.Metrics,
		now:           opts.Now,
	}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (j *Job) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.log.WithField("interval", j.interval.String()).Info("validation job started")

	for {
		select {
		case <-ctx.Done():
			j.log.Info("validation job stopping")
			return ctx.Err()
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep evaluates Tier-1 for every eligible live token. Checks ctx between
// tokens; abandoning the remainder of a sweep is safe since every token is
// revisited on the next pass.
func (j *Job) Sweep(ctx context.Context) {
	nowMs := j.now().UnixMilli()
	var examined int

	for _, tr := range j.registry.Tracked() {
		if ctx.Err() != nil {
			return
		}
		if tr.Token.AgeSeconds(nowMs) < j.minAge.Seconds() {
			continue
		}
		if tr.Gate.Emitted(domain.TierValidated) {
			continue
		}

		examined++
		j.validateToken(ctx, tr, nowMs)
	}

	j.metrics.ValidationSweeps.Inc()
	j.metrics.ValidationSweepTokens.Observe(float64(examined))
	j.metrics.LastValidationSweep.Set(float64(nowMs) / 1000)
}

func (j *Job) validateToken(ctx context.Context, tr ingestion.Tracked, nowMs int64) {
	fetchCtx, cancel := context.WithTimeout(ctx, j.enrichTimeout)
	start := time.Now()
	info, err := j.source.Fetch(fetchCtx, tr.Token.MintAddress)
	cancel()
	j.metrics.EnrichmentLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		j.metrics.EnrichmentFailures.Inc()
		level := logrus.WarnLevel
		if errors.Is(err, enrichment.ErrNotFound) {
			level = logrus.DebugLevel
		}
		j.log.WithError(err).WithField("mint", tr.Token.MintAddress).Log(level, "enrichment failed, token skipped this cycle")
		return
	}

	snap := tr.Window.Snapshot(j.tier1Window, nowMs, &tr.Token, j.isKnownWallet())
	snap.HolderCount = info.HolderCount
	snap.Top10HolderPct = info.Top10Pct
	snap.EnrichmentLoaded = true

	if alert := tr.Gate.TryEmit(ctx, domain.TierValidated, snap); alert != nil {
		j.metrics.AlertsEmitted.WithLabelValues(domain.TierValidated.String()).Inc()
	}
}

func (j *Job) isKnownWallet() func(string) bool {
	if j.ledger == nil {
		return nil
	}
	return j.ledger.Classify
}
