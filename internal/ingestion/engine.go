package ingestion

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/alerting"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/features"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/observability"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/wallets"
)

// Drop reasons reported on the events_dropped metric.
const (
	DropMalformed    = "malformed"
	DropNegative     = "negative_amount"
	DropUnknownToken = "unknown_token"
	DropRegression   = "timestamp_regression"
	DropDuplicate    = "duplicate_signature"
)

const defaultArchiveBatchSize = 200

// tokenState is the live in-memory state of one tracked token.
type tokenState struct {
	tok         *domain.Token
	window      *features.Window
	gate        *alerting.TierGate
	lastTradeMs int64
}

// Tracked is a read-only handle over one registered token, handed to the
// validation sweep. Token is a copy; Window and Gate are the live shared
// instances, both safe for concurrent use.
type Tracked struct {
	Token  domain.Token
	Window *features.Window
	Gate   *alerting.TierGate
}

// EngineOptions contains configuration for creating an Engine.
type EngineOptions struct {
	Ingestor   EventIngestor
	TokenStore storage.TokenStore
	TradeStore storage.TradeStore

	// Archive receives every accepted trade in batches. Optional.
	Archive storage.TradeArchiveStore

	Emitter *alerting.Emitter

	// Ledger classifies known profitable wallets for window snapshots.
	// Optional; without it no wallet is known.
	Ledger *wallets.Ledger

	// Tier0Window is the look-back for the momentum snapshot evaluated on
	// every buy. Default 3m.
	Tier0Window time.Duration

	// WindowOptions bounds per-token trade retention. Defaults to
	// features.DefaultOptions().
	WindowOptions features.Options

	// RegressionTolerance is how far a trade's timestamp may lag the
	// token's newest trade before it is dropped. Default 2s.
	RegressionTolerance time.Duration

	// InactivityEviction removes a token's in-memory state after this long
	// without a trade. Default 2h. EvictionSweep is the check interval,
	// default 5m.
	InactivityEviction time.Duration
	EvictionSweep      time.Duration

	ArchiveBatchSize int
	Logger           *logrus.Logger
	Metrics          *observability.Metrics
}

// Engine consumes the event stream and owns all per-token live state: the
// registry mapping mint to token, feature window, and tier gate. Events are
// processed on a single goroutine; the registry lock exists for the
// validation sweep reading concurrently via Tracked.
type Engine struct {
	ingestor   EventIngestor
	tokenStore storage.TokenStore
	tradeStore storage.TradeStore
	archive    storage.TradeArchiveStore
	emitter    *alerting.Emitter
	ledger     *wallets.Ledger

	tier0Window      time.Duration
	windowOpts       features.Options
	regressionTol    int64 // ms
	inactivity       int64 // ms
	evictionSweep    time.Duration
	archiveBatchSize int

	log     *logrus.Entry
	metrics *observability.Metrics

	mu       sync.RWMutex
	registry map[string]*tokenState

	pendingArchive []*domain.Trade
	lastEventMs    int64
}

// NewEngine creates an engine.
func NewEngine(opts EngineOptions) *Engine {
	if opts.Tier0Window <= 0 {
		opts.Tier0Window = 3 * time.Minute
	}
	if opts.WindowOptions.MaxWindow <= 0 {
		opts.WindowOptions = features.DefaultOptions()
	}
	if opts.RegressionTolerance <= 0 {
		opts.RegressionTolerance = 2 * time.Second
	}
	if opts.InactivityEviction <= 0 {
		opts.InactivityEviction = 2 * time.Hour
	}
	if opts.EvictionSweep <= 0 {
		opts.EvictionSweep = 5 * time.Minute
	}
	if opts.ArchiveBatchSize <= 0 {
		opts.ArchiveBatchSize = defaultArchiveBatchSize
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.DefaultMetrics
	}

	return &Engine{
		ingestor:         opts.Ingestor,
		tokenStore:       opts.TokenStore,
		tradeStore:       opts.TradeStore,
		archive:          opts.Archive,
		emitter:          opts.Emitter,
		ledger:           opts.Ledger,
		tier0Window:      opts.Tier0Window,
		windowOpts:       opts.WindowOptions,
		regressionTol:    opts.RegressionTolerance.Milliseconds(),
		inactivity:       opts.InactivityEviction.Milliseconds(),
		evictionSweep:    opts.EvictionSweep,
		archiveBatchSize: opts.ArchiveBatchSize,
		log:              opts.Logger.WithField("component", "engine"),
		metrics:          opts.Metrics,
		registry:         make(map[string]*tokenState),
	}
}

// Run consumes events until the context is cancelled or the source channel
// closes. On cancellation the buffered events are drained before returning,
// so an accepted event is never silently discarded.
func (e *Engine) Run(ctx context.Context) error {
	events, err := e.ingestor.Subscribe(ctx)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(e.evictionSweep)
	defer ticker.Stop()

	e.log.Info("engine started")

	for {
		select {
		case <-ctx.Done():
			e.drain(events)
			e.log.Info("engine stopping")
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				e.flushArchive(context.WithoutCancel(ctx))
				e.log.Info("event source closed")
				return nil
			}
			e.handleEvent(ctx, ev)

		case <-ticker.C:
			e.evictInactive()
			e.flushArchive(ctx)
			e.updateBufferGauge()
		}
	}
}

// drain processes whatever is already buffered in the channel, then flushes
// the archive batch. Uses a detached context so in-flight persistence
// finishes despite the cancellation.
func (e *Engine) drain(events <-chan *domain.Event) {
	ctx := context.WithoutCancel(context.Background())
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				e.flushArchive(ctx)
				return
			}
			e.handleEvent(ctx, ev)
		default:
			e.flushArchive(ctx)
			return
		}
	}
}

func (e *Engine) handleEvent(ctx context.Context, ev *domain.Event) {
	if err := ev.Validate(); err != nil {
		reason := DropMalformed
		if errors.Is(err, domain.ErrNegativeAmount) {
			reason = DropNegative
		}
		e.metrics.EventsDropped.WithLabelValues(reason).Inc()
		e.log.WithError(err).Debug("event dropped")
		return
	}

	switch ev.Type {
	case domain.EventNewToken:
		e.handleNewToken(ctx, ev.Token)
	case domain.EventTrade:
		e.handleTrade(ctx, ev.Trade)
	}
}

// handleNewToken registers the token and persists it. A repeated launch
// event for a known mint refreshes the stored state but keeps the live
// window and gate.
func (e *Engine) handleNewToken(ctx context.Context, tok *domain.Token) {
	e.mu.Lock()
	st, exists := e.registry[tok.MintAddress]
	if exists {
		st.tok.BondingCurvePct = tok.BondingCurvePct
		st.tok.Graduated = tok.Graduated
		if tok.MarketCap > 0 {
			st.tok.MarketCap = tok.MarketCap
		}
		if tok.PriceSOL > 0 {
			st.tok.PriceSOL = tok.PriceSOL
		}
	} else {
		owned := *tok
		e.registry[tok.MintAddress] = &tokenState{
			tok:    &owned,
			window: features.NewWindow(tok.MintAddress, e.windowOpts),
			gate:   e.emitter.NewGate(tok.MintAddress),
		}
	}
	tracked := len(e.registry)
	e.mu.Unlock()

	if tok.LaunchedAt > e.lastEventMs {
		e.lastEventMs = tok.LaunchedAt
	}

	if err := e.tokenStore.Upsert(ctx, tok); err != nil {
		e.log.WithError(err).WithField("mint", tok.MintAddress).Error("persist token")
	}

	if !exists {
		e.metrics.TokensRegistered.Inc()
		e.metrics.TrackedTokens.Set(float64(tracked))
		e.log.WithFields(logrus.Fields{
			"mint":   tok.MintAddress,
			"symbol": tok.Symbol,
		}).Info("token registered")
	}
}

func (e *Engine) handleTrade(ctx context.Context, t *domain.Trade) {
	e.mu.RLock()
	st, ok := e.registry[t.MintAddress]
	e.mu.RUnlock()
	if !ok {
		e.metrics.EventsDropped.WithLabelValues(DropUnknownToken).Inc()
		e.log.WithField("mint", t.MintAddress).Debug("trade for unregistered mint dropped")
		return
	}

	if t.Timestamp < st.lastTradeMs-e.regressionTol {
		e.metrics.EventsDropped.WithLabelValues(DropRegression).Inc()
		e.log.WithFields(logrus.Fields{
			"mint":      t.MintAddress,
			"signature": t.Signature,
			"ts":        t.Timestamp,
			"newest":    st.lastTradeMs,
		}).Warn("trade timestamp regression dropped")
		return
	}

	if err := e.tradeStore.Insert(ctx, t); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			e.metrics.EventsDropped.WithLabelValues(DropDuplicate).Inc()
			return
		}
		// Persistence failure does not stop live evaluation.
		e.log.WithError(err).WithField("signature", t.Signature).Error("persist trade")
	}

	if e.archive != nil {
		e.pendingArchive = append(e.pendingArchive, t)
		if len(e.pendingArchive) >= e.archiveBatchSize {
			e.flushArchive(ctx)
		}
	}

	e.mu.Lock()
	if t.Timestamp > st.lastTradeMs {
		st.lastTradeMs = t.Timestamp
	}
	st.tok.LastTradeAt = st.lastTradeMs
	if t.MarketCap > 0 {
		st.tok.MarketCap = t.MarketCap
	}
	tok := *st.tok
	e.mu.Unlock()

	st.window.Update(t)

	if t.Timestamp > e.lastEventMs {
		e.lastEventMs = t.Timestamp
	}
	e.metrics.TradesProcessed.Inc()
	e.metrics.LastTradeProcessed.Set(float64(t.Timestamp) / 1000)

	if err := e.tokenStore.Upsert(ctx, &tok); err != nil {
		e.log.WithError(err).WithField("mint", tok.MintAddress).Error("persist token state")
	}

	// Momentum evaluation fires on buys only; sells never trigger.
	if t.IsBuy() {
		snap := st.window.Snapshot(e.tier0Window, t.Timestamp, &tok, e.isKnownWallet())
		if alert := st.gate.TryEmit(ctx, domain.TierMotion, snap); alert != nil {
			e.metrics.AlertsEmitted.WithLabelValues(domain.TierMotion.String()).Inc()
		}
	}
}

// updateBufferGauge exports the intake backlog for sources that expose it.
func (e *Engine) updateBufferGauge() {
	if b, ok := e.ingestor.(interface{ Buffered() int }); ok {
		e.metrics.EventBufferSize.Set(float64(b.Buffered()))
	}
}

func (e *Engine) isKnownWallet() func(string) bool {
	if e.ledger == nil {
		return nil
	}
	return e.ledger.Classify
}

// flushArchive sends the pending batch to the archive store.
func (e *Engine) flushArchive(ctx context.Context) {
	if e.archive == nil || len(e.pendingArchive) == 0 {
		return
	}
	batch := e.pendingArchive
	e.pendingArchive = nil

	if err := e.archive.InsertBatch(ctx, batch); err != nil {
		e.log.WithError(err).WithField("batch_size", len(batch)).Error("archive batch failed")
		return
	}
	e.metrics.TradesArchived.Add(float64(len(batch)))
}

// evictInactive drops the in-memory state of tokens with no trade inside the
// inactivity horizon. Durable rows are untouched; a late trade for an
// evicted mint is dropped as unknown until the token re-registers.
func (e *Engine) evictInactive() {
	if e.lastEventMs == 0 {
		return
	}
	cutoff := e.lastEventMs - e.inactivity

	e.mu.Lock()
	var evicted int
	for mint, st := range e.registry {
		last := st.lastTradeMs
		if last == 0 {
			last = st.tok.LaunchedAt
		}
		if last < cutoff {
			delete(e.registry, mint)
			evicted++
		}
	}
	tracked := len(e.registry)
	e.mu.Unlock()

	if evicted > 0 {
		e.metrics.TokensEvicted.Add(float64(evicted))
		e.log.WithFields(logrus.Fields{
			"evicted": evicted,
			"tracked": tracked,
		}).Info("inactive tokens evicted")
	}
	e.metrics.TrackedTokens.Set(float64(tracked))
}

// Tracked returns a snapshot of the registry for the validation sweep.
func (e *Engine) Tracked() []Tracked {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Tracked, 0, len(e.registry))
	for _, st := range e.registry {
		out = append(out, Tracked{
			Token:  *st.tok,
			Window: st.window,
			Gate:   st.gate,
		})
	}
	return out
}

// TrackedCount returns the number of registered tokens.
func (e *Engine) TrackedCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.registry)
}
