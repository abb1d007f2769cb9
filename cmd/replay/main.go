// Replay re-runs the motion evaluation over persisted trades for a time
// range. Useful to check how threshold changes would have fired against
// historical data without touching stored alerts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/alerting"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/config"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/features"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/ingestion"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/logging"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage/memory"
	pgstore "github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage/postgres"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/wallets"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (defaults apply when empty)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (or POSTGRES_DSN)")
	fromStr := flag.String("from-time", "", "Replay range start (RFC3339, default 24h ago)")
	toStr := flag.String("to-time", "", "Replay range end (RFC3339, default now)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env file: %v\n", err)
	}

	if err := run(*configPath, *postgresDSN, *fromStr, *toStr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// captureSink collects replayed alerts instead of persisting them.
type captureSink struct {
	alerts []*domain.AlertRecord
}

func (s *captureSink) Record(ctx context.Context, alert *domain.AlertRecord) error {
	s.alerts = append(s.alerts, alert)
	return nil
}

func run(configPath, dsn, fromStr, toStr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if dsn == "" {
		dsn = os.Getenv("POSTGRES_DSN")
	}
	if dsn == "" {
		return fmt.Errorf("--postgres-dsn or POSTGRES_DSN is required")
	}

	from, to, err := parseRange(fromStr, toStr)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, "text")
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}

	ctx := context.Background()
	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	tokenStore := pgstore.NewTokenStore(pool)
	tradeStore := pgstore.NewTradeStore(pool)
	statsStore := pgstore.NewWalletStatsStore(pool)

	provider := config.NewProvider(cfg)

	// The ledger for the replay is the current persisted stats: close
	// enough for what-if threshold runs.
	ledger := wallets.NewLedger(provider.WalletThresholds())
	if stats, err := statsStore.All(ctx); err == nil {
		snapshot := make(map[string]domain.WalletStats, len(stats))
		for _, s := range stats {
			snapshot[s.WalletAddress] = *s
		}
		ledger.Replace(snapshot)
	}

	sink := &captureSink{}
	emitter := alerting.NewEmitter(alerting.EmitterOptions{
		Thresholds: provider,
		Sink:       sink,
		Logger:     logger,
	})

	// Replay reads from postgres and writes into throwaway memory stores
	// so the historical rows stay untouched.
	var replayTokens storage.TokenStore = memory.NewTokenStore()
	var replayTrades storage.TradeStore = memory.NewTradeStore()

	engine := ingestion.NewEngine(ingestion.EngineOptions{
		Ingestor:    ingestion.NewReplayIngestor(tokenStore, tradeStore, from.UnixMilli(), to.UnixMilli()),
		TokenStore:  replayTokens,
		TradeStore:  replayTrades,
		Emitter:     emitter,
		Ledger:      ledger,
		Tier0Window: cfg.Tier0Window(),
		WindowOptions: features.Options{
			MaxWindow: cfg.Tier1Window(),
			MaxTrades: cfg.Windows.MaxTrades,
		},
		RegressionTolerance: cfg.RegressionTolerance(),
		Logger:              logger,
	})

	start := time.Now()
	fmt.Printf("Replaying %s to %s\n", from.Format(time.RFC3339), to.Format(time.RFC3339))

	if err := engine.Run(ctx); err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	printSummary(sink.alerts, engine.TrackedCount(), time.Since(start))
	return nil
}

func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	from := time.Now().Add(-24 * time.Hour)
	to := time.Now()

	if fromStr != "" {
		t, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse from-time: %w", err)
		}
		from = t
	}
	if toStr != "" {
		t, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse to-time: %w", err)
		}
		to = t
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to-time must be after from-time")
	}
	return from, to, nil
}

func printSummary(alerts []*domain.AlertRecord, tokens int, elapsed time.Duration) {
	byTier := map[domain.Tier]int{}
	for _, a := range alerts {
		byTier[a.Tier]++
	}

	fmt.Printf("\nReplay complete in %v: %d tokens, %d alerts (%d motion, %d validated)\n\n",
		elapsed.Round(time.Millisecond), tokens, len(alerts),
		byTier[domain.TierMotion], byTier[domain.TierValidated])

	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].Snapshot.Timestamp < alerts[j].Snapshot.Timestamp
	})

	for _, a := range alerts {
		at := time.UnixMilli(a.Snapshot.Timestamp).UTC()
		fmt.Printf("%s  %-6s  %s  buy=%.2f SOL  buyers=%d  ratio=%.2f  mc=%.0f\n",
			at.Format(time.RFC3339), a.Tier.String(), a.MintAddress,
			a.Snapshot.BuyVolumeSOL, a.Snapshot.UniqueBuyers,
			a.Snapshot.BuySellRatio, a.Snapshot.MarketCap)
	}
}
