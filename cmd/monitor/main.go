package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/alerting"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/config"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/enrichment"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/features"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/ingestion"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/logging"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/observability"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage"
	chstore "github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage/clickhouse"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage/memory"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage/migrations"
	pgstore "github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage/postgres"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/validation"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/wallets"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (defaults apply when empty)")
	envFile := flag.String("env", ".env", "Path to .env file")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not load env file %s: %v\n", *envFile, err)
	}

	if err := run(*configPath); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	log := logging.Component(logger, "monitor")

	provider := config.NewProvider(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Shutdown on signal, with a 30s grace window for the drain. A second
	// signal forces immediate exit.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			log.WithField("signal", sig.String()).Info("shutting down")
			cancel()
		case <-done:
			return
		}

		select {
		case sig := <-sigCh:
			log.WithField("signal", sig.String()).Warn("second signal, forcing exit")
			os.Exit(1)
		case <-time.After(30 * time.Second):
			log.Warn("graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()
	defer close(done)

	// Stores.
	var tokenStore storage.TokenStore = memory.NewTokenStore()
	var tradeStore storage.TradeStore = memory.NewTradeStore()
	var alertStore storage.AlertStore = memory.NewAlertStore()
	var statsStore storage.WalletStatsStore = memory.NewWalletStatsStore()

	if cfg.Storage.Backend == "postgres" {
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("run postgres migrations: %w", err)
		}

		tokenStore = pgstore.NewTokenStore(pool)
		tradeStore = pgstore.NewTradeStore(pool)
		alertStore = pgstore.NewAlertStore(pool)
		statsStore = pgstore.NewWalletStatsStore(pool)
		log.Info("postgres storage ready")
	}

	var archive storage.TradeArchiveStore
	if cfg.Storage.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			return fmt.Errorf("run clickhouse migrations: %w", err)
		}
		defer conn.Close()

		archive = chstore.NewTradeArchiveStore(conn)
		log.Info("clickhouse trade archive ready")
	}

	// Alert sinks: always persist; publish to redis when configured.
	sinks := []alerting.AlertSink{alerting.NewStoreSink(alertStore)}
	if cfg.Redis.Addr != "" {
		redisSink := alerting.NewRedisSink(cfg.Redis.Addr)
		if err := redisSink.Ping(ctx); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisSink.Close()
		sinks = append(sinks, redisSink)
		log.WithField("addr", cfg.Redis.Addr).Info("redis alert sink ready")
	}
	sink := alerting.NewMultiSink(logger, sinks...)

	emitter := alerting.NewEmitter(alerting.EmitterOptions{
		Thresholds: provider,
		Sink:       sink,
		Logger:     logger,
	})

	ledger := wallets.NewLedger(provider.WalletThresholds())

	// Metrics endpoint.
	if cfg.Metrics.Addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			log.WithField("addr", cfg.Metrics.Addr).Info("metrics server started")
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("metrics server failed")
			}
		}()
	}

	ingestor := ingestion.NewChannelIngestor(cfg.Ingestion.BufferSize)
	engine := ingestion.NewEngine(ingestion.EngineOptions{
		Ingestor:    ingestor,
		TokenStore:  tokenStore,
		TradeStore:  tradeStore,
		Archive:     archive,
		Emitter:     emitter,
		Ledger:      ledger,
		Tier0Window: cfg.Tier0Window(),
		WindowOptions: features.Options{
			MaxWindow: cfg.Tier1Window(),
			MaxTrades: cfg.Windows.MaxTrades,
		},
		RegressionTolerance: cfg.RegressionTolerance(),
		InactivityEviction:  cfg.InactivityEviction(),
		EvictionSweep:       cfg.EvictionSweep(),
		Logger:              logger,
	})

	var source enrichment.Source
	if cfg.Enrichment.BaseURL != "" {
		source = enrichment.NewHTTPSource(enrichment.HTTPOptions{
			BaseURL:       cfg.Enrichment.BaseURL,
			Timeout:       cfg.EnrichmentTimeout(),
			RatePerSecond: cfg.Enrichment.RatePerSecond,
			Burst:         cfg.Enrichment.Burst,
		})
	}

	refresher := wallets.NewRefresher(wallets.RefresherOptions{
		TradeStore: tradeStore,
		StatsStore: statsStore,
		Ledger:     ledger,
		Interval:   cfg.WalletRefreshInterval(),
		Lookback:   cfg.WalletLookback(),
		Logger:     logger,
	})

	// Run the loops; collect first failure.
	errCh := make(chan error, 3)

	go func() {
		errCh <- engine.Run(ctx)
	}()

	go func() {
		errCh <- refresher.Run(ctx)
	}()

	if source != nil {
		job := validation.NewJob(validation.JobOptions{
			Registry:      engine,
			Source:        source,
			Ledger:        ledger,
			MinAge:        provider.Tier1MinAge(),
			Tier1Window:   cfg.Tier1Window(),
			Interval:      cfg.ValidationInterval(),
			EnrichTimeout: cfg.EnrichmentTimeout(),
			Logger:        logger,
		})
		go func() {
			errCh <- job.Run(ctx)
		}()
	} else {
		log.Warn("no enrichment base URL configured, validated alerts disabled")
	}

	log.Info("monitor started")

	err = <-errCh
	cancel()
	log.Info("monitor stopped")
	return err
}

// applyEnvOverrides lets deployment secrets come from the environment
// instead of the config file.
func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
		if cfg.Storage.Backend == "" || cfg.Storage.Backend == "memory" {
			cfg.Storage.Backend = "postgres"
		}
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		cfg.Storage.ClickhouseDSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("ENRICHMENT_BASE_URL"); v != "" {
		cfg.Enrichment.BaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
