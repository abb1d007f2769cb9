package storage

import (
	"context"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
)

// TokenStore provides access to tokens storage. Tokens are upserted on
// every state change and never deleted (retained for historical labeling).
type TokenStore interface {
	// Upsert inserts or updates a token keyed by mint address.
	Upsert(ctx context.Context, t *domain.Token) error

	// GetByMint retrieves a token by mint address. Returns ErrNotFound if
	// not exists.
	GetByMint(ctx context.Context, mint string) (*domain.Token, error)

	// GetLaunchedSince retrieves tokens launched at or after the given
	// timestamp (ms), ordered by launch time ASC.
	GetLaunchedSince(ctx context.Context, sinceMs int64) ([]*domain.Token, error)
}

// TradeStore provides access to trades storage.
type TradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if the signature
	// already exists.
	Insert(ctx context.Context, t *domain.Trade) error

	// GetByMintSince retrieves trades for a mint with timestamp >= sinceMs,
	// ordered by timestamp ASC.
	GetByMintSince(ctx context.Context, mint string, sinceMs int64) ([]*domain.Trade, error)

	// GetByWallet retrieves all trades for a wallet, ordered by timestamp ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.Trade, error)

	// GetDistinctWalletsSince retrieves wallet addresses with at least one
	// trade at or after sinceMs.
	GetDistinctWalletsSince(ctx context.Context, sinceMs int64) ([]string, error)
}

// TradeArchiveStore is the append-only, high-volume archive of the raw
// trade firehose (ClickHouse in production). Batch-oriented.
type TradeArchiveStore interface {
	// InsertBatch appends a batch of trades. Duplicates are tolerated by
	// the backing table; the batch fails only on transport errors.
	InsertBatch(ctx context.Context, trades []*domain.Trade) error

	// GetByMintTimeRange retrieves archived trades for a mint within
	// [start, end] (ms, inclusive), ordered by timestamp ASC.
	GetByMintTimeRange(ctx context.Context, mint string, start, end int64) ([]*domain.Trade, error)
}

// AlertStore provides access to motion_alerts storage.
type AlertStore interface {
	// Insert adds a new alert. Returns ErrDuplicateKey if an alert for
	// (mint, tier) already exists.
	Insert(ctx context.Context, a *domain.AlertRecord) error

	// GetByMint retrieves all alerts for a mint, ordered by trigger time ASC.
	GetByMint(ctx context.Context, mint string) ([]*domain.AlertRecord, error)

	// GetByTier retrieves all alerts of a tier, ordered by trigger time ASC.
	GetByTier(ctx context.Context, tier domain.Tier) ([]*domain.AlertRecord, error)

	// GetUnlabeled retrieves alerts not yet processed by the outcome
	// labeling job, ordered by trigger time ASC.
	GetUnlabeled(ctx context.Context) ([]*domain.AlertRecord, error)
}

// WalletStatsStore provides access to wallet_stats storage.
type WalletStatsStore interface {
	// Upsert inserts or replaces stats for a wallet.
	Upsert(ctx context.Context, s *domain.WalletStats) error

	// Get retrieves stats for a wallet. Returns ErrNotFound if not exists.
	Get(ctx context.Context, wallet string) (*domain.WalletStats, error)

	// GetKnownProfitable retrieves stats for wallets passing the given
	// profitability thresholds.
	GetKnownProfitable(ctx context.Context, th domain.WalletThresholds) ([]*domain.WalletStats, error)

	// All retrieves stats for every tracked wallet.
	All(ctx context.Context) ([]*domain.WalletStats, error)
}
