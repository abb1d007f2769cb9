package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// Insert adds a new trade. Returns ErrDuplicateKey if the signature exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) error {
	query := `
		INSERT INTO trades (
			signature, mint_address, wallet_address, side,
			amount_sol, token_amount, market_cap, ts
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		t.Signature,
		t.MintAddress,
		t.WalletAddress,
		string(t.Side),
		t.AmountSOL,
		t.TokenAmount,
		t.MarketCap,
		t.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// GetByMintSince retrieves trades for a mint with ts >= sinceMs.
func (s *TradeStore) GetByMintSince(ctx context.Context, mint string, sinceMs int64) ([]*domain.Trade, error) {
	query := `
		SELECT signature, mint_address, wallet_address, side,
			amount_sol, token_amount, market_cap, ts
		FROM trades
		WHERE mint_address = $1 AND ts >= $2
		ORDER BY ts ASC, signature ASC
	`

	rows, err := s.pool.Query(ctx, query, mint, sinceMs)
	if err != nil {
		return nil, fmt.Errorf("get trades by mint: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetByWallet retrieves all trades for a wallet, ordered by ts ASC.
func (s *TradeStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.Trade, error) {
	query := `
		SELECT signature, mint_address, wallet_address, side,
			amount_sol, token_amount, market_cap, ts
		FROM trades
		WHERE wallet_address = $1
		ORDER BY ts ASC, signature ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("get trades by wallet: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetDistinctWalletsSince retrieves wallet addresses with at least one trade
// at or after sinceMs.
func (s *TradeStore) GetDistinctWalletsSince(ctx context.Context, sinceMs int64) ([]string, error) {
	query := `
		SELECT DISTINCT wallet_address
		FROM trades
		WHERE ts >= $1
		ORDER BY wallet_address ASC
	`

	rows, err := s.pool.Query(ctx, query, sinceMs)
	if err != nil {
		return nil, fmt.Errorf("get distinct wallets: %w", err)
	}
	defer rows.Close()

	var wallets []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}

	return wallets, nil
}

// scanTrades scans multiple rows into a slice of Trade.
func scanTrades(rows pgx.Rows) ([]*domain.Trade, error) {
	var trades []*domain.Trade

	for rows.Next() {
		var t domain.Trade
		var sideStr string

		err := rows.Scan(
			&t.Signature,
			&t.MintAddress,
			&t.WalletAddress,
			&sideStr,
			&t.AmountSOL,
			&t.TokenAmount,
			&t.MarketCap,
			&t.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}

		t.Side = domain.Side(sideStr)
		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	return trades, nil
}
