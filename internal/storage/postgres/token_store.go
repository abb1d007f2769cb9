package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage"
)

// TokenStore implements storage.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *Pool
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(pool *Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

// Upsert inserts or updates a token keyed by mint address.
func (s *TokenStore) Upsert(ctx context.Context, t *domain.Token) error {
	query := `
		INSERT INTO tokens (
			mint_address, name, symbol, creator_address, launched_at,
			market_cap, price_sol, bonding_curve_pct, graduated, last_trade_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (mint_address) DO UPDATE SET
			market_cap = EXCLUDED.market_cap,
			price_sol = EXCLUDED.price_sol,
			bonding_curve_pct = EXCLUDED.bonding_curve_pct,
			graduated = EXCLUDED.graduated,
			last_trade_at = EXCLUDED.last_trade_at
	`

	_, err := s.pool.Exec(ctx, query,
		t.MintAddress,
		t.Name,
		t.Symbol,
		t.CreatorAddress,
		t.LaunchedAt,
		t.MarketCap,
		t.PriceSOL,
		t.BondingCurvePct,
		t.Graduated,
		t.LastTradeAt,
	)
	if err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}
	return nil
}

// GetByMint retrieves a token by mint address. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByMint(ctx context.Context, mint string) (*domain.Token, error) {
	query := `
		SELECT mint_address, name, symbol, creator_address, launched_at,
			market_cap, price_sol, bonding_curve_pct, graduated, last_trade_at
		FROM tokens
		WHERE mint_address = $1
	`

	row := s.pool.QueryRow(ctx, query, mint)
	t, err := scanToken(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token by mint: %w", err)
	}
	return t, nil
}

// GetLaunchedSince retrieves tokens launched at or after sinceMs.
func (s *TokenStore) GetLaunchedSince(ctx context.Context, sinceMs int64) ([]*domain.Token, error) {
	query := `
		SELECT mint_address, name, symbol, creator_address, launched_at,
			market_cap, price_sol, bonding_curve_pct, graduated, last_trade_at
		FROM tokens
		WHERE launched_at >= $1
		ORDER BY launched_at ASC, mint_address ASC
	`

	rows, err := s.pool.Query(ctx, query, sinceMs)
	if err != nil {
		return nil, fmt.Errorf("get tokens launched since: %w", err)
	}
	defer rows.Close()

	var tokens []*domain.Token
	for rows.Next() {
		var t domain.Token
		if err := rows.Scan(
			&t.MintAddress,
			&t.Name,
			&t.Symbol,
			&t.CreatorAddress,
			&t.LaunchedAt,
			&t.MarketCap,
			&t.PriceSOL,
			&t.BondingCurvePct,
			&t.Graduated,
			&t.LastTradeAt,
		); err != nil {
			return nil, fmt.Errorf("scan token row: %w", err)
		}
		tokens = append(tokens, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token rows: %w", err)
	}

	return tokens, nil
}

// scanToken scans a single row into a Token.
func scanToken(row pgx.Row) (*domain.Token, error) {
	var t domain.Token
	err := row.Scan(
		&t.MintAddress,
		&t.Name,
		&t.Symbol,
		&t.CreatorAddress,
		&t.LaunchedAt,
		&t.MarketCap,
		&t.PriceSOL,
		&t.BondingCurvePct,
		&t.Graduated,
		&t.LastTradeAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
