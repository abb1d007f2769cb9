package postgres

import (
	"context"
	"fmt"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage"
)

// WalletStatsStore implements storage.WalletStatsStore using PostgreSQL.
type WalletStatsStore struct {
	pool *Pool
}

// NewWalletStatsStore creates a new WalletStatsStore.
func NewWalletStatsStore(pool *Pool) *WalletStatsStore {
	return &WalletStatsStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletStatsStore = (*WalletStatsStore)(nil)

// Upsert inserts or replaces stats for a wallet.
func (s *WalletStatsStore) Upsert(ctx context.Context, st *domain.WalletStats) error {
	query := `
		INSERT INTO wallet_stats (
			wallet_address, trade_count, win_count, loss_count,
			win_rate, total_pnl_sol, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (wallet_address) DO UPDATE SET
			trade_count = EXCLUDED.trade_count,
			win_count = EXCLUDED.win_count,
			loss_count = EXCLUDED.loss_count,
			win_rate = EXCLUDED.win_rate,
			total_pnl_sol = EXCLUDED.total_pnl_sol,
			last_updated = EXCLUDED.last_updated
	`

	_, err := s.pool.Exec(ctx, query,
		st.WalletAddress,
		st.TradeCount,
		st.WinCount,
		st.LossCount,
		st.WinRate,
		st.TotalPnLSOL,
		st.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("upsert wallet stats: %w", err)
	}
	return nil
}

// Get retrieves stats for a wallet. Returns ErrNotFound if not exists.
func (s *WalletStatsStore) Get(ctx context.Context, wallet string) (*domain.WalletStats, error) {
	query := `
		SELECT wallet_address, trade_count, win_count, loss_count,
			win_rate, total_pnl_sol, last_updated
		FROM wallet_stats
		WHERE wallet_address = $1
	`

	var st domain.WalletStats
	err := s.pool.QueryRow(ctx, query, wallet).Scan(
		&st.WalletAddress,
		&st.TradeCount,
		&st.WinCount,
		&st.LossCount,
		&st.WinRate,
		&st.TotalPnLSOL,
		&st.LastUpdated,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wallet stats: %w", err)
	}
	return &st, nil
}

// GetKnownProfitable retrieves stats for wallets passing the thresholds.
func (s *WalletStatsStore) GetKnownProfitable(ctx context.Context, th domain.WalletThresholds) ([]*domain.WalletStats, error) {
	query := `
		SELECT wallet_address, trade_count, win_count, loss_count,
			win_rate, total_pnl_sol, last_updated
		FROM wallet_stats
		WHERE trade_count >= $1 AND win_rate >= $2 AND total_pnl_sol >= $3
		ORDER BY wallet_address ASC
	`

	rows, err := s.pool.Query(ctx, query, th.MinTrades, th.MinWinRate, th.MinTotalPnLSOL)
	if err != nil {
		return nil, fmt.Errorf("get known profitable wallets: %w", err)
	}
	defer rows.Close()

	var stats []*domain.WalletStats
	for rows.Next() {
		var st domain.WalletStats
		if err := rows.Scan(
			&st.WalletAddress,
			&st.TradeCount,
			&st.WinCount,
			&st.LossCount,
			&st.WinRate,
			&st.TotalPnLSOL,
			&st.LastUpdated,
		); err != nil {
			return nil, fmt.Errorf("scan wallet stats row: %w", err)
		}
		stats = append(stats, &st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet stats rows: %w", err)
	}

	return stats, nil
}

// All retrieves stats for every tracked wallet.
func (s *WalletStatsStore) All(ctx context.Context) ([]*domain.WalletStats, error) {
	query := `
		SELECT wallet_address, trade_count, win_count, loss_count,
			win_rate, total_pnl_sol, last_updated
		FROM wallet_stats
		ORDER BY wallet_address ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all wallet stats: %w", err)
	}
	defer rows.Close()

	var stats []*domain.WalletStats
	for rows.Next() {
		var st domain.WalletStats
		if err := rows.Scan(
			&st.WalletAddress,
			&st.TradeCount,
			&st.WinCount,
			&st.LossCount,
			&st.WinRate,
			&st.TotalPnLSOL,
			&st.LastUpdated,
		); err != nil {
			return nil, fmt.Errorf("scan wallet stats row: %w", err)
		}
		stats = append(stats, &st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet stats rows: %w", err)
	}

	return stats, nil
}
