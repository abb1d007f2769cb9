package clickhouse

import (
	"context"
	"fmt"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage"
)

// TradeArchiveStore implements storage.TradeArchiveStore using ClickHouse.
// The table is ReplacingMergeTree keyed by (mint_address, ts, signature), so
// replayed batches are collapsed on merge rather than rejected at insert.
type TradeArchiveStore struct {
	conn *Conn
}

// NewTradeArchiveStore creates a new TradeArchiveStore.
func NewTradeArchiveStore(conn *Conn) *TradeArchiveStore {
	return &TradeArchiveStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TradeArchiveStore = (*TradeArchiveStore)(nil)

// InsertBatch appends a batch of trades.
func (s *TradeArchiveStore) InsertBatch(ctx context.Context, trades []*domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trade_archive (
			signature, mint_address, wallet_address, side,
			amount_sol, token_amount, market_cap, ts
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, t := range trades {
		err = batch.Append(
			t.Signature, t.MintAddress, t.WalletAddress, string(t.Side),
			t.AmountSOL, t.TokenAmount, t.MarketCap, t.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByMintTimeRange retrieves archived trades for a mint within [start, end].
func (s *TradeArchiveStore) GetByMintTimeRange(ctx context.Context, mint string, start, end int64) ([]*domain.Trade, error) {
	query := `
		SELECT signature, mint_address, wallet_address, side,
			amount_sol, token_amount, market_cap, ts
		FROM trade_archive
		WHERE mint_address = ? AND ts >= ? AND ts <= ?
		ORDER BY ts ASC
	`

	rows, err := s.conn.Query(ctx, query, mint, start, end)
	if err != nil {
		return nil, fmt.Errorf("query by mint time range: %w", err)
	}
	defer rows.Close()

	return scanArchivedTrades(rows)
}

// scanArchivedTrades scans multiple rows into a slice of Trade.
func scanArchivedTrades(rows chRows) ([]*domain.Trade, error) {
	var trades []*domain.Trade

	for rows.Next() {
		var t domain.Trade
		var sideStr string

		err := rows.Scan(
			&t.Signature, &t.MintAddress, &t.WalletAddress, &sideStr,
			&t.AmountSOL, &t.TokenAmount, &t.MarketCap, &t.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade archive row: %w", err)
		}

		t.Side = domain.Side(sideStr)
		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade archive rows: %w", err)
	}

	return trades, nil
}
