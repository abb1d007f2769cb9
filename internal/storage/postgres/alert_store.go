package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage"
)

// AlertStore implements storage.AlertStore using PostgreSQL. The snapshot and
// criteria that triggered an alert are persisted as JSONB for later review.
type AlertStore struct {
	pool *Pool
}

// NewAlertStore creates a new AlertStore.
func NewAlertStore(pool *Pool) *AlertStore {
	return &AlertStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AlertStore = (*AlertStore)(nil)

// Insert adds a new alert. Returns ErrDuplicateKey if an alert for
// (mint, tier) already exists.
func (s *AlertStore) Insert(ctx context.Context, a *domain.AlertRecord) error {
	snapshotJSON, err := json.Marshal(a.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal alert snapshot: %w", err)
	}
	criteriaJSON, err := json.Marshal(a.Criteria)
	if err != nil {
		return fmt.Errorf("marshal alert criteria: %w", err)
	}

	query := `
		INSERT INTO motion_alerts (
			alert_id, mint_address, tier, triggered_at, snapshot, criteria
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = s.pool.Exec(ctx, query,
		a.AlertID,
		a.MintAddress,
		int(a.Tier),
		a.TriggeredAt,
		snapshotJSON,
		criteriaJSON,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// GetByMint retrieves all alerts for a mint, ordered by trigger time ASC.
func (s *AlertStore) GetByMint(ctx context.Context, mint string) ([]*domain.AlertRecord, error) {
	query := `
		SELECT alert_id, mint_address, tier, triggered_at, snapshot, criteria, outcome_label
		FROM motion_alerts
		WHERE mint_address = $1
		ORDER BY triggered_at ASC, tier ASC
	`

	rows, err := s.pool.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("get alerts by mint: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// GetByTier retrieves all alerts of a tier, ordered by trigger time ASC.
func (s *AlertStore) GetByTier(ctx context.Context, tier domain.Tier) ([]*domain.AlertRecord, error) {
	query := `
		SELECT alert_id, mint_address, tier, triggered_at, snapshot, criteria, outcome_label
		FROM motion_alerts
		WHERE tier = $1
		ORDER BY triggered_at ASC, mint_address ASC
	`

	rows, err := s.pool.Query(ctx, query, int(tier))
	if err != nil {
		return nil, fmt.Errorf("get alerts by tier: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// GetUnlabeled retrieves alerts without an outcome label, ordered by
// trigger time ASC.
func (s *AlertStore) GetUnlabeled(ctx context.Context) ([]*domain.AlertRecord, error) {
	query := `
		SELECT alert_id, mint_address, tier, triggered_at, snapshot, criteria, outcome_label
		FROM motion_alerts
		WHERE outcome_label IS NULL
		ORDER BY triggered_at ASC, mint_address ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get unlabeled alerts: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// scanAlerts scans multiple rows into a slice of AlertRecord.
func scanAlerts(rows pgx.Rows) ([]*domain.AlertRecord, error) {
	var alerts []*domain.AlertRecord

	for rows.Next() {
		var a domain.AlertRecord
		var tierInt int
		var snapshotJSON, criteriaJSON []byte

		err := rows.Scan(
			&a.AlertID,
			&a.MintAddress,
			&tierInt,
			&a.TriggeredAt,
			&snapshotJSON,
			&criteriaJSON,
			&a.OutcomeLabel,
		)
		if err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}

		a.Tier = domain.Tier(tierInt)
		if err := json.Unmarshal(snapshotJSON, &a.Snapshot); err != nil {
			return nil, fmt.Errorf("unmarshal alert snapshot: %w", err)
		}
		if err := json.Unmarshal(criteriaJSON, &a.Criteria); err != nil {
			return nil, fmt.Errorf("unmarshal alert criteria: %w", err)
		}

		alerts = append(alerts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alert rows: %w", err)
	}

	return alerts, nil
}
