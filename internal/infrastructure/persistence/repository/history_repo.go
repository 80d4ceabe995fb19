package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/claimflow/internal/application/port"
	"github.com/garyjia/claimflow/internal/domain/entity"
	"github.com/garyjia/claimflow/internal/infrastructure/persistence/sqlite"
)

// HistoryRepository implements port.HistoryRepository
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create records one status change
func (r *HistoryRepository) Create(ctx context.Context, history *entity.ClaimHistory) error {
	query := `
		INSERT INTO claim_history (
			claim_id, actor_id, actor_role, previous_status, new_status, reason, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	if history.Timestamp.IsZero() {
		history.Timestamp = time.Now().UTC()
	}

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		history.ClaimID,
		history.ActorID,
		history.ActorRole,
		history.PreviousStatus,
		history.NewStatus,
		history.Reason,
		history.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to create history record", zap.String("claim_id", history.ClaimID), zap.Error(err))
		return fmt.Errorf("failed to create history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	history.ID = id
	return nil
}

// GetByClaimID retrieves the audit trail of a claim, oldest first
func (r *HistoryRepository) GetByClaimID(ctx context.Context, claimID string) ([]*entity.ClaimHistory, error) {
	query := `
		SELECT id, claim_id, actor_id, actor_role, previous_status, new_status, reason, created_at
		FROM claim_history
		WHERE claim_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, claimID)
	if err != nil {
		r.logger.Error("Failed to query history", zap.String("claim_id", claimID), zap.Error(err))
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	histories := []*entity.ClaimHistory{}
	for rows.Next() {
		var h entity.ClaimHistory
		if err := rows.Scan(
			&h.ID,
			&h.ClaimID,
			&h.ActorID,
			&h.ActorRole,
			&h.PreviousStatus,
			&h.NewStatus,
			&h.Reason,
			&h.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		histories = append(histories, &h)
	}

	return histories, rows.Err()
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
