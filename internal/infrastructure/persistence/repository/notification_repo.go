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

// NotificationRepository implements port.NotificationRepository
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores an unread inbox entry
func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, claim_id, status, message, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	if n.Status == "" {
		n.Status = entity.NotificationStatusUnread
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		n.RecipientID,
		n.ClaimID,
		n.Status,
		n.Message,
		n.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create notification",
			zap.String("recipient_id", n.RecipientID),
			zap.String("claim_id", n.ClaimID),
			zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	n.ID = id
	return nil
}

// ListByRecipient returns a recipient's notifications, newest first
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]*entity.Notification, error) {
	query := `
		SELECT id, recipient_id, claim_id, status, message, read_at, created_at
		FROM notifications
		WHERE recipient_id = ?
	`
	args := []interface{}{recipientID}
	if unreadOnly {
		query += " AND status = ?"
		args = append(args, entity.NotificationStatusUnread)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list notifications", zap.String("recipient_id", recipientID), zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	out := []*entity.Notification{}
	for rows.Next() {
		var (
			n      entity.Notification
			readAt sql.NullTime
		)
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.ClaimID, &n.Status, &n.Message, &readAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if readAt.Valid {
			n.ReadAt = &readAt.Time
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

// MarkRead marks the recipient's notifications read. No ids marks all of them.
func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID string, ids []int64) (int64, error) {
	query := `UPDATE notifications SET status = ?, read_at = ? WHERE recipient_id = ? AND status = ?`
	args := []interface{}{entity.NotificationStatusRead, time.Now().UTC(), recipientID, entity.NotificationStatusUnread}
	if len(ids) > 0 {
		query += " AND id IN (" + placeholders(len(ids)) + ")"
		for _, id := range ids {
			args = append(args, id)
		}
	}

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to mark notifications read", zap.String("recipient_id", recipientID), zap.Error(err))
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return result.RowsAffected()
}

// Verify interface compliance
var _ port.NotificationRepository = (*NotificationRepository)(nil)
