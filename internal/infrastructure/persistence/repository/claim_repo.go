package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/claimflow/internal/application/port"
	"github.com/garyjia/claimflow/internal/domain/entity"
	"github.com/garyjia/claimflow/internal/infrastructure/persistence/sqlite"
)

// ErrNoRowsAffected is returned when an update matched no claim
var ErrNoRowsAffected = errors.New("no rows affected")

const claimColumns = `
	id, staff_id, staff_name, project_id, project_name,
	period_from, period_to, hours, status,
	reason_claimer, reason_approver, created_at, updated_at
`

// ClaimRepository implements port.ClaimStore
type ClaimRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *sql.DB, logger *zap.Logger) *ClaimRepository {
	return &ClaimRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new claim
func (r *ClaimRepository) Create(ctx context.Context, claim *entity.Claim) error {
	query := `INSERT INTO claims (` + claimColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	if claim.CreatedAt.IsZero() {
		claim.CreatedAt = now
	}
	if claim.UpdatedAt.IsZero() {
		claim.UpdatedAt = claim.CreatedAt
	}

	_, err := r.exec(ctx).ExecContext(ctx, query,
		claim.ID,
		claim.StaffID,
		claim.StaffName,
		claim.ProjectID,
		claim.ProjectName,
		claim.Period.From.String(),
		claim.Period.To.String(),
		claim.Hours,
		claim.Status,
		claim.ReasonClaimer,
		claim.ReasonApprover,
		claim.CreatedAt,
		claim.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create claim", zap.String("claim_id", claim.ID), zap.Error(err))
		return fmt.Errorf("failed to create claim: %w", err)
	}
	return nil
}

// GetByID retrieves a claim by ID. A missing claim yields (nil, nil).
func (r *ClaimRepository) GetByID(ctx context.Context, id string) (*entity.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = ?`

	claim, err := r.scanClaim(r.exec(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get claim by ID", zap.String("claim_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	return claim, nil
}

// GetByIDs retrieves the claims that exist among ids, in no particular order
func (r *ClaimRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.Claim, error) {
	if len(ids) == 0 {
		return []*entity.Claim{}, nil
	}

	query := `SELECT ` + claimColumns + ` FROM claims WHERE id IN (` + placeholders(len(ids)) + `)`
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	return r.query(ctx, query, args...)
}

// List retrieves claims matching the filter, newest first
func (r *ClaimRepository) List(ctx context.Context, filter port.StoreFilter) ([]*entity.Claim, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.StaffID != "" {
		where = append(where, "staff_id = ?")
		args = append(args, filter.StaffID)
	}
	if len(filter.Statuses) > 0 {
		where = append(where, "status IN ("+placeholders(len(filter.Statuses))+")")
		for _, s := range filter.Statuses {
			args = append(args, s)
		}
	}

	query := `SELECT ` + claimColumns + ` FROM claims`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	return r.query(ctx, query, args...)
}

// Update rewrites the editable fields of a claim
func (r *ClaimRepository) Update(ctx context.Context, claim *entity.Claim) error {
	query := `
		UPDATE claims
		SET project_id = ?, project_name = ?, period_from = ?, period_to = ?,
			hours = ?, reason_claimer = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.exec(ctx).ExecContext(ctx, query,
		claim.ProjectID,
		claim.ProjectName,
		claim.Period.From.String(),
		claim.Period.To.String(),
		claim.Hours,
		claim.ReasonClaimer,
		claim.UpdatedAt,
		claim.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update claim", zap.String("claim_id", claim.ID), zap.Error(err))
		return fmt.Errorf("failed to update claim: %w", err)
	}
	return expectOneRow(result, claim.ID)
}

// UpdateStatus persists the status, approver reason and timestamp of a claim
func (r *ClaimRepository) UpdateStatus(ctx context.Context, claim *entity.Claim) error {
	query := `UPDATE claims SET status = ?, reason_approver = ?, updated_at = ? WHERE id = ?`

	result, err := r.exec(ctx).ExecContext(ctx, query,
		claim.Status,
		claim.ReasonApprover,
		claim.UpdatedAt,
		claim.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update claim status",
			zap.String("claim_id", claim.ID),
			zap.String("status", string(claim.Status)),
			zap.Error(err))
		return fmt.Errorf("failed to update claim status: %w", err)
	}
	return expectOneRow(result, claim.ID)
}

func (r *ClaimRepository) query(ctx context.Context, query string, args ...interface{}) ([]*entity.Claim, error) {
	rows, err := r.exec(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query claims", zap.Error(err))
		return nil, fmt.Errorf("failed to query claims: %w", err)
	}
	defer rows.Close()

	claims := []*entity.Claim{}
	for rows.Next() {
		claim, err := r.scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, claim)
	}
	return claims, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanClaim tolerates malformed period text: the date is left zero and the
// query engine reports it when a date filter is applied.
func (r *ClaimRepository) scanClaim(row rowScanner) (*entity.Claim, error) {
	var (
		claim    entity.Claim
		from, to string
	)
	err := row.Scan(
		&claim.ID,
		&claim.StaffID,
		&claim.StaffName,
		&claim.ProjectID,
		&claim.ProjectName,
		&from,
		&to,
		&claim.Hours,
		&claim.Status,
		&claim.ReasonClaimer,
		&claim.ReasonApprover,
		&claim.CreatedAt,
		&claim.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	claim.Period.From, _ = entity.ParseDate(from)
	claim.Period.To, _ = entity.ParseDate(to)
	return &claim, nil
}

func (r *ClaimRepository) exec(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFrom(ctx, r.db)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func expectOneRow(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("claim %s: %w", id, ErrNoRowsAffected)
	}
	return nil
}

// Verify interface compliance
var _ port.ClaimStore = (*ClaimRepository)(nil)
