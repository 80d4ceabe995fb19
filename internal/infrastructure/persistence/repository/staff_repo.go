package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/claimflow/internal/application/port"
	"github.com/garyjia/claimflow/internal/domain/entity"
	"github.com/garyjia/claimflow/internal/infrastructure/persistence/sqlite"
)

// StaffRepository implements port.StaffRepository
type StaffRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *sql.DB, logger *zap.Logger) *StaffRepository {
	return &StaffRepository{db: db, logger: logger}
}

// Create inserts a staff member
func (r *StaffRepository) Create(ctx context.Context, staff *entity.Staff) error {
	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = time.Now().UTC()
	}
	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx,
		`INSERT INTO staff (id, name, email, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		staff.ID, staff.Name, staff.Email, staff.Role, staff.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create staff", zap.String("staff_id", staff.ID), zap.Error(err))
		return fmt.Errorf("failed to create staff: %w", err)
	}
	return nil
}

// GetByID retrieves a staff member. A missing row yields (nil, nil).
func (r *StaffRepository) GetByID(ctx context.Context, id string) (*entity.Staff, error) {
	var s entity.Staff
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, name, email, role, created_at FROM staff WHERE id = ?`, id,
	).Scan(&s.ID, &s.Name, &s.Email, &s.Role, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return &s, nil
}

// List returns all staff ordered by name
func (r *StaffRepository) List(ctx context.Context) ([]*entity.Staff, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx,
		`SELECT id, name, email, role, created_at FROM staff ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	out := []*entity.Staff{}
	for rows.Next() {
		var s entity.Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Role, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

var _ port.StaffRepository = (*StaffRepository)(nil)
