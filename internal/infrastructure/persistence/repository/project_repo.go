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

// ProjectRepository implements port.ProjectRepository
type ProjectRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

// Create inserts a project
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}
	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx,
		`INSERT INTO projects (id, name, code, created_at) VALUES (?, ?, ?, ?)`,
		project.ID, project.Name, project.Code, project.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create project", zap.String("project_id", project.ID), zap.Error(err))
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetByID retrieves a project. A missing row yields (nil, nil).
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	var p entity.Project
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, name, code, created_at FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Code, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

// List returns all projects ordered by name
func (r *ProjectRepository) List(ctx context.Context) ([]*entity.Project, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx,
		`SELECT id, name, code, created_at FROM projects ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	out := []*entity.Project{}
	for rows.Next() {
		var p entity.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

var _ port.ProjectRepository = (*ProjectRepository)(nil)
