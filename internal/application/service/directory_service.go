package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/garyjia/claimflow/internal/application/port"
	"github.com/garyjia/claimflow/internal/domain/entity"
	"github.com/garyjia/claimflow/pkg/utils"
)

// DirectoryService manages staff and projects
type DirectoryService interface {
	CreateStaff(ctx context.Context, actor entity.Actor, staff *entity.Staff) error
	ListStaff(ctx context.Context, actor entity.Actor) ([]*entity.Staff, error)
	CreateProject(ctx context.Context, actor entity.Actor, project *entity.Project) error
	ListProjects(ctx context.Context) ([]*entity.Project, error)
}

type directoryServiceImpl struct {
	staff    port.StaffRepository
	projects port.ProjectRepository
	logger   Logger
}

// NewDirectoryService creates a new DirectoryService
func NewDirectoryService(staff port.StaffRepository, projects port.ProjectRepository, logger Logger) DirectoryService {
	return &directoryServiceImpl{staff: staff, projects: projects, logger: logger}
}

func (s *directoryServiceImpl) CreateStaff(ctx context.Context, actor entity.Actor, staff *entity.Staff) error {
	if actor.Role != entity.RoleAdministrator {
		return fmt.Errorf("%w: administrators only", ErrForbidden)
	}

	staff.Name = utils.SanitizeString(staff.Name)
	staff.Email = strings.TrimSpace(staff.Email)
	if staff.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := utils.ValidateEmail(staff.Email); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !staff.Role.IsValid() {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, staff.Role)
	}
	if staff.ID == "" {
		staff.ID = uuid.NewString()
	}

	if err := s.staff.Create(ctx, staff); err != nil {
		return err
	}
	s.logger.Info("Staff created", "staff_id", staff.ID, "role", staff.Role)
	return nil
}

func (s *directoryServiceImpl) ListStaff(ctx context.Context, actor entity.Actor) ([]*entity.Staff, error) {
	if actor.Role != entity.RoleAdministrator {
		return nil, fmt.Errorf("%w: administrators only", ErrForbidden)
	}
	return s.staff.List(ctx)
}

func (s *directoryServiceImpl) CreateProject(ctx context.Context, actor entity.Actor, project *entity.Project) error {
	if actor.Role != entity.RoleAdministrator {
		return fmt.Errorf("%w: administrators only", ErrForbidden)
	}

	project.Name = utils.SanitizeString(project.Name)
	project.Code = strings.ToUpper(strings.TrimSpace(project.Code))
	if project.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := utils.ValidateProjectCode(project.Code); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if project.ID == "" {
		project.ID = "p-" + strings.ToLower(project.Code)
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return err
	}
	s.logger.Info("Project created", "project_id", project.ID, "code", project.Code)
	return nil
}

// ListProjects is open to every role so claimers can pick a project
func (s *directoryServiceImpl) ListProjects(ctx context.Context) ([]*entity.Project, error) {
	return s.projects.List(ctx)
}
