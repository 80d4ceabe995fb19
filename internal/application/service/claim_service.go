package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/claimflow/internal/application/dispatcher"
	"github.com/garyjia/claimflow/internal/application/port"
	"github.com/garyjia/claimflow/internal/application/query"
	"github.com/garyjia/claimflow/internal/application/workflow"
	"github.com/garyjia/claimflow/internal/domain/entity"
	"github.com/garyjia/claimflow/internal/domain/event"
	domainwf "github.com/garyjia/claimflow/internal/domain/workflow"
	"github.com/garyjia/claimflow/pkg/utils"
)

// ClaimInput carries the claimer-editable fields of a claim
type ClaimInput struct {
	ProjectID     string        `json:"projectId"`
	Period        entity.Period `json:"period"`
	Hours         float64       `json:"hours"`
	ReasonClaimer string        `json:"reasonClaimer"`
}

// CreateClaimInput is ClaimInput plus submit-on-create
type CreateClaimInput struct {
	ClaimInput
	Submit bool `json:"submit"`
}

// ClaimService is the authoritative claims repository
type ClaimService interface {
	Create(ctx context.Context, actor entity.Actor, input CreateClaimInput) (*entity.Claim, error)
	UpdateDraft(ctx context.Context, actor entity.Actor, id string, input ClaimInput) (*entity.Claim, error)
	Get(ctx context.Context, actor entity.Actor, id string) (*entity.Claim, error)
	List(ctx context.Context, actor entity.Actor, filter port.ListFilter) ([]*entity.Claim, error)
	UpdateStatus(ctx context.Context, actor entity.Actor, ids []string, target entity.Status, reason string) ([]*entity.Claim, error)
	History(ctx context.Context, actor entity.Actor, id string) ([]*entity.ClaimHistory, error)
}

type claimServiceImpl struct {
	claims     port.ClaimStore
	history    port.HistoryRepository
	projects   port.ProjectRepository
	txManager  port.TransactionManager
	engine     *workflow.Engine
	query      *query.Engine
	dispatcher dispatcher.Dispatcher
	logger     Logger
	now        func() time.Time
}

// NewClaimService creates a new ClaimService
func NewClaimService(
	claims port.ClaimStore,
	history port.HistoryRepository,
	projects port.ProjectRepository,
	txManager port.TransactionManager,
	engine *workflow.Engine,
	queryEngine *query.Engine,
	d dispatcher.Dispatcher,
	logger Logger,
) ClaimService {
	return &claimServiceImpl{
		claims:     claims,
		history:    history,
		projects:   projects,
		txManager:  txManager,
		engine:     engine,
		query:      queryEngine,
		dispatcher: d,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new claim owned by the actor, as Draft or submitted as Pending
func (s *claimServiceImpl) Create(ctx context.Context, actor entity.Actor, input CreateClaimInput) (*entity.Claim, error) {
	if actor.Role != entity.RoleClaimer {
		return nil, fmt.Errorf("%w: only claimers create claims", ErrForbidden)
	}

	input.ClaimInput = normalize(input.ClaimInput)
	if err := validate(input.ClaimInput); err != nil {
		return nil, err
	}
	if input.Submit && input.ReasonClaimer == "" {
		return nil, fmt.Errorf("%w: reasonClaimer is required to submit", ErrValidation)
	}

	status := entity.StatusDraft
	if input.Submit {
		status = entity.StatusPending
	}

	now := s.now()
	claim := &entity.Claim{
		ID:            uuid.NewString(),
		StaffID:       actor.ID,
		StaffName:     actor.DisplayName,
		ProjectID:     input.ProjectID,
		Period:        input.Period,
		Hours:         input.Hours,
		Status:        status,
		ReasonClaimer: input.ReasonClaimer,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		project, err := s.resolveProject(txCtx, input.ProjectID)
		if err != nil {
			return err
		}
		claim.ProjectName = project.Name

		if err := s.claims.Create(txCtx, claim); err != nil {
			return fmt.Errorf("create claim: %w", err)
		}

		return s.history.Create(txCtx, &entity.ClaimHistory{
			ClaimID:   claim.ID,
			ActorID:   actor.ID,
			ActorRole: actor.Role,
			NewStatus: claim.Status,
			Reason:    claim.ReasonClaimer,
			Timestamp: now,
		})
	})
	if err != nil {
		s.logger.Error("Failed to create claim", "error", err, "staff_id", actor.ID)
		return nil, err
	}

	s.dispatcher.DispatchAsync(ctx, event.NewClaimCreated(claim, actor))
	s.logger.Info("Claim created", "claim_id", claim.ID, "status", claim.Status, "staff_id", actor.ID)
	return claim, nil
}

// UpdateDraft edits the owner's claim while it is still a draft
func (s *claimServiceImpl) UpdateDraft(ctx context.Context, actor entity.Actor, id string, input ClaimInput) (*entity.Claim, error) {
	if actor.Role != entity.RoleClaimer {
		return nil, fmt.Errorf("%w: only claimers edit claims", ErrForbidden)
	}

	input = normalize(input)
	if err := validate(input); err != nil {
		return nil, err
	}

	var claim *entity.Claim
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		claim, err = s.visibleClaim(txCtx, actor, id)
		if err != nil {
			return err
		}
		if claim.Status != entity.StatusDraft {
			return fmt.Errorf("%w: claim %s is %s, only drafts can be edited", ErrValidation, id, claim.Status)
		}

		project, err := s.resolveProject(txCtx, input.ProjectID)
		if err != nil {
			return err
		}

		claim.ProjectID = project.ID
		claim.ProjectName = project.Name
		claim.Period = input.Period
		claim.Hours = input.Hours
		claim.ReasonClaimer = input.ReasonClaimer
		claim.UpdatedAt = s.now()

		return s.claims.Update(txCtx, claim)
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeClaimUpdated, claim.ID, actor.ID, nil, ""))
	return claim, nil
}

// Get returns a claim visible to the actor
func (s *claimServiceImpl) Get(ctx context.Context, actor entity.Actor, id string) (*entity.Claim, error) {
	return s.visibleClaim(ctx, actor, id)
}

// List returns the claims visible to the actor narrowed by filter
func (s *claimServiceImpl) List(ctx context.Context, actor entity.Actor, filter port.ListFilter) ([]*entity.Claim, error) {
	sf := port.StoreFilter{StaffID: filter.StaffID, Statuses: filter.Statuses}
	if actor.Role == entity.RoleClaimer {
		sf.StaffID = actor.ID
	}

	claims, err := s.claims.List(ctx, sf)
	if err != nil {
		s.logger.Error("Failed to list claims", "error", err, "actor_id", actor.ID)
		return nil, err
	}

	return s.query.Filter(claims, filter.Criteria, nil), nil
}

// UpdateStatus re-validates the batch against stored statuses and applies it
// in one transaction. Either every claim moves or none does.
func (s *claimServiceImpl) UpdateStatus(
	ctx context.Context,
	actor entity.Actor,
	ids []string,
	target entity.Status,
	reason string,
) ([]*entity.Claim, error) {
	if len(ids) == 0 {
		return []*entity.Claim{}, nil
	}
	reason = utils.SanitizeString(reason)
	if workflow.ReasonRequired(target) && reason == "" {
		return nil, fmt.Errorf("%w: moving to %s", domainwf.ErrReasonRequired, target)
	}

	var (
		req     *workflow.TransitionRequest
		updated []*entity.Claim
	)
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		stored, err := s.claims.GetByIDs(txCtx, ids)
		if err != nil {
			return err
		}
		if actor.Role == entity.RoleClaimer {
			for _, c := range stored {
				if c.StaffID != actor.ID {
					return fmt.Errorf("%w: claim %s belongs to another staff member", ErrForbidden, c.ID)
				}
			}
		}

		idx := workflow.NewClaimIndex(stored)
		req, err = s.engine.ApplyTransition(txCtx, idx, ids, target, actor, reason)
		switch {
		case errors.Is(err, workflow.ErrUnknownClaim):
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		case errors.Is(err, workflow.ErrClaimerReasonRequired):
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
		if err != nil {
			return err
		}

		now := s.now()
		for _, id := range req.IDs {
			claim := idx[id]
			req.ApplyTo(claim, now)
			if err := s.claims.UpdateStatus(txCtx, claim); err != nil {
				return err
			}
			if err := s.history.Create(txCtx, &entity.ClaimHistory{
				ClaimID:        id,
				ActorID:        actor.ID,
				ActorRole:      actor.Role,
				PreviousStatus: req.Previous[id],
				NewStatus:      claim.Status,
				Reason:         req.Reason,
				Timestamp:      now,
			}); err != nil {
				return fmt.Errorf("create history: %w", err)
			}
			updated = append(updated, claim)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Status update rejected", "error", err, "target", target, "actor_id", actor.ID, "count", len(ids))
		return nil, err
	}

	correlationID := uuid.NewString()
	for _, claim := range updated {
		s.dispatcher.DispatchAsync(ctx, event.NewStatusChanged(claim, req.Previous[claim.ID], actor, correlationID))
	}

	s.logger.Info("Claims transitioned", "target", target, "count", len(updated), "actor_id", actor.ID, "correlation_id", correlationID)
	if updated == nil {
		updated = []*entity.Claim{}
	}
	return updated, nil
}

// History returns the status trail of a claim visible to the actor
func (s *claimServiceImpl) History(ctx context.Context, actor entity.Actor, id string) ([]*entity.ClaimHistory, error) {
	if _, err := s.visibleClaim(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.history.GetByClaimID(ctx, id)
}

// visibleClaim hides other staff members' claims from claimers
func (s *claimServiceImpl) visibleClaim(ctx context.Context, actor entity.Actor, id string) (*entity.Claim, error) {
	claim, err := s.claims.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if claim == nil || (actor.Role == entity.RoleClaimer && claim.StaffID != actor.ID) {
		return nil, fmt.Errorf("%w: claim %s", ErrNotFound, id)
	}
	return claim, nil
}

func (s *claimServiceImpl) resolveProject(ctx context.Context, id string) (*entity.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("%w: unknown project %q", ErrValidation, id)
	}
	return project, nil
}

func normalize(in ClaimInput) ClaimInput {
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.ReasonClaimer = utils.SanitizeString(in.ReasonClaimer)
	return in
}

func validate(in ClaimInput) error {
	if in.ProjectID == "" {
		return fmt.Errorf("%w: projectId is required", ErrValidation)
	}
	if err := utils.ValidateHours(in.Hours); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := in.Period.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
