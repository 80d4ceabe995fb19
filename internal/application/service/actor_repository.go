package service

import (
	"context"

	"github.com/garyjia/claimflow/internal/application/port"
	"github.com/garyjia/claimflow/internal/domain/entity"
)

// ActorRepository binds a ClaimService to one actor so in-process views can
// use it as their claims repository
type ActorRepository struct {
	svc   ClaimService
	actor entity.Actor
}

// NewActorRepository creates an ActorRepository
func NewActorRepository(svc ClaimService, actor entity.Actor) *ActorRepository {
	return &ActorRepository{svc: svc, actor: actor}
}

func (r *ActorRepository) List(ctx context.Context, filter port.ListFilter) ([]*entity.Claim, error) {
	return r.svc.List(ctx, r.actor, filter)
}

func (r *ActorRepository) Get(ctx context.Context, id string) (*entity.Claim, error) {
	return r.svc.Get(ctx, r.actor, id)
}

// Create submits on create when the claim arrives as Pending
func (r *ActorRepository) Create(ctx context.Context, claim *entity.Claim) (*entity.Claim, error) {
	return r.svc.Create(ctx, r.actor, CreateClaimInput{
		ClaimInput: ClaimInput{
			ProjectID:     claim.ProjectID,
			Period:        claim.Period,
			Hours:         claim.Hours,
			ReasonClaimer: claim.ReasonClaimer,
		},
		Submit: claim.Status == entity.StatusPending,
	})
}

func (r *ActorRepository) UpdateStatus(ctx context.Context, ids []string, status entity.Status, reason string) ([]*entity.Claim, error) {
	return r.svc.UpdateStatus(ctx, r.actor, ids, status, reason)
}

var _ port.ClaimRepository = (*ActorRepository)(nil)
