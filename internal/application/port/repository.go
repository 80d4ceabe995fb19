package port

import (
	"context"

	"github.com/garyjia/claimflow/internal/application/query"
	"github.com/garyjia/claimflow/internal/domain/entity"
)

// ListFilter narrows a claim listing. Statuses and StaffID are applied by the
// store; Criteria is the shareable query-string surface.
type ListFilter struct {
	Statuses []entity.Status
	StaffID  string
	Criteria query.Criteria
}

// ClaimRepository is the contract views and the orchestrator consume. It is
// satisfied in-process by the claim service and remotely by the HTTP client.
type ClaimRepository interface {
	List(ctx context.Context, filter ListFilter) ([]*entity.Claim, error)
	Get(ctx context.Context, id string) (*entity.Claim, error)
	Create(ctx context.Context, claim *entity.Claim) (*entity.Claim, error)
	// UpdateStatus is atomic from the caller's point of view
	UpdateStatus(ctx context.Context, ids []string, status entity.Status, reason string) ([]*entity.Claim, error)
}

// StoreFilter selects rows from the claim store
type StoreFilter struct {
	StaffID  string
	Statuses []entity.Status
	Limit    int
	Offset   int
}

// ClaimStore defines persistence operations for Claim
type ClaimStore interface {
	Create(ctx context.Context, claim *entity.Claim) error
	GetByID(ctx context.Context, id string) (*entity.Claim, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Claim, error)
	List(ctx context.Context, filter StoreFilter) ([]*entity.Claim, error)
	Update(ctx context.Context, claim *entity.Claim) error
	UpdateStatus(ctx context.Context, claim *entity.Claim) error
}

// HistoryRepository defines persistence operations for ClaimHistory
type HistoryRepository interface {
	Create(ctx context.Context, history *entity.ClaimHistory) error
	GetByClaimID(ctx context.Context, claimID string) ([]*entity.ClaimHistory, error)
}

// NotificationRepository defines persistence operations for inbox notifications
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, recipientID string, ids []int64) (int64, error)
}

// StaffRepository defines persistence operations for Staff
type StaffRepository interface {
	Create(ctx context.Context, staff *entity.Staff) error
	GetByID(ctx context.Context, id string) (*entity.Staff, error)
	List(ctx context.Context) ([]*entity.Staff, error)
}

// ProjectRepository defines persistence operations for Project
type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	List(ctx context.Context) ([]*entity.Project, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
