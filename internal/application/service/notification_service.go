package service

import (
	"context"
	"fmt"

	"github.com/garyjia/claimflow/internal/application/dispatcher"
	"github.com/garyjia/claimflow/internal/application/port"
	"github.com/garyjia/claimflow/internal/domain/entity"
	"github.com/garyjia/claimflow/internal/domain/event"
)

// NotificationService keeps claim owners' inboxes in step with status changes
type NotificationService interface {
	// Register subscribes the service to claim events
	Register(d dispatcher.Dispatcher)
	List(ctx context.Context, actor entity.Actor, unreadOnly bool) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, actor entity.Actor, ids []int64) (int64, error)
}

type notificationServiceImpl struct {
	repo   port.NotificationRepository
	logger Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo port.NotificationRepository, logger Logger) NotificationService {
	return &notificationServiceImpl{repo: repo, logger: logger}
}

func (s *notificationServiceImpl) Register(d dispatcher.Dispatcher) {
	d.Subscribe(event.TypeClaimStatusChanged, "notify-claim-owner", s.onStatusChanged)
}

func (s *notificationServiceImpl) onStatusChanged(ctx context.Context, evt *event.Event) error {
	owner := evt.GetPayloadString(event.KeyStaffID)
	if owner == "" || owner == evt.ActorID {
		return nil
	}

	n := &entity.Notification{
		RecipientID: owner,
		ClaimID:     evt.ClaimID,
		Message:     statusMessage(evt),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	s.logger.Info("Owner notified", "claim_id", evt.ClaimID, "recipient_id", owner, "notification_id", n.ID)
	return nil
}

func statusMessage(evt *event.Event) string {
	msg := fmt.Sprintf("Claim %s moved from %s to %s",
		evt.ClaimID, evt.Status(event.KeyPreviousStatus), evt.Status(event.KeyNewStatus))
	if reason := evt.GetPayloadString(event.KeyReason); reason != "" {
		msg += ": " + reason
	}
	return msg
}

func (s *notificationServiceImpl) List(ctx context.Context, actor entity.Actor, unreadOnly bool) ([]*entity.Notification, error) {
	return s.repo.ListByRecipient(ctx, actor.ID, unreadOnly)
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, actor entity.Actor, ids []int64) (int64, error) {
	n, err := s.repo.MarkRead(ctx, actor.ID, ids)
	if err != nil {
		s.logger.Error("Failed to mark notifications read", "error", err, "recipient_id", actor.ID)
		return 0, err
	}
	return n, nil
}
