package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wayhaul/wayhaul-backend/internal/tracking"
	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
	"github.com/wayhaul/wayhaul-backend/pkg/enums"
	pkgerrors "github.com/wayhaul/wayhaul-backend/pkg/errors"
	"github.com/wayhaul/wayhaul-backend/pkg/pagination"
)

// Service defines notification list/read operations plus the status fan-out.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Dispatch(ctx context.Context, result *tracking.RecordResult, recipients []uuid.UUID) ([]models.Notification, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// ListParams configures pagination for notifications.
type ListParams struct {
	UserID     uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := listNotificationsParams{
		UserID:     params.UserID,
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  rows,
		Cursor: cursor,
	}, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, userID, notificationID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	count, err := s.repo.MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

// Dispatch persists one notification row per recipient for a recorded status
// update. The tracker never writes notifications itself; callers hand its
// result here together with the user ids that should hear about it. Updates
// recorded with NotifyUsers unset produce no rows.
func (s *service) Dispatch(ctx context.Context, result *tracking.RecordResult, recipients []uuid.UUID) ([]models.Notification, error) {
	if result == nil || result.Update == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status update required")
	}
	if !result.Options.NotifyUsers {
		return nil, nil
	}

	update := result.Update
	created := make([]models.Notification, 0, len(recipients))
	for _, userID := range recipients {
		if userID == uuid.Nil {
			continue
		}
		notification := models.Notification{
			UserID:  userID,
			Type:    notificationTypeFor(update.EntityType),
			Title:   titleFor(update.EntityType),
			Message: fmt.Sprintf("Status changed to %q.", update.Status),
		}
		if err := s.repo.Create(ctx, &notification); err != nil {
			return created, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
		}
		created = append(created, notification)
	}
	return created, nil
}

func notificationTypeFor(entityType enums.StatusEntityType) enums.NotificationType {
	if entityType == enums.StatusEntityRequest {
		return enums.NotificationTypeRequestUpdate
	}
	return enums.NotificationTypeTripUpdate
}

func titleFor(entityType enums.StatusEntityType) string {
	if entityType == enums.StatusEntityRequest {
		return "Delivery request update"
	}
	return "Trip update"
}
