package tracking

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
	"github.com/wayhaul/wayhaul-backend/pkg/enums"
	pkgerrors "github.com/wayhaul/wayhaul-backend/pkg/errors"
	"github.com/wayhaul/wayhaul-backend/pkg/pagination"
	"github.com/wayhaul/wayhaul-backend/pkg/types"
)

const (
	// StatusPhotoConfirmation marks an entry holding delivery photo proof.
	StatusPhotoConfirmation = "photo_confirmation"
	// StatusReceiptConfirmation marks an entry holding a purchase receipt.
	StatusReceiptConfirmation = "receipt_confirmation"
)

// DispatchOptions tells the notifier what to do with a freshly appended
// record. The tracker itself never dispatches anything.
type DispatchOptions struct {
	NotifyUsers         bool `json:"notify_users"`
	SendRealTimeUpdates bool `json:"send_real_time_updates"`
}

// RecordInput carries one status log entry plus its dispatch options.
type RecordInput struct {
	EntityType enums.StatusEntityType
	EntityID   uuid.UUID
	Status     string
	Options    DispatchOptions
	PhotoURL   *string
	ReceiptURL *string
	Metadata   types.JSONMap
}

// RecordResult returns the appended record together with the options the
// caller should hand to the notifier.
type RecordResult struct {
	Update  *models.StatusUpdate
	Options DispatchOptions
}

// Service defines the append-only status tracking operations.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*RecordResult, error)
	AddPhotoConfirmation(ctx context.Context, entityType enums.StatusEntityType, entityID uuid.UUID, photoURL string, opts *DispatchOptions) (*RecordResult, error)
	AddReceiptConfirmation(ctx context.Context, entityType enums.StatusEntityType, entityID uuid.UUID, receiptURL string, metadata types.JSONMap) (*RecordResult, error)
	History(ctx context.Context, entityType enums.StatusEntityType, entityID uuid.UUID, window pagination.Window) ([]models.StatusUpdate, error)
	Latest(ctx context.Context, entityType enums.StatusEntityType, entityID uuid.UUID) (*models.StatusUpdate, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a tracking service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tracking repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) (*RecordResult, error) {
	violations := map[string]string{}

	if !input.EntityType.IsValid() {
		violations["entity_type"] = "entity type must be trip or request"
	}
	if input.EntityID == uuid.Nil {
		violations["entity_id"] = "entity id is required"
	}
	if input.Status == "" {
		violations["status"] = "status is required"
	}
	if input.PhotoURL != nil {
		if err := validateAttachmentURL(*input.PhotoURL); err != nil {
			violations["photo_url"] = err.Error()
		}
	}
	if input.ReceiptURL != nil {
		if err := validateAttachmentURL(*input.ReceiptURL); err != nil {
			violations["receipt_url"] = err.Error()
		}
	}
	if len(violations) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status update").WithDetails(violations)
	}

	update := &models.StatusUpdate{
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		Status:     input.Status,
		Timestamp:  s.now().UTC(),
		PhotoURL:   input.PhotoURL,
		ReceiptURL: input.ReceiptURL,
		Metadata:   input.Metadata,
	}

	appended, err := s.repo.Append(ctx, update)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status update")
	}
	return &RecordResult{Update: appended, Options: input.Options}, nil
}

func (s *service) AddPhotoConfirmation(ctx context.Context, entityType enums.StatusEntityType, entityID uuid.UUID, photoURL string, opts *DispatchOptions) (*RecordResult, error) {
	options := DispatchOptions{NotifyUsers: true}
	if opts != nil {
		options = *opts
	}
	return s.Record(ctx, RecordInput{
		EntityType: entityType,
		EntityID:   entityID,
		Status:     StatusPhotoConfirmation,
		PhotoURL:   &photoURL,
		Options:    options,
	})
}

func (s *service) AddReceiptConfirmation(ctx context.Context, entityType enums.StatusEntityType, entityID uuid.UUID, receiptURL string, metadata types.JSONMap) (*RecordResult, error) {
	return s.Record(ctx, RecordInput{
		EntityType: entityType,
		EntityID:   entityID,
		Status:     StatusReceiptConfirmation,
		ReceiptURL: &receiptURL,
		Metadata:   metadata,
		Options:    DispatchOptions{NotifyUsers: true},
	})
}

func (s *service) History(ctx context.Context, entityType enums.StatusEntityType, entityID uuid.UUID, window pagination.Window) ([]models.StatusUpdate, error) {
	if !entityType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entity type must be trip or request")
	}
	if entityID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entity id is required")
	}

	history, err := s.repo.History(ctx, entityType, entityID, window)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load status history")
	}
	return history, nil
}

func (s *service) Latest(ctx context.Context, entityType enums.StatusEntityType, entityID uuid.UUID) (*models.StatusUpdate, error) {
	if !entityType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entity type must be trip or request")
	}
	if entityID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entity id is required")
	}

	latest, err := s.repo.Latest(ctx, entityType, entityID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no status updates recorded")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest status")
	}
	return latest, nil
}

func validateAttachmentURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("malformed url")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("url host is required")
	}
	return nil
}
