package tracking

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
	"github.com/wayhaul/wayhaul-backend/pkg/enums"
	pkgerrors "github.com/wayhaul/wayhaul-backend/pkg/errors"
	"github.com/wayhaul/wayhaul-backend/pkg/pagination"
	"github.com/wayhaul/wayhaul-backend/pkg/types"
)

type stubTrackingRepo struct {
	appended []models.StatusUpdate
	history  []models.StatusUpdate
	latest   *models.StatusUpdate
}

func (s *stubTrackingRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubTrackingRepo) Append(ctx context.Context, update *models.StatusUpdate) (*models.StatusUpdate, error) {
	if update.ID == uuid.Nil {
		update.ID = uuid.New()
	}
	s.appended = append(s.appended, *update)
	return update, nil
}

func (s *stubTrackingRepo) History(ctx context.Context, entityType enums.StatusEntityType, entityID uuid.UUID, window pagination.Window) ([]models.StatusUpdate, error) {
	return s.history, nil
}

func (s *stubTrackingRepo) Latest(ctx context.Context, entityType enums.StatusEntityType, entityID uuid.UUID) (*models.StatusUpdate, error) {
	if s.latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.latest, nil
}

func TestRecordAppendsAndReturnsOptions(t *testing.T) {
	repo := &stubTrackingRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.Record(context.Background(), RecordInput{
		EntityType: enums.StatusEntityTrip,
		EntityID:   uuid.New(),
		Status:     "traveling",
		Options:    DispatchOptions{NotifyUsers: true, SendRealTimeUpdates: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Update.Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be stamped")
	}
	if !result.Options.NotifyUsers || !result.Options.SendRealTimeUpdates {
		t.Fatalf("expected dispatch options passed through")
	}
	if len(repo.appended) != 1 {
		t.Fatalf("expected one appended record, got %d", len(repo.appended))
	}
}

func TestRecordRejectsUnknownEntityType(t *testing.T) {
	svc, _ := NewService(&stubTrackingRepo{})

	_, err := svc.Record(context.Background(), RecordInput{
		EntityType: enums.StatusEntityType("vehicle"),
		EntityID:   uuid.New(),
		Status:     "moving",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRecordValidatesAttachmentURLs(t *testing.T) {
	svc, _ := NewService(&stubTrackingRepo{})

	bad := "ftp://example.com/receipt.png"
	_, err := svc.Record(context.Background(), RecordInput{
		EntityType: enums.StatusEntityRequest,
		EntityID:   uuid.New(),
		Status:     "purchased",
		ReceiptURL: &bad,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for ftp url, got %v", err)
	}

	hostless := "https:///receipt.png"
	_, err = svc.Record(context.Background(), RecordInput{
		EntityType: enums.StatusEntityRequest,
		EntityID:   uuid.New(),
		Status:     "purchased",
		PhotoURL:   &hostless,
	})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for hostless url, got %v", err)
	}
}

func TestAddPhotoConfirmation(t *testing.T) {
	repo := &stubTrackingRepo{}
	svc, _ := NewService(repo)

	result, err := svc.AddPhotoConfirmation(context.Background(), enums.StatusEntityRequest, uuid.New(), "https://cdn.wayhaul.io/photos/abc.jpg", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Update.Status != StatusPhotoConfirmation {
		t.Fatalf("expected photo confirmation status, got %s", result.Update.Status)
	}
	if result.Update.PhotoURL == nil {
		t.Fatalf("expected photo url stored")
	}
	if !result.Options.NotifyUsers {
		t.Fatalf("expected notify by default when no options given")
	}
}

func TestAddPhotoConfirmationHonorsCallerOptions(t *testing.T) {
	svc, _ := NewService(&stubTrackingRepo{})

	result, err := svc.AddPhotoConfirmation(context.Background(), enums.StatusEntityRequest, uuid.New(), "https://cdn.wayhaul.io/photos/abc.jpg", &DispatchOptions{
		NotifyUsers:         false,
		SendRealTimeUpdates: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Options.NotifyUsers {
		t.Fatalf("expected caller option to suppress notification")
	}
	if !result.Options.SendRealTimeUpdates {
		t.Fatalf("expected caller option to request real-time updates")
	}
}

func TestAddReceiptConfirmation(t *testing.T) {
	repo := &stubTrackingRepo{}
	svc, _ := NewService(repo)

	result, err := svc.AddReceiptConfirmation(context.Background(), enums.StatusEntityRequest, uuid.New(), "https://cdn.wayhaul.io/receipts/xyz.pdf", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Update.Status != StatusReceiptConfirmation {
		t.Fatalf("expected receipt confirmation status, got %s", result.Update.Status)
	}
	if result.Update.ReceiptURL == nil {
		t.Fatalf("expected receipt url stored")
	}
}

func TestAddReceiptConfirmationStoresMetadata(t *testing.T) {
	svc, _ := NewService(&stubTrackingRepo{})

	result, err := svc.AddReceiptConfirmation(context.Background(), enums.StatusEntityRequest, uuid.New(), "https://cdn.wayhaul.io/receipts/xyz.pdf", types.JSONMap{
		"purchase_amount": "16.60",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Update.Metadata == nil {
		t.Fatalf("expected receipt metadata stored")
	}
	if got := result.Update.Metadata["purchase_amount"]; got != "16.60" {
		t.Fatalf("expected purchase amount in metadata, got %v", got)
	}
}

func TestLatestWithoutHistoryIsNotFound(t *testing.T) {
	svc, _ := NewService(&stubTrackingRepo{})

	_, err := svc.Latest(context.Background(), enums.StatusEntityTrip, uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
