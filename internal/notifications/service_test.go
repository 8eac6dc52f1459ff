package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wayhaul/wayhaul-backend/internal/tracking"
	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
	"github.com/wayhaul/wayhaul-backend/pkg/enums"
	pkgerrors "github.com/wayhaul/wayhaul-backend/pkg/errors"
	paginationpkg "github.com/wayhaul/wayhaul-backend/pkg/pagination"
)

type fakeRepository struct {
	created       []models.Notification
	createErr     error
	listFn        func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error)
	markReadFn    func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error)
	markAllReadFn func(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, notification *models.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *notification)
	return nil
}

func (f *fakeRepository) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, userID, notificationID, now)
	}
	return notificationMarkResult{}, nil
}

func (f *fakeRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, userID, now)
	}
	return 0, nil
}

func newServiceWithRepo(repo Repository) Service {
	svc, _ := NewService(repo)
	return svc
}

func TestService_ListNotifications(t *testing.T) {
	first := models.Notification{ID: uuid.New(), CreatedAt: time.Now().Add(-time.Hour)}
	second := models.Notification{ID: uuid.New(), CreatedAt: time.Now()}

	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
			if params.Limit != 1 {
				t.Fatalf("unexpected limit %d", params.Limit)
			}
			return []models.Notification{first}, &paginationpkg.Cursor{CreatedAt: second.CreatedAt, ID: second.ID}, nil
		},
	}

	svc := newServiceWithRepo(repo)
	result, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Limit: 1})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(result.Items))
	}
	if result.Cursor == "" {
		t.Fatal("expected cursor for next page")
	}
	decoded, err := paginationpkg.ParseCursor(result.Cursor)
	if err != nil {
		t.Fatalf("invalid cursor %q: %v", result.Cursor, err)
	}
	if decoded.ID != second.ID {
		t.Fatalf("expected cursor id %s got %s", second.ID, decoded.ID)
	}
}

func TestService_ListNotificationsInvalidCursor(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})
	_, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Cursor: "bad"})
	if err == nil {
		t.Fatal("expected error for invalid cursor")
	}
	errCode := pkgerrors.As(err).Code()
	if errCode != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %s", errCode)
	}
}

func TestService_MarkRead(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
			return notificationMarkResult{Found: true, Updated: true}, nil
		},
	}
	svc := newServiceWithRepo(repo)
	if err := svc.MarkRead(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("unexpected mark read error: %v", err)
	}
}

func TestService_MarkReadNotFound(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
			return notificationMarkResult{Found: false}, nil
		},
	}
	svc := newServiceWithRepo(repo)
	if err := svc.MarkRead(context.Background(), uuid.New(), uuid.New()); err == nil {
		t.Fatal("expected not found error")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestService_MarkAllRead(t *testing.T) {
	repo := &fakeRepository{
		markAllReadFn: func(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
			return 3, nil
		},
	}
	svc := newServiceWithRepo(repo)
	count, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected mark all read error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 updated rows, got %d", count)
	}
}

func TestService_MarkAllReadError(t *testing.T) {
	repo := &fakeRepository{
		markAllReadFn: func(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
			return 0, errors.New("boom")
		},
	}
	svc := newServiceWithRepo(repo)
	if _, err := svc.MarkAllRead(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error")
	}
}

func TestService_DispatchCreatesRowPerRecipient(t *testing.T) {
	repo := &fakeRepository{}
	svc := newServiceWithRepo(repo)

	owner := uuid.New()
	requester := uuid.New()
	result := &tracking.RecordResult{
		Update: &models.StatusUpdate{
			EntityType: enums.StatusEntityRequest,
			EntityID:   uuid.New(),
			Status:     "purchased",
		},
		Options: tracking.DispatchOptions{NotifyUsers: true},
	}

	created, err := svc.Dispatch(context.Background(), result, []uuid.UUID{owner, requester, uuid.Nil})
	if err != nil {
		t.Fatalf("unexpected dispatch error: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(created))
	}
	if repo.created[0].UserID != owner || repo.created[1].UserID != requester {
		t.Fatal("notifications not scoped to the given recipients")
	}
	if repo.created[0].Type != enums.NotificationTypeRequestUpdate {
		t.Fatalf("expected request_update type, got %s", repo.created[0].Type)
	}
}

func TestService_DispatchSkipsWhenNotifyUnset(t *testing.T) {
	repo := &fakeRepository{}
	svc := newServiceWithRepo(repo)

	result := &tracking.RecordResult{
		Update:  &models.StatusUpdate{EntityType: enums.StatusEntityTrip, Status: "traveling"},
		Options: tracking.DispatchOptions{NotifyUsers: false, SendRealTimeUpdates: true},
	}

	created, err := svc.Dispatch(context.Background(), result, []uuid.UUID{uuid.New()})
	if err != nil {
		t.Fatalf("unexpected dispatch error: %v", err)
	}
	if len(created) != 0 || len(repo.created) != 0 {
		t.Fatal("expected no notifications when notify_users is unset")
	}
}

func TestService_DispatchTripUpdateType(t *testing.T) {
	repo := &fakeRepository{}
	svc := newServiceWithRepo(repo)

	result := &tracking.RecordResult{
		Update:  &models.StatusUpdate{EntityType: enums.StatusEntityTrip, Status: "at_destination"},
		Options: tracking.DispatchOptions{NotifyUsers: true},
	}

	created, err := svc.Dispatch(context.Background(), result, []uuid.UUID{uuid.New()})
	if err != nil {
		t.Fatalf("unexpected dispatch error: %v", err)
	}
	if created[0].Type != enums.NotificationTypeTripUpdate {
		t.Fatalf("expected trip_update type, got %s", created[0].Type)
	}
}

func TestService_DispatchRequiresUpdate(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})
	if _, err := svc.Dispatch(context.Background(), nil, []uuid.UUID{uuid.New()}); err == nil {
		t.Fatal("expected error for nil result")
	}
}
