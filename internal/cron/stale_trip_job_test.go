package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wayhaul/wayhaul-backend/internal/notifications"
	"github.com/wayhaul/wayhaul-backend/internal/tracking"
	"github.com/wayhaul/wayhaul-backend/internal/trips"
	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
	"github.com/wayhaul/wayhaul-backend/pkg/enums"
	"github.com/wayhaul/wayhaul-backend/pkg/logger"
	"github.com/wayhaul/wayhaul-backend/pkg/pagination"
	"github.com/wayhaul/wayhaul-backend/pkg/types"
)

type runnerStub struct{}

func (runnerStub) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubTripsRepo struct {
	stale        []models.Trip
	findByID     func(id uuid.UUID) (*models.Trip, error)
	updated      []uuid.UUID
	updateStatus []enums.TripStatus
	updateErr    map[uuid.UUID]error
}

func (s *stubTripsRepo) WithTx(tx *gorm.DB) trips.Repository { return s }

func (s *stubTripsRepo) Create(ctx context.Context, trip *models.Trip) (*models.Trip, error) {
	panic("unexpected Create")
}

func (s *stubTripsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Trip, error) {
	return s.findByID(id)
}

func (s *stubTripsRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*trips.TripList, error) {
	panic("unexpected ListByOwner")
}

func (s *stubTripsRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TripStatus) error {
	if err := s.updateErr[id]; err != nil {
		return err
	}
	s.updated = append(s.updated, id)
	s.updateStatus = append(s.updateStatus, status)
	return nil
}

func (s *stubTripsRepo) ReserveCapacity(ctx context.Context, id uuid.UUID, units int) (bool, error) {
	panic("unexpected ReserveCapacity")
}

func (s *stubTripsRepo) ReleaseCapacity(ctx context.Context, id uuid.UUID, units int) error {
	panic("unexpected ReleaseCapacity")
}

func (s *stubTripsRepo) FindAnnouncedDepartedBefore(ctx context.Context, cutoff time.Time) ([]models.Trip, error) {
	return s.stale, nil
}

type stubTracker struct {
	recorded []tracking.RecordInput
}

func (s *stubTracker) Record(ctx context.Context, input tracking.RecordInput) (*tracking.RecordResult, error) {
	s.recorded = append(s.recorded, input)
	return &tracking.RecordResult{
		Update: &models.StatusUpdate{
			EntityType: input.EntityType,
			EntityID:   input.EntityID,
			Status:     input.Status,
		},
		Options: input.Options,
	}, nil
}

func (s *stubTracker) AddPhotoConfirmation(ctx context.Context, entityType enums.StatusEntityType, entityID uuid.UUID, photoURL string, opts *tracking.DispatchOptions) (*tracking.RecordResult, error) {
	panic("unexpected AddPhotoConfirmation")
}

func (s *stubTracker) AddReceiptConfirmation(ctx context.Context, entityType enums.StatusEntityType, entityID uuid.UUID, receiptURL string, metadata types.JSONMap) (*tracking.RecordResult, error) {
	panic("unexpected AddReceiptConfirmation")
}

func (s *stubTracker) History(ctx context.Context, entityType enums.StatusEntityType, entityID uuid.UUID, window pagination.Window) ([]models.StatusUpdate, error) {
	panic("unexpected History")
}

func (s *stubTracker) Latest(ctx context.Context, entityType enums.StatusEntityType, entityID uuid.UUID) (*models.StatusUpdate, error) {
	panic("unexpected Latest")
}

type stubNotifier struct {
	recipients [][]uuid.UUID
}

func (s *stubNotifier) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	panic("unexpected List")
}

func (s *stubNotifier) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	panic("unexpected MarkRead")
}

func (s *stubNotifier) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	panic("unexpected MarkAllRead")
}

func (s *stubNotifier) Dispatch(ctx context.Context, result *tracking.RecordResult, recipients []uuid.UUID) ([]models.Notification, error) {
	s.recipients = append(s.recipients, recipients)
	return nil, nil
}

func newStaleTripJob(t *testing.T, repo *stubTripsRepo, tracker *stubTracker, notifier *stubNotifier) Job {
	t.Helper()
	job, err := NewStaleTripJob(StaleTripJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		DB:       runnerStub{},
		Trips:    repo,
		Tracker:  tracker,
		Notifier: notifier,
		Grace:    24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	return job
}

func TestStaleTripJobCancelsAndNotifies(t *testing.T) {
	owner := uuid.New()
	stale := models.Trip{ID: uuid.New(), OwnerID: owner, Status: enums.TripStatusAnnounced}
	repo := &stubTripsRepo{
		stale: []models.Trip{stale},
		findByID: func(id uuid.UUID) (*models.Trip, error) {
			copied := stale
			return &copied, nil
		},
	}
	tracker := &stubTracker{}
	notifier := &stubNotifier{}

	job := newStaleTripJob(t, repo, tracker, notifier)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(repo.updated) != 1 || repo.updated[0] != stale.ID {
		t.Fatalf("expected trip %s cancelled, got %v", stale.ID, repo.updated)
	}
	if repo.updateStatus[0] != enums.TripStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", repo.updateStatus[0])
	}
	if len(tracker.recorded) != 1 {
		t.Fatalf("expected 1 status update, got %d", len(tracker.recorded))
	}
	if !tracker.recorded[0].Options.NotifyUsers {
		t.Fatal("expected notify_users on the recorded update")
	}
	if len(notifier.recipients) != 1 || notifier.recipients[0][0] != owner {
		t.Fatalf("expected owner %s notified, got %v", owner, notifier.recipients)
	}
}

func TestStaleTripJobSkipsTripsThatMovedOn(t *testing.T) {
	stale := models.Trip{ID: uuid.New(), OwnerID: uuid.New(), Status: enums.TripStatusAnnounced}
	repo := &stubTripsRepo{
		stale: []models.Trip{stale},
		findByID: func(id uuid.UUID) (*models.Trip, error) {
			copied := stale
			copied.Status = enums.TripStatusTraveling
			return &copied, nil
		},
	}
	tracker := &stubTracker{}
	notifier := &stubNotifier{}

	job := newStaleTripJob(t, repo, tracker, notifier)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(repo.updated) != 0 {
		t.Fatalf("expected no cancellations, got %v", repo.updated)
	}
	if len(tracker.recorded) != 0 || len(notifier.recipients) != 0 {
		t.Fatal("expected no status updates or notifications for skipped trip")
	}
}

func TestStaleTripJobContinuesAfterFailure(t *testing.T) {
	broken := models.Trip{ID: uuid.New(), OwnerID: uuid.New(), Status: enums.TripStatusAnnounced}
	healthy := models.Trip{ID: uuid.New(), OwnerID: uuid.New(), Status: enums.TripStatusAnnounced}
	byID := map[uuid.UUID]models.Trip{broken.ID: broken, healthy.ID: healthy}
	repo := &stubTripsRepo{
		stale: []models.Trip{broken, healthy},
		findByID: func(id uuid.UUID) (*models.Trip, error) {
			copied := byID[id]
			return &copied, nil
		},
		updateErr: map[uuid.UUID]error{broken.ID: errors.New("deadlock")},
	}
	tracker := &stubTracker{}
	notifier := &stubNotifier{}

	job := newStaleTripJob(t, repo, tracker, notifier)
	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected combined error for the failed trip")
	}
	if !strings.Contains(err.Error(), broken.ID.String()) {
		t.Fatalf("expected error to name trip %s, got %v", broken.ID, err)
	}
	if len(repo.updated) != 1 || repo.updated[0] != healthy.ID {
		t.Fatalf("expected healthy trip cancelled, got %v", repo.updated)
	}
}
