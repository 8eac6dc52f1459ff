package presence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wayhaul/wayhaul-backend/pkg/config"
	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
	pkgerrors "github.com/wayhaul/wayhaul-backend/pkg/errors"
	"github.com/wayhaul/wayhaul-backend/pkg/types"
)

type stubPresenceRepo struct {
	location    *models.Location
	active      *models.LocationPresence
	createErr   error
	created     *models.LocationPresence
	incremented int
	decremented int
	closedID    uuid.UUID
}

func (s *stubPresenceRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPresenceRepo) FindLocation(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	if s.location == nil || s.location.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.location
	return &copied, nil
}

func (s *stubPresenceRepo) CreatePresence(ctx context.Context, presence *models.LocationPresence) error {
	if s.createErr != nil {
		return s.createErr
	}
	if presence.ID == uuid.Nil {
		presence.ID = uuid.New()
	}
	s.created = presence
	return nil
}

func (s *stubPresenceRepo) FindActivePresence(ctx context.Context, userID, locationID uuid.UUID) (*models.LocationPresence, error) {
	if s.active == nil || s.active.UserID != userID || s.active.LocationID != locationID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.active
	return &copied, nil
}

func (s *stubPresenceRepo) ClosePresence(ctx context.Context, presenceID uuid.UUID, at time.Time) error {
	s.closedID = presenceID
	return nil
}

func (s *stubPresenceRepo) IncrementUserCount(ctx context.Context, locationID uuid.UUID) error {
	s.incremented++
	return nil
}

func (s *stubPresenceRepo) DecrementUserCount(ctx context.Context, locationID uuid.UUID) error {
	s.decremented++
	return nil
}

func (s *stubPresenceRepo) CountActiveByLocation(ctx context.Context, locationID uuid.UUID) (int64, error) {
	return 0, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testLocation() *models.Location {
	return &models.Location{
		ID:        uuid.New(),
		Name:      "Whole Foods Gaslamp",
		Latitude:  32.7116,
		Longitude: -117.1610,
	}
}

func newPresenceService(repo *stubPresenceRepo) Service {
	svc, err := NewService(repo, stubTxRunner{}, config.PresenceConfig{GeofenceToleranceKm: 0.5})
	if err != nil {
		panic(err)
	}
	return svc
}

func TestVerifyUserLocation(t *testing.T) {
	repo := &stubPresenceRepo{location: testLocation()}
	svc := newPresenceService(repo)

	nearby := types.Coordinates{Lat: 32.7118, Lng: -117.1612}
	if !svc.VerifyUserLocation(repo.location, nearby) {
		t.Fatal("expected coordinates inside the geofence to verify")
	}

	farAway := types.Coordinates{Lat: 32.8000, Lng: -117.1610}
	if svc.VerifyUserLocation(repo.location, farAway) {
		t.Fatal("expected distant coordinates to fail verification")
	}
}

func TestCheckInCreatesPresenceAndIncrementsCount(t *testing.T) {
	repo := &stubPresenceRepo{location: testLocation()}
	svc := newPresenceService(repo)

	presence, err := svc.CheckIn(context.Background(), CheckInInput{
		UserID:      uuid.New(),
		LocationID:  repo.location.ID,
		Coordinates: types.Coordinates{Lat: 32.7116, Lng: -117.1610},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !presence.IsActive {
		t.Fatal("expected new presence to be active")
	}
	if presence.CheckedInAt.IsZero() {
		t.Fatal("expected checked_in_at stamped")
	}
	if repo.incremented != 1 {
		t.Fatalf("expected user count incremented once, got %d", repo.incremented)
	}
}

func TestCheckInOutsideGeofenceIsStateConflict(t *testing.T) {
	repo := &stubPresenceRepo{location: testLocation()}
	svc := newPresenceService(repo)

	_, err := svc.CheckIn(context.Background(), CheckInInput{
		UserID:      uuid.New(),
		LocationID:  repo.location.ID,
		Coordinates: types.Coordinates{Lat: 33.0, Lng: -117.1610},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if repo.incremented != 0 {
		t.Fatal("failed check-in must not touch the counter")
	}
}

func TestDuplicateCheckInIsConflict(t *testing.T) {
	repo := &stubPresenceRepo{
		location:  testLocation(),
		createErr: errors.New(`duplicate key value violates unique constraint "uq_location_presences_active"`),
	}
	svc := newPresenceService(repo)

	_, err := svc.CheckIn(context.Background(), CheckInInput{
		UserID:      uuid.New(),
		LocationID:  repo.location.ID,
		Coordinates: types.Coordinates{Lat: 32.7116, Lng: -117.1610},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCheckInUnknownLocationIsNotFound(t *testing.T) {
	svc := newPresenceService(&stubPresenceRepo{})

	_, err := svc.CheckIn(context.Background(), CheckInInput{
		UserID:      uuid.New(),
		LocationID:  uuid.New(),
		Coordinates: types.Coordinates{Lat: 0, Lng: 0},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCheckOutClosesPresenceAndDecrements(t *testing.T) {
	location := testLocation()
	userID := uuid.New()
	repo := &stubPresenceRepo{
		location: location,
		active: &models.LocationPresence{
			ID:          uuid.New(),
			UserID:      userID,
			LocationID:  location.ID,
			CheckedInAt: time.Now().Add(-time.Hour),
			IsActive:    true,
		},
	}
	svc := newPresenceService(repo)

	closed, err := svc.CheckOut(context.Background(), userID, location.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closed.IsActive {
		t.Fatal("expected presence closed")
	}
	if closed.CheckedOutAt == nil {
		t.Fatal("expected checked_out_at stamped")
	}
	if repo.decremented != 1 {
		t.Fatalf("expected user count decremented once, got %d", repo.decremented)
	}
	if repo.closedID != repo.active.ID {
		t.Fatal("expected the active presence row closed")
	}
}

func TestCheckOutWithoutActivePresenceIsNotFound(t *testing.T) {
	repo := &stubPresenceRepo{location: testLocation()}
	svc := newPresenceService(repo)

	_, err := svc.CheckOut(context.Background(), uuid.New(), repo.location.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if repo.decremented != 0 {
		t.Fatal("failed checkout must not touch the counter")
	}
}

func TestPresenceSummary(t *testing.T) {
	location := testLocation()
	location.CurrentUserCount = 2
	repo := &stubPresenceRepo{location: location}
	svc := newPresenceService(repo)

	summary, err := svc.Presence(context.Background(), location.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.CurrentUserCount != 2 || !summary.HasActiveUsers {
		t.Fatalf("unexpected summary %+v", summary)
	}

	location.CurrentUserCount = 0
	ok, err := svc.HasActiveUsers(context.Background(), location.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected no active users")
	}
}
