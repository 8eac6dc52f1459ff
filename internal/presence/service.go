package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wayhaul/wayhaul-backend/pkg/config"
	"github.com/wayhaul/wayhaul-backend/pkg/db"
	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
	pkgerrors "github.com/wayhaul/wayhaul-backend/pkg/errors"
	"github.com/wayhaul/wayhaul-backend/pkg/geo"
	"github.com/wayhaul/wayhaul-backend/pkg/types"
)

const activePresenceConstraint = "uq_location_presences_active"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CheckInInput carries a user's claimed position at a location.
type CheckInInput struct {
	UserID      uuid.UUID
	LocationID  uuid.UUID
	Coordinates types.Coordinates
}

// LocationPresenceSummary reports who-is-here numbers for a location.
type LocationPresenceSummary struct {
	LocationID       uuid.UUID `json:"location_id"`
	Name             string    `json:"name"`
	CurrentUserCount int       `json:"current_user_count"`
	HasActiveUsers   bool      `json:"has_active_users"`
}

// Service defines the location presence operations.
type Service interface {
	VerifyUserLocation(location *models.Location, coords types.Coordinates) bool
	CheckIn(ctx context.Context, input CheckInInput) (*models.LocationPresence, error)
	CheckOut(ctx context.Context, userID, locationID uuid.UUID) (*models.LocationPresence, error)
	Presence(ctx context.Context, locationID uuid.UUID) (*LocationPresenceSummary, error)
	HasActiveUsers(ctx context.Context, locationID uuid.UUID) (bool, error)
}

type service struct {
	repo Repository
	tx   txRunner
	cfg  config.PresenceConfig
	now  func() time.Time
}

// NewService builds a presence service with the required dependencies.
func NewService(repo Repository, tx txRunner, cfg config.PresenceConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("presence repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, cfg: cfg, now: time.Now}, nil
}

// VerifyUserLocation checks the claimed coordinates against the venue's
// position using the configured geofence tolerance.
func (s *service) VerifyUserLocation(location *models.Location, coords types.Coordinates) bool {
	if location == nil {
		return false
	}
	return geo.WithinRadius(location.Coordinates(), coords, s.cfg.GeofenceToleranceKm)
}

func (s *service) CheckIn(ctx context.Context, input CheckInInput) (*models.LocationPresence, error) {
	violations := map[string]string{}
	if input.UserID == uuid.Nil {
		violations["user_id"] = "user id is required"
	}
	if input.LocationID == uuid.Nil {
		violations["location_id"] = "location id is required"
	}
	if err := input.Coordinates.Validate(); err != nil {
		violations["coordinates"] = err.Error()
	}
	if len(violations) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid check-in").WithDetails(violations)
	}

	location, err := s.repo.FindLocation(ctx, input.LocationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location")
	}

	if !s.VerifyUserLocation(location, input.Coordinates) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coordinates are outside the location geofence").
			WithDetails(map[string]any{
				"distance_km":  geo.DistanceKm(location.Coordinates(), input.Coordinates),
				"tolerance_km": s.cfg.GeofenceToleranceKm,
			})
	}

	presence := &models.LocationPresence{
		UserID:      input.UserID,
		LocationID:  input.LocationID,
		CheckedInAt: s.now().UTC(),
		IsActive:    true,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreatePresence(ctx, presence); err != nil {
			if db.IsUniqueViolation(err, activePresenceConstraint) {
				return pkgerrors.New(pkgerrors.CodeConflict, "already checked in at this location")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create presence")
		}
		if err := repo.IncrementUserCount(ctx, input.LocationID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment user count")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return presence, nil
}

func (s *service) CheckOut(ctx context.Context, userID, locationID uuid.UUID) (*models.LocationPresence, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if locationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}

	var closed *models.LocationPresence
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		presence, err := repo.FindActivePresence(ctx, userID, locationID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no active check-in at this location")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load presence")
		}

		now := s.now().UTC()
		if err := repo.ClosePresence(ctx, presence.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close presence")
		}
		if err := repo.DecrementUserCount(ctx, locationID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement user count")
		}

		presence.CheckedOutAt = &now
		presence.IsActive = false
		closed = presence
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

func (s *service) Presence(ctx context.Context, locationID uuid.UUID) (*LocationPresenceSummary, error) {
	if locationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}

	location, err := s.repo.FindLocation(ctx, locationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location")
	}

	return &LocationPresenceSummary{
		LocationID:       location.ID,
		Name:             location.Name,
		CurrentUserCount: location.CurrentUserCount,
		HasActiveUsers:   location.CurrentUserCount > 0,
	}, nil
}

func (s *service) HasActiveUsers(ctx context.Context, locationID uuid.UUID) (bool, error) {
	summary, err := s.Presence(ctx, locationID)
	if err != nil {
		return false, err
	}
	return summary.HasActiveUsers, nil
}
