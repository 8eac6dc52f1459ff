package trips

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
	"github.com/wayhaul/wayhaul-backend/pkg/enums"
	pkgerrors "github.com/wayhaul/wayhaul-backend/pkg/errors"
	"github.com/wayhaul/wayhaul-backend/pkg/pagination"
)

const (
	// MinCapacity and MaxCapacity bound how many requests a trip can carry.
	MinCapacity = 1
	MaxCapacity = 10
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CapacityEscrow reserves and returns trip capacity inside a caller-owned
// transaction. Used by the request lifecycle when requests are accepted or
// cancelled.
type CapacityEscrow interface {
	Reserve(ctx context.Context, tx *gorm.DB, tripID uuid.UUID, units int) error
	Release(ctx context.Context, tx *gorm.DB, tripID uuid.UUID, units int) error
}

// Service defines trip lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateTripInput) (*models.Trip, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Trip, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*TripList, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, target enums.TripStatus) (*models.Trip, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.Trip, error)
	ReserveCapacity(ctx context.Context, id uuid.UUID, units int) error
	ReleaseCapacity(ctx context.Context, id uuid.UUID, units int) error
	CanAcceptRequests(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	repo Repository
	tx   txRunner
	now  func() time.Time
}

// NewService builds a trip service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("trips repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input CreateTripInput) (*models.Trip, error) {
	violations := map[string]string{}

	if input.OwnerID == uuid.Nil {
		violations["owner_id"] = "owner id is required"
	}
	if input.Destination.Name == "" {
		violations["destination.name"] = "destination name is required"
	}
	if err := input.Destination.Coordinates.Validate(); err != nil {
		violations["destination.coordinates"] = err.Error()
	}

	now := s.now().UTC()
	if input.DepartureTime.IsZero() {
		violations["departure_time"] = "departure time is required"
	} else if !input.DepartureTime.After(now) {
		violations["departure_time"] = "departure time must be in the future"
	}
	if input.EstimatedReturnTime.IsZero() {
		violations["estimated_return_time"] = "estimated return time is required"
	} else if !input.DepartureTime.IsZero() && !input.EstimatedReturnTime.After(input.DepartureTime) {
		violations["estimated_return_time"] = "estimated return time must be after departure"
	}
	if input.Capacity < MinCapacity || input.Capacity > MaxCapacity {
		violations["capacity"] = fmt.Sprintf("capacity must be between %d and %d", MinCapacity, MaxCapacity)
	}

	if len(violations) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid trip").WithDetails(violations)
	}

	trip := &models.Trip{
		OwnerID:             input.OwnerID,
		Destination:         input.Destination,
		DepartureTime:       input.DepartureTime.UTC(),
		EstimatedReturnTime: input.EstimatedReturnTime.UTC(),
		Capacity:            input.Capacity,
		AvailableCapacity:   input.Capacity,
		Status:              enums.TripStatusAnnounced,
		Description:         input.Description,
	}

	created, err := s.repo.Create(ctx, trip)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create trip")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Trip, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trip id required")
	}
	trip, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip")
	}
	return trip, nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*TripList, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}
	list, err := s.repo.ListByOwner(ctx, ownerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list trips")
	}
	return list, nil
}

// UpdateStatus validates the transition against the persisted status inside
// a transaction, so two writers racing on the same trip serialize on the row.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, target enums.TripStatus) (*models.Trip, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trip id required")
	}
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid trip status")
	}

	var updated *models.Trip
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		trip, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip")
		}

		if !trip.Status.CanTransitionTo(target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "trip status transition not allowed").
				WithDetails(map[string]string{
					"from": trip.Status.String(),
					"to":   target.String(),
				})
		}

		if err := repo.UpdateStatus(ctx, trip.ID, target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update trip status")
		}

		trip.Status = target
		trip.UpdatedAt = s.now().UTC()
		updated = trip
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*models.Trip, error) {
	return s.UpdateStatus(ctx, id, enums.TripStatusCancelled)
}

func (s *service) ReserveCapacity(ctx context.Context, id uuid.UUID, units int) error {
	if err := validateCapacityArgs(id, units); err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return reserve(ctx, s.repo.WithTx(tx), id, units)
	})
}

func (s *service) ReleaseCapacity(ctx context.Context, id uuid.UUID, units int) error {
	if err := validateCapacityArgs(id, units); err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return release(ctx, s.repo.WithTx(tx), id, units)
	})
}

func (s *service) CanAcceptRequests(ctx context.Context, id uuid.UUID) (bool, error) {
	trip, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return TripCanAcceptRequests(trip), nil
}

// TripCanAcceptRequests reports whether the trip is open for new requests.
func TripCanAcceptRequests(trip *models.Trip) bool {
	return trip != nil &&
		trip.Status == enums.TripStatusAnnounced &&
		trip.AvailableCapacity > 0
}

func validateCapacityArgs(id uuid.UUID, units int) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "trip id required")
	}
	if units <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "units must be positive")
	}
	return nil
}

func reserve(ctx context.Context, repo Repository, id uuid.UUID, units int) error {
	ok, err := repo.ReserveCapacity(ctx, id, units)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve trip capacity")
	}
	if ok {
		return nil
	}

	// Zero rows means either the trip is gone or another writer drained the
	// counter first. Tell the two apart so callers can retry the latter.
	if _, err := repo.FindByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip")
	}
	return pkgerrors.New(pkgerrors.CodeConcurrency, "trip capacity unavailable")
}

func release(ctx context.Context, repo Repository, id uuid.UUID, units int) error {
	if _, err := repo.FindByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip")
	}
	if err := repo.ReleaseCapacity(ctx, id, units); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release trip capacity")
	}
	return nil
}

type capacityEscrow struct {
	repo Repository
}

// NewCapacityEscrow exposes the default capacity escrow implementation.
func NewCapacityEscrow(repo Repository) CapacityEscrow {
	return capacityEscrow{repo: repo}
}

func (e capacityEscrow) Reserve(ctx context.Context, tx *gorm.DB, tripID uuid.UUID, units int) error {
	if err := validateCapacityArgs(tripID, units); err != nil {
		return err
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for capacity reserve")
	}
	return reserve(ctx, e.repo.WithTx(tx), tripID, units)
}

func (e capacityEscrow) Release(ctx context.Context, tx *gorm.DB, tripID uuid.UUID, units int) error {
	if err := validateCapacityArgs(tripID, units); err != nil {
		return err
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for capacity release")
	}
	return release(ctx, e.repo.WithTx(tx), tripID, units)
}
