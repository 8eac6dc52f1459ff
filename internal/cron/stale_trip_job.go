package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/wayhaul/wayhaul-backend/internal/notifications"
	"github.com/wayhaul/wayhaul-backend/internal/tracking"
	"github.com/wayhaul/wayhaul-backend/internal/trips"
	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
	"github.com/wayhaul/wayhaul-backend/pkg/enums"
	"github.com/wayhaul/wayhaul-backend/pkg/logger"
	"github.com/wayhaul/wayhaul-backend/pkg/types"
)

const defaultDepartureGrace = 24 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StaleTripJobParams configure the stale trip sweeper.
type StaleTripJobParams struct {
	Logger   *logger.Logger
	DB       txRunner
	Trips    trips.Repository
	Tracker  tracking.Service
	Notifier notifications.Service
	Grace    time.Duration
}

// NewStaleTripJob builds the cron job that cancels announced trips whose
// departure time passed without the traveler ever starting.
func NewStaleTripJob(params StaleTripJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Trips == nil {
		return nil, fmt.Errorf("trips repository required")
	}
	if params.Tracker == nil {
		return nil, fmt.Errorf("tracking service required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	grace := params.Grace
	if grace <= 0 {
		grace = defaultDepartureGrace
	}
	return &staleTripJob{
		logg:     params.Logger,
		db:       params.DB,
		trips:    params.Trips,
		tracker:  params.Tracker,
		notifier: params.Notifier,
		grace:    grace,
		now:      time.Now,
	}, nil
}

type staleTripJob struct {
	logg     *logger.Logger
	db       txRunner
	trips    trips.Repository
	tracker  tracking.Service
	notifier notifications.Service
	grace    time.Duration
	now      func() time.Time
}

func (j *staleTripJob) Name() string { return "stale-trips" }

func (j *staleTripJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.grace)
	stale, err := j.trips.FindAnnouncedDepartedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale trips: %w", err)
	}

	var errs []error
	cancelled := 0
	for _, trip := range stale {
		if err := j.cancelTrip(ctx, trip); err != nil {
			errs = append(errs, fmt.Errorf("cancel trip %s: %w", trip.ID, err))
			continue
		}
		cancelled++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"found": len(stale), "cancelled": cancelled})
	j.logg.Info(logCtx, "stale trip sweep complete")
	return multierr.Combine(errs...)
}

func (j *staleTripJob) cancelTrip(ctx context.Context, trip models.Trip) error {
	skipped := false
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.trips.WithTx(tx)
		current, err := repo.FindByID(ctx, trip.ID)
		if err != nil {
			return err
		}
		// Another writer may have moved the trip since the sweep query.
		if current.Status != enums.TripStatusAnnounced {
			skipped = true
			return nil
		}
		return repo.UpdateStatus(ctx, trip.ID, enums.TripStatusCancelled)
	})
	if err != nil || skipped {
		return err
	}

	result, err := j.tracker.Record(ctx, tracking.RecordInput{
		EntityType: enums.StatusEntityTrip,
		EntityID:   trip.ID,
		Status:     string(enums.TripStatusCancelled),
		Options:    tracking.DispatchOptions{NotifyUsers: true},
		Metadata:   types.JSONMap{"reason": "departure window elapsed"},
	})
	if err != nil {
		return fmt.Errorf("record cancellation: %w", err)
	}
	if _, err := j.notifier.Dispatch(ctx, result, []uuid.UUID{trip.OwnerID}); err != nil {
		return fmt.Errorf("notify owner: %w", err)
	}
	return nil
}
