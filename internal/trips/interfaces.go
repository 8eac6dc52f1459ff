package trips

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
	"github.com/wayhaul/wayhaul-backend/pkg/enums"
	"github.com/wayhaul/wayhaul-backend/pkg/pagination"
)

// Repository defines persistence operations for trip rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, trip *models.Trip) (*models.Trip, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Trip, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*TripList, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TripStatus) error
	ReserveCapacity(ctx context.Context, id uuid.UUID, units int) (bool, error)
	ReleaseCapacity(ctx context.Context, id uuid.UUID, units int) error
	FindAnnouncedDepartedBefore(ctx context.Context, cutoff time.Time) ([]models.Trip, error)
}
