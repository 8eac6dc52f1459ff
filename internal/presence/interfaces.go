package presence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
)

// Repository defines persistence operations for locations and check-ins.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindLocation(ctx context.Context, id uuid.UUID) (*models.Location, error)
	CreatePresence(ctx context.Context, presence *models.LocationPresence) error
	FindActivePresence(ctx context.Context, userID, locationID uuid.UUID) (*models.LocationPresence, error)
	ClosePresence(ctx context.Context, presenceID uuid.UUID, at time.Time) error
	IncrementUserCount(ctx context.Context, locationID uuid.UUID) error
	DecrementUserCount(ctx context.Context, locationID uuid.UUID) error
	CountActiveByLocation(ctx context.Context, locationID uuid.UUID) (int64, error)
}
