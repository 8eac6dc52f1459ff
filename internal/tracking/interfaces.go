package tracking

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
	"github.com/wayhaul/wayhaul-backend/pkg/enums"
	"github.com/wayhaul/wayhaul-backend/pkg/pagination"
)

// Repository defines persistence operations for the append-only status log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, update *models.StatusUpdate) (*models.StatusUpdate, error)
	History(ctx context.Context, entityType enums.StatusEntityType, entityID uuid.UUID, window pagination.Window) ([]models.StatusUpdate, error)
	Latest(ctx context.Context, entityType enums.StatusEntityType, entityID uuid.UUID) (*models.StatusUpdate, error)
}
