package requests

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
)

// Repository defines persistence operations for delivery request rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.DeliveryRequest) (*models.DeliveryRequest, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryRequest, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.DeliveryRequest, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	SetItemActualPrice(ctx context.Context, itemID uuid.UUID, price decimal.Decimal) error
}
