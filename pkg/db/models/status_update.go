package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/wayhaul/wayhaul-backend/pkg/enums"
	"github.com/wayhaul/wayhaul-backend/pkg/types"
)

// StatusUpdate is one append-only entry in an entity's status history.
// Rows are never updated or deleted.
type StatusUpdate struct {
	ID         uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EntityType enums.StatusEntityType `gorm:"column:entity_type;type:text;not null"`
	EntityID   uuid.UUID              `gorm:"column:entity_id;type:uuid;not null"`
	Status     string                 `gorm:"column:status;type:text;not null"`
	Timestamp  time.Time              `gorm:"column:timestamp;type:timestamptz;not null"`
	PhotoURL   *string                `gorm:"column:photo_url;type:text"`
	ReceiptURL *string                `gorm:"column:receipt_url;type:text"`
	Metadata   types.JSONMap          `gorm:"column:metadata;type:jsonb;serializer:json"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
}
