package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/wayhaul/wayhaul-backend/pkg/enums"
	"github.com/wayhaul/wayhaul-backend/pkg/types"
)

// Trip represents a traveler's announced journey with deliverable capacity.
type Trip struct {
	ID                  uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID             uuid.UUID         `gorm:"column:owner_id;type:uuid;not null"`
	Destination         types.Destination `gorm:"column:destination;type:jsonb;serializer:json;not null"`
	DepartureTime       time.Time         `gorm:"column:departure_time;type:timestamptz;not null"`
	EstimatedReturnTime time.Time         `gorm:"column:estimated_return_time;type:timestamptz;not null"`
	Capacity            int               `gorm:"column:capacity;not null"`
	AvailableCapacity   int               `gorm:"column:available_capacity;not null"`
	Status              enums.TripStatus  `gorm:"column:status;type:text;not null;default:'announced'"`
	Description         *string           `gorm:"column:description;type:text"`
	CreatedAt           time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
