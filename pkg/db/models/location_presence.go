package models

import (
	"time"

	"github.com/google/uuid"
)

// LocationPresence is one check-in episode. At most one active row exists per
// (user_id, location_id), enforced by a partial unique index.
type LocationPresence struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID  `gorm:"column:user_id;type:uuid;not null"`
	LocationID   uuid.UUID  `gorm:"column:location_id;type:uuid;not null"`
	CheckedInAt  time.Time  `gorm:"column:checked_in_at;type:timestamptz;not null"`
	CheckedOutAt *time.Time `gorm:"column:checked_out_at;type:timestamptz"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}
