package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/wayhaul/wayhaul-backend/pkg/enums"
	"github.com/wayhaul/wayhaul-backend/pkg/types"
)

// Location is a known venue users can check in to.
type Location struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string                 `gorm:"column:name;type:text;not null"`
	Address          types.Address          `gorm:"column:address;type:jsonb;serializer:json;not null"`
	Latitude         float64                `gorm:"column:latitude;not null"`
	Longitude        float64                `gorm:"column:longitude;not null"`
	Category         enums.LocationCategory `gorm:"column:category;type:text;not null;default:'other'"`
	CurrentUserCount int                    `gorm:"column:current_user_count;not null;default:0"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// Coordinates returns the venue position as a value usable by the geofence.
func (l Location) Coordinates() types.Coordinates {
	return types.Coordinates{Lat: l.Latitude, Lng: l.Longitude}
}
