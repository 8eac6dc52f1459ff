package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wayhaul/wayhaul-backend/pkg/enums"
	"github.com/wayhaul/wayhaul-backend/pkg/types"
)

// DeliveryRequest is a shopper's ask attached to a trip.
type DeliveryRequest struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TripID              uuid.UUID           `gorm:"column:trip_id;type:uuid;not null"`
	RequesterID         uuid.UUID           `gorm:"column:requester_id;type:uuid;not null"`
	DeliveryAddress     types.Address       `gorm:"column:delivery_address;type:jsonb;serializer:json;not null"`
	MaxItemBudget       decimal.Decimal     `gorm:"column:max_item_budget;type:numeric(12,2);not null"`
	DeliveryFee         decimal.Decimal     `gorm:"column:delivery_fee;type:numeric(12,2);not null"`
	SpecialInstructions *string             `gorm:"column:special_instructions;type:text"`
	Status              enums.RequestStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Items               []RequestItem       `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
	AcceptedAt          *time.Time          `gorm:"column:accepted_at;type:timestamptz"`
	CompletedAt         *time.Time          `gorm:"column:completed_at;type:timestamptz"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// RequestItem is a single line of a delivery request. Position preserves the
// order the requester listed items in.
type RequestItem struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RequestID      uuid.UUID        `gorm:"column:request_id;type:uuid;not null"`
	Name           string           `gorm:"column:name;type:text;not null"`
	Description    *string          `gorm:"column:description;type:text"`
	Quantity       int              `gorm:"column:quantity;not null;default:1"`
	EstimatedPrice decimal.Decimal  `gorm:"column:estimated_price;type:numeric(12,2);not null"`
	ActualPrice    *decimal.Decimal `gorm:"column:actual_price;type:numeric(12,2)"`
	Position       int              `gorm:"column:position;not null;default:0"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
}
