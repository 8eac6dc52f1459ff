package requests

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
	"github.com/wayhaul/wayhaul-backend/pkg/types"
)

// CreateRequestInput carries everything needed to file a delivery request.
type CreateRequestInput struct {
	TripID              uuid.UUID
	RequesterID         uuid.UUID
	Items               []RequestItemInput
	DeliveryAddress     types.Address
	MaxItemBudget       decimal.Decimal
	DeliveryFee         decimal.Decimal
	SpecialInstructions *string
}

// RequestItemInput is one requested line, in the order the requester listed it.
type RequestItemInput struct {
	Name           string
	Description    *string
	Quantity       int
	EstimatedPrice decimal.Decimal
}

// RequestList wraps the requests attached to a trip.
type RequestList struct {
	Requests []models.DeliveryRequest `json:"requests"`
}
