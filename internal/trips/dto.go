package trips

import (
	"time"

	"github.com/google/uuid"

	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
	"github.com/wayhaul/wayhaul-backend/pkg/types"
)

// CreateTripInput carries everything needed to announce a trip.
type CreateTripInput struct {
	OwnerID             uuid.UUID
	Destination         types.Destination
	DepartureTime       time.Time
	EstimatedReturnTime time.Time
	Capacity            int
	Description         *string
}

// TripList wraps the paginated trips plus the next page cursor.
type TripList struct {
	Trips      []models.Trip `json:"trips"`
	NextCursor string        `json:"next_cursor,omitempty"`
}
