package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wayhaul/wayhaul-backend/api/responses"
	"github.com/wayhaul/wayhaul-backend/api/validators"
	"github.com/wayhaul/wayhaul-backend/internal/notifications"
	"github.com/wayhaul/wayhaul-backend/internal/requests"
	"github.com/wayhaul/wayhaul-backend/internal/tracking"
	"github.com/wayhaul/wayhaul-backend/internal/trips"
	"github.com/wayhaul/wayhaul-backend/pkg/enums"
	pkgerrors "github.com/wayhaul/wayhaul-backend/pkg/errors"
	"github.com/wayhaul/wayhaul-backend/pkg/logger"
	"github.com/wayhaul/wayhaul-backend/pkg/pagination"
	"github.com/wayhaul/wayhaul-backend/pkg/types"
)

type createTripRequest struct {
	Destination         types.Destination `json:"destination"`
	DepartureTime       time.Time         `json:"departure_time"`
	EstimatedReturnTime time.Time         `json:"estimated_return_time"`
	Capacity            int               `json:"capacity"`
	Description         *string           `json:"description"`
}

type updateTripStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type updateTripCapacityRequest struct {
	Action string `json:"action" validate:"required,oneof=reserve release"`
	Units  int    `json:"units" validate:"required,min=1"`
}

// CreateTrip announces a new trip owned by the caller.
func CreateTrip(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trips service unavailable"))
			return
		}

		ownerID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createTripRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trip, err := svc.Create(r.Context(), trips.CreateTripInput{
			OwnerID:             ownerID,
			Destination:         payload.Destination,
			DepartureTime:       payload.DepartureTime,
			EstimatedReturnTime: payload.EstimatedReturnTime,
			Capacity:            payload.Capacity,
			Description:         payload.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, trip)
	}
}

// ListTrips returns the caller's trips, newest first.
func ListTrips(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trips service unavailable"))
			return
		}

		ownerID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		list, err := svc.ListByOwner(r.Context(), ownerID, pagination.Params{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetTrip returns one trip by id.
func GetTrip(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trips service unavailable"))
			return
		}

		tripID, err := pathUUID(r, "tripId", "trip id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trip, err := svc.Get(r.Context(), tripID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, trip)
	}
}

// UpdateTripStatus advances the trip state machine and fans the change out to
// everyone with a request on the trip.
func UpdateTripStatus(svc trips.Service, reqSvc requests.Service, tracker tracking.Service, notifier notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trips service unavailable"))
			return
		}

		tripID, err := pathUUID(r, "tripId", "trip id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateTripStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseTripStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid trip status"))
			return
		}

		trip, err := svc.UpdateStatus(r.Context(), tripID, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recipients := tripRecipients(r.Context(), reqSvc, trip.OwnerID, tripID)
		recordStatusChange(r.Context(), logg, tracker, notifier, enums.StatusEntityTrip, tripID, string(target), recipients)
		responses.WriteSuccess(w, trip)
	}
}

// CancelTrip cancels a trip from any non-terminal state.
func CancelTrip(svc trips.Service, reqSvc requests.Service, tracker tracking.Service, notifier notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trips service unavailable"))
			return
		}

		tripID, err := pathUUID(r, "tripId", "trip id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trip, err := svc.Cancel(r.Context(), tripID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recipients := tripRecipients(r.Context(), reqSvc, trip.OwnerID, tripID)
		recordStatusChange(r.Context(), logg, tracker, notifier, enums.StatusEntityTrip, tripID, string(enums.TripStatusCancelled), recipients)
		responses.WriteSuccess(w, trip)
	}
}

// UpdateTripCapacity reserves or releases capacity units directly.
func UpdateTripCapacity(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trips service unavailable"))
			return
		}

		tripID, err := pathUUID(r, "tripId", "trip id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateTripCapacityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		switch payload.Action {
		case "reserve":
			err = svc.ReserveCapacity(r.Context(), tripID, payload.Units)
		case "release":
			err = svc.ReleaseCapacity(r.Context(), tripID, payload.Units)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trip, err := svc.Get(r.Context(), tripID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, trip)
	}
}

// tripRecipients collects the trip owner plus every requester on the trip.
func tripRecipients(ctx context.Context, reqSvc requests.Service, ownerID, tripID uuid.UUID) []uuid.UUID {
	recipients := []uuid.UUID{ownerID}
	if reqSvc == nil {
		return recipients
	}
	list, err := reqSvc.ListByTrip(ctx, tripID)
	if err != nil {
		return recipients
	}
	seen := map[uuid.UUID]bool{ownerID: true}
	for _, request := range list.Requests {
		if seen[request.RequesterID] {
			continue
		}
		seen[request.RequesterID] = true
		recipients = append(recipients, request.RequesterID)
	}
	return recipients
}
