package controllers

import (
	"net/http"

	"github.com/wayhaul/wayhaul-backend/api/responses"
	"github.com/wayhaul/wayhaul-backend/api/validators"
	"github.com/wayhaul/wayhaul-backend/internal/presence"
	pkgerrors "github.com/wayhaul/wayhaul-backend/pkg/errors"
	"github.com/wayhaul/wayhaul-backend/pkg/logger"
	"github.com/wayhaul/wayhaul-backend/pkg/types"
)

type checkInPayload struct {
	Coordinates types.Coordinates `json:"coordinates"`
}

// CheckIn verifies the caller is inside the geofence and opens a presence.
func CheckIn(svc presence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "presence service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		locationID, err := pathUUID(r, "locationId", "location id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkInPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.CheckIn(r.Context(), presence.CheckInInput{
			UserID:      userID,
			LocationID:  locationID,
			Coordinates: payload.Coordinates,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

// CheckOut closes the caller's active presence at the location.
func CheckOut(svc presence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "presence service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		locationID, err := pathUUID(r, "locationId", "location id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.CheckOut(r.Context(), userID, locationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// GetPresence returns the who-is-here summary for a location.
func GetPresence(svc presence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "presence service unavailable"))
			return
		}

		locationID, err := pathUUID(r, "locationId", "location id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Presence(r.Context(), locationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
