package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
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

type recordStatusPayload struct {
	EntityType          string        `json:"entity_type" validate:"required"`
	EntityID            uuid.UUID     `json:"entity_id"`
	Status              string        `json:"status" validate:"required"`
	NotifyUsers         bool          `json:"notify_users"`
	SendRealTimeUpdates bool          `json:"send_real_time_updates"`
	PhotoURL            *string       `json:"photo_url"`
	ReceiptURL          *string       `json:"receipt_url"`
	Metadata            types.JSONMap `json:"metadata"`
}

type photoConfirmationPayload struct {
	EntityType          string    `json:"entity_type" validate:"required"`
	EntityID            uuid.UUID `json:"entity_id"`
	URL                 string    `json:"url" validate:"required,url"`
	NotifyUsers         *bool     `json:"notify_users"`
	SendRealTimeUpdates bool      `json:"send_real_time_updates"`
}

// dispatchOptions builds the override carried to the tracker, or nil to keep
// the tracker's notify-by-default behavior.
func (p photoConfirmationPayload) dispatchOptions() *tracking.DispatchOptions {
	if p.NotifyUsers == nil && !p.SendRealTimeUpdates {
		return nil
	}
	opts := tracking.DispatchOptions{NotifyUsers: true, SendRealTimeUpdates: p.SendRealTimeUpdates}
	if p.NotifyUsers != nil {
		opts.NotifyUsers = *p.NotifyUsers
	}
	return &opts
}

type receiptConfirmationPayload struct {
	EntityType string        `json:"entity_type" validate:"required"`
	EntityID   uuid.UUID     `json:"entity_id"`
	URL        string        `json:"url" validate:"required,url"`
	Metadata   types.JSONMap `json:"metadata"`
}

// RecordStatus appends a free-form status update and dispatches it.
func RecordStatus(svc tracking.Service, tripsSvc trips.Service, reqSvc requests.Service, notifier notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tracking service unavailable"))
			return
		}

		var payload recordStatusPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entityType, err := enums.ParseStatusEntityType(payload.EntityType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entity type"))
			return
		}

		result, err := svc.Record(r.Context(), tracking.RecordInput{
			EntityType: entityType,
			EntityID:   payload.EntityID,
			Status:     payload.Status,
			Options: tracking.DispatchOptions{
				NotifyUsers:         payload.NotifyUsers,
				SendRealTimeUpdates: payload.SendRealTimeUpdates,
			},
			PhotoURL:   payload.PhotoURL,
			ReceiptURL: payload.ReceiptURL,
			Metadata:   payload.Metadata,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dispatchUpdate(r.Context(), logg, notifier, tripsSvc, reqSvc, result)
		responses.WriteSuccessStatus(w, http.StatusCreated, result.Update)
	}
}

// AddPhotoConfirmation appends a photo confirmation entry.
func AddPhotoConfirmation(svc tracking.Service, tripsSvc trips.Service, reqSvc requests.Service, notifier notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tracking service unavailable"))
			return
		}

		var payload photoConfirmationPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entityType, err := enums.ParseStatusEntityType(payload.EntityType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entity type"))
			return
		}

		result, err := svc.AddPhotoConfirmation(r.Context(), entityType, payload.EntityID, payload.URL, payload.dispatchOptions())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dispatchUpdate(r.Context(), logg, notifier, tripsSvc, reqSvc, result)
		responses.WriteSuccessStatus(w, http.StatusCreated, result.Update)
	}
}

// AddReceiptConfirmation appends a receipt confirmation entry.
func AddReceiptConfirmation(svc tracking.Service, tripsSvc trips.Service, reqSvc requests.Service, notifier notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tracking service unavailable"))
			return
		}

		var payload receiptConfirmationPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entityType, err := enums.ParseStatusEntityType(payload.EntityType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entity type"))
			return
		}

		result, err := svc.AddReceiptConfirmation(r.Context(), entityType, payload.EntityID, payload.URL, payload.Metadata)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dispatchUpdate(r.Context(), logg, notifier, tripsSvc, reqSvc, result)
		responses.WriteSuccessStatus(w, http.StatusCreated, result.Update)
	}
}

// StatusHistory returns the chronological status log for an entity.
func StatusHistory(svc tracking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tracking service unavailable"))
			return
		}

		entityType, entityID, err := parseStatusEntity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<20)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), entityType, entityID, pagination.Window{Limit: limit, Offset: offset})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

// LatestStatus returns the newest status entry for an entity.
func LatestStatus(svc tracking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tracking service unavailable"))
			return
		}

		entityType, entityID, err := parseStatusEntity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		latest, err := svc.Latest(r.Context(), entityType, entityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, latest)
	}
}

func parseStatusEntity(r *http.Request) (enums.StatusEntityType, uuid.UUID, error) {
	rawType := strings.TrimSpace(chi.URLParam(r, "entityType"))
	entityType, err := enums.ParseStatusEntityType(rawType)
	if err != nil {
		return "", uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entity type")
	}
	entityID, err := pathUUID(r, "entityId", "entity id")
	if err != nil {
		return "", uuid.Nil, err
	}
	return entityType, entityID, nil
}

// dispatchUpdate resolves who should hear about a status update and persists
// notification rows for them. Trips notify the owner and every requester;
// requests notify the requester and the trip owner.
func dispatchUpdate(ctx context.Context, logg *logger.Logger, notifier notifications.Service, tripsSvc trips.Service, reqSvc requests.Service, result *tracking.RecordResult) {
	if notifier == nil || result == nil || result.Update == nil || !result.Options.NotifyUsers {
		return
	}

	var recipients []uuid.UUID
	switch result.Update.EntityType {
	case enums.StatusEntityTrip:
		if tripsSvc != nil {
			if trip, err := tripsSvc.Get(ctx, result.Update.EntityID); err == nil {
				recipients = tripRecipients(ctx, reqSvc, trip.OwnerID, trip.ID)
			}
		}
	case enums.StatusEntityRequest:
		if reqSvc != nil {
			if request, err := reqSvc.Get(ctx, result.Update.EntityID); err == nil {
				recipients = requestRecipients(ctx, tripsSvc, request)
			}
		}
	}
	if len(recipients) == 0 {
		return
	}
	if _, err := notifier.Dispatch(ctx, result, recipients); err != nil && logg != nil {
		logg.Error(ctx, "dispatch status notifications", err)
	}
}
