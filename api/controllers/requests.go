package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wayhaul/wayhaul-backend/api/responses"
	"github.com/wayhaul/wayhaul-backend/api/validators"
	"github.com/wayhaul/wayhaul-backend/internal/notifications"
	"github.com/wayhaul/wayhaul-backend/internal/requests"
	"github.com/wayhaul/wayhaul-backend/internal/tracking"
	"github.com/wayhaul/wayhaul-backend/internal/trips"
	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
	"github.com/wayhaul/wayhaul-backend/pkg/enums"
	pkgerrors "github.com/wayhaul/wayhaul-backend/pkg/errors"
	"github.com/wayhaul/wayhaul-backend/pkg/logger"
	"github.com/wayhaul/wayhaul-backend/pkg/types"
)

type createRequestPayload struct {
	TripID              uuid.UUID            `json:"trip_id"`
	Items               []requestItemPayload `json:"items"`
	DeliveryAddress     types.Address        `json:"delivery_address"`
	MaxItemBudget       decimal.Decimal      `json:"max_item_budget"`
	DeliveryFee         decimal.Decimal      `json:"delivery_fee"`
	SpecialInstructions *string              `json:"special_instructions"`
}

type requestItemPayload struct {
	Name           string          `json:"name"`
	Description    *string         `json:"description"`
	Quantity       int             `json:"quantity"`
	EstimatedPrice decimal.Decimal `json:"estimated_price"`
}

type updateRequestStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

type itemActualPricePayload struct {
	ActualPrice decimal.Decimal `json:"actual_price"`
}

// CreateRequest files a delivery request against a trip.
func CreateRequest(svc requests.Service, tripsSvc trips.Service, tracker tracking.Service, notifier notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		requesterID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createRequestPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]requests.RequestItemInput, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, requests.RequestItemInput{
				Name:           item.Name,
				Description:    item.Description,
				Quantity:       item.Quantity,
				EstimatedPrice: item.EstimatedPrice,
			})
		}

		request, err := svc.Create(r.Context(), requests.CreateRequestInput{
			TripID:              payload.TripID,
			RequesterID:         requesterID,
			Items:               items,
			DeliveryAddress:     payload.DeliveryAddress,
			MaxItemBudget:       payload.MaxItemBudget,
			DeliveryFee:         payload.DeliveryFee,
			SpecialInstructions: payload.SpecialInstructions,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recipients := requestRecipients(r.Context(), tripsSvc, request)
		recordStatusChange(r.Context(), logg, tracker, notifier, enums.StatusEntityRequest, request.ID, string(enums.RequestStatusPending), recipients)
		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// GetRequest returns one delivery request with its items.
func GetRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		requestID, err := pathUUID(r, "requestId", "request id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Get(r.Context(), requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// ListTripRequests returns every request filed against a trip.
func ListTripRequests(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		tripID, err := pathUUID(r, "tripId", "trip id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByTrip(r.Context(), tripID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AcceptRequest accepts a pending request and reserves one capacity unit.
func AcceptRequest(svc requests.Service, tripsSvc trips.Service, tracker tracking.Service, notifier notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		requestID, err := pathUUID(r, "requestId", "request id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Accept(r.Context(), requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recipients := requestRecipients(r.Context(), tripsSvc, request)
		recordStatusChange(r.Context(), logg, tracker, notifier, enums.StatusEntityRequest, request.ID, string(enums.RequestStatusAccepted), recipients)
		responses.WriteSuccess(w, request)
	}
}

// UpdateRequestStatus moves a request to purchased, delivered, or cancelled.
func UpdateRequestStatus(svc requests.Service, tripsSvc trips.Service, tracker tracking.Service, notifier notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		requestID, err := pathUUID(r, "requestId", "request id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateRequestStatusPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseRequestStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request status"))
			return
		}

		var request *models.DeliveryRequest
		switch target {
		case enums.RequestStatusPurchased:
			request, err = svc.MarkPurchased(r.Context(), requestID)
		case enums.RequestStatusDelivered:
			request, err = svc.Complete(r.Context(), requestID)
		case enums.RequestStatusCancelled:
			request, err = svc.Cancel(r.Context(), requestID)
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "status must be purchased, delivered, or cancelled").
				WithDetails(map[string]any{"status": payload.Status})
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recipients := requestRecipients(r.Context(), tripsSvc, request)
		recordStatusChange(r.Context(), logg, tracker, notifier, enums.StatusEntityRequest, request.ID, string(target), recipients)
		responses.WriteSuccess(w, request)
	}
}

// RecordItemActualPrice sets the actual purchase price on one request item.
func RecordItemActualPrice(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		requestID, err := pathUUID(r, "requestId", "request id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemId", "item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload itemActualPricePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.RecordActualPrice(r.Context(), requestID, itemID, payload.ActualPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// requestRecipients collects the requester plus the owning traveler.
func requestRecipients(ctx context.Context, tripsSvc trips.Service, request *models.DeliveryRequest) []uuid.UUID {
	if request == nil {
		return nil
	}
	recipients := []uuid.UUID{request.RequesterID}
	if tripsSvc == nil {
		return recipients
	}
	trip, err := tripsSvc.Get(ctx, request.TripID)
	if err != nil || trip.OwnerID == request.RequesterID {
		return recipients
	}
	return append(recipients, trip.OwnerID)
}
