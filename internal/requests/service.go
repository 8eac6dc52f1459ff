package requests

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wayhaul/wayhaul-backend/internal/trips"
	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
	"github.com/wayhaul/wayhaul-backend/pkg/enums"
	pkgerrors "github.com/wayhaul/wayhaul-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines delivery request lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateRequestInput) (*models.DeliveryRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*models.DeliveryRequest, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) (*RequestList, error)
	Accept(ctx context.Context, id uuid.UUID) (*models.DeliveryRequest, error)
	MarkPurchased(ctx context.Context, id uuid.UUID) (*models.DeliveryRequest, error)
	Complete(ctx context.Context, id uuid.UUID) (*models.DeliveryRequest, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.DeliveryRequest, error)
	RecordActualPrice(ctx context.Context, requestID, itemID uuid.UUID, price decimal.Decimal) (*models.DeliveryRequest, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	trips    trips.Repository
	capacity trips.CapacityEscrow
	now      func() time.Time
}

// NewService builds a request service with the required dependencies.
func NewService(repo Repository, tx txRunner, tripsRepo trips.Repository, capacity trips.CapacityEscrow) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("requests repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if tripsRepo == nil {
		return nil, fmt.Errorf("trips repository required")
	}
	if capacity == nil {
		return nil, fmt.Errorf("capacity escrow required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		trips:    tripsRepo,
		capacity: capacity,
		now:      time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateRequestInput) (*models.DeliveryRequest, error) {
	violations := map[string]string{}

	if input.TripID == uuid.Nil {
		violations["trip_id"] = "trip id is required"
	}
	if input.RequesterID == uuid.Nil {
		violations["requester_id"] = "requester id is required"
	}
	if len(input.Items) == 0 {
		violations["items"] = "at least one item is required"
	}
	for i, item := range input.Items {
		if item.Name == "" {
			violations[fmt.Sprintf("items[%d].name", i)] = "item name is required"
		}
		if item.Quantity < 1 {
			violations[fmt.Sprintf("items[%d].quantity", i)] = "quantity must be at least 1"
		}
		if item.EstimatedPrice.IsNegative() {
			violations[fmt.Sprintf("items[%d].estimated_price", i)] = "estimated price must not be negative"
		}
	}
	if missing := input.DeliveryAddress.MissingFields(); len(missing) > 0 {
		violations["delivery_address"] = fmt.Sprintf("missing fields: %v", missing)
	}
	if input.MaxItemBudget.IsNegative() {
		violations["max_item_budget"] = "budget must not be negative"
	}
	if input.DeliveryFee.IsNegative() {
		violations["delivery_fee"] = "delivery fee must not be negative"
	}

	if len(violations) == 0 {
		estimate := decimal.Zero
		for _, item := range input.Items {
			estimate = estimate.Add(item.EstimatedPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		if estimate.GreaterThan(input.MaxItemBudget) {
			violations["max_item_budget"] = "estimated items total exceeds budget"
		}
	}

	if len(violations) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery request").WithDetails(violations)
	}

	trip, err := s.trips.FindByID(ctx, input.TripID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip")
	}
	if !trips.TripCanAcceptRequests(trip) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "trip is not accepting requests")
	}

	request := &models.DeliveryRequest{
		TripID:              input.TripID,
		RequesterID:         input.RequesterID,
		DeliveryAddress:     input.DeliveryAddress,
		MaxItemBudget:       input.MaxItemBudget,
		DeliveryFee:         input.DeliveryFee,
		SpecialInstructions: input.SpecialInstructions,
		Status:              enums.RequestStatusPending,
	}
	for i, item := range input.Items {
		request.Items = append(request.Items, models.RequestItem{
			Name:           item.Name,
			Description:    item.Description,
			Quantity:       item.Quantity,
			EstimatedPrice: item.EstimatedPrice,
			Position:       i,
		})
	}

	created, err := s.repo.Create(ctx, request)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery request")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.DeliveryRequest, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
	}
	return request, nil
}

func (s *service) ListByTrip(ctx context.Context, tripID uuid.UUID) (*RequestList, error) {
	if tripID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trip id required")
	}
	list, err := s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requests")
	}
	return &RequestList{Requests: list}, nil
}

// Accept moves a pending request to accepted and reserves one unit of trip
// capacity in the same transaction, so the slot and the status never diverge.
func (s *service) Accept(ctx context.Context, id uuid.UUID) (*models.DeliveryRequest, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}

	var accepted *models.DeliveryRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		request, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
		}

		if !request.Status.CanTransitionTo(enums.RequestStatusAccepted) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request cannot be accepted in current state").
				WithDetails(map[string]string{"status": request.Status.String()})
		}

		trip, err := s.trips.WithTx(tx).FindByID(ctx, request.TripID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip")
		}
		if !trips.TripCanAcceptRequests(trip) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "trip is not accepting requests")
		}

		if err := s.capacity.Reserve(ctx, tx, request.TripID, 1); err != nil {
			return err
		}

		now := s.now().UTC()
		updates := map[string]any{
			"status":      enums.RequestStatusAccepted,
			"accepted_at": now,
			"updated_at":  now,
		}
		if err := repo.Update(ctx, request.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept request")
		}

		request.Status = enums.RequestStatusAccepted
		request.AcceptedAt = &now
		request.UpdatedAt = now
		accepted = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

func (s *service) MarkPurchased(ctx context.Context, id uuid.UUID) (*models.DeliveryRequest, error) {
	return s.transition(ctx, id, enums.RequestStatusPurchased)
}

func (s *service) Complete(ctx context.Context, id uuid.UUID) (*models.DeliveryRequest, error) {
	return s.transition(ctx, id, enums.RequestStatusDelivered)
}

// Cancel is only reachable from pending or accepted. Cancelling an accepted
// request returns its capacity unit to the trip in the same transaction.
func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*models.DeliveryRequest, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}

	var cancelled *models.DeliveryRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		request, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
		}

		if !request.Status.CanTransitionTo(enums.RequestStatusCancelled) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request cannot be cancelled in current state").
				WithDetails(map[string]string{"status": request.Status.String()})
		}

		wasAccepted := request.Status == enums.RequestStatusAccepted

		now := s.now().UTC()
		updates := map[string]any{
			"status":     enums.RequestStatusCancelled,
			"updated_at": now,
		}
		if err := repo.Update(ctx, request.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel request")
		}

		if wasAccepted {
			if err := s.capacity.Release(ctx, tx, request.TripID, 1); err != nil {
				return err
			}
		}

		request.Status = enums.RequestStatusCancelled
		request.UpdatedAt = now
		cancelled = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (s *service) RecordActualPrice(ctx context.Context, requestID, itemID uuid.UUID, price decimal.Decimal) (*models.DeliveryRequest, error) {
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actual price must not be negative")
	}

	request, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	switch request.Status {
	case enums.RequestStatusAccepted, enums.RequestStatusPurchased:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "actual prices can only be recorded after acceptance")
	}

	found := false
	for _, item := range request.Items {
		if item.ID == itemID {
			found = true
			break
		}
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found on request")
	}

	if err := s.repo.SetItemActualPrice(ctx, itemID, price); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found on request")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record actual price")
	}

	return s.Get(ctx, requestID)
}

func (s *service) transition(ctx context.Context, id uuid.UUID, target enums.RequestStatus) (*models.DeliveryRequest, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}

	var updated *models.DeliveryRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		request, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
		}

		if !request.Status.CanTransitionTo(target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request status transition not allowed").
				WithDetails(map[string]string{
					"from": request.Status.String(),
					"to":   target.String(),
				})
		}

		now := s.now().UTC()
		updates := map[string]any{
			"status":     target,
			"updated_at": now,
		}
		if target == enums.RequestStatusDelivered {
			updates["completed_at"] = now
		}
		if err := repo.Update(ctx, request.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update request status")
		}

		request.Status = target
		request.UpdatedAt = now
		if target == enums.RequestStatusDelivered {
			request.CompletedAt = &now
		}
		updated = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
