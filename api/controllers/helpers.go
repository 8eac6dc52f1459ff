package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wayhaul/wayhaul-backend/api/middleware"
	"github.com/wayhaul/wayhaul-backend/internal/notifications"
	"github.com/wayhaul/wayhaul-backend/internal/tracking"
	"github.com/wayhaul/wayhaul-backend/pkg/enums"
	pkgerrors "github.com/wayhaul/wayhaul-backend/pkg/errors"
	"github.com/wayhaul/wayhaul-backend/pkg/logger"
)

func callerID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return id, nil
}

func pathUUID(r *http.Request, param, field string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, field+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return id, nil
}

// recordStatusChange appends a status log entry and fans notifications out to
// the given recipients. The state transition has already committed, so
// failures here are logged instead of surfaced to the caller.
func recordStatusChange(ctx context.Context, logg *logger.Logger, tracker tracking.Service, notifier notifications.Service, entityType enums.StatusEntityType, entityID uuid.UUID, status string, recipients []uuid.UUID) {
	if tracker == nil {
		return
	}
	result, err := tracker.Record(ctx, tracking.RecordInput{
		EntityType: entityType,
		EntityID:   entityID,
		Status:     status,
		Options:    tracking.DispatchOptions{NotifyUsers: true, SendRealTimeUpdates: true},
	})
	if err != nil {
		if logg != nil {
			logg.Error(ctx, "record status change", err)
		}
		return
	}
	if notifier == nil {
		return
	}
	if _, err := notifier.Dispatch(ctx, result, recipients); err != nil && logg != nil {
		logg.Error(ctx, "dispatch status notifications", err)
	}
}
