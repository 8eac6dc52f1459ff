package trips

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
	"github.com/wayhaul/wayhaul-backend/pkg/enums"
	"github.com/wayhaul/wayhaul-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a trips repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, trip *models.Trip) (*models.Trip, error) {
	if err := r.db.WithContext(ctx).Create(trip).Error; err != nil {
		return nil, err
	}
	return trip, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&trip).Error
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*TripList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.Trip{}).Where("owner_id = ?", ownerID)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var trips []models.Trip
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&trips).Error; err != nil {
		return nil, err
	}

	list := &TripList{Trips: trips}
	if len(trips) > normalized {
		next := trips[normalized]
		list.Trips = trips[:normalized]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
	}
	return list, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TripStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Trip{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

// ReserveCapacity decrements the available counter only when enough units
// remain. A false return means the conditional update matched no row.
func (r *repository) ReserveCapacity(ctx context.Context, id uuid.UUID, units int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE trips
		SET available_capacity = available_capacity - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND available_capacity >= ?
	`, units, id, units)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReleaseCapacity increments the available counter, clamped at capacity.
// Rows already at capacity are left untouched so updated_at stays put.
func (r *repository) ReleaseCapacity(ctx context.Context, id uuid.UUID, units int) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE trips
		SET available_capacity = CASE
				WHEN available_capacity + ? > capacity THEN capacity
				ELSE available_capacity + ?
			END,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND available_capacity < capacity
	`, units, units, id)
	return res.Error
}

func (r *repository) FindAnnouncedDepartedBefore(ctx context.Context, cutoff time.Time) ([]models.Trip, error) {
	var trips []models.Trip
	err := r.db.WithContext(ctx).
		Where("status = ? AND departure_time < ?", enums.TripStatusAnnounced, cutoff).
		Order("departure_time ASC").
		Find(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}
