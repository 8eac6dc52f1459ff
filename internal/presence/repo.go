package presence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a presence repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindLocation(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	var location models.Location
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&location).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *repository) CreatePresence(ctx context.Context, presence *models.LocationPresence) error {
	return r.db.WithContext(ctx).Create(presence).Error
}

func (r *repository) FindActivePresence(ctx context.Context, userID, locationID uuid.UUID) (*models.LocationPresence, error) {
	var presence models.LocationPresence
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND location_id = ? AND is_active = ?", userID, locationID, true).
		First(&presence).Error
	if err != nil {
		return nil, err
	}
	return &presence, nil
}

func (r *repository) ClosePresence(ctx context.Context, presenceID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.LocationPresence{}).
		Where("id = ?", presenceID).
		Updates(map[string]any{
			"checked_out_at": at,
			"is_active":      false,
		}).Error
}

func (r *repository) IncrementUserCount(ctx context.Context, locationID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE locations
		SET current_user_count = current_user_count + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, locationID).Error
}

// DecrementUserCount floors the counter at zero so racing checkouts can
// never drive it negative.
func (r *repository) DecrementUserCount(ctx context.Context, locationID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE locations
		SET current_user_count = current_user_count - 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND current_user_count > 0
	`, locationID).Error
}

func (r *repository) CountActiveByLocation(ctx context.Context, locationID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LocationPresence{}).
		Where("location_id = ? AND is_active = ?", locationID, true).
		Count(&count).Error
	return count, err
}
