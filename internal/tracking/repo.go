package tracking

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
	"github.com/wayhaul/wayhaul-backend/pkg/enums"
	"github.com/wayhaul/wayhaul-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a tracking repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Append(ctx context.Context, update *models.StatusUpdate) (*models.StatusUpdate, error) {
	if err := r.db.WithContext(ctx).Create(update).Error; err != nil {
		return nil, err
	}
	return update, nil
}

func (r *repository) History(ctx context.Context, entityType enums.StatusEntityType, entityID uuid.UUID, window pagination.Window) ([]models.StatusUpdate, error) {
	window = window.Normalize()

	var updates []models.StatusUpdate
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("timestamp ASC, id ASC").
		Limit(window.Limit).
		Offset(window.Offset).
		Find(&updates).Error
	if err != nil {
		return nil, err
	}
	return updates, nil
}

func (r *repository) Latest(ctx context.Context, entityType enums.StatusEntityType, entityID uuid.UUID) (*models.StatusUpdate, error) {
	var update models.StatusUpdate
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("timestamp DESC, id DESC").
		First(&update).Error
	if err != nil {
		return nil, err
	}
	return &update, nil
}
