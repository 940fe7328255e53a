package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/types"
)

type PlantRepo interface {
	Create(ctx context.Context, tx *gorm.DB, plants []*types.Plant) ([]*types.Plant, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, plantIDs []uuid.UUID) ([]*types.Plant, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Plant, error)
	CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	Update(ctx context.Context, tx *gorm.DB, plantID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) error
}

type plantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlantRepo(db *gorm.DB, baseLog *logger.Logger) PlantRepo {
	return &plantRepo{db: db, log: baseLog.With("repo", "PlantRepo")}
}

func (pr *plantRepo) Create(ctx context.Context, tx *gorm.DB, plants []*types.Plant) ([]*types.Plant, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if len(plants) == 0 {
		return []*types.Plant{}, nil
	}
	for _, p := range plants {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(ctx).Create(&plants).Error; err != nil {
		return nil, err
	}
	return plants, nil
}

func (pr *plantRepo) GetByIDs(ctx context.Context, tx *gorm.DB, plantIDs []uuid.UUID) ([]*types.Plant, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.Plant
	if len(plantIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", plantIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *plantRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Plant, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.Plant
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *plantRepo) CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Plant{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (pr *plantRepo) Update(ctx context.Context, tx *gorm.DB, plantID uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Plant{}).
		Where("id = ?", plantID).
		Updates(updates).Error
}

func (pr *plantRepo) Delete(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", plantID).
		Delete(&types.Plant{}).Error
}
