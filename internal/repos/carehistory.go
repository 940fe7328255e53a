package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/types"
)

type CareHistoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entries []*types.CareHistory) ([]*types.CareHistory, error)
	ListByPlantID(ctx context.Context, tx *gorm.DB, plantID uuid.UUID, limit, offset int) ([]*types.CareHistory, error)
	ListRecentByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.CareHistory, error)
}

type careHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCareHistoryRepo(db *gorm.DB, baseLog *logger.Logger) CareHistoryRepo {
	return &careHistoryRepo{db: db, log: baseLog.With("repo", "CareHistoryRepo")}
}

func (hr *careHistoryRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.CareHistory) ([]*types.CareHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	if len(entries) == 0 {
		return []*types.CareHistory{}, nil
	}
	for _, e := range entries {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (hr *careHistoryRepo) ListByPlantID(ctx context.Context, tx *gorm.DB, plantID uuid.UUID, limit, offset int) ([]*types.CareHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	q := transaction.WithContext(ctx).
		Where("plant_id = ?", plantID).
		Order("performed_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var results []*types.CareHistory
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (hr *careHistoryRepo) ListRecentByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.CareHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	q := transaction.WithContext(ctx).
		Joins("JOIN plant ON plant.id = care_history.plant_id").
		Where("plant.user_id = ?", userID).
		Order("care_history.performed_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var results []*types.CareHistory
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
