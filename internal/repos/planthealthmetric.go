package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/types"
)

type PlantHealthMetricRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, metric *types.PlantHealthMetric) (*types.PlantHealthMetric, error)
	GetByPlantID(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) (*types.PlantHealthMetric, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PlantHealthMetric, error)
}

type plantHealthMetricRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlantHealthMetricRepo(db *gorm.DB, baseLog *logger.Logger) PlantHealthMetricRepo {
	return &plantHealthMetricRepo{db: db, log: baseLog.With("repo", "PlantHealthMetricRepo")}
}

// Upsert keys on plant_id so each plant keeps exactly one metric row.
func (mr *plantHealthMetricRepo) Upsert(ctx context.Context, tx *gorm.DB, metric *types.PlantHealthMetric) (*types.PlantHealthMetric, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if metric.ID == uuid.Nil {
		metric.ID = uuid.New()
	}
	if metric.UpdatedAt.IsZero() {
		metric.UpdatedAt = time.Now()
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "plant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"water_level", "light_level", "overall_health", "updated_at",
			}),
		}).
		Create(metric).Error; err != nil {
		return nil, err
	}
	return metric, nil
}

// GetByPlantID returns nil without error when no metric exists yet.
func (mr *plantHealthMetricRepo) GetByPlantID(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) (*types.PlantHealthMetric, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var result types.PlantHealthMetric
	err := transaction.WithContext(ctx).
		Where("plant_id = ?", plantID).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (mr *plantHealthMetricRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PlantHealthMetric, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*types.PlantHealthMetric
	if err := transaction.WithContext(ctx).
		Joins("JOIN plant ON plant.id = plant_health_metric.plant_id").
		Where("plant.user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
