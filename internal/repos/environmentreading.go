package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/types"
)

type EnvironmentReadingRepo interface {
	Create(ctx context.Context, tx *gorm.DB, readings []*types.EnvironmentReading) ([]*types.EnvironmentReading, error)
	LatestByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.EnvironmentReading, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.EnvironmentReading, error)
}

type environmentReadingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnvironmentReadingRepo(db *gorm.DB, baseLog *logger.Logger) EnvironmentReadingRepo {
	return &environmentReadingRepo{db: db, log: baseLog.With("repo", "EnvironmentReadingRepo")}
}

func (er *environmentReadingRepo) Create(ctx context.Context, tx *gorm.DB, readings []*types.EnvironmentReading) ([]*types.EnvironmentReading, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	if len(readings) == 0 {
		return []*types.EnvironmentReading{}, nil
	}
	for _, r := range readings {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(ctx).Create(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}

// LatestByUserID returns nil without error when the user has no readings yet.
func (er *environmentReadingRepo) LatestByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.EnvironmentReading, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var result types.EnvironmentReading
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC").
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (er *environmentReadingRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.EnvironmentReading, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var results []*types.EnvironmentReading
	q := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
