package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/types"
)

type SpeciesProfileRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, profile *types.SpeciesProfile) (*types.SpeciesProfile, error)
	GetByPlantID(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) (*types.SpeciesProfile, error)
}

type speciesProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSpeciesProfileRepo(db *gorm.DB, baseLog *logger.Logger) SpeciesProfileRepo {
	return &speciesProfileRepo{db: db, log: baseLog.With("repo", "SpeciesProfileRepo")}
}

func (sr *speciesProfileRepo) Upsert(ctx context.Context, tx *gorm.DB, profile *types.SpeciesProfile) (*types.SpeciesProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "plant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"scientific_name", "common_name", "care_summary", "taxonomy", "synced_at", "updated_at",
			}),
		}).
		Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (sr *speciesProfileRepo) GetByPlantID(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) (*types.SpeciesProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var result types.SpeciesProfile
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
