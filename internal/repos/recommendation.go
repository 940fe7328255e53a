package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/types"
)

type RecommendationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, recs []*types.Recommendation) ([]*types.Recommendation, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, recIDs []uuid.UUID) ([]*types.Recommendation, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, includeApplied bool) ([]*types.Recommendation, error)
	MarkApplied(ctx context.Context, tx *gorm.DB, recID uuid.UUID) (bool, error)
}

type recommendationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationRepo {
	return &recommendationRepo{db: db, log: baseLog.With("repo", "RecommendationRepo")}
}

func (rr *recommendationRepo) Create(ctx context.Context, tx *gorm.DB, recs []*types.Recommendation) ([]*types.Recommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	if len(recs) == 0 {
		return []*types.Recommendation{}, nil
	}
	for _, r := range recs {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(ctx).Create(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (rr *recommendationRepo) GetByIDs(ctx context.Context, tx *gorm.DB, recIDs []uuid.UUID) ([]*types.Recommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var results []*types.Recommendation
	if len(recIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", recIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *recommendationRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, includeApplied bool) ([]*types.Recommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	q := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if !includeApplied {
		q = q.Where("applied = ?", false)
	}
	var results []*types.Recommendation
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// MarkApplied flips unapplied -> applied once; a second call affects no rows.
func (rr *recommendationRepo) MarkApplied(ctx context.Context, tx *gorm.DB, recID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Recommendation{}).
		Where("id = ? AND applied = ?", recID, false).
		Update("applied", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
