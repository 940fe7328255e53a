package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/types"
)

type CareTaskRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tasks []*types.CareTask) ([]*types.CareTask, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, taskIDs []uuid.UUID) ([]*types.CareTask, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, includeTerminal bool) ([]*types.CareTask, error)
	ListUpcomingByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from time.Time, limit int) ([]*types.CareTask, error)
	CountPendingDueBy(ctx context.Context, tx *gorm.DB, userID uuid.UUID, by time.Time) (int64, error)
	MarkCompleted(ctx context.Context, tx *gorm.DB, taskID uuid.UUID, at time.Time) (bool, error)
	MarkSkipped(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) (bool, error)
}

type careTaskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCareTaskRepo(db *gorm.DB, baseLog *logger.Logger) CareTaskRepo {
	return &careTaskRepo{db: db, log: baseLog.With("repo", "CareTaskRepo")}
}

func (cr *careTaskRepo) Create(ctx context.Context, tx *gorm.DB, tasks []*types.CareTask) ([]*types.CareTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if len(tasks) == 0 {
		return []*types.CareTask{}, nil
	}
	for _, t := range tasks {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(ctx).Create(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (cr *careTaskRepo) GetByIDs(ctx context.Context, tx *gorm.DB, taskIDs []uuid.UUID) ([]*types.CareTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.CareTask
	if len(taskIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", taskIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *careTaskRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, includeTerminal bool) ([]*types.CareTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	q := transaction.WithContext(ctx).
		Joins("JOIN plant ON plant.id = care_task.plant_id").
		Where("plant.user_id = ?", userID).
		Order("care_task.due_date ASC")
	if !includeTerminal {
		q = q.Where("care_task.completed = ? AND care_task.skipped = ?", false, false)
	}
	var results []*types.CareTask
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *careTaskRepo) ListUpcomingByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from time.Time, limit int) ([]*types.CareTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	q := transaction.WithContext(ctx).
		Joins("JOIN plant ON plant.id = care_task.plant_id").
		Where("plant.user_id = ?", userID).
		Where("care_task.completed = ? AND care_task.skipped = ?", false, false).
		Where("care_task.due_date >= ?", from).
		Order("care_task.due_date ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var results []*types.CareTask
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *careTaskRepo) CountPendingDueBy(ctx context.Context, tx *gorm.DB, userID uuid.UUID, by time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.CareTask{}).
		Joins("JOIN plant ON plant.id = care_task.plant_id").
		Where("plant.user_id = ?", userID).
		Where("care_task.completed = ? AND care_task.skipped = ?", false, false).
		Where("care_task.due_date <= ?", by).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkCompleted transitions pending -> completed in a single conditional
// update, so two concurrent completions cannot both win.
func (cr *careTaskRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, taskID uuid.UUID, at time.Time) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.CareTask{}).
		Where("id = ? AND completed = ? AND skipped = ?", taskID, false, false).
		Updates(map[string]interface{}{
			"completed":      true,
			"completed_date": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (cr *careTaskRepo) MarkSkipped(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.CareTask{}).
		Where("id = ? AND completed = ? AND skipped = ?", taskID, false, false).
		Update("skipped", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
