package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenstem/plantcare-backend/internal/apierr"
	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/repos"
	"github.com/greenstem/plantcare-backend/internal/types"
)

type CareTaskService interface {
	Create(ctx context.Context, userID, plantID uuid.UUID, taskType string, dueDate time.Time) (*types.CareTask, error)
	Complete(ctx context.Context, userID, taskID uuid.UUID) (*types.CareTask, error)
	Skip(ctx context.Context, userID, taskID uuid.UUID) (*types.CareTask, error)
	ListForUser(ctx context.Context, userID uuid.UUID, includeTerminal bool) ([]*types.CareTask, error)
}

type careTaskService struct {
	db            *gorm.DB
	log           *logger.Logger
	taskRepo      repos.CareTaskRepo
	plantRepo     repos.PlantRepo
	historyRepo   repos.CareHistoryRepo
	healthService HealthService
}

func NewCareTaskService(
	db *gorm.DB,
	log *logger.Logger,
	taskRepo repos.CareTaskRepo,
	plantRepo repos.PlantRepo,
	historyRepo repos.CareHistoryRepo,
	healthService HealthService,
) CareTaskService {
	return &careTaskService{
		db:            db,
		log:           log.With("service", "CareTaskService"),
		taskRepo:      taskRepo,
		plantRepo:     plantRepo,
		historyRepo:   historyRepo,
		healthService: healthService,
	}
}

func (cs *careTaskService) ownedPlant(ctx context.Context, tx *gorm.DB, userID, plantID uuid.UUID) (*types.Plant, error) {
	plants, err := cs.plantRepo.GetByIDs(ctx, tx, []uuid.UUID{plantID})
	if err != nil {
		return nil, apierr.Internal("plant_lookup_failed", err)
	}
	if len(plants) == 0 {
		return nil, apierr.NotFound("plant_not_found", fmt.Errorf("plant %s not found", plantID))
	}
	if plants[0].UserID != userID {
		return nil, apierr.Forbidden("plant_forbidden", fmt.Errorf("plant %s belongs to another user", plantID))
	}
	return plants[0], nil
}

func (cs *careTaskService) ownedTask(ctx context.Context, tx *gorm.DB, userID, taskID uuid.UUID) (*types.CareTask, *types.Plant, error) {
	tasks, err := cs.taskRepo.GetByIDs(ctx, tx, []uuid.UUID{taskID})
	if err != nil {
		return nil, nil, apierr.Internal("task_lookup_failed", err)
	}
	if len(tasks) == 0 {
		return nil, nil, apierr.NotFound("task_not_found", fmt.Errorf("care task %s not found", taskID))
	}
	task := tasks[0]
	plant, err := cs.ownedPlant(ctx, tx, userID, task.PlantID)
	if err != nil {
		return nil, nil, err
	}
	return task, plant, nil
}

func (cs *careTaskService) Create(ctx context.Context, userID, plantID uuid.UUID, taskType string, dueDate time.Time) (*types.CareTask, error) {
	if !types.ValidTaskType(taskType) {
		return nil, apierr.Validation("invalid_task_type", fmt.Errorf("unknown task type %q", taskType))
	}
	if _, err := cs.ownedPlant(ctx, nil, userID, plantID); err != nil {
		return nil, err
	}
	task := &types.CareTask{
		ID:       uuid.New(),
		PlantID:  plantID,
		TaskType: taskType,
		DueDate:  dueDate,
	}
	created, err := cs.taskRepo.Create(ctx, nil, []*types.CareTask{task})
	if err != nil {
		return nil, apierr.Internal("task_create_failed", err)
	}
	return created[0], nil
}

// Complete transitions the task terminally, logs history, and for watering
// tasks advances the plant's schedule: lastWatered moves to the completion
// time, a fresh pending watering task is created one frequency out, and the
// health metric is recomputed. The conditional update makes double
// completion (or a concurrent racer) a conflict instead of a second
// recurrence.
func (cs *careTaskService) Complete(ctx context.Context, userID, taskID uuid.UUID) (*types.CareTask, error) {
	now := time.Now()
	var completed *types.CareTask
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, plant, err := cs.ownedTask(ctx, tx, userID, taskID)
		if err != nil {
			return err
		}
		won, err := cs.taskRepo.MarkCompleted(ctx, tx, task.ID, now)
		if err != nil {
			return apierr.Internal("task_complete_failed", err)
		}
		if !won {
			return apierr.Conflict("task_already_closed", fmt.Errorf("care task %s is already completed or skipped", task.ID))
		}
		task.Completed = true
		task.CompletedDate = &now

		history := &types.CareHistory{
			ID:          uuid.New(),
			PlantID:     plant.ID,
			ActionType:  "completed_" + task.TaskType,
			Notes:       fmt.Sprintf("Completed %s task for %s", task.TaskType, plant.Name),
			PerformedAt: now,
		}
		if _, err := cs.historyRepo.Create(ctx, tx, []*types.CareHistory{history}); err != nil {
			return apierr.Internal("history_write_failed", err)
		}

		if task.TaskType == types.TaskTypeWater {
			if err := cs.plantRepo.Update(ctx, tx, plant.ID, map[string]interface{}{
				"last_watered": now,
				"status":       types.PlantStatusHealthy,
			}); err != nil {
				return apierr.Internal("plant_update_failed", err)
			}
			if plant.WaterFrequencyDays > 0 {
				next := &types.CareTask{
					ID:       uuid.New(),
					PlantID:  plant.ID,
					TaskType: types.TaskTypeWater,
					DueDate:  now.AddDate(0, 0, plant.WaterFrequencyDays),
				}
				if _, err := cs.taskRepo.Create(ctx, tx, []*types.CareTask{next}); err != nil {
					return apierr.Internal("task_create_failed", err)
				}
			}
			if _, err := cs.healthService.RecomputeForPlant(ctx, tx, plant.ID, now); err != nil {
				return err
			}
		}

		completed = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

// Skip closes the task without advancing the schedule; the next occurrence
// is only ever created by a completion.
func (cs *careTaskService) Skip(ctx context.Context, userID, taskID uuid.UUID) (*types.CareTask, error) {
	now := time.Now()
	var skipped *types.CareTask
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, plant, err := cs.ownedTask(ctx, tx, userID, taskID)
		if err != nil {
			return err
		}
		won, err := cs.taskRepo.MarkSkipped(ctx, tx, task.ID)
		if err != nil {
			return apierr.Internal("task_skip_failed", err)
		}
		if !won {
			return apierr.Conflict("task_already_closed", fmt.Errorf("care task %s is already completed or skipped", task.ID))
		}
		task.Skipped = true

		history := &types.CareHistory{
			ID:          uuid.New(),
			PlantID:     plant.ID,
			ActionType:  "skipped_" + task.TaskType,
			Notes:       fmt.Sprintf("Skipped %s task for %s", task.TaskType, plant.Name),
			PerformedAt: now,
		}
		if _, err := cs.historyRepo.Create(ctx, tx, []*types.CareHistory{history}); err != nil {
			return apierr.Internal("history_write_failed", err)
		}
		skipped = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return skipped, nil
}

func (cs *careTaskService) ListForUser(ctx context.Context, userID uuid.UUID, includeTerminal bool) ([]*types.CareTask, error) {
	tasks, err := cs.taskRepo.ListByUserID(ctx, nil, userID, includeTerminal)
	if err != nil {
		return nil, apierr.Internal("task_list_failed", err)
	}
	return tasks, nil
}
