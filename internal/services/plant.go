package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenstem/plantcare-backend/internal/apierr"
	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/repos"
	"github.com/greenstem/plantcare-backend/internal/types"
)

type CreatePlantInput struct {
	Name               string     `json:"name"`
	Species            string     `json:"species"`
	ImageURL           string     `json:"image_url"`
	AcquiredAt         *time.Time `json:"acquired_at"`
	WaterFrequencyDays int        `json:"water_frequency_days"`
	LightRequirement   string     `json:"light_requirement"`
}

type UpdatePlantInput struct {
	Name               *string    `json:"name"`
	Species            *string    `json:"species"`
	ImageURL           *string    `json:"image_url"`
	AcquiredAt         *time.Time `json:"acquired_at"`
	Status             *string    `json:"status"`
	LastWatered        *time.Time `json:"last_watered"`
	WaterFrequencyDays *int       `json:"water_frequency_days"`
	LightRequirement   *string    `json:"light_requirement"`
}

type PlantService interface {
	Create(ctx context.Context, userID uuid.UUID, input CreatePlantInput) (*types.Plant, error)
	Get(ctx context.Context, userID, plantID uuid.UUID) (*types.Plant, error)
	List(ctx context.Context, userID uuid.UUID) ([]*types.Plant, error)
	Update(ctx context.Context, userID, plantID uuid.UUID, input UpdatePlantInput) (*types.Plant, error)
	Delete(ctx context.Context, userID, plantID uuid.UUID) error
	History(ctx context.Context, userID, plantID uuid.UUID, limit, offset int) ([]*types.CareHistory, error)
}

type plantService struct {
	db            *gorm.DB
	log           *logger.Logger
	plantRepo     repos.PlantRepo
	taskRepo      repos.CareTaskRepo
	historyRepo   repos.CareHistoryRepo
	healthService HealthService
}

func NewPlantService(
	db *gorm.DB,
	log *logger.Logger,
	plantRepo repos.PlantRepo,
	taskRepo repos.CareTaskRepo,
	historyRepo repos.CareHistoryRepo,
	healthService HealthService,
) PlantService {
	return &plantService{
		db:            db,
		log:           log.With("service", "PlantService"),
		plantRepo:     plantRepo,
		taskRepo:      taskRepo,
		historyRepo:   historyRepo,
		healthService: healthService,
	}
}

func validatePlantInput(name string, waterFrequencyDays int, lightRequirement string) error {
	if strings.TrimSpace(name) == "" {
		return apierr.Validation("missing_name", fmt.Errorf("plant name is required"))
	}
	if waterFrequencyDays < 0 || waterFrequencyDays > 365 {
		return apierr.Validation("invalid_water_frequency", fmt.Errorf("water frequency must be between 0 and 365 days"))
	}
	if lightRequirement != "" && !types.ValidLightRequirement(lightRequirement) {
		return apierr.Validation("invalid_light_requirement", fmt.Errorf("unknown light requirement %q", lightRequirement))
	}
	return nil
}

// Create stores the plant, seeds its first watering task when a schedule is
// set, and writes the initial health metric.
func (ps *plantService) Create(ctx context.Context, userID uuid.UUID, input CreatePlantInput) (*types.Plant, error) {
	if err := validatePlantInput(input.Name, input.WaterFrequencyDays, input.LightRequirement); err != nil {
		return nil, err
	}
	light := input.LightRequirement
	if light == "" {
		light = types.LightRequirementMedium
	}

	now := time.Now()
	plant := &types.Plant{
		ID:                 uuid.New(),
		UserID:             userID,
		Name:               strings.TrimSpace(input.Name),
		Species:            strings.TrimSpace(input.Species),
		ImageURL:           input.ImageURL,
		AcquiredAt:         input.AcquiredAt,
		Status:             types.PlantStatusHealthy,
		WaterFrequencyDays: input.WaterFrequencyDays,
		LightRequirement:   light,
	}

	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ps.plantRepo.Create(ctx, tx, []*types.Plant{plant}); err != nil {
			return apierr.Internal("plant_create_failed", err)
		}
		if plant.WaterFrequencyDays > 0 {
			task := &types.CareTask{
				ID:       uuid.New(),
				PlantID:  plant.ID,
				TaskType: types.TaskTypeWater,
				DueDate:  now.AddDate(0, 0, plant.WaterFrequencyDays),
			}
			if _, err := ps.taskRepo.Create(ctx, tx, []*types.CareTask{task}); err != nil {
				return apierr.Internal("task_create_failed", err)
			}
		}
		if _, err := ps.healthService.RecomputeForPlant(ctx, tx, plant.ID, now); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plant, nil
}

func (ps *plantService) owned(ctx context.Context, userID, plantID uuid.UUID) (*types.Plant, error) {
	plants, err := ps.plantRepo.GetByIDs(ctx, nil, []uuid.UUID{plantID})
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

func (ps *plantService) Get(ctx context.Context, userID, plantID uuid.UUID) (*types.Plant, error) {
	return ps.owned(ctx, userID, plantID)
}

func (ps *plantService) List(ctx context.Context, userID uuid.UUID) ([]*types.Plant, error) {
	plants, err := ps.plantRepo.ListByUserID(ctx, nil, userID)
	if err != nil {
		return nil, apierr.Internal("plant_list_failed", err)
	}
	return plants, nil
}

func (ps *plantService) Update(ctx context.Context, userID, plantID uuid.UUID, input UpdatePlantInput) (*types.Plant, error) {
	plant, err := ps.owned(ctx, userID, plantID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	wateringChanged := false
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apierr.Validation("missing_name", fmt.Errorf("plant name is required"))
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Species != nil {
		updates["species"] = strings.TrimSpace(*input.Species)
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}
	if input.AcquiredAt != nil {
		updates["acquired_at"] = *input.AcquiredAt
	}
	if input.Status != nil {
		switch *input.Status {
		case types.PlantStatusHealthy, types.PlantStatusNeedsCare, types.PlantStatusNeedsAttention:
			updates["status"] = *input.Status
		default:
			return nil, apierr.Validation("invalid_status", fmt.Errorf("unknown status %q", *input.Status))
		}
	}
	if input.LastWatered != nil {
		updates["last_watered"] = *input.LastWatered
		wateringChanged = true
	}
	if input.WaterFrequencyDays != nil {
		if *input.WaterFrequencyDays < 0 || *input.WaterFrequencyDays > 365 {
			return nil, apierr.Validation("invalid_water_frequency", fmt.Errorf("water frequency must be between 0 and 365 days"))
		}
		updates["water_frequency_days"] = *input.WaterFrequencyDays
		wateringChanged = true
	}
	if input.LightRequirement != nil {
		if !types.ValidLightRequirement(*input.LightRequirement) {
			return nil, apierr.Validation("invalid_light_requirement", fmt.Errorf("unknown light requirement %q", *input.LightRequirement))
		}
		updates["light_requirement"] = *input.LightRequirement
		wateringChanged = true
	}
	if len(updates) == 0 {
		return plant, nil
	}

	err = ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ps.plantRepo.Update(ctx, tx, plant.ID, updates); err != nil {
			return apierr.Internal("plant_update_failed", err)
		}
		if wateringChanged {
			if _, err := ps.healthService.RecomputeForPlant(ctx, tx, plant.ID, time.Now()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	refreshed, err := ps.plantRepo.GetByIDs(ctx, nil, []uuid.UUID{plant.ID})
	if err != nil || len(refreshed) == 0 {
		return nil, apierr.Internal("plant_lookup_failed", err)
	}
	return refreshed[0], nil
}

// Delete removes the plant row; tasks, recommendations, history, metric, and
// species profile go with it via the FK cascades.
func (ps *plantService) Delete(ctx context.Context, userID, plantID uuid.UUID) error {
	plant, err := ps.owned(ctx, userID, plantID)
	if err != nil {
		return err
	}
	if err := ps.plantRepo.Delete(ctx, nil, plant.ID); err != nil {
		return apierr.Internal("plant_delete_failed", err)
	}
	ps.log.Info("Deleted plant", "plant_id", plant.ID, "user_id", userID)
	return nil
}

func (ps *plantService) History(ctx context.Context, userID, plantID uuid.UUID, limit, offset int) ([]*types.CareHistory, error) {
	if _, err := ps.owned(ctx, userID, plantID); err != nil {
		return nil, err
	}
	entries, err := ps.historyRepo.ListByPlantID(ctx, nil, plantID, limit, offset)
	if err != nil {
		return nil, apierr.Internal("history_list_failed", err)
	}
	return entries, nil
}
