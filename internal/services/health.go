package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenstem/plantcare-backend/internal/apierr"
	"github.com/greenstem/plantcare-backend/internal/config"
	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/repos"
	"github.com/greenstem/plantcare-backend/internal/types"
)

type HealthService interface {
	RecomputeForPlant(ctx context.Context, tx *gorm.DB, plantID uuid.UUID, now time.Time) (*types.PlantHealthMetric, error)
	GetForPlant(ctx context.Context, plantID uuid.UUID) (*types.PlantHealthMetric, error)
}

type healthService struct {
	db         *gorm.DB
	log        *logger.Logger
	plantRepo  repos.PlantRepo
	metricRepo repos.PlantHealthMetricRepo
	rules      config.CareRules
}

func NewHealthService(db *gorm.DB, log *logger.Logger, plantRepo repos.PlantRepo, metricRepo repos.PlantHealthMetricRepo, rules config.CareRules) HealthService {
	return &healthService{
		db:         db,
		log:        log.With("service", "HealthService"),
		plantRepo:  plantRepo,
		metricRepo: metricRepo,
		rules:      rules,
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// WaterScore decays linearly from 100 at watering time to 0 at one full
// frequency past due, clamped so stale plants never go negative. A plant
// never watered, or with no schedule, scores 100.
func WaterScore(lastWatered *time.Time, waterFrequencyDays int, now time.Time) int {
	if lastWatered == nil || waterFrequencyDays <= 0 {
		return 100
	}
	elapsedDays := now.Sub(*lastWatered).Hours() / 24
	if elapsedDays < 0 {
		elapsedDays = 0
	}
	raw := 100 - (elapsedDays/float64(waterFrequencyDays))*100
	return clampScore(int(math.Round(raw)))
}

// LightScore maps the static light requirement onto a risk score; there is
// no raw light sensor, so the requirement stands in for exposure risk.
func LightScore(lightRequirement string, rules config.CareRules) int {
	switch lightRequirement {
	case types.LightRequirementLow:
		return clampScore(rules.Health.LightScoreLow)
	case types.LightRequirementHigh:
		return clampScore(rules.Health.LightScoreHigh)
	default:
		return clampScore(rules.Health.LightScoreMedium)
	}
}

func OverallScore(waterLevel, lightLevel int) int {
	return clampScore(int(math.Round(float64(waterLevel+lightLevel) / 2)))
}

// RecomputeForPlant upserts the plant's metric row. A missing plant yields
// (nil, nil) rather than an error.
func (hs *healthService) RecomputeForPlant(ctx context.Context, tx *gorm.DB, plantID uuid.UUID, now time.Time) (*types.PlantHealthMetric, error) {
	plants, err := hs.plantRepo.GetByIDs(ctx, tx, []uuid.UUID{plantID})
	if err != nil {
		return nil, apierr.Internal("plant_lookup_failed", err)
	}
	if len(plants) == 0 {
		return nil, nil
	}
	plant := plants[0]

	water := WaterScore(plant.LastWatered, plant.WaterFrequencyDays, now)
	light := LightScore(plant.LightRequirement, hs.rules)
	metric := &types.PlantHealthMetric{
		PlantID:       plant.ID,
		WaterLevel:    water,
		LightLevel:    light,
		OverallHealth: OverallScore(water, light),
		UpdatedAt:     now,
	}
	return hs.metricRepo.Upsert(ctx, tx, metric)
}

func (hs *healthService) GetForPlant(ctx context.Context, plantID uuid.UUID) (*types.PlantHealthMetric, error) {
	metric, err := hs.metricRepo.GetByPlantID(ctx, nil, plantID)
	if err != nil {
		return nil, apierr.Internal("metric_lookup_failed", err)
	}
	return metric, nil
}
