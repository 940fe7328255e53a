package services

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenstem/plantcare-backend/internal/apierr"
	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/repos"
)

type CareTipService interface {
	TipForPlant(ctx context.Context, userID, plantID uuid.UUID) (string, error)
}

type careTipService struct {
	db          *gorm.DB
	log         *logger.Logger
	plantRepo   repos.PlantRepo
	readingRepo repos.EnvironmentReadingRepo
	weather     WeatherClient
	generator   TextGenerator
	location    string
}

func NewCareTipService(
	db *gorm.DB,
	log *logger.Logger,
	plantRepo repos.PlantRepo,
	readingRepo repos.EnvironmentReadingRepo,
	weather WeatherClient,
	generator TextGenerator,
) CareTipService {
	return &careTipService{
		db:          db,
		log:         log.With("service", "CareTipService"),
		plantRepo:   plantRepo,
		readingRepo: readingRepo,
		weather:     weather,
		generator:   generator,
		location:    os.Getenv("WEATHER_DEFAULT_LOCATION"),
	}
}

// conditions prefers live weather; a failed fetch falls back to the latest
// stored reading. No conditions at all means the tip cannot be computed.
func (ct *careTipService) conditions(ctx context.Context, userID uuid.UUID) (*CurrentConditions, error) {
	if ct.weather != nil {
		cond, err := ct.weather.Current(ctx, ct.location)
		if err == nil {
			return cond, nil
		}
		ct.log.Warn("Weather fetch failed, trying stored reading", "error", err)
	}
	reading, err := ct.readingRepo.LatestByUserID(ctx, nil, userID)
	if err != nil {
		return nil, apierr.Internal("reading_lookup_failed", err)
	}
	if reading == nil {
		return nil, apierr.ExternalService("conditions_unavailable", fmt.Errorf("no weather data and no stored environment readings"))
	}
	return &CurrentConditions{
		Temperature:  reading.Temperature,
		Humidity:     reading.Humidity,
		SoilMoisture: reading.SoilMoisture,
		LightLevel:   reading.LightLevel,
	}, nil
}

func (ct *careTipService) TipForPlant(ctx context.Context, userID, plantID uuid.UUID) (string, error) {
	plants, err := ct.plantRepo.GetByIDs(ctx, nil, []uuid.UUID{plantID})
	if err != nil {
		return "", apierr.Internal("plant_lookup_failed", err)
	}
	if len(plants) == 0 {
		return "", apierr.NotFound("plant_not_found", fmt.Errorf("plant %s not found", plantID))
	}
	plant := plants[0]
	if plant.UserID != userID {
		return "", apierr.Forbidden("plant_forbidden", fmt.Errorf("plant %s belongs to another user", plantID))
	}

	cond, err := ct.conditions(ctx, userID)
	if err != nil {
		return "", err
	}

	if ct.generator == nil {
		return "", apierr.ExternalService("generator_not_configured", fmt.Errorf("text generation is not configured"))
	}

	lastWatered := "never"
	if plant.LastWatered != nil {
		lastWatered = plant.LastWatered.Format("2006-01-02")
	}
	prompt := fmt.Sprintf(
		"Give a short care tip for %s (species: %s), watered every %d days, last watered %s, light requirement %s. "+
			"Current conditions: %.1fC, humidity %.0f%%, soil moisture %.0f%%.",
		plant.Name, plant.Species, plant.WaterFrequencyDays, lastWatered, plant.LightRequirement,
		cond.Temperature, cond.Humidity, cond.SoilMoisture,
	)
	tip, err := ct.generator.GenerateText(ctx, "You are a concise plant-care assistant.", prompt)
	if err != nil {
		ct.log.Warn("Care tip generation failed", "plant_id", plantID, "error", err)
		return "", apierr.ExternalService("tip_generation_failed", err)
	}
	return tip, nil
}
