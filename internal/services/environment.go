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

type RecordReadingInput struct {
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	LightLevel   string  `json:"light_level"`
	SoilMoisture float64 `json:"soil_moisture"`
}

type EnvironmentService interface {
	Record(ctx context.Context, userID uuid.UUID, input RecordReadingInput) (*types.EnvironmentReading, error)
	Latest(ctx context.Context, userID uuid.UUID) (*types.EnvironmentReading, error)
	SyncFromWeather(ctx context.Context, userID uuid.UUID, location string) (*types.EnvironmentReading, error)
}

type environmentService struct {
	db          *gorm.DB
	log         *logger.Logger
	readingRepo repos.EnvironmentReadingRepo
	weather     WeatherClient
}

func NewEnvironmentService(db *gorm.DB, log *logger.Logger, readingRepo repos.EnvironmentReadingRepo, weather WeatherClient) EnvironmentService {
	return &environmentService{
		db:          db,
		log:         log.With("service", "EnvironmentService"),
		readingRepo: readingRepo,
		weather:     weather,
	}
}

func validateReading(input RecordReadingInput) error {
	if input.Humidity < 0 || input.Humidity > 100 {
		return apierr.Validation("invalid_humidity", fmt.Errorf("humidity must be between 0 and 100"))
	}
	if input.SoilMoisture < 0 || input.SoilMoisture > 100 {
		return apierr.Validation("invalid_soil_moisture", fmt.Errorf("soil moisture must be between 0 and 100"))
	}
	if input.Temperature < -50 || input.Temperature > 60 {
		return apierr.Validation("invalid_temperature", fmt.Errorf("temperature out of range"))
	}
	switch input.LightLevel {
	case "", types.LightLevelLow, types.LightLevelMedium, types.LightLevelHigh:
	default:
		return apierr.Validation("invalid_light_level", fmt.Errorf("unknown light level %q", input.LightLevel))
	}
	return nil
}

func (es *environmentService) Record(ctx context.Context, userID uuid.UUID, input RecordReadingInput) (*types.EnvironmentReading, error) {
	if err := validateReading(input); err != nil {
		return nil, err
	}
	reading := &types.EnvironmentReading{
		ID:           uuid.New(),
		UserID:       userID,
		Temperature:  input.Temperature,
		Humidity:     input.Humidity,
		LightLevel:   input.LightLevel,
		SoilMoisture: input.SoilMoisture,
		RecordedAt:   time.Now(),
	}
	created, err := es.readingRepo.Create(ctx, nil, []*types.EnvironmentReading{reading})
	if err != nil {
		return nil, apierr.Internal("reading_create_failed", err)
	}
	return created[0], nil
}

func (es *environmentService) Latest(ctx context.Context, userID uuid.UUID) (*types.EnvironmentReading, error) {
	reading, err := es.readingRepo.LatestByUserID(ctx, nil, userID)
	if err != nil {
		return nil, apierr.Internal("reading_lookup_failed", err)
	}
	if reading == nil {
		return nil, apierr.NotFound("no_readings", fmt.Errorf("no environment readings recorded yet"))
	}
	return reading, nil
}

// SyncFromWeather pulls current conditions from the weather API and appends
// them as a reading. The weather call has no fallback here; failures surface
// as 503.
func (es *environmentService) SyncFromWeather(ctx context.Context, userID uuid.UUID, location string) (*types.EnvironmentReading, error) {
	if es.weather == nil {
		return nil, apierr.ExternalService("weather_not_configured", fmt.Errorf("weather API is not configured"))
	}
	cond, err := es.weather.Current(ctx, location)
	if err != nil {
		return nil, err
	}
	reading := &types.EnvironmentReading{
		ID:           uuid.New(),
		UserID:       userID,
		Temperature:  cond.Temperature,
		Humidity:     cond.Humidity,
		LightLevel:   cond.LightLevel,
		SoilMoisture: cond.SoilMoisture,
		RecordedAt:   time.Now(),
	}
	created, err := es.readingRepo.Create(ctx, nil, []*types.EnvironmentReading{reading})
	if err != nil {
		return nil, apierr.Internal("reading_create_failed", err)
	}
	return created[0], nil
}
