package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenstem/plantcare-backend/internal/types"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, externalID string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:             uuid.New(),
		ExternalAuthID: externalID,
		Username:       "user_" + uuid.New().String()[:8],
		Email:          externalID + "@example.com",
		DisplayName:    "Test User",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedPlant(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, waterFrequencyDays int, lastWatered *time.Time) *types.Plant {
	tb.Helper()
	p := &types.Plant{
		ID:                 uuid.New(),
		UserID:             userID,
		Name:               "Monstera",
		Species:            "Monstera deliciosa",
		Status:             types.PlantStatusHealthy,
		LastWatered:        lastWatered,
		WaterFrequencyDays: waterFrequencyDays,
		LightRequirement:   types.LightRequirementMedium,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed plant: %v", err)
	}
	return p
}

func SeedTask(tb testing.TB, ctx context.Context, tx *gorm.DB, plantID uuid.UUID, taskType string, dueDate time.Time) *types.CareTask {
	tb.Helper()
	t := &types.CareTask{
		ID:       uuid.New(),
		PlantID:  plantID,
		TaskType: taskType,
		DueDate:  dueDate,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed task: %v", err)
	}
	return t
}

func SeedReading(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, humidity float64, lightLevel string) *types.EnvironmentReading {
	tb.Helper()
	r := &types.EnvironmentReading{
		ID:           uuid.New(),
		UserID:       userID,
		Temperature:  21,
		Humidity:     humidity,
		LightLevel:   lightLevel,
		SoilMoisture: 40,
		RecordedAt:   time.Now(),
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed reading: %v", err)
	}
	return r
}
