package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenstem/plantcare-backend/internal/apierr"
	"github.com/greenstem/plantcare-backend/internal/config"
	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/repos"
	"github.com/greenstem/plantcare-backend/internal/types"
)

const (
	RecommendationModeThreshold = "threshold"
	RecommendationModeAI        = "ai"
)

// RecommendationDraft is a strategy result before persistence.
type RecommendationDraft struct {
	RecommendationType string `json:"recommendation_type"`
	Message            string `json:"message"`
}

type RecommendationService interface {
	GenerateForUser(ctx context.Context, userID uuid.UUID, mode string) ([]*types.Recommendation, error)
	Apply(ctx context.Context, userID, recID uuid.UUID) (*types.Recommendation, error)
	ListForUser(ctx context.Context, userID uuid.UUID, includeApplied bool) ([]*types.Recommendation, error)
}

type recommendationService struct {
	db            *gorm.DB
	log           *logger.Logger
	recRepo       repos.RecommendationRepo
	plantRepo     repos.PlantRepo
	readingRepo   repos.EnvironmentReadingRepo
	historyRepo   repos.CareHistoryRepo
	healthService HealthService
	generator     TextGenerator
	rules         config.CareRules
}

func NewRecommendationService(
	db *gorm.DB,
	log *logger.Logger,
	recRepo repos.RecommendationRepo,
	plantRepo repos.PlantRepo,
	readingRepo repos.EnvironmentReadingRepo,
	historyRepo repos.CareHistoryRepo,
	healthService HealthService,
	generator TextGenerator,
	rules config.CareRules,
) RecommendationService {
	return &recommendationService{
		db:            db,
		log:           log.With("service", "RecommendationService"),
		recRepo:       recRepo,
		plantRepo:     plantRepo,
		readingRepo:   readingRepo,
		historyRepo:   historyRepo,
		healthService: healthService,
		generator:     generator,
		rules:         rules,
	}
}

// ThresholdRecommendations applies the deterministic humidity and light
// rules for one plant against the current reading.
func ThresholdRecommendations(plant *types.Plant, reading *types.EnvironmentReading, rules config.CareRules) []RecommendationDraft {
	var drafts []RecommendationDraft

	if reading.Humidity < rules.Recommendations.HumidityWaterThreshold &&
		plant.WaterFrequencyDays > 0 &&
		plant.WaterFrequencyDays < rules.Recommendations.MaxFrequencyForTightening {
		suggested := plant.WaterFrequencyDays - 1
		if suggested < 1 {
			suggested = 1
		}
		drafts = append(drafts, RecommendationDraft{
			RecommendationType: types.RecommendationTypeWater,
			Message: fmt.Sprintf("Humidity is low (%.0f%%). Consider watering %s every %d days instead of every %d days.",
				reading.Humidity, plant.Name, suggested, plant.WaterFrequencyDays),
		})
	}

	switch {
	case reading.LightLevel == types.LightLevelLow && plant.LightRequirement != types.LightRequirementLow:
		drafts = append(drafts, RecommendationDraft{
			RecommendationType: types.RecommendationTypeLight,
			Message:            fmt.Sprintf("Ambient light is low but %s needs %s light. Move it closer to a window.", plant.Name, plant.LightRequirement),
		})
	case reading.LightLevel == types.LightLevelHigh && plant.LightRequirement != types.LightRequirementHigh:
		drafts = append(drafts, RecommendationDraft{
			RecommendationType: types.RecommendationTypeLight,
			Message:            fmt.Sprintf("Ambient light is high but %s prefers %s light. Move it away from direct sun.", plant.Name, plant.LightRequirement),
		})
	}

	return drafts
}

var genericDraft = RecommendationDraft{
	RecommendationType: types.RecommendationTypeWater,
	Message:            "Monitor soil moisture and water when the top inch feels dry.",
}

func recommendationSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"recommendations": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"recommendation_type": map[string]any{
							"type": "string",
							"enum": []string{types.RecommendationTypeWater, types.RecommendationTypeLight, types.RecommendationTypePruning},
						},
						"message": map[string]any{"type": "string"},
					},
					"required":             []string{"recommendation_type", "message"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"recommendations"},
		"additionalProperties": false,
	}
}

func buildRecommendationPrompt(plant *types.Plant, reading *types.EnvironmentReading) string {
	lastWatered := "never"
	if plant.LastWatered != nil {
		lastWatered = plant.LastWatered.Format("2006-01-02")
	}
	return fmt.Sprintf(
		"Plant: %s (species: %s). Watering frequency: every %d days, last watered: %s, light requirement: %s.\n"+
			"Current conditions: temperature %.1fC, humidity %.0f%%, soil moisture %.0f%%, light level %s.\n"+
			"Suggest care adjustments for this plant.",
		plant.Name, plant.Species, plant.WaterFrequencyDays, lastWatered, plant.LightRequirement,
		reading.Temperature, reading.Humidity, reading.SoilMoisture, reading.LightLevel,
	)
}

// generativeRecommendations delegates to the text generator; any failure or
// malformed payload degrades to the single generic draft.
func (rs *recommendationService) generativeRecommendations(ctx context.Context, plant *types.Plant, reading *types.EnvironmentReading) []RecommendationDraft {
	if rs.generator == nil {
		return ThresholdRecommendations(plant, reading, rs.rules)
	}
	system := "You are a plant-care assistant. Respond with concrete, actionable care recommendations."
	obj, err := rs.generator.GenerateJSON(ctx, system, buildRecommendationPrompt(plant, reading), "plant_recommendations", recommendationSchema())
	if err != nil {
		rs.log.Warn("Generative recommendations failed, using fallback", "plant_id", plant.ID, "error", err)
		return []RecommendationDraft{genericDraft}
	}
	raw, err := json.Marshal(obj["recommendations"])
	if err != nil {
		return []RecommendationDraft{genericDraft}
	}
	var drafts []RecommendationDraft
	if err := json.Unmarshal(raw, &drafts); err != nil || len(drafts) == 0 {
		rs.log.Warn("Generative recommendations malformed, using fallback", "plant_id", plant.ID)
		return []RecommendationDraft{genericDraft}
	}
	for i := range drafts {
		switch drafts[i].RecommendationType {
		case types.RecommendationTypeWater, types.RecommendationTypeLight, types.RecommendationTypePruning:
		default:
			drafts[i].RecommendationType = types.RecommendationTypeWater
		}
	}
	return drafts
}

// GenerateForUser runs the selected strategy over every plant against the
// latest reading and persists the results. No reading yet means nothing to
// generate.
func (rs *recommendationService) GenerateForUser(ctx context.Context, userID uuid.UUID, mode string) ([]*types.Recommendation, error) {
	reading, err := rs.readingRepo.LatestByUserID(ctx, nil, userID)
	if err != nil {
		return nil, apierr.Internal("reading_lookup_failed", err)
	}
	if reading == nil {
		rs.log.Debug("No environment reading yet, skipping generation", "user_id", userID)
		return []*types.Recommendation{}, nil
	}
	plants, err := rs.plantRepo.ListByUserID(ctx, nil, userID)
	if err != nil {
		return nil, apierr.Internal("plant_list_failed", err)
	}

	var rows []*types.Recommendation
	for _, plant := range plants {
		var drafts []RecommendationDraft
		if mode == RecommendationModeAI {
			drafts = rs.generativeRecommendations(ctx, plant, reading)
		} else {
			drafts = ThresholdRecommendations(plant, reading, rs.rules)
		}
		for _, d := range drafts {
			plantID := plant.ID
			rows = append(rows, &types.Recommendation{
				ID:                 uuid.New(),
				UserID:             userID,
				PlantID:            &plantID,
				RecommendationType: d.RecommendationType,
				Message:            d.Message,
			})
		}
	}
	if len(rows) == 0 {
		return []*types.Recommendation{}, nil
	}
	created, err := rs.recRepo.Create(ctx, nil, rows)
	if err != nil {
		return nil, apierr.Internal("recommendation_create_failed", err)
	}
	return created, nil
}

var daysPattern = regexp.MustCompile(`(\d+)\s*days`)

// ParseSuggestedDays pulls an "every N days" suggestion out of free text.
// No match is not an error, just no change.
func ParseSuggestedDays(message string) (int, bool) {
	m := daysPattern.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > 365 {
		return 0, false
	}
	return n, true
}

// Apply marks the recommendation applied exactly once. Water recommendations
// with a plant also water that plant now, optionally retune its frequency
// from the message text, and log the action.
func (rs *recommendationService) Apply(ctx context.Context, userID, recID uuid.UUID) (*types.Recommendation, error) {
	now := time.Now()
	var applied *types.Recommendation
	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recs, err := rs.recRepo.GetByIDs(ctx, tx, []uuid.UUID{recID})
		if err != nil {
			return apierr.Internal("recommendation_lookup_failed", err)
		}
		if len(recs) == 0 {
			return apierr.NotFound("recommendation_not_found", fmt.Errorf("recommendation %s not found", recID))
		}
		rec := recs[0]
		if rec.UserID != userID {
			return apierr.Forbidden("recommendation_forbidden", fmt.Errorf("recommendation %s belongs to another user", recID))
		}
		won, err := rs.recRepo.MarkApplied(ctx, tx, rec.ID)
		if err != nil {
			return apierr.Internal("recommendation_apply_failed", err)
		}
		if !won {
			return apierr.Conflict("recommendation_already_applied", fmt.Errorf("recommendation %s is already applied", rec.ID))
		}
		rec.Applied = true

		if rec.RecommendationType == types.RecommendationTypeWater && rec.PlantID != nil {
			updates := map[string]interface{}{"last_watered": now}
			if days, ok := ParseSuggestedDays(rec.Message); ok {
				updates["water_frequency_days"] = days
			}
			if err := rs.plantRepo.Update(ctx, tx, *rec.PlantID, updates); err != nil {
				return apierr.Internal("plant_update_failed", err)
			}
			history := &types.CareHistory{
				ID:          uuid.New(),
				PlantID:     *rec.PlantID,
				ActionType:  "applied_recommendation",
				Notes:       rec.Message,
				PerformedAt: now,
			}
			if _, err := rs.historyRepo.Create(ctx, tx, []*types.CareHistory{history}); err != nil {
				return apierr.Internal("history_write_failed", err)
			}
			if _, err := rs.healthService.RecomputeForPlant(ctx, tx, *rec.PlantID, now); err != nil {
				return err
			}
		}
		applied = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

func (rs *recommendationService) ListForUser(ctx context.Context, userID uuid.UUID, includeApplied bool) ([]*types.Recommendation, error) {
	recs, err := rs.recRepo.ListByUserID(ctx, nil, userID, includeApplied)
	if err != nil {
		return nil, apierr.Internal("recommendation_list_failed", err)
	}
	return recs, nil
}
