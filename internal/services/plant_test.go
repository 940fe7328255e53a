package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/greenstem/plantcare-backend/internal/repos/testutil"
	"github.com/greenstem/plantcare-backend/internal/types"
)

func TestCreatePlantSeedsScheduleAndMetric(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.ctx, env.tx, "ext-plant-create")

	plant, err := env.plants.Create(env.ctx, user.ID, CreatePlantInput{
		Name:               "  Fiddle Leaf Fig ",
		Species:            "Ficus lyrata",
		WaterFrequencyDays: 5,
		LightRequirement:   types.LightRequirementHigh,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if plant.Name != "Fiddle Leaf Fig" {
		t.Fatalf("name not trimmed: %q", plant.Name)
	}
	if plant.Status != types.PlantStatusHealthy {
		t.Fatalf("status = %q, want healthy", plant.Status)
	}

	pending, err := env.taskRepo.ListByUserID(env.ctx, nil, user.ID, false)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(pending) != 1 || pending[0].TaskType != types.TaskTypeWater {
		t.Fatalf("expected one seeded watering task, got %+v", pending)
	}

	metric, err := env.metricRepo.GetByPlantID(env.ctx, nil, plant.ID)
	if err != nil {
		t.Fatalf("get metric: %v", err)
	}
	// Never watered scores a full water level; high-light plants score 60.
	if metric == nil || metric.WaterLevel != 100 || metric.LightLevel != 60 {
		t.Fatalf("unexpected initial metric %+v", metric)
	}
}

func TestCreatePlantWithoutScheduleSkipsTask(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.ctx, env.tx, "ext-plant-no-sched")

	plant, err := env.plants.Create(env.ctx, user.ID, CreatePlantInput{Name: "Air Plant"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if plant.LightRequirement != types.LightRequirementMedium {
		t.Fatalf("light requirement default = %q, want medium", plant.LightRequirement)
	}
	pending, err := env.taskRepo.ListByUserID(env.ctx, nil, user.ID, false)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("no watering task expected without a schedule, got %d", len(pending))
	}
}

func TestCreatePlantValidation(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.ctx, env.tx, "ext-plant-invalid")

	_, err := env.plants.Create(env.ctx, user.ID, CreatePlantInput{Name: "   "})
	assertAPIError(t, err, http.StatusBadRequest, "missing_name")

	_, err = env.plants.Create(env.ctx, user.ID, CreatePlantInput{Name: "Cactus", WaterFrequencyDays: 400})
	assertAPIError(t, err, http.StatusBadRequest, "invalid_water_frequency")

	_, err = env.plants.Create(env.ctx, user.ID, CreatePlantInput{Name: "Cactus", LightRequirement: "blinding"})
	assertAPIError(t, err, http.StatusBadRequest, "invalid_light_requirement")
}

func TestUpdatePlantRecomputesHealth(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.ctx, env.tx, "ext-plant-update")
	watered := time.Now().AddDate(0, 0, -5)
	plant := testutil.SeedPlant(t, env.ctx, env.tx, user.ID, 10, &watered)

	freq := 5
	updated, err := env.plants.Update(env.ctx, user.ID, plant.ID, UpdatePlantInput{WaterFrequencyDays: &freq})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.WaterFrequencyDays != 5 {
		t.Fatalf("waterFrequencyDays = %d, want 5", updated.WaterFrequencyDays)
	}

	metric, err := env.metricRepo.GetByPlantID(env.ctx, nil, plant.ID)
	if err != nil {
		t.Fatalf("get metric: %v", err)
	}
	// Five days into a five-day cycle leaves no water budget.
	if metric == nil || metric.WaterLevel != 0 {
		t.Fatalf("expected water level 0 after tightening, got %+v", metric)
	}
}

func TestDeletePlantCascades(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.ctx, env.tx, "ext-plant-delete")
	watered := time.Now().AddDate(0, 0, -1)
	plant := testutil.SeedPlant(t, env.ctx, env.tx, user.ID, 7, &watered)

	testutil.SeedTask(t, env.ctx, env.tx, plant.ID, types.TaskTypeWater, time.Now())
	rec := &types.Recommendation{
		ID:                 uuid.New(),
		UserID:             user.ID,
		PlantID:            &plant.ID,
		RecommendationType: types.RecommendationTypeWater,
		Message:            "Water soon.",
	}
	if _, err := env.recRepo.Create(env.ctx, nil, []*types.Recommendation{rec}); err != nil {
		t.Fatalf("seed recommendation: %v", err)
	}
	history := &types.CareHistory{ID: uuid.New(), PlantID: plant.ID, ActionType: "completed_water", PerformedAt: time.Now()}
	if _, err := env.historyRepo.Create(env.ctx, nil, []*types.CareHistory{history}); err != nil {
		t.Fatalf("seed history: %v", err)
	}
	if _, err := env.health.RecomputeForPlant(env.ctx, nil, plant.ID, time.Now()); err != nil {
		t.Fatalf("seed metric: %v", err)
	}

	if err := env.plants.Delete(env.ctx, user.ID, plant.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	for _, probe := range []struct {
		name  string
		model interface{}
	}{
		{name: "care_task", model: &types.CareTask{}},
		{name: "recommendation", model: &types.Recommendation{}},
		{name: "care_history", model: &types.CareHistory{}},
		{name: "plant_health_metric", model: &types.PlantHealthMetric{}},
	} {
		var count int64
		if err := env.tx.WithContext(env.ctx).Model(probe.model).Where("plant_id = ?", plant.ID).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", probe.name, err)
		}
		if count != 0 {
			t.Fatalf("%s rows survived plant delete: %d", probe.name, count)
		}
	}
}

func TestPlantOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.SeedUser(t, env.ctx, env.tx, "ext-plant-owner")
	intruder := testutil.SeedUser(t, env.ctx, env.tx, "ext-plant-intruder")
	plant := testutil.SeedPlant(t, env.ctx, env.tx, owner.ID, 7, nil)

	_, err := env.plants.Get(env.ctx, intruder.ID, plant.ID)
	assertAPIError(t, err, http.StatusForbidden, "plant_forbidden")

	err = env.plants.Delete(env.ctx, intruder.ID, plant.ID)
	assertAPIError(t, err, http.StatusForbidden, "plant_forbidden")

	_, err = env.plants.Get(env.ctx, owner.ID, uuid.New())
	assertAPIError(t, err, http.StatusNotFound, "plant_not_found")
}
