package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/greenstem/plantcare-backend/internal/config"
	"github.com/greenstem/plantcare-backend/internal/repos"
	"github.com/greenstem/plantcare-backend/internal/repos/testutil"
)

// testEnv wires the service graph over a per-test transaction so every test
// starts from an empty database and leaves nothing behind.
type testEnv struct {
	ctx   context.Context
	tx    *gorm.DB
	rules config.CareRules

	userRepo    repos.UserRepo
	plantRepo   repos.PlantRepo
	readingRepo repos.EnvironmentReadingRepo
	taskRepo    repos.CareTaskRepo
	recRepo     repos.RecommendationRepo
	historyRepo repos.CareHistoryRepo
	metricRepo  repos.PlantHealthMetricRepo

	health   HealthService
	tasks    CareTaskService
	recs     RecommendationService
	plants   PlantService
	identity IdentityService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := testutil.Logger(t)
	tx := testutil.Tx(t, testutil.DB(t))
	rules := config.DefaultCareRules()

	env := &testEnv{
		ctx:         context.Background(),
		tx:          tx,
		rules:       rules,
		userRepo:    repos.NewUserRepo(tx, log),
		plantRepo:   repos.NewPlantRepo(tx, log),
		readingRepo: repos.NewEnvironmentReadingRepo(tx, log),
		taskRepo:    repos.NewCareTaskRepo(tx, log),
		recRepo:     repos.NewRecommendationRepo(tx, log),
		historyRepo: repos.NewCareHistoryRepo(tx, log),
		metricRepo:  repos.NewPlantHealthMetricRepo(tx, log),
	}
	env.health = NewHealthService(tx, log, env.plantRepo, env.metricRepo, rules)
	env.tasks = NewCareTaskService(tx, log, env.taskRepo, env.plantRepo, env.historyRepo, env.health)
	env.recs = NewRecommendationService(tx, log, env.recRepo, env.plantRepo, env.readingRepo, env.historyRepo, env.health, nil, rules)
	env.plants = NewPlantService(tx, log, env.plantRepo, env.taskRepo, env.historyRepo, env.health)
	env.identity = NewIdentityService(tx, log, env.userRepo, "test-secret")
	return env
}
