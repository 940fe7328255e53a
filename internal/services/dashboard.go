package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/greenstem/plantcare-backend/internal/apierr"
	"github.com/greenstem/plantcare-backend/internal/config"
	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/repos"
	"github.com/greenstem/plantcare-backend/internal/types"
)

type UpcomingTask struct {
	ID        uuid.UUID `json:"id"`
	PlantID   uuid.UUID `json:"plant_id"`
	PlantName string    `json:"plant_name"`
	TaskType  string    `json:"task_type"`
	DueDate   time.Time `json:"due_date"`
}

type ActivityItem struct {
	ID          uuid.UUID `json:"id"`
	PlantID     uuid.UUID `json:"plant_id"`
	PlantName   string    `json:"plant_name"`
	ActionType  string    `json:"action_type"`
	Notes       string    `json:"notes"`
	PerformedAt time.Time `json:"performed_at"`
}

type DashboardStats struct {
	TotalPlants        int64          `json:"total_plants"`
	PlantsNeedingWater int            `json:"plants_needing_water"`
	TasksDue           int64          `json:"tasks_due"`
	UpcomingTasks      []UpcomingTask `json:"upcoming_tasks"`
	RecentActivity     []ActivityItem `json:"recent_activity"`
	AverageHealth      int            `json:"average_health"`
	HealthStatus       string         `json:"health_status"`
}

type DashboardService interface {
	StatsForUser(ctx context.Context, userID uuid.UUID) (*DashboardStats, error)
}

type dashboardService struct {
	db          *gorm.DB
	log         *logger.Logger
	plantRepo   repos.PlantRepo
	taskRepo    repos.CareTaskRepo
	historyRepo repos.CareHistoryRepo
	metricRepo  repos.PlantHealthMetricRepo
	rules       config.CareRules
}

func NewDashboardService(
	db *gorm.DB,
	log *logger.Logger,
	plantRepo repos.PlantRepo,
	taskRepo repos.CareTaskRepo,
	historyRepo repos.CareHistoryRepo,
	metricRepo repos.PlantHealthMetricRepo,
	rules config.CareRules,
) DashboardService {
	return &dashboardService{
		db:          db,
		log:         log.With("service", "DashboardService"),
		plantRepo:   plantRepo,
		taskRepo:    taskRepo,
		historyRepo: historyRepo,
		metricRepo:  metricRepo,
		rules:       rules,
	}
}

// NeedsWater reports whether the plant is past its watering window plus the
// configured grace days. Plants never watered or without a schedule never
// count.
func NeedsWater(plant *types.Plant, now time.Time, graceDays int) bool {
	if plant.LastWatered == nil || plant.WaterFrequencyDays <= 0 {
		return false
	}
	due := plant.LastWatered.AddDate(0, 0, plant.WaterFrequencyDays+graceDays)
	return now.After(due)
}

func HealthBucket(averageHealth int) string {
	switch {
	case averageHealth < 50:
		return "Poor"
	case averageHealth < 75:
		return "Fair"
	default:
		return "Good"
	}
}

func (ds *dashboardService) StatsForUser(ctx context.Context, userID uuid.UUID) (*DashboardStats, error) {
	now := time.Now()
	topN := ds.rules.Dashboard.TopN

	var (
		totalPlants int64
		plants      []*types.Plant
		tasksDue    int64
		upcoming    []*types.CareTask
		recent      []*types.CareHistory
		metrics     []*types.PlantHealthMetric
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totalPlants, err = ds.plantRepo.CountByUserID(gctx, nil, userID)
		return err
	})
	g.Go(func() error {
		var err error
		plants, err = ds.plantRepo.ListByUserID(gctx, nil, userID)
		return err
	})
	g.Go(func() error {
		var err error
		tasksDue, err = ds.taskRepo.CountPendingDueBy(gctx, nil, userID, now)
		return err
	})
	g.Go(func() error {
		var err error
		upcoming, err = ds.taskRepo.ListUpcomingByUserID(gctx, nil, userID, now, topN)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = ds.historyRepo.ListRecentByUserID(gctx, nil, userID, topN)
		return err
	})
	g.Go(func() error {
		var err error
		metrics, err = ds.metricRepo.ListByUserID(gctx, nil, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apierr.Internal("dashboard_load_failed", err)
	}

	plantNames := make(map[uuid.UUID]string, len(plants))
	needingWater := 0
	for _, p := range plants {
		plantNames[p.ID] = p.Name
		if NeedsWater(p, now, ds.rules.Care.WaterGraceDays) {
			needingWater++
		}
	}

	stats := &DashboardStats{
		TotalPlants:        totalPlants,
		PlantsNeedingWater: needingWater,
		TasksDue:           tasksDue,
		UpcomingTasks:      make([]UpcomingTask, 0, len(upcoming)),
		RecentActivity:     make([]ActivityItem, 0, len(recent)),
	}
	for _, t := range upcoming {
		stats.UpcomingTasks = append(stats.UpcomingTasks, UpcomingTask{
			ID:        t.ID,
			PlantID:   t.PlantID,
			PlantName: plantNames[t.PlantID],
			TaskType:  t.TaskType,
			DueDate:   t.DueDate,
		})
	}
	for _, h := range recent {
		stats.RecentActivity = append(stats.RecentActivity, ActivityItem{
			ID:          h.ID,
			PlantID:     h.PlantID,
			PlantName:   plantNames[h.PlantID],
			ActionType:  h.ActionType,
			Notes:       h.Notes,
			PerformedAt: h.PerformedAt,
		})
	}

	if len(metrics) > 0 {
		sum := 0
		for _, m := range metrics {
			sum += m.OverallHealth
		}
		stats.AverageHealth = int(math.Round(float64(sum) / float64(len(metrics))))
	}
	stats.HealthStatus = HealthBucket(stats.AverageHealth)
	return stats, nil
}
