package main

import (
	"fmt"
	"os"
	"time"

	"github.com/greenstem/plantcare-backend/internal/config"
	"github.com/greenstem/plantcare-backend/internal/db"
	"github.com/greenstem/plantcare-backend/internal/handlers"
	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/middleware"
	"github.com/greenstem/plantcare-backend/internal/repos"
	"github.com/greenstem/plantcare-backend/internal/server"
	"github.com/greenstem/plantcare-backend/internal/services"
	"github.com/greenstem/plantcare-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env + care rules
	log.Info("Loading environment variables from main...")
	authSharedSecret := utils.GetEnv("AUTH_SHARED_SECRET", "defaultsecret", log)
	rulesPath := utils.GetEnv("CARE_RULES_PATH", "", log)
	rules, err := config.LoadCareRules(rulesPath)
	if err != nil {
		log.Warn("Care rules load failed, using defaults", "error", err)
	}

	// Database
	dbService, err := db.New(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err = dbService.AutoMigrateAll(); err != nil {
		log.Error("Auto migration failed", "error", err)
		os.Exit(1)
	}
	theDB := dbService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(theDB, log)
	plantRepo := repos.NewPlantRepo(theDB, log)
	readingRepo := repos.NewEnvironmentReadingRepo(theDB, log)
	taskRepo := repos.NewCareTaskRepo(theDB, log)
	recRepo := repos.NewRecommendationRepo(theDB, log)
	historyRepo := repos.NewCareHistoryRepo(theDB, log)
	metricRepo := repos.NewPlantHealthMetricRepo(theDB, log)
	profileRepo := repos.NewSpeciesProfileRepo(theDB, log)

	// External clients; the app degrades without them.
	log.Info("Setting up external clients from main...")
	var generator services.TextGenerator
	if g, gErr := services.NewOpenAIClient(log); gErr != nil {
		log.Warn("Text generation disabled", "error", gErr)
	} else {
		generator = g
	}
	var weather services.WeatherClient
	if w, wErr := services.NewWeatherClient(log, time.Duration(rules.Weather.CacheTTLSeconds)*time.Second); wErr != nil {
		log.Warn("Weather API disabled", "error", wErr)
	} else {
		weather = w
	}
	var speciesLookup services.SpeciesLookup
	if s, sErr := services.NewSpeciesLookupClient(log); sErr != nil {
		log.Warn("Plant database API disabled", "error", sErr)
	} else {
		speciesLookup = s
	}

	// Services
	log.Info("Setting up Services from main...")
	identityService := services.NewIdentityService(theDB, log, userRepo, authSharedSecret)
	userService := services.NewUserService(theDB, log, userRepo)
	healthService := services.NewHealthService(theDB, log, plantRepo, metricRepo, rules)
	plantService := services.NewPlantService(theDB, log, plantRepo, taskRepo, historyRepo, healthService)
	taskService := services.NewCareTaskService(theDB, log, taskRepo, plantRepo, historyRepo, healthService)
	recService := services.NewRecommendationService(theDB, log, recRepo, plantRepo, readingRepo, historyRepo, healthService, generator, rules)
	envService := services.NewEnvironmentService(theDB, log, readingRepo, weather)
	speciesService := services.NewSpeciesService(theDB, log, plantRepo, profileRepo, speciesLookup, rules)
	careTipService := services.NewCareTipService(theDB, log, plantRepo, readingRepo, weather, generator)
	dashboardService := services.NewDashboardService(theDB, log, plantRepo, taskRepo, historyRepo, metricRepo, rules)

	// Handlers
	log.Info("Setting up handlers from main...")
	userHandler := handlers.NewUserHandler(userService)
	plantHandler := handlers.NewPlantHandler(log, plantService, healthService, careTipService, speciesService)
	taskHandler := handlers.NewCareTaskHandler(log, taskService)
	recHandler := handlers.NewRecommendationHandler(log, recService)
	envHandler := handlers.NewEnvironmentHandler(log, envService)
	dashboardHandler := handlers.NewDashboardHandler(log, dashboardService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, identityService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:        authMiddleware,
		UserHandler:           userHandler,
		PlantHandler:          plantHandler,
		CareTaskHandler:       taskHandler,
		RecommendationHandler: recHandler,
		EnvironmentHandler:    envHandler,
		DashboardHandler:      dashboardHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
