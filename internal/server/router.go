package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/greenstem/plantcare-backend/internal/handlers"
	"github.com/greenstem/plantcare-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware        *middleware.AuthMiddleware
	UserHandler           *handlers.UserHandler
	PlantHandler          *handlers.PlantHandler
	CareTaskHandler       *handlers.CareTaskHandler
	RecommendationHandler *handlers.RecommendationHandler
	EnvironmentHandler    *handlers.EnvironmentHandler
	DashboardHandler      *handlers.DashboardHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	// User
	api.GET("/user", cfg.UserHandler.GetMe)

	// Plants
	api.GET("/plants", cfg.PlantHandler.List)
	api.POST("/plants", cfg.PlantHandler.Create)
	api.GET("/plants/:id", cfg.PlantHandler.Get)
	api.PUT("/plants/:id", cfg.PlantHandler.Update)
	api.DELETE("/plants/:id", cfg.PlantHandler.Delete)
	api.GET("/plants/:id/health", cfg.PlantHandler.GetHealth)
	api.GET("/plants/:id/care-tip", cfg.PlantHandler.GetCareTip)
	api.GET("/plants/:id/species", cfg.PlantHandler.GetSpecies)
	api.GET("/plants/:id/history", cfg.PlantHandler.GetHistory)

	// Care tasks
	api.GET("/care-tasks", cfg.CareTaskHandler.List)
	api.POST("/care-tasks", cfg.CareTaskHandler.Create)
	api.PUT("/care-tasks/:id/complete", cfg.CareTaskHandler.Complete)
	api.PUT("/care-tasks/:id/skip", cfg.CareTaskHandler.Skip)

	// Recommendations
	api.GET("/recommendations", cfg.RecommendationHandler.List)
	api.POST("/recommendations/generate", cfg.RecommendationHandler.Generate)
	api.PUT("/recommendations/:id/apply", cfg.RecommendationHandler.Apply)

	// Environment
	api.GET("/environment", cfg.EnvironmentHandler.Latest)
	api.POST("/environment", cfg.EnvironmentHandler.Record)
	api.POST("/environment/sync", cfg.EnvironmentHandler.Sync)

	// Dashboard
	api.GET("/dashboard-stats", cfg.DashboardHandler.GetStats)

	return router
}
