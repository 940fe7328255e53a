package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/services"
)

type DashboardHandler struct {
	log              *logger.Logger
	dashboardService services.DashboardService
}

func NewDashboardHandler(log *logger.Logger, dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		log:              log.With("handler", "DashboardHandler"),
		dashboardService: dashboardService,
	}
}

func (h *DashboardHandler) GetStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	stats, err := h.dashboardService.StatsForUser(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("Dashboard stats failed", "error", err, "user_id", userID)
		RespondFromError(c, err)
		return
	}
	RespondOK(c, stats)
}
