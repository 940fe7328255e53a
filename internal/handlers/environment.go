package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/services"
)

type EnvironmentHandler struct {
	log        *logger.Logger
	envService services.EnvironmentService
}

func NewEnvironmentHandler(log *logger.Logger, envService services.EnvironmentService) *EnvironmentHandler {
	return &EnvironmentHandler{
		log:        log.With("handler", "EnvironmentHandler"),
		envService: envService,
	}
}

func (h *EnvironmentHandler) Latest(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reading, err := h.envService.Latest(c.Request.Context(), userID)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, gin.H{"reading": reading})
}

func (h *EnvironmentHandler) Record(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.RecordReadingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	reading, err := h.envService.Record(c.Request.Context(), userID, input)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondCreated(c, gin.H{"reading": reading})
}

func (h *EnvironmentHandler) Sync(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	location := c.Query("location")
	reading, err := h.envService.SyncFromWeather(c.Request.Context(), userID, location)
	if err != nil {
		h.log.Error("Weather sync failed", "error", err, "user_id", userID)
		RespondFromError(c, err)
		return
	}
	RespondCreated(c, gin.H{"reading": reading})
}
