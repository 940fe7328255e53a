package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/services"
)

type CareTaskHandler struct {
	log         *logger.Logger
	taskService services.CareTaskService
}

func NewCareTaskHandler(log *logger.Logger, taskService services.CareTaskService) *CareTaskHandler {
	return &CareTaskHandler{
		log:         log.With("handler", "CareTaskHandler"),
		taskService: taskService,
	}
}

type createTaskRequest struct {
	PlantID  uuid.UUID `json:"plant_id" binding:"required"`
	TaskType string    `json:"task_type" binding:"required"`
	DueDate  time.Time `json:"due_date" binding:"required"`
}

func (h *CareTaskHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	task, err := h.taskService.Create(c.Request.Context(), userID, req.PlantID, req.TaskType, req.DueDate)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondCreated(c, gin.H{"task": task})
}

func (h *CareTaskHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	includeDone := c.Query("include_done") == "true"
	tasks, err := h.taskService.ListForUser(c.Request.Context(), userID, includeDone)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, gin.H{"tasks": tasks})
}

func (h *CareTaskHandler) Complete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	task, err := h.taskService.Complete(c.Request.Context(), userID, taskID)
	if err != nil {
		h.log.Error("Complete task failed", "error", err, "task_id", taskID)
		RespondFromError(c, err)
		return
	}
	RespondOK(c, gin.H{"task": task})
}

func (h *CareTaskHandler) Skip(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	task, err := h.taskService.Skip(c.Request.Context(), userID, taskID)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, gin.H{"task": task})
}
