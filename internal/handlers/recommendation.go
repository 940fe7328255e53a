package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/services"
)

type RecommendationHandler struct {
	log    *logger.Logger
	recSvc services.RecommendationService
}

func NewRecommendationHandler(log *logger.Logger, recSvc services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		log:    log.With("handler", "RecommendationHandler"),
		recSvc: recSvc,
	}
}

func (h *RecommendationHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	includeApplied := c.Query("include_applied") == "true"
	recs, err := h.recSvc.ListForUser(c.Request.Context(), userID, includeApplied)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, gin.H{"recommendations": recs})
}

func (h *RecommendationHandler) Generate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	mode := c.DefaultQuery("mode", services.RecommendationModeThreshold)
	recs, err := h.recSvc.GenerateForUser(c.Request.Context(), userID, mode)
	if err != nil {
		h.log.Error("Generate recommendations failed", "error", err, "user_id", userID)
		RespondFromError(c, err)
		return
	}
	RespondCreated(c, gin.H{"recommendations": recs})
}

func (h *RecommendationHandler) Apply(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recID, ok := pathID(c, "id")
	if !ok {
		return
	}
	rec, err := h.recSvc.Apply(c.Request.Context(), userID, recID)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, gin.H{"recommendation": rec})
}
