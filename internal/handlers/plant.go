package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/requestdata"
	"github.com/greenstem/plantcare-backend/internal/services"
)

type PlantHandler struct {
	log            *logger.Logger
	plantService   services.PlantService
	healthService  services.HealthService
	careTipService services.CareTipService
	speciesService services.SpeciesService
}

func NewPlantHandler(
	log *logger.Logger,
	plantService services.PlantService,
	healthService services.HealthService,
	careTipService services.CareTipService,
	speciesService services.SpeciesService,
) *PlantHandler {
	return &PlantHandler{
		log:            log.With("handler", "PlantHandler"),
		plantService:   plantService,
		healthService:  healthService,
		careTipService: careTipService,
		speciesService: speciesService,
	}
}

// currentUser pulls the resolved identity; the auth middleware guarantees it
// on protected routes.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *PlantHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.CreatePlantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	plant, err := h.plantService.Create(c.Request.Context(), userID, input)
	if err != nil {
		h.log.Error("Create plant failed", "error", err, "user_id", userID)
		RespondFromError(c, err)
		return
	}
	// Species sync is best effort; kick it off without holding up the
	// response. The request context dies with the response, so the sync
	// gets its own deadline.
	if h.speciesService != nil && plant.Species != "" {
		go func(plantID uuid.UUID) {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := h.speciesService.SyncPlant(ctx, plantID); err != nil {
				h.log.Warn("Species sync after create failed", "plant_id", plantID, "error", err)
			}
		}(plant.ID)
	}
	RespondCreated(c, gin.H{"plant": plant})
}

func (h *PlantHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	plants, err := h.plantService.List(c.Request.Context(), userID)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, gin.H{"plants": plants})
}

func (h *PlantHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	plantID, ok := pathID(c, "id")
	if !ok {
		return
	}
	plant, err := h.plantService.Get(c.Request.Context(), userID, plantID)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, gin.H{"plant": plant})
}

func (h *PlantHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	plantID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input services.UpdatePlantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	plant, err := h.plantService.Update(c.Request.Context(), userID, plantID, input)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, gin.H{"plant": plant})
}

func (h *PlantHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	plantID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.plantService.Delete(c.Request.Context(), userID, plantID); err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": plantID})
}

func (h *PlantHandler) GetHealth(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	plantID, ok := pathID(c, "id")
	if !ok {
		return
	}
	// Ownership check rides on the plant load.
	if _, err := h.plantService.Get(c.Request.Context(), userID, plantID); err != nil {
		RespondFromError(c, err)
		return
	}
	metric, err := h.healthService.GetForPlant(c.Request.Context(), plantID)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, gin.H{"health": metric})
}

func (h *PlantHandler) GetCareTip(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	plantID, ok := pathID(c, "id")
	if !ok {
		return
	}
	tip, err := h.careTipService.TipForPlant(c.Request.Context(), userID, plantID)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, gin.H{"tip": tip})
}

func (h *PlantHandler) GetSpecies(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	plantID, ok := pathID(c, "id")
	if !ok {
		return
	}
	profile, err := h.speciesService.ProfileForPlant(c.Request.Context(), userID, plantID)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, gin.H{"species": profile})
}

func (h *PlantHandler) GetHistory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	plantID, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	entries, err := h.plantService.History(c.Request.Context(), userID, plantID, limit, offset)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, gin.H{"history": entries})
}
