package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/requestdata"
	"github.com/greenstem/plantcare-backend/internal/services"
	"github.com/greenstem/plantcare-backend/internal/types"
)

type stubPlantService struct {
	plant *types.Plant
}

func (s *stubPlantService) Create(ctx context.Context, userID uuid.UUID, input services.CreatePlantInput) (*types.Plant, error) {
	return s.plant, nil
}

func (s *stubPlantService) Get(ctx context.Context, userID, plantID uuid.UUID) (*types.Plant, error) {
	return s.plant, nil
}

func (s *stubPlantService) List(ctx context.Context, userID uuid.UUID) ([]*types.Plant, error) {
	return nil, nil
}

func (s *stubPlantService) Update(ctx context.Context, userID, plantID uuid.UUID, input services.UpdatePlantInput) (*types.Plant, error) {
	return s.plant, nil
}

func (s *stubPlantService) Delete(ctx context.Context, userID, plantID uuid.UUID) error {
	return nil
}

func (s *stubPlantService) History(ctx context.Context, userID, plantID uuid.UUID, limit, offset int) ([]*types.CareHistory, error) {
	return nil, nil
}

// stubSpeciesService parks inside SyncPlant until released so the test can
// observe whether the handler waited for it.
type stubSpeciesService struct {
	started chan uuid.UUID
	release chan struct{}
}

func (s *stubSpeciesService) SyncPlant(ctx context.Context, plantID uuid.UUID) error {
	s.started <- plantID
	<-s.release
	return nil
}

func (s *stubSpeciesService) ProfileForPlant(ctx context.Context, userID, plantID uuid.UUID) (*types.SpeciesProfile, error) {
	return nil, nil
}

func createPlantRequest(t *testing.T, h *PlantHandler, userID uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/api/plants", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rd := &requestdata.RequestData{UserID: userID}
	c.Request = req.WithContext(requestdata.WithRequestData(req.Context(), rd))
	h.Create(c)
	return w
}

func TestCreateRespondsBeforeSpeciesSyncFinishes(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	userID := uuid.New()
	plant := &types.Plant{
		ID:      uuid.New(),
		UserID:  userID,
		Name:    "Boston Fern",
		Species: "Nephrolepis exaltata",
	}
	species := &stubSpeciesService{
		started: make(chan uuid.UUID),
		release: make(chan struct{}),
	}
	h := NewPlantHandler(log, &stubPlantService{plant: plant}, nil, nil, species)

	w := createPlantRequest(t, h, userID, `{"name":"Boston Fern","species":"Nephrolepis exaltata","water_frequency_days":7}`)
	// The response must be written while the sync is still parked.
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	select {
	case synced := <-species.started:
		if synced != plant.ID {
			t.Fatalf("synced plant = %s, want %s", synced, plant.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("species sync never started")
	}
	close(species.release)
}

func TestCreateSkipsSpeciesSyncWithoutSpecies(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	userID := uuid.New()
	plant := &types.Plant{ID: uuid.New(), UserID: userID, Name: "Mystery Plant"}
	species := &stubSpeciesService{
		started: make(chan uuid.UUID, 1),
		release: make(chan struct{}),
	}
	close(species.release)
	h := NewPlantHandler(log, &stubPlantService{plant: plant}, nil, nil, species)

	w := createPlantRequest(t, h, userID, `{"name":"Mystery Plant"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	select {
	case synced := <-species.started:
		t.Fatalf("unexpected species sync for plant %s", synced)
	case <-time.After(100 * time.Millisecond):
	}
}
