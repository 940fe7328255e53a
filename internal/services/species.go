package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/greenstem/plantcare-backend/internal/apierr"
	"github.com/greenstem/plantcare-backend/internal/config"
	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/repos"
	"github.com/greenstem/plantcare-backend/internal/types"
)

// SpeciesLookup is the external plant-database API seam.
type SpeciesLookup interface {
	Lookup(ctx context.Context, species string) (*SpeciesRecord, error)
}

type SpeciesRecord struct {
	ScientificName string          `json:"scientific_name"`
	CommonName     string          `json:"common_name"`
	CareSummary    string          `json:"care_summary"`
	Taxonomy       json.RawMessage `json:"taxonomy"`
}

type speciesLookupClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewSpeciesLookupClient(log *logger.Logger) (SpeciesLookup, error) {
	baseURL := strings.TrimSpace(os.Getenv("PLANT_DB_API_URL"))
	if baseURL == "" {
		return nil, fmt.Errorf("missing PLANT_DB_API_URL")
	}
	return &speciesLookupClient{
		log:        log.With("service", "SpeciesLookupClient"),
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(os.Getenv("PLANT_DB_API_KEY")),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (sc *speciesLookupClient) Lookup(ctx context.Context, species string) (*SpeciesRecord, error) {
	u := fmt.Sprintf("%s/species?q=%s", strings.TrimRight(sc.baseURL, "/"), url.QueryEscape(species))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if sc.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+sc.apiKey)
	}
	resp, err := sc.httpClient.Do(req)
	if err != nil {
		return nil, apierr.ExternalService("plant_db_unavailable", err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, apierr.ExternalService("plant_db_unavailable", readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apierr.ExternalService("plant_db_unavailable", fmt.Errorf("plant db http %d: %s", resp.StatusCode, string(raw)))
	}
	var rec SpeciesRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, apierr.ExternalService("plant_db_bad_response", fmt.Errorf("plant db decode error: %w", err))
	}
	return &rec, nil
}

type SpeciesService interface {
	ProfileForPlant(ctx context.Context, userID, plantID uuid.UUID) (*types.SpeciesProfile, error)
	SyncPlant(ctx context.Context, plantID uuid.UUID) error
}

type speciesService struct {
	db          *gorm.DB
	log         *logger.Logger
	plantRepo   repos.PlantRepo
	profileRepo repos.SpeciesProfileRepo
	lookup      SpeciesLookup
	rules       config.CareRules
}

func NewSpeciesService(db *gorm.DB, log *logger.Logger, plantRepo repos.PlantRepo, profileRepo repos.SpeciesProfileRepo, lookup SpeciesLookup, rules config.CareRules) SpeciesService {
	return &speciesService{
		db:          db,
		log:         log.With("service", "SpeciesService"),
		plantRepo:   plantRepo,
		profileRepo: profileRepo,
		lookup:      lookup,
		rules:       rules,
	}
}

func (ss *speciesService) fresh(profile *types.SpeciesProfile) bool {
	window := time.Duration(ss.rules.Species.RefreshDays) * 24 * time.Hour
	return time.Since(profile.SyncedAt) < window
}

// ProfileForPlant serves the cached profile while it is fresh, re-syncs when
// stale, and serves the stale row as a fallback when the external lookup
// fails.
func (ss *speciesService) ProfileForPlant(ctx context.Context, userID, plantID uuid.UUID) (*types.SpeciesProfile, error) {
	plants, err := ss.plantRepo.GetByIDs(ctx, nil, []uuid.UUID{plantID})
	if err != nil {
		return nil, apierr.Internal("plant_lookup_failed", err)
	}
	if len(plants) == 0 {
		return nil, apierr.NotFound("plant_not_found", fmt.Errorf("plant %s not found", plantID))
	}
	plant := plants[0]
	if plant.UserID != userID {
		return nil, apierr.Forbidden("plant_forbidden", fmt.Errorf("plant %s belongs to another user", plantID))
	}
	if plant.Species == "" {
		return nil, apierr.Validation("no_species", fmt.Errorf("plant %s has no species set", plantID))
	}

	cached, err := ss.profileRepo.GetByPlantID(ctx, nil, plantID)
	if err != nil {
		return nil, apierr.Internal("profile_lookup_failed", err)
	}
	if cached != nil && ss.fresh(cached) {
		return cached, nil
	}

	synced, syncErr := ss.syncProfile(ctx, plant)
	if syncErr != nil {
		if cached != nil {
			ss.log.Warn("Species lookup failed, serving stale cache", "plant_id", plantID, "error", syncErr)
			return cached, nil
		}
		return nil, syncErr
	}
	return synced, nil
}

// SyncPlant is the best-effort refresh kicked after plant creation.
func (ss *speciesService) SyncPlant(ctx context.Context, plantID uuid.UUID) error {
	plants, err := ss.plantRepo.GetByIDs(ctx, nil, []uuid.UUID{plantID})
	if err != nil || len(plants) == 0 || plants[0].Species == "" {
		return err
	}
	_, err = ss.syncProfile(ctx, plants[0])
	return err
}

func (ss *speciesService) syncProfile(ctx context.Context, plant *types.Plant) (*types.SpeciesProfile, error) {
	if ss.lookup == nil {
		return nil, apierr.ExternalService("plant_db_not_configured", fmt.Errorf("plant database API is not configured"))
	}
	rec, err := ss.lookup.Lookup(ctx, plant.Species)
	if err != nil {
		return nil, err
	}
	taxonomy := rec.Taxonomy
	if taxonomy == nil {
		taxonomy = json.RawMessage("{}")
	}
	profile := &types.SpeciesProfile{
		PlantID:        plant.ID,
		ScientificName: rec.ScientificName,
		CommonName:     rec.CommonName,
		CareSummary:    rec.CareSummary,
		Taxonomy:       datatypes.JSON(taxonomy),
		SyncedAt:       time.Now(),
	}
	saved, err := ss.profileRepo.Upsert(ctx, nil, profile)
	if err != nil {
		return nil, apierr.Internal("profile_upsert_failed", err)
	}
	return saved, nil
}
