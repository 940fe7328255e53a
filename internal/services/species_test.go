package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/greenstem/plantcare-backend/internal/apierr"
	"github.com/greenstem/plantcare-backend/internal/repos"
	"github.com/greenstem/plantcare-backend/internal/repos/testutil"
	"github.com/greenstem/plantcare-backend/internal/types"
)

type stubLookup struct {
	rec   *SpeciesRecord
	err   error
	calls int
}

func (s *stubLookup) Lookup(ctx context.Context, species string) (*SpeciesRecord, error) {
	s.calls++
	return s.rec, s.err
}

func newSpeciesService(t *testing.T, env *testEnv, lookup SpeciesLookup) (SpeciesService, repos.SpeciesProfileRepo) {
	t.Helper()
	log := testutil.Logger(t)
	profileRepo := repos.NewSpeciesProfileRepo(env.tx, log)
	return NewSpeciesService(env.tx, log, env.plantRepo, profileRepo, lookup, env.rules), profileRepo
}

func TestProfileForPlantSyncsAndCaches(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.ctx, env.tx, "ext-species")
	plant := testutil.SeedPlant(t, env.ctx, env.tx, user.ID, 7, nil)

	lookup := &stubLookup{rec: &SpeciesRecord{
		ScientificName: "Monstera deliciosa",
		CommonName:     "Swiss cheese plant",
		CareSummary:    "Bright indirect light, water when topsoil dries.",
		Taxonomy:       json.RawMessage(`{"family":"Araceae"}`),
	}}
	ss, _ := newSpeciesService(t, env, lookup)

	profile, err := ss.ProfileForPlant(env.ctx, user.ID, plant.ID)
	if err != nil {
		t.Fatalf("ProfileForPlant: %v", err)
	}
	if profile.ScientificName != "Monstera deliciosa" {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if lookup.calls != 1 {
		t.Fatalf("lookup calls = %d, want 1", lookup.calls)
	}

	// Fresh cache short-circuits the external call.
	if _, err := ss.ProfileForPlant(env.ctx, user.ID, plant.ID); err != nil {
		t.Fatalf("second ProfileForPlant: %v", err)
	}
	if lookup.calls != 1 {
		t.Fatalf("fresh cache must not re-sync, calls = %d", lookup.calls)
	}
}

func TestProfileForPlantServesStaleOnLookupFailure(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.ctx, env.tx, "ext-species-stale")
	plant := testutil.SeedPlant(t, env.ctx, env.tx, user.ID, 7, nil)

	lookup := &stubLookup{err: apierr.ExternalService("plant_db_unavailable", fmt.Errorf("down"))}
	ss, profileRepo := newSpeciesService(t, env, lookup)

	stale := &types.SpeciesProfile{
		PlantID:        plant.ID,
		ScientificName: "Monstera deliciosa",
		SyncedAt:       time.Now().AddDate(0, 0, -(env.rules.Species.RefreshDays + 5)),
	}
	if _, err := profileRepo.Upsert(env.ctx, nil, stale); err != nil {
		t.Fatalf("seed stale profile: %v", err)
	}

	profile, err := ss.ProfileForPlant(env.ctx, user.ID, plant.ID)
	if err != nil {
		t.Fatalf("expected stale fallback, got error %v", err)
	}
	if profile.ScientificName != "Monstera deliciosa" {
		t.Fatalf("unexpected fallback profile %+v", profile)
	}
	if lookup.calls != 1 {
		t.Fatalf("stale cache must attempt a re-sync, calls = %d", lookup.calls)
	}
}

func TestProfileForPlantErrors(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.ctx, env.tx, "ext-species-err")
	plant := testutil.SeedPlant(t, env.ctx, env.tx, user.ID, 7, nil)

	// No cache plus a failing lookup surfaces the failure.
	ss, _ := newSpeciesService(t, env, &stubLookup{err: apierr.ExternalService("plant_db_unavailable", fmt.Errorf("down"))})
	_, err := ss.ProfileForPlant(env.ctx, user.ID, plant.ID)
	assertAPIError(t, err, http.StatusServiceUnavailable, "plant_db_unavailable")

	// No configured lookup at all.
	ss, _ = newSpeciesService(t, env, nil)
	_, err = ss.ProfileForPlant(env.ctx, user.ID, plant.ID)
	assertAPIError(t, err, http.StatusServiceUnavailable, "plant_db_not_configured")

	// Plants without a species have nothing to look up.
	bare := testutil.SeedPlant(t, env.ctx, env.tx, user.ID, 7, nil)
	if err := env.tx.Model(&types.Plant{}).Where("id = ?", bare.ID).Update("species", "").Error; err != nil {
		t.Fatalf("clear species: %v", err)
	}
	_, err = ss.ProfileForPlant(env.ctx, user.ID, bare.ID)
	assertAPIError(t, err, http.StatusBadRequest, "no_species")
}
