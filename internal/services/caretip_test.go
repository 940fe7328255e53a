package services

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/greenstem/plantcare-backend/internal/apierr"
	"github.com/greenstem/plantcare-backend/internal/repos/testutil"
	"github.com/greenstem/plantcare-backend/internal/types"
)

func newCareTipService(t *testing.T, env *testEnv, weather WeatherClient, generator TextGenerator) CareTipService {
	t.Helper()
	return NewCareTipService(env.tx, testutil.Logger(t), env.plantRepo, env.readingRepo, weather, generator)
}

func TestTipForPlantUsesLiveWeather(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.ctx, env.tx, "ext-tip")
	plant := testutil.SeedPlant(t, env.ctx, env.tx, user.ID, 7, nil)

	weather := &stubWeather{cond: &CurrentConditions{Temperature: 22, Humidity: 50, SoilMoisture: 35, LightLevel: types.LightLevelMedium}}
	ct := newCareTipService(t, env, weather, &stubGenerator{textOut: "Water lightly this week."})

	tip, err := ct.TipForPlant(env.ctx, user.ID, plant.ID)
	if err != nil {
		t.Fatalf("TipForPlant: %v", err)
	}
	if tip != "Water lightly this week." {
		t.Fatalf("tip = %q", tip)
	}
}

func TestTipForPlantFallsBackToStoredReading(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.ctx, env.tx, "ext-tip-fallback")
	plant := testutil.SeedPlant(t, env.ctx, env.tx, user.ID, 7, nil)
	testutil.SeedReading(t, env.ctx, env.tx, user.ID, 55, types.LightLevelMedium)

	weather := &stubWeather{err: apierr.ExternalService("weather_unavailable", fmt.Errorf("down"))}
	ct := newCareTipService(t, env, weather, &stubGenerator{textOut: "Hold off on watering."})

	tip, err := ct.TipForPlant(env.ctx, user.ID, plant.ID)
	if err != nil {
		t.Fatalf("TipForPlant with fallback: %v", err)
	}
	if tip != "Hold off on watering." {
		t.Fatalf("tip = %q", tip)
	}
}

func TestTipForPlantErrors(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.ctx, env.tx, "ext-tip-err")
	intruder := testutil.SeedUser(t, env.ctx, env.tx, "ext-tip-intruder")
	plant := testutil.SeedPlant(t, env.ctx, env.tx, user.ID, 7, nil)

	// No weather and no stored readings.
	ct := newCareTipService(t, env, nil, &stubGenerator{textOut: "tip"})
	_, err := ct.TipForPlant(env.ctx, user.ID, plant.ID)
	assertAPIError(t, err, http.StatusServiceUnavailable, "conditions_unavailable")

	// Conditions available but no generator wired.
	testutil.SeedReading(t, env.ctx, env.tx, user.ID, 55, types.LightLevelMedium)
	ct = newCareTipService(t, env, nil, nil)
	_, err = ct.TipForPlant(env.ctx, user.ID, plant.ID)
	assertAPIError(t, err, http.StatusServiceUnavailable, "generator_not_configured")

	// Generator failure surfaces as 503.
	ct = newCareTipService(t, env, nil, &stubGenerator{err: fmt.Errorf("llm down")})
	_, err = ct.TipForPlant(env.ctx, user.ID, plant.ID)
	assertAPIError(t, err, http.StatusServiceUnavailable, "tip_generation_failed")

	ct = newCareTipService(t, env, nil, &stubGenerator{textOut: "tip"})
	_, err = ct.TipForPlant(env.ctx, intruder.ID, plant.ID)
	assertAPIError(t, err, http.StatusForbidden, "plant_forbidden")
}
