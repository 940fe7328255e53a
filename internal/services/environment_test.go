package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/greenstem/plantcare-backend/internal/apierr"
	"github.com/greenstem/plantcare-backend/internal/repos/testutil"
	"github.com/greenstem/plantcare-backend/internal/types"
)

func newEnvironmentService(t *testing.T, env *testEnv, weather WeatherClient) EnvironmentService {
	t.Helper()
	return NewEnvironmentService(env.tx, testutil.Logger(t), env.readingRepo, weather)
}

func TestRecordReadingValidation(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.ctx, env.tx, "ext-env-invalid")
	es := newEnvironmentService(t, env, nil)

	cases := []struct {
		name     string
		input    RecordReadingInput
		wantCode string
	}{
		{name: "humidity_high", input: RecordReadingInput{Humidity: 101, Temperature: 20}, wantCode: "invalid_humidity"},
		{name: "humidity_negative", input: RecordReadingInput{Humidity: -1, Temperature: 20}, wantCode: "invalid_humidity"},
		{name: "soil_high", input: RecordReadingInput{Humidity: 50, SoilMoisture: 101, Temperature: 20}, wantCode: "invalid_soil_moisture"},
		{name: "temperature_low", input: RecordReadingInput{Humidity: 50, Temperature: -51}, wantCode: "invalid_temperature"},
		{name: "temperature_high", input: RecordReadingInput{Humidity: 50, Temperature: 61}, wantCode: "invalid_temperature"},
		{name: "light_unknown", input: RecordReadingInput{Humidity: 50, Temperature: 20, LightLevel: "blinding"}, wantCode: "invalid_light_level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := es.Record(env.ctx, user.ID, tc.input)
			assertAPIError(t, err, http.StatusBadRequest, tc.wantCode)
		})
	}
}

func TestRecordAndLatestReading(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.ctx, env.tx, "ext-env-latest")
	es := newEnvironmentService(t, env, nil)

	_, err := es.Latest(env.ctx, user.ID)
	assertAPIError(t, err, http.StatusNotFound, "no_readings")

	if _, err := es.Record(env.ctx, user.ID, RecordReadingInput{Temperature: 19, Humidity: 60, LightLevel: types.LightLevelLow, SoilMoisture: 30}); err != nil {
		t.Fatalf("first Record: %v", err)
	}
	second, err := es.Record(env.ctx, user.ID, RecordReadingInput{Temperature: 22, Humidity: 45, LightLevel: types.LightLevelHigh, SoilMoisture: 35})
	if err != nil {
		t.Fatalf("second Record: %v", err)
	}

	latest, err := es.Latest(env.ctx, user.ID)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.ID != second.ID {
		t.Fatalf("latest reading id %s, want %s", latest.ID, second.ID)
	}

	// Readings are append-only; both rows remain.
	all, err := env.readingRepo.ListByUserID(env.ctx, nil, user.ID, 10)
	if err != nil {
		t.Fatalf("list readings: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(all))
	}
}

type stubWeather struct {
	cond *CurrentConditions
	err  error
}

func (s *stubWeather) Current(ctx context.Context, location string) (*CurrentConditions, error) {
	return s.cond, s.err
}

func TestSyncFromWeather(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.ctx, env.tx, "ext-env-sync")

	es := newEnvironmentService(t, env, &stubWeather{cond: &CurrentConditions{
		Temperature:  24,
		Humidity:     55,
		SoilMoisture: 40,
		LightLevel:   types.LightLevelMedium,
	}})
	reading, err := es.SyncFromWeather(env.ctx, user.ID, "oslo")
	if err != nil {
		t.Fatalf("SyncFromWeather: %v", err)
	}
	if reading.Humidity != 55 || reading.LightLevel != types.LightLevelMedium {
		t.Fatalf("reading not built from conditions: %+v", reading)
	}

	es = newEnvironmentService(t, env, nil)
	_, err = es.SyncFromWeather(env.ctx, user.ID, "oslo")
	assertAPIError(t, err, http.StatusServiceUnavailable, "weather_not_configured")

	es = newEnvironmentService(t, env, &stubWeather{err: apierr.ExternalService("weather_unavailable", context.DeadlineExceeded)})
	_, err = es.SyncFromWeather(env.ctx, user.ID, "oslo")
	assertAPIError(t, err, http.StatusServiceUnavailable, "weather_unavailable")
}
