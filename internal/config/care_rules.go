package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CareRules holds the tunable business constants. Everything has a default
// so the service runs without a config file.
type CareRules struct {
	Care struct {
		// Extra days past lastWatered+frequency before a plant counts as
		// needing water on the dashboard.
		WaterGraceDays int `yaml:"water_grace_days"`
	} `yaml:"care"`
	Health struct {
		LightScoreLow    int `yaml:"light_score_low"`
		LightScoreMedium int `yaml:"light_score_medium"`
		LightScoreHigh   int `yaml:"light_score_high"`
	} `yaml:"health"`
	Recommendations struct {
		HumidityWaterThreshold    float64 `yaml:"humidity_water_threshold"`
		MaxFrequencyForTightening int     `yaml:"max_frequency_for_tightening"`
	} `yaml:"recommendations"`
	Species struct {
		RefreshDays int `yaml:"refresh_days"`
	} `yaml:"species"`
	Weather struct {
		CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
	} `yaml:"weather"`
	Dashboard struct {
		TopN int `yaml:"top_n"`
	} `yaml:"dashboard"`
}

func DefaultCareRules() CareRules {
	var cr CareRules
	cr.Care.WaterGraceDays = 0
	cr.Health.LightScoreLow = 90
	cr.Health.LightScoreMedium = 75
	cr.Health.LightScoreHigh = 60
	cr.Recommendations.HumidityWaterThreshold = 50
	cr.Recommendations.MaxFrequencyForTightening = 10
	cr.Species.RefreshDays = 30
	cr.Weather.CacheTTLSeconds = 600
	cr.Dashboard.TopN = 5
	return cr
}

// LoadCareRules reads the YAML rules file, falling back to defaults when the
// path is empty or the file does not exist.
func LoadCareRules(path string) (CareRules, error) {
	cr := DefaultCareRules()
	if path == "" {
		return cr, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cr, nil
		}
		return cr, fmt.Errorf("read care rules file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cr); err != nil {
		return DefaultCareRules(), fmt.Errorf("parse care rules file: %w", err)
	}
	return cr, nil
}
