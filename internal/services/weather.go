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

	goredis "github.com/redis/go-redis/v9"

	"github.com/greenstem/plantcare-backend/internal/apierr"
	"github.com/greenstem/plantcare-backend/internal/logger"
)

// CurrentConditions is the subset of the weather API response the app uses.
type CurrentConditions struct {
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	SoilMoisture float64 `json:"soil_moisture"`
	LightLevel   string  `json:"light_level"`
}

type WeatherClient interface {
	Current(ctx context.Context, location string) (*CurrentConditions, error)
}

type weatherClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
	rdb        *goredis.Client
	cacheTTL   time.Duration
}

// NewWeatherClient reads WEATHER_API_URL / WEATHER_API_KEY. REDIS_ADDR is
// optional; without it every call goes straight to the API.
func NewWeatherClient(log *logger.Logger, cacheTTL time.Duration) (WeatherClient, error) {
	baseURL := strings.TrimSpace(os.Getenv("WEATHER_API_URL"))
	if baseURL == "" {
		return nil, fmt.Errorf("missing WEATHER_API_URL")
	}
	apiKey := strings.TrimSpace(os.Getenv("WEATHER_API_KEY"))

	clientLog := log.With("service", "WeatherClient")

	var rdb *goredis.Client
	if addr := strings.TrimSpace(os.Getenv("REDIS_ADDR")); addr != "" {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:        addr,
			DialTimeout: 5 * time.Second,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			clientLog.Warn("Redis unreachable, weather caching disabled", "error", err)
			_ = rdb.Close()
			rdb = nil
		}
	}

	return &weatherClient{
		log:        clientLog,
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		rdb:        rdb,
		cacheTTL:   cacheTTL,
	}, nil
}

func (wc *weatherClient) cacheKey(location string) string {
	return "weather:current:" + strings.ToLower(strings.TrimSpace(location))
}

func (wc *weatherClient) Current(ctx context.Context, location string) (*CurrentConditions, error) {
	if wc.rdb != nil {
		if raw, err := wc.rdb.Get(ctx, wc.cacheKey(location)).Bytes(); err == nil {
			var cached CurrentConditions
			if jErr := json.Unmarshal(raw, &cached); jErr == nil {
				wc.log.Debug("Weather cache hit", "location", location)
				return &cached, nil
			}
		}
	}

	u := fmt.Sprintf("%s/current?location=%s", strings.TrimRight(wc.baseURL, "/"), url.QueryEscape(location))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if wc.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+wc.apiKey)
	}

	resp, err := wc.httpClient.Do(req)
	if err != nil {
		return nil, apierr.ExternalService("weather_unavailable", err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, apierr.ExternalService("weather_unavailable", readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apierr.ExternalService("weather_unavailable", fmt.Errorf("weather http %d: %s", resp.StatusCode, string(raw)))
	}

	var cond CurrentConditions
	if err := json.Unmarshal(raw, &cond); err != nil {
		return nil, apierr.ExternalService("weather_bad_response", fmt.Errorf("weather decode error: %w", err))
	}

	if wc.rdb != nil {
		if payload, mErr := json.Marshal(&cond); mErr == nil {
			if sErr := wc.rdb.Set(ctx, wc.cacheKey(location), payload, wc.cacheTTL).Err(); sErr != nil {
				wc.log.Warn("Failed to cache weather response", "error", sErr)
			}
		}
	}
	return &cond, nil
}
