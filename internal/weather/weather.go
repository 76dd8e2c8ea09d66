// Package weather fetches today's forecast from Open-Meteo so the
// calendar can show it alongside the day's events. Results are cached;
// a broken upstream degrades to stale or empty data, never to an error
// surfaced at the API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const cacheTTL = 30 * time.Minute

// Config comes from the server environment. Weather is optional; an
// empty latitude or longitude leaves the service unconfigured.
type Config struct {
	Latitude        string
	Longitude       string
	TemperatureUnit string // "fahrenheit" or "celsius"
}

// Report is today's conditions as served to clients.
type Report struct {
	Temp       float64 `json:"temp"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Code       int     `json:"code"`
	Summary    string  `json:"summary"`
	Icon       string  `json:"icon"`
	Unit       string  `json:"unit"`
	Available  bool    `json:"available"`
	Configured bool    `json:"configured"`
}

type Service struct {
	cfg     Config
	client  *http.Client
	baseURL string

	mu        sync.Mutex
	cached    Report
	lastFetch time.Time
}

func NewService(cfg Config) *Service {
	if cfg.TemperatureUnit != "celsius" {
		cfg.TemperatureUnit = "fahrenheit"
	}
	unit := "F"
	if cfg.TemperatureUnit == "celsius" {
		unit = "C"
	}
	return &Service{
		cfg:     cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://api.open-meteo.com/v1/forecast",
		cached: Report{
			Unit:       unit,
			Configured: cfg.Latitude != "" && cfg.Longitude != "",
		},
	}
}

// Today returns the cached report, refreshing it when stale. A fetch
// failure keeps serving the previous report.
func (s *Service) Today(ctx context.Context) Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cached.Configured {
		return s.cached
	}
	if time.Since(s.lastFetch) < cacheTTL && s.cached.Available {
		return s.cached
	}

	report, err := s.fetch(ctx)
	if err != nil {
		return s.cached
	}
	s.cached = report
	s.lastFetch = time.Now()
	return s.cached
}

type forecastResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		TempMax []float64 `json:"temperature_2m_max"`
		TempMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

func (s *Service) fetch(ctx context.Context) (Report, error) {
	url := fmt.Sprintf(
		"%s?latitude=%s&longitude=%s&current=temperature_2m,weather_code&daily=temperature_2m_max,temperature_2m_min&timezone=auto&forecast_days=1&temperature_unit=%s",
		s.baseURL, s.cfg.Latitude, s.cfg.Longitude, s.cfg.TemperatureUnit,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Report{}, fmt.Errorf("build forecast request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return Report{}, fmt.Errorf("fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Report{}, fmt.Errorf("forecast API returned status %d", resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Report{}, fmt.Errorf("decode forecast: %w", err)
	}

	summary, icon := Describe(body.Current.WeatherCode)
	report := Report{
		Temp:       body.Current.Temperature,
		Code:       body.Current.WeatherCode,
		Summary:    summary,
		Icon:       icon,
		Unit:       s.cached.Unit,
		Available:  true,
		Configured: true,
	}
	if len(body.Daily.TempMax) > 0 {
		report.High = body.Daily.TempMax[0]
	}
	if len(body.Daily.TempMin) > 0 {
		report.Low = body.Daily.TempMin[0]
	}
	return report, nil
}

// Describe maps a WMO weather code to a short phrase and icon.
func Describe(code int) (string, string) {
	switch code {
	case 0:
		return "Clear sky", "☀️"
	case 1:
		return "Mainly clear", "🌤️"
	case 2:
		return "Partly cloudy", "⛅"
	case 3:
		return "Overcast", "☁️"
	case 45, 48:
		return "Foggy", "🌫️"
	case 51, 53:
		return "Drizzle", "🌦️"
	case 55, 56, 57:
		return "Dense drizzle", "🌧️"
	case 61, 80:
		return "Light rain", "🌦️"
	case 63, 81:
		return "Rain", "🌧️"
	case 65, 66, 67, 82:
		return "Heavy rain", "🌧️"
	case 71, 73, 85:
		return "Snow", "🌨️"
	case 75, 77, 86:
		return "Heavy snow", "❄️"
	case 95, 96, 99:
		return "Thunderstorm", "⛈️"
	default:
		return "Unknown", "🌡️"
	}
}
