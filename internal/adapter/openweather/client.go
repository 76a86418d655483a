// Package openweather implements domain.WeatherProvider against the
// OpenWeatherMap current-weather API.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/marrowdrift/road-risk-service/internal/domain"
)

// Client fetches live weather snapshots from OpenWeatherMap.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		logger:  logger,
	}
}

// CurrentWeather fetches the current snapshot for a coordinate.
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	params := url.Values{
		"lat":   {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon":   {strconv.FormatFloat(lon, 'f', 6, 64)},
		"appid": {c.apiKey},
		"units": {"metric"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.WeatherSnapshot{}, fmt.Errorf("openweathermap API error: status %d: %s", resp.StatusCode, body)
	}

	var owm response
	if err := json.NewDecoder(resp.Body).Decode(&owm); err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("decode response: %w", err)
	}

	snap := domain.WeatherSnapshot{
		Temperature: owm.Main.Temp,
		Humidity:    owm.Main.Humidity,
		Pressure:    owm.Main.Pressure,
		WindSpeed:   owm.Wind.Speed,
		Visibility:  owm.Visibility,
		Timestamp:   time.Unix(owm.Dt, 0).UTC(),
	}
	if len(owm.Weather) > 0 {
		snap.Condition = owm.Weather[0].Main
	} else {
		snap.Condition = "Clear"
		snap.DefaultedFields = append(snap.DefaultedFields, "condition")
	}
	// OpenWeatherMap reports rain per window, preferring the 1h value.
	switch {
	case owm.Rain.OneHour > 0:
		snap.Precipitation = owm.Rain.OneHour
	case owm.Rain.ThreeHour > 0:
		snap.Precipitation = owm.Rain.ThreeHour / 3
	}
	return snap, nil
}

// OpenWeatherMap API response types.

type response struct {
	Weather []condition `json:"weather"`
	Main    mainBlock   `json:"main"`
	Wind    windBlock   `json:"wind"`
	Rain    rainBlock   `json:"rain"`
	// Visibility is meters, capped at 10 km by the API.
	Visibility float64 `json:"visibility"`
	Dt         int64   `json:"dt"`
}

type condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type mainBlock struct {
	Temp     float64 `json:"temp"`
	Humidity float64 `json:"humidity"`
	Pressure float64 `json:"pressure"`
}

type windBlock struct {
	Speed float64 `json:"speed"`
}

type rainBlock struct {
	OneHour   float64 `json:"1h"`
	ThreeHour float64 `json:"3h"`
}
