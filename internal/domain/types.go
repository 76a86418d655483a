package domain

import (
	"context"
	"time"
)

// Location is a WGS-84 latitude/longitude pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// WeatherSnapshot is the live weather view consumed by the online vector
// builder. Any field may hold a substituted default when the upstream
// provider degrades; DefaultedFields lists which ones, so degradation is
// observable instead of indistinguishable from clean data.
type WeatherSnapshot struct {
	Condition     string    `json:"condition"`
	Temperature   float64   `json:"temperature"`
	Humidity      float64   `json:"humidity"`
	Pressure      float64   `json:"pressure"`
	WindSpeed     float64   `json:"wind_speed"`
	Visibility    float64   `json:"visibility"` // meters
	Precipitation float64   `json:"precipitation"`
	Timestamp     time.Time `json:"timestamp"`

	DefaultedFields []string `json:"defaulted_fields,omitempty"`
}

// Degraded reports whether any field of the snapshot holds a default.
func (w WeatherSnapshot) Degraded() bool {
	return len(w.DefaultedFields) > 0
}

// DefaultWeather returns the fallback snapshot used when the upstream
// weather provider fails: clear sky, 25°C, 50% humidity, 1013 hPa, calm
// wind, 10 km visibility, no precipitation.
func DefaultWeather() WeatherSnapshot {
	return WeatherSnapshot{
		Condition:     "Clear",
		Temperature:   25,
		Humidity:      50,
		Pressure:      1013,
		WindSpeed:     0,
		Visibility:    10000,
		Precipitation: 0,
		Timestamp:     clock.Now(),
		DefaultedFields: []string{
			"condition", "temperature", "humidity", "pressure",
			"wind_speed", "visibility", "precipitation",
		},
	}
}

// RiskLevel is the discrete bucket derived from a continuous risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"

	// RiskSevere exists as a training-time label only; the online
	// thresholds never produce it.
	RiskSevere RiskLevel = "severe"
)

// ModelInfo describes the classifier behind a prediction.
type ModelInfo struct {
	ModelType    string `json:"model_type"`
	FeaturesUsed int    `json:"features_used"`
}

// RiskPrediction is the per-request output of the risk scorer. It is
// created per request and never persisted by this service.
type RiskPrediction struct {
	RiskScore float64         `json:"risk_score"`
	RiskLevel RiskLevel       `json:"risk_level"`
	Weather   WeatherSnapshot `json:"weather"`
	Location  Location        `json:"location"`
	Timestamp time.Time       `json:"timestamp"`
	Model     ModelInfo       `json:"model_info"`

	// Source is "model" for classifier-backed scores and "fallback"
	// when the rule-based estimator substituted.
	Source string `json:"source"`
}

// RouteSummary aggregates per-point predictions over a route.
type RouteSummary struct {
	AverageRisk   float64   `json:"average_risk"`
	MaxRiskIndex  int       `json:"max_risk_index"`
	MaxRiskScore  float64   `json:"max_risk_score"`
	DominantLevel RiskLevel `json:"dominant_level"`
}

// Classifier is the trained-model contract the scorer depends on: a class
// prediction, an optional class-1 probability, and a feature manifest used
// to validate vector width.
type Classifier interface {
	Predict(vector []float64) (int, error)
	PredictProbability(vector []float64) (float64, error)
	FeatureCount() int
	ModelType() string
}

// WeatherProvider supplies a weather snapshot for a coordinate. The HTTP
// client behind it is an external collaborator; implementations must
// return a usable snapshot or an error, never block indefinitely.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, lat, lon float64) (WeatherSnapshot, error)
}
