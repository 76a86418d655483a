package serving

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/marrowdrift/road-risk-service/internal/domain"
	"github.com/marrowdrift/road-risk-service/internal/observability"
)

// Base/probability blend for model-backed scores. The raw classifier
// probability is compressed into [0.15, 0.85] before the condition
// multiplier widens it again.
const (
	baseRisk          = 0.15
	probabilityWeight = 0.70

	multiplierFloor = 0.8
	multiplierCeil  = 2.5

	scoreFloor = 0.15
	scoreCeil  = 0.95

	highThreshold     = 0.70
	moderateThreshold = 0.45
)

// weatherMultipliers scale model output by live conditions. Unlisted
// conditions multiply by 1.
var weatherMultipliers = map[string]float64{
	"Clear":        0.9,
	"Clouds":       1.0,
	"Rain":         1.6,
	"Drizzle":      1.3,
	"Mist":         1.4,
	"Fog":          1.8,
	"Snow":         2.0,
	"Storm":        2.2,
	"Thunderstorm": 2.2,
}

// fallbackWeatherRisk is the rule-based base risk per condition, used when
// no classifier is loaded or prediction fails.
var fallbackWeatherRisk = map[string]float64{
	"Clear":        0.20,
	"Clouds":       0.25,
	"Rain":         0.50,
	"Drizzle":      0.35,
	"Mist":         0.40,
	"Fog":          0.60,
	"Snow":         0.70,
	"Storm":        0.75,
	"Thunderstorm": 0.75,
}

const fallbackDefaultRisk = 0.25

// Scorer turns live conditions into a risk prediction. A nil classifier
// is valid and routes every request through the rule-based fallback.
type Scorer struct {
	classifier domain.Classifier
	weather    domain.WeatherProvider
	vectors    *VectorBuilder
	logger     *slog.Logger
	metrics    *observability.Metrics
}

func NewScorer(classifier domain.Classifier, weather domain.WeatherProvider, vectors *VectorBuilder, logger *slog.Logger, metrics *observability.Metrics) *Scorer {
	return &Scorer{
		classifier: classifier,
		weather:    weather,
		vectors:    vectors,
		logger:     logger,
		metrics:    metrics,
	}
}

// ScorePoint predicts risk for one location at time at. Weather provider
// failures degrade to the default snapshot; classifier failures degrade to
// the rule-based estimate. The method itself never fails.
func (s *Scorer) ScorePoint(ctx context.Context, loc domain.Location, at time.Time) domain.RiskPrediction {
	timer := prometheus.NewTimer(s.metrics.PredictionDuration)
	defer timer.ObserveDuration()

	weather, err := s.weather.CurrentWeather(ctx, loc.Lat, loc.Lon)
	if err != nil {
		s.logger.Warn("weather provider failed, using defaults",
			slog.Float64("lat", loc.Lat),
			slog.Float64("lon", loc.Lon),
			slog.Any("error", err))
		s.metrics.WeatherDefaulted.Inc()
		weather = domain.DefaultWeather()
	}
	return s.score(loc, at, weather)
}

func (s *Scorer) score(loc domain.Location, at time.Time, weather domain.WeatherSnapshot) domain.RiskPrediction {
	pred := domain.RiskPrediction{
		Weather:   weather,
		Location:  loc,
		Timestamp: at,
	}

	score, modelInfo, err := s.modelScore(loc, at, weather)
	if err != nil {
		s.logger.Warn("model scoring failed, using rule-based fallback", slog.Any("error", err))
		score = fallbackScore(weather, at)
		modelInfo = domain.ModelInfo{ModelType: "rule_based", FeaturesUsed: 0}
		pred.Source = "fallback"
	} else {
		pred.Source = "model"
	}
	s.metrics.Predictions.WithLabelValues(pred.Source).Inc()

	pred.RiskScore = score
	pred.RiskLevel = levelFor(score)
	pred.Model = modelInfo
	return pred
}

func (s *Scorer) modelScore(loc domain.Location, at time.Time, weather domain.WeatherSnapshot) (float64, domain.ModelInfo, error) {
	if s.classifier == nil {
		return 0, domain.ModelInfo{}, domain.ErrModelUnavailable
	}

	vec := s.vectors.Build(loc, at, weather)
	if len(vec) != s.classifier.FeatureCount() {
		vec = s.vectors.PadTruncate(vec, s.classifier.FeatureCount())
	}
	p, err := s.classifier.PredictProbability(vec)
	if err != nil {
		return 0, domain.ModelInfo{}, err
	}

	risk := baseRisk + probabilityWeight*p
	risk *= conditionMultiplier(weather, at)
	risk = clamp(risk, scoreFloor, scoreCeil)

	return risk, domain.ModelInfo{
		ModelType:    s.classifier.ModelType(),
		FeaturesUsed: s.classifier.FeatureCount(),
	}, nil
}

// conditionMultiplier compounds weather, precipitation, time-of-day,
// visibility, and wind factors, clamped to [0.8, 2.5].
func conditionMultiplier(w domain.WeatherSnapshot, at time.Time) float64 {
	m := 1.0
	if wm, ok := weatherMultipliers[w.Condition]; ok {
		m = wm
	}

	rain := w.Precipitation / 20
	if rain > 0.5 {
		rain = 0.5
	}
	m *= 1 + rain

	hour := at.Hour()
	switch {
	case hour >= 22 || hour <= 6:
		m *= 1.4
	case (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19):
		m *= 1.2
	}

	day := (int(at.Weekday()) + 6) % 7
	if day >= 4 && (hour >= 20 || hour <= 3) {
		m *= 1.3
	}

	// Visibility arrives in meters from live providers; normalize to a
	// 0-1 fraction of 10 km.
	vis := w.Visibility
	if vis > 1 {
		vis /= 10000
	}
	if vis < 0.5 {
		m *= 1.5
	} else if vis < 0.8 {
		m *= 1.2
	}

	if w.WindSpeed > 25 {
		m *= 1.6
	} else if w.WindSpeed > 15 {
		m *= 1.3
	}

	return clamp(m, multiplierFloor, multiplierCeil)
}

// fallbackScore is the rule-based estimate used when no model is
// available: a per-condition base plus time-of-day adders, bounded to
// [0.20, 0.80].
func fallbackScore(w domain.WeatherSnapshot, at time.Time) float64 {
	risk, ok := fallbackWeatherRisk[w.Condition]
	if !ok {
		risk = fallbackDefaultRisk
	}

	hour := at.Hour()
	switch {
	case hour < 6 || hour > 20:
		risk += 0.15
	case (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19):
		risk += 0.10
	}

	day := (int(at.Weekday()) + 6) % 7
	if day >= 5 {
		risk += 0.08
	}

	return clamp(risk, 0.20, 0.80)
}

func levelFor(score float64) domain.RiskLevel {
	switch {
	case score >= highThreshold:
		return domain.RiskHigh
	case score >= moderateThreshold:
		return domain.RiskModerate
	default:
		return domain.RiskLow
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
