// Package serving builds online feature vectors from live conditions and
// turns classifier output into risk predictions. The offline pipeline and
// this package share one schema manifest; the manifest order is the only
// contract between them.
package serving

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"time"

	"github.com/marrowdrift/road-risk-service/internal/domain"
	"github.com/marrowdrift/road-risk-service/internal/feature"
	"github.com/marrowdrift/road-risk-service/internal/observability"
)

// weatherConditionCodes buckets live condition strings into the 0-4
// ordinal used in place of the offline label encoding. Unknown conditions
// read as clear.
var weatherConditionCodes = map[string]float64{
	"Clear":        0,
	"Clouds":       1,
	"Rain":         2,
	"Drizzle":      2,
	"Mist":         3,
	"Fog":          3,
	"Snow":         4,
	"Storm":        4,
	"Thunderstorm": 4,
}

const (
	coordHashPrefixLen = 5
	stateHashBuckets   = 100
	cityHashBuckets    = 50
)

// Scale factors turning instantaneous precipitation into the seasonal
// rainfall aggregates the model was trained on.
const (
	rainfallDaysPerMonth   = 30
	rainfallDaysPerYear    = 365
	monsoonDaysPerSeason   = 120
	floodPrecipThresholdMM = 10
)

// VectorBuilder produces manifest-ordered feature vectors from a location,
// a timestamp, and a weather snapshot.
type VectorBuilder struct {
	manifest *feature.Manifest
	logger   *slog.Logger
	metrics  *observability.Metrics
}

func NewVectorBuilder(m *feature.Manifest, logger *slog.Logger, metrics *observability.Metrics) *VectorBuilder {
	return &VectorBuilder{manifest: m, logger: logger, metrics: metrics}
}

// Build assembles the vector for one point. Every manifest slot is filled:
// from live conditions when the feature is derivable online, else from the
// slot default.
func (b *VectorBuilder) Build(loc domain.Location, at time.Time, weather domain.WeatherSnapshot) []float64 {
	live := b.liveFeatures(loc, at, weather)
	vec := make([]float64, b.manifest.Width())
	for i, slot := range b.manifest.Features {
		if v, ok := live[slot.Name]; ok {
			vec[i] = v
		} else {
			vec[i] = slot.Default
		}
	}
	return vec
}

// PadTruncate repairs a vector whose width disagrees with the manifest by
// padding slot defaults or dropping the tail. Every repair is logged and
// counted; callers should treat a repair as a deployment inconsistency
// between manifest and model artifacts.
func (b *VectorBuilder) PadTruncate(vec []float64, want int) []float64 {
	if len(vec) == want {
		return vec
	}
	b.logger.Warn("repairing vector width",
		slog.Int("got", len(vec)),
		slog.Int("want", want))
	b.metrics.VectorWidthWarnings.Inc()

	if len(vec) > want {
		return vec[:want]
	}
	out := make([]float64, want)
	copy(out, vec)
	for i := len(vec); i < want; i++ {
		if i < b.manifest.Width() {
			out[i] = b.manifest.Features[i].Default
		}
	}
	return out
}

// liveFeatures computes every feature derivable from live conditions,
// keyed by manifest slot name.
func (b *VectorBuilder) liveFeatures(loc domain.Location, at time.Time, w domain.WeatherSnapshot) map[string]float64 {
	out := make(map[string]float64, 64)

	hour := float64(at.Hour())
	month := float64(int(at.Month()))
	// time.Weekday starts on Sunday; the model's day index starts on Monday.
	day := float64((int(at.Weekday()) + 6) % 7)

	out["hour"] = hour
	out["month"] = month
	out["year"] = float64(at.Year())
	out["day_of_week_num"] = day

	flag := func(name string, cond bool) {
		if cond {
			out[name] = 1
		} else {
			out[name] = 0
		}
	}
	flag("is_night", hour >= 22 || hour <= 5)
	flag("is_evening", hour >= 18 && hour <= 21)
	flag("is_morning", hour >= 6 && hour <= 9)
	flag("is_afternoon", hour >= 10 && hour <= 17)
	flag("is_morning_rush", hour >= 7 && hour <= 9)
	flag("is_evening_rush", hour >= 17 && hour <= 19)
	flag("is_rush_hour", (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19))
	flag("is_weekend", day == 5 || day == 6)
	flag("is_weekday", day <= 4)
	flag("is_friday", day == 4)
	flag("is_monday", day == 0)
	flag("is_winter", month == 12 || month <= 2)
	flag("is_summer", month >= 3 && month <= 5)
	flag("is_monsoon", month >= 6 && month <= 9)
	flag("is_post_monsoon", month == 10 || month == 11)
	flag("lighting_daylight", hour >= 6 && hour <= 18)
	flag("lighting_dark", hour < 6 || hour > 18)

	addCyc := func(prefix string, v, period float64) {
		angle := 2 * math.Pi * v / period
		out[prefix+"_sin"] = math.Sin(angle)
		out[prefix+"_cos"] = math.Cos(angle)
	}
	addCyc("hour", hour, 24)
	addCyc("month", month, 12)
	addCyc("day", day, 7)

	enc := weatherConditionCodes[w.Condition]
	out["weather_encoded"] = enc
	out["season_encoded"] = month
	flag("weather_clear", enc == 0)
	flag("weather_rainy", enc == 2)
	flag("weather_foggy", enc >= 3 && enc < 4)
	flag("weather_stormy", enc == 4)
	out["weather_severity_score"] = enc * 0.2

	precip := w.Precipitation
	out["total_rainfall"] = precip
	out["avg_daily_rainfall"] = precip
	out["max_daily_rainfall"] = precip
	out["normal_rainfall"] = precip * rainfallDaysPerMonth
	out["annual_rainfall"] = precip * rainfallDaysPerYear
	out["monsoon_rainfall"] = precip * monsoonDaysPerSeason
	out["rainfall_intensity"] = precip / 10
	flag("flood_risk", precip > floodPrecipThresholdMM)
	out["drought_risk"] = 0

	out["night_rain_risk"] = out["lighting_dark"] * boolTo01(enc >= 2)
	flag("rush_fog_risk", out["is_rush_hour"] == 1 && enc >= 3 && enc < 4)

	out["state_encoded"] = coordHash(loc.Lat, stateHashBuckets)
	out["city_encoded"] = coordHash(loc.Lon, cityHashBuckets)

	return out
}

func boolTo01(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// coordHash folds a coordinate into a stable pseudo-encoding bucket. The
// offline encodings are fit on state and city names that live input does
// not carry, so a deterministic hash of the coordinate stands in.
func coordHash(coord float64, buckets uint32) float64 {
	s := fmt.Sprintf("%f", coord)
	if len(s) > coordHashPrefixLen {
		s = s[:coordHashPrefixLen]
	}
	h := fnv.New32a()
	h.Write([]byte(s))
	return float64(h.Sum32() % buckets)
}
