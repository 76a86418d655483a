package feature

import "github.com/marrowdrift/road-risk-service/internal/dataset"

// interactionPairs lists the cross features built as products of two
// existing flag or score columns. A pair is skipped when either side is
// absent from the frame.
var interactionPairs = []struct {
	name string
	a, b string
}{
	{"night_rain_risk", "is_night", "weather_rainy"},
	{"rush_fog_risk", "is_rush_hour", "weather_foggy"},
	{"speed_rain_risk", "high_speed", "weather_rainy"},
	{"young_night_risk", "young_driver", "is_night"},
	{"elderly_dark_risk", "elderly_driver", "lighting_dark"},
}

// combinedRiskParts are averaged into combined_risk_score. The column is
// only produced when at least two parts exist, so a frame with a single
// score keeps its plain value instead of a degenerate mean.
var combinedRiskParts = []string{
	"weather_severity_score",
	"speed_risk_score",
	"visibility_risk",
}

// DeriveInteractions multiplies co-occurring risk signals into cross
// features and folds the individual severity scores into a combined score.
func DeriveInteractions(f *dataset.Frame) {
	for _, p := range interactionPairs {
		if !f.Has(p.a) || !f.Has(p.b) {
			continue
		}
		n := f.Len()
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			a, _ := f.Num(p.a, i)
			b, _ := f.Num(p.b, i)
			vals[i] = a * b
		}
		f.SetNumeric(p.name, vals, nil)
	}

	var present []string
	for _, name := range combinedRiskParts {
		if f.Has(name) {
			present = append(present, name)
		}
	}
	if len(present) < 2 {
		return
	}
	n := f.Len()
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for _, name := range present {
			v, _ := f.Num(name, i)
			sum += v
		}
		vals[i] = sum / float64(len(present))
	}
	f.SetNumeric("combined_risk_score", vals, nil)
}
