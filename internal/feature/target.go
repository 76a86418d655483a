package feature

import (
	"math/rand"

	"github.com/marrowdrift/road-risk-service/internal/dataset"
)

// severityLevels folds the mixed severity vocabularies of both accident
// sources into a three-step ordinal scale.
var severityLevels = map[string]float64{
	"Minor":    0,
	"Slight":   0,
	"Moderate": 1,
	"Serious":  1,
	"Severe":   2,
	"Fatal":    2,
}

const highRiskThreshold = 0.6

// riskScoreTerm is one weighted component of the composite risk score.
// value reads the component for a row and reports whether the frame can
// supply it at all.
type riskScoreTerm struct {
	weight float64
	value  func(f *dataset.Frame, i int) float64
	usable func(f *dataset.Frame) bool
}

func numOrZero(f *dataset.Frame, name string, i int) float64 {
	v, _ := f.Num(name, i)
	return v
}

var riskScoreTerms = []riskScoreTerm{
	{0.30,
		func(f *dataset.Frame, i int) float64 { return numOrZero(f, "severity_level", i) / 2 },
		func(f *dataset.Frame) bool { return f.Has("severity_level") }},
	{0.20,
		func(f *dataset.Frame, i int) float64 { return numOrZero(f, "weather_severity_score", i) },
		func(f *dataset.Frame) bool { return f.Has("weather_severity_score") }},
	{0.15,
		func(f *dataset.Frame, i int) float64 {
			return numOrZero(f, "is_night", i)*0.6 + numOrZero(f, "is_rush_hour", i)*0.4
		},
		func(f *dataset.Frame) bool { return f.Has("is_night") || f.Has("is_rush_hour") }},
	{0.15,
		func(f *dataset.Frame, i int) float64 { return numOrZero(f, "road_risk_score", i) },
		func(f *dataset.Frame) bool { return f.Has("road_risk_score") }},
	{0.10,
		func(f *dataset.Frame, i int) float64 {
			return numOrZero(f, "young_driver", i)*0.4 + numOrZero(f, "alcohol_risk", i)*0.6
		},
		func(f *dataset.Frame) bool { return f.Has("young_driver") || f.Has("alcohol_risk") }},
	{0.05,
		func(f *dataset.Frame, i int) float64 { return numOrZero(f, "vehicle_risk_score", i) },
		func(f *dataset.Frame) bool { return f.Has("vehicle_risk_score") }},
	{0.05,
		func(f *dataset.Frame, i int) float64 { return numOrZero(f, "state_risk_score", i) },
		func(f *dataset.Frame) bool { return f.Has("state_risk_score") }},
}

// BuildTarget derives severity_level, the composite risk_score, and the
// binary labels high_risk and severe_accident.
func BuildTarget(f *dataset.Frame) {
	n := f.Len()

	if f.Has(dataset.ColSeverity) {
		levels := make([]float64, n)
		for i := 0; i < n; i++ {
			if s, ok := f.Str(dataset.ColSeverity, i); ok {
				levels[i] = severityLevels[s]
			}
		}
		f.SetNumeric("severity_level", levels, nil)
	}

	var active []riskScoreTerm
	for _, t := range riskScoreTerms {
		if t.usable(f) {
			active = append(active, t)
		}
	}
	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		var s float64
		for _, t := range active {
			s += t.weight * t.value(f, i)
		}
		if s < 0 {
			s = 0
		} else if s > 1 {
			s = 1
		}
		scores[i] = s
	}
	f.SetNumeric("risk_score", scores, nil)

	addNumFlag(f, "risk_score", "high_risk", func(v float64) bool { return v >= highRiskThreshold })
	if f.Has("severity_level") {
		addNumFlag(f, "severity_level", "severe_accident", func(v float64) bool { return v >= 1 })
	}
}

// SelectTarget picks the training label column, preferring the binary
// high-risk label, then ordinal severity, then a binned risk score. A
// frame with none of those gets a synthetic random binary label so the
// model stage still has something to fit against.
func SelectTarget(f *dataset.Frame, rng *rand.Rand) (string, []float64) {
	n := f.Len()

	if f.Has("high_risk") {
		return "high_risk", numColumn(f, "high_risk")
	}

	if f.Has(dataset.ColSeverity) && !f.IsNumeric(dataset.ColSeverity) {
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			// Unmapped vocab (and missing cells) fall to level 0.
			s, _ := f.Str(dataset.ColSeverity, i)
			vals[i] = severityLevels[s]
		}
		return "severity_3class", vals
	}

	if f.Has("severity_level") {
		return "severity_level", numColumn(f, "severity_level")
	}

	if f.Has("risk_score") {
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			v, _ := f.Num("risk_score", i)
			switch {
			case v < 1.0/3:
				vals[i] = 0
			case v < 2.0/3:
				vals[i] = 1
			default:
				vals[i] = 2
			}
		}
		return "risk_score_binned", vals
	}

	vals := make([]float64, n)
	for i := range vals {
		vals[i] = float64(rng.Intn(2))
	}
	return "synthetic", vals
}

func numColumn(f *dataset.Frame, name string) []float64 {
	n := f.Len()
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		vals[i], _ = f.Num(name, i)
	}
	return vals
}
