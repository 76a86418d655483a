package feature

import (
	"github.com/marrowdrift/road-risk-service/internal/dataset"
)

// rainfallColumns are the numeric rainfall attributes that receive level
// bins and low/high indicator flags.
var rainfallColumns = []string{
	dataset.ColTotalRainfall, dataset.ColAvgDailyRainfall,
	dataset.ColMaxDailyRainfall, dataset.ColNormalRainfall,
	dataset.ColAnnualRainfall, dataset.ColMonsoonRainfall,
}

// Rainfall level boundaries (mm): low ≤10, moderate ≤50, high ≤100,
// extreme above.
const (
	rainfallLowMM  = 10
	rainfallModMM  = 50
	rainfallHighMM = 100
)

// yesNoValues normalizes Yes/No/TRUE/FALSE style cells to 0/1.
var yesNoValues = map[string]float64{
	"Yes": 1, "No": 0, "TRUE": 1, "FALSE": 0, "true": 1, "false": 0,
}

// DeriveWeather adds rainfall level bins and flags, normalizes the
// drought/flood indicators, and computes monsoon dependency and the
// weather severity score.
func DeriveWeather(f *dataset.Frame) {
	for _, col := range rainfallColumns {
		if !f.Has(col) {
			continue
		}
		f.CoerceNumeric(col)
		f.FillNumeric(col, 0)

		addRainfallLevel(f, col)
		addNumFlag(f, col, col+"_low", func(v float64) bool { return v <= rainfallLowMM })
		addNumFlag(f, col, col+"_high", func(v float64) bool { return v >= rainfallHighMM })
	}

	normalizeBinary(f, dataset.ColDroughtRisk)
	normalizeBinary(f, dataset.ColFloodRisk)

	if f.Has(dataset.ColMonsoonRainfall) && f.Has(dataset.ColAnnualRainfall) {
		n := f.Len()
		dep := make([]float64, n)
		for i := 0; i < n; i++ {
			monsoon, _ := f.Num(dataset.ColMonsoonRainfall, i)
			annual, _ := f.Num(dataset.ColAnnualRainfall, i)
			dep[i] = monsoon / (annual + 1)
		}
		f.SetNumeric("monsoon_dependency", dep, nil)
	}

	addWeatherSeverityScore(f)
}

// addRainfallLevel bins a rainfall column into low/moderate/high/extreme.
// The level column is not consumed downstream but stays available for
// analysis, mirroring the training dataset layout.
func addRainfallLevel(f *dataset.Frame, col string) {
	n := f.Len()
	levels := make([]string, n)
	for i := 0; i < n; i++ {
		v, _ := f.Num(col, i)
		switch {
		case v <= rainfallLowMM:
			levels[i] = "low"
		case v <= rainfallModMM:
			levels[i] = "moderate"
		case v <= rainfallHighMM:
			levels[i] = "high"
		default:
			levels[i] = "extreme"
		}
	}
	f.SetText(col+"_level", levels, nil)
}

// normalizeBinary rewrites a Yes/No/boolean-ish column as 0/1 with numeric
// fallback; anything unresolvable becomes 0.
func normalizeBinary(f *dataset.Frame, col string) {
	if !f.Has(col) {
		return
	}
	c := f.Col(col)
	n := f.Len()
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		if c.Miss[i] {
			continue
		}
		if c.Kind == dataset.Numeric {
			if c.Nums[i] != 0 {
				vals[i] = 1
			}
			continue
		}
		if v, ok := yesNoValues[c.Strs[i]]; ok {
			vals[i] = v
		}
	}
	f.SetNumeric(col, vals, nil)
}

// addWeatherSeverityScore computes the weighted severity sum. Terms whose
// source column is absent contribute 0; the score column always exists.
func addWeatherSeverityScore(f *dataset.Frame) {
	n := f.Len()
	score := make([]float64, n)
	terms := []struct {
		col    string
		weight float64
	}{
		{"weather_rainy", 0.3},
		{"weather_foggy", 0.4},
		{"weather_stormy", 0.5},
		{dataset.ColFloodRisk, 0.2},
	}
	for _, t := range terms {
		if !f.Has(t.col) {
			continue
		}
		for i := 0; i < n; i++ {
			v, _ := f.Num(t.col, i)
			score[i] += v * t.weight
		}
	}
	f.SetNumeric("weather_severity_score", score, nil)
}
