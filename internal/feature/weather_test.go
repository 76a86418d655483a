package feature_test

import (
	"testing"

	"github.com/marrowdrift/road-risk-service/internal/dataset"
	"github.com/marrowdrift/road-risk-service/internal/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveWeather_RainfallLevelsAndFlags(t *testing.T) {
	f := dataset.NewFrame()
	f.SetText(dataset.ColTotalRainfall, []string{"5", "30", "80", "150"}, nil)

	feature.DeriveWeather(f)

	wantLevels := []string{"low", "moderate", "high", "extreme"}
	for i, want := range wantLevels {
		got, ok := f.Str("total_rainfall_level", i)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 1.0, numAt(t, f, "total_rainfall_low", 0))
	assert.Equal(t, 0.0, numAt(t, f, "total_rainfall_low", 1))
	assert.Equal(t, 1.0, numAt(t, f, "total_rainfall_high", 3))
}

func TestDeriveWeather_BinaryNormalization(t *testing.T) {
	f := dataset.NewFrame()
	f.SetText(dataset.ColDroughtRisk, []string{"Yes", "No", "TRUE", "maybe"}, nil)
	f.SetNumeric(dataset.ColFloodRisk, []float64{0, 3, 1, 0}, nil)

	feature.DeriveWeather(f)

	assert.Equal(t, []float64{1, 0, 1, 0}, numColumnOf(t, f, dataset.ColDroughtRisk))
	assert.Equal(t, []float64{0, 1, 1, 0}, numColumnOf(t, f, dataset.ColFloodRisk))
}

func TestDeriveWeather_MonsoonDependencyAndSeverity(t *testing.T) {
	f := dataset.NewFrame()
	f.SetNumeric(dataset.ColMonsoonRainfall, []float64{900}, nil)
	f.SetNumeric(dataset.ColAnnualRainfall, []float64{1199}, nil)
	f.SetNumeric("weather_rainy", []float64{1}, nil)
	f.SetNumeric("weather_foggy", []float64{1}, nil)
	f.SetNumeric(dataset.ColFloodRisk, []float64{1}, nil)

	feature.DeriveWeather(f)

	assert.InDelta(t, 0.75, numAt(t, f, "monsoon_dependency", 0), 1e-9)
	// rainy 0.3 + foggy 0.4 + flood 0.2
	assert.InDelta(t, 0.9, numAt(t, f, "weather_severity_score", 0), 1e-9)
}

func TestDeriveWeather_SeverityAlwaysPresent(t *testing.T) {
	f := dataset.NewFrame()
	f.SetText(dataset.ColState, []string{"Punjab"}, nil)

	feature.DeriveWeather(f)

	assert.Equal(t, 0.0, numAt(t, f, "weather_severity_score", 0))
}

func numColumnOf(t *testing.T, f *dataset.Frame, name string) []float64 {
	t.Helper()
	require.True(t, f.Has(name))
	vals := make([]float64, f.Len())
	for i := range vals {
		v, ok := f.Num(name, i)
		require.True(t, ok)
		vals[i] = v
	}
	return vals
}
