package feature_test

import (
	"testing"

	"github.com/marrowdrift/road-risk-service/internal/dataset"
	"github.com/marrowdrift/road-risk-service/internal/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveCategorical_EncodingIsLexicographic(t *testing.T) {
	f := dataset.NewFrame()
	f.SetText(dataset.ColWeather, []string{"Rain", "Clear", "Fog", "Clear"}, nil)

	feature.DeriveCategorical(f)

	require.True(t, f.Has("weather_encoded"))
	assert.Equal(t, 2.0, numAt(t, f, "weather_encoded", 0)) // Rain
	assert.Equal(t, 0.0, numAt(t, f, "weather_encoded", 1)) // Clear
	assert.Equal(t, 1.0, numAt(t, f, "weather_encoded", 2)) // Fog
	assert.Equal(t, 0.0, numAt(t, f, "weather_encoded", 3))
}

func TestDeriveCategorical_MissingBecomesUnknown(t *testing.T) {
	f := dataset.NewFrame()
	f.SetText(dataset.ColRoadType, []string{"National Highway", ""}, []bool{false, true})

	feature.DeriveCategorical(f)

	s, ok := f.Str(dataset.ColRoadType, 1)
	require.True(t, ok)
	assert.Equal(t, "Unknown", s)
	assert.Equal(t, 1.0, numAt(t, f, "road_highway", 0))
	assert.Equal(t, 0.0, numAt(t, f, "road_highway", 1))
}

func TestDeriveCategorical_SubstringFlags(t *testing.T) {
	f := dataset.NewFrame()
	f.SetText(dataset.ColWeather, []string{"Heavy Rain", "Thunderstorm", "Foggy", "Clear Sky"}, nil)
	f.SetText(dataset.ColLighting, []string{"Darkness - no lights", "Daylight", "Dusk", "Night"}, nil)

	feature.DeriveCategorical(f)

	assert.Equal(t, 1.0, numAt(t, f, "weather_rainy", 0))
	assert.Equal(t, 1.0, numAt(t, f, "weather_stormy", 1))
	assert.Equal(t, 1.0, numAt(t, f, "weather_foggy", 2))
	assert.Equal(t, 1.0, numAt(t, f, "weather_clear", 3))

	assert.Equal(t, 1.0, numAt(t, f, "lighting_dark", 0))
	assert.Equal(t, 1.0, numAt(t, f, "lighting_daylight", 1))
	assert.Equal(t, 1.0, numAt(t, f, "lighting_twilight", 2))
	assert.Equal(t, 1.0, numAt(t, f, "lighting_dark", 3))
}
