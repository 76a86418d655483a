package feature_test

import (
	"math"
	"testing"

	"github.com/marrowdrift/road-risk-service/internal/dataset"
	"github.com/marrowdrift/road-risk-service/internal/feature"
	"github.com/stretchr/testify/assert"
)

func TestDeriveRisk_VehicleSpeedDriver(t *testing.T) {
	f := dataset.NewFrame()
	f.SetText(dataset.ColVehiclesInvolved, []string{"1", "3", ""}, []bool{false, false, true})
	f.SetText(dataset.ColSpeedLimit, []string{"100", "30", "60"}, nil)
	f.SetText(dataset.ColDriverAge, []string{"20", "70", "40"}, nil)

	feature.DeriveRisk(f)

	assert.Equal(t, 0.0, numAt(t, f, "multi_vehicle", 0))
	assert.Equal(t, 1.0, numAt(t, f, "multi_vehicle", 1))
	// Missing vehicle count defaults to 1.
	assert.Equal(t, 0.0, numAt(t, f, "multi_vehicle", 2))
	assert.InDelta(t, math.Log1p(3), numAt(t, f, "vehicle_risk_score", 1), 1e-9)

	assert.Equal(t, 1.0, numAt(t, f, "high_speed", 0))
	assert.Equal(t, 1.0, numAt(t, f, "low_speed", 1))
	assert.InDelta(t, 0.6, numAt(t, f, "speed_risk_score", 2), 1e-9)

	assert.Equal(t, 1.0, numAt(t, f, "young_driver", 0))
	assert.Equal(t, 1.0, numAt(t, f, "inexperienced_driver", 0))
	assert.Equal(t, 1.0, numAt(t, f, "elderly_driver", 1))
	assert.Equal(t, 0.0, numAt(t, f, "young_driver", 2))
}

func TestDeriveRisk_AlcoholAndRoadCondition(t *testing.T) {
	f := dataset.NewFrame()
	f.SetText(dataset.ColAlcoholInvolved, []string{"Yes", "No", "1", ""}, []bool{false, false, false, true})
	f.SetText(dataset.ColRoadCondition, []string{"Good", "Damaged", "Gravel", "Poor"}, nil)

	feature.DeriveRisk(f)

	assert.Equal(t, 1.0, numAt(t, f, "alcohol_risk", 0))
	assert.Equal(t, 0.0, numAt(t, f, "alcohol_risk", 1))
	// Unmapped text reads as not involved.
	assert.Equal(t, 0.0, numAt(t, f, "alcohol_risk", 2))
	assert.Equal(t, 0.0, numAt(t, f, "alcohol_risk", 3))

	assert.InDelta(t, 0.1, numAt(t, f, "road_risk_score", 0), 1e-9)
	assert.InDelta(t, 0.9, numAt(t, f, "road_risk_score", 1), 1e-9)
	assert.InDelta(t, 0.5, numAt(t, f, "road_risk_score", 2), 1e-9)
	assert.InDelta(t, 0.7, numAt(t, f, "road_risk_score", 3), 1e-9)
}

func TestDeriveRisk_VisibilityNeedsLighting(t *testing.T) {
	f := dataset.NewFrame()
	f.SetNumeric("weather_foggy", []float64{1}, nil)

	feature.DeriveRisk(f)
	assert.False(t, f.Has("visibility_risk"))

	f.SetNumeric("lighting_dark", []float64{1}, nil)
	feature.DeriveRisk(f)
	assert.InDelta(t, 1.0, numAt(t, f, "visibility_risk", 0), 1e-9)
}

func TestDeriveInteractions(t *testing.T) {
	f := dataset.NewFrame()
	f.SetNumeric("is_night", []float64{1, 0}, nil)
	f.SetNumeric("weather_rainy", []float64{1, 1}, nil)
	f.SetNumeric("high_speed", []float64{1, 0}, nil)
	f.SetNumeric("speed_risk_score", []float64{0.8, 0.4}, nil)
	f.SetNumeric("weather_severity_score", []float64{0.4, 0.0}, nil)

	feature.DeriveInteractions(f)

	assert.Equal(t, 1.0, numAt(t, f, "night_rain_risk", 0))
	assert.Equal(t, 0.0, numAt(t, f, "night_rain_risk", 1))
	// The rain cross term uses the binary high_speed flag, so a slow wet
	// road contributes nothing even with a nonzero speed risk score.
	assert.InDelta(t, 1.0, numAt(t, f, "speed_rain_risk", 0), 1e-9)
	assert.Equal(t, 0.0, numAt(t, f, "speed_rain_risk", 1))
	// Pairs with an absent operand never materialize.
	assert.False(t, f.Has("rush_fog_risk"))
	assert.False(t, f.Has("young_night_risk"))

	assert.InDelta(t, 0.6, numAt(t, f, "combined_risk_score", 0), 1e-9)
	assert.InDelta(t, 0.2, numAt(t, f, "combined_risk_score", 1), 1e-9)
}

func TestDeriveInteractions_CombinedNeedsTwoParts(t *testing.T) {
	f := dataset.NewFrame()
	f.SetNumeric("speed_risk_score", []float64{0.5}, nil)

	feature.DeriveInteractions(f)

	assert.False(t, f.Has("combined_risk_score"))
}

func TestDeriveGeospatial(t *testing.T) {
	f := dataset.NewFrame()
	f.SetText(dataset.ColState, []string{"UTTAR PRADESH", "Goa", "Delhi"}, nil)
	f.SetText(dataset.ColCity, []string{"Lucknow", "Village", "Delhi"}, nil)

	feature.DeriveGeospatial(f)

	assert.InDelta(t, 0.9, numAt(t, f, "state_risk_score", 0), 1e-9)
	assert.InDelta(t, 0.5, numAt(t, f, "state_risk_score", 1), 1e-9)
	assert.InDelta(t, 0.9, numAt(t, f, "state_risk_score", 2), 1e-9)

	assert.Equal(t, 1.0, numAt(t, f, "high_risk_state", 0))
	assert.Equal(t, 0.0, numAt(t, f, "high_risk_state", 2))

	assert.Equal(t, 1.0, numAt(t, f, "major_city", 0))
	assert.Equal(t, 0.0, numAt(t, f, "major_city", 1))
	assert.Equal(t, 1.0, numAt(t, f, "urban_area", 0))
	assert.Equal(t, 0.0, numAt(t, f, "urban_area", 1))
	assert.Equal(t, 1.0, numAt(t, f, "urban_area", 2))
}
