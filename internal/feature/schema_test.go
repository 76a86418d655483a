package feature_test

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/marrowdrift/road-risk-service/internal/dataset"
	"github.com/marrowdrift/road-risk-service/internal/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func derivedFixture(t *testing.T) *dataset.Frame {
	t.Helper()
	f := dataset.NewFrame()
	f.SetText(dataset.ColState, []string{"Maharashtra", "Bihar", "Delhi"}, nil)
	f.SetText(dataset.ColCity, []string{"Mumbai", "Patna", "Delhi"}, nil)
	f.SetText(dataset.ColSeverity, []string{"Fatal", "Minor", "Moderate"}, nil)
	f.SetText(dataset.ColWeather, []string{"Rain", "Clear", "Fog"}, nil)
	f.SetText(dataset.ColTimeOfDay, []string{"23:00", "09:00", "14:30"}, nil)
	f.SetText(dataset.ColDayOfWeek, []string{"Saturday", "Monday", "Friday"}, nil)
	f.SetText(dataset.ColSpeedLimit, []string{"80", "50", "60"}, nil)
	f.SetText(dataset.ColDriverAge, []string{"22", "45", "67"}, nil)
	f.SetText(dataset.ColTotalRainfall, []string{"120", "4", "55"}, nil)

	rng := rand.New(rand.NewSource(42))
	feature.DeriveTemporal(f, rng)
	feature.DeriveCategorical(f)
	feature.DeriveWeather(f)
	feature.DeriveRisk(f)
	feature.DeriveInteractions(f)
	feature.DeriveGeospatial(f)
	feature.BuildTarget(f)
	feature.Impute(f)
	feature.CapOutliers(f)
	return f
}

func TestSelectSchema_ExcludesTargets(t *testing.T) {
	f := derivedFixture(t)
	m := feature.SelectSchema(f)

	require.NotZero(t, m.Width())
	for _, name := range m.FeatureNames() {
		assert.NotContains(t, []string{
			"risk_score", "severity_level", "high_risk", "severe_accident",
			dataset.ColSeverity, dataset.ColCasualtySeverity,
		}, name)
	}
	assert.Contains(t, m.FeatureNames(), "state_encoded")
	assert.Contains(t, m.FeatureNames(), "hour_sin")
	assert.Contains(t, m.FeatureNames(), "is_night")
}

func TestSelectSchema_CoercesNumericTextColumns(t *testing.T) {
	f := dataset.NewFrame()
	f.SetNumeric("speed_limit", []float64{80, 50, 60}, nil)
	f.SetText("year", []string{"2019", "2020", "2021"}, nil)
	f.SetText("casualties", []string{"2", "", "1"}, []bool{false, true, false})
	f.SetText("accident_notes", []string{"head-on", "side swipe", "pileup"}, nil)

	m := feature.SelectSchema(f)

	assert.Contains(t, m.FeatureNames(), "year")
	assert.Contains(t, m.FeatureNames(), "casualties")
	// A text column with no parseable cell and no encoded companion
	// stays out of the schema.
	assert.NotContains(t, m.FeatureNames(), "accident_notes")

	assert.True(t, f.IsNumeric("year"))
	v, ok := f.Num("year", 0)
	require.True(t, ok)
	assert.Equal(t, 2019.0, v)
}

func TestSelectSchema_Deterministic(t *testing.T) {
	a := feature.SelectSchema(derivedFixture(t))
	b := feature.SelectSchema(derivedFixture(t))

	assert.Empty(t, cmp.Diff(a, b))
}

func TestSelectSchema_CapsWideFrames(t *testing.T) {
	f := derivedFixture(t)
	for i := 0; i < 100; i++ {
		f.SetNumeric(fmt.Sprintf("extra_%03d_score", i), []float64{0, 0, 0}, nil)
	}

	m := feature.SelectSchema(f)

	assert.LessOrEqual(t, m.Width(), 70)
	// Priority columns survive the trim.
	assert.Contains(t, m.FeatureNames(), "speed_limit")
	assert.Contains(t, m.FeatureNames(), "weather_severity_score")
}

func TestManifest_SaveLoadRoundTrip(t *testing.T) {
	m := feature.SelectSchema(derivedFixture(t))
	path := filepath.Join(t.TempDir(), "schema_manifest.json")

	require.NoError(t, m.Save(path))
	loaded, err := feature.LoadManifest(path)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(m, loaded))
}

func TestLoadManifest_RejectsTamperedFeatureList(t *testing.T) {
	m := feature.SelectSchema(derivedFixture(t))
	m.Features = append(m.Features, feature.ManifestFeature{Name: "bolted_on"})
	path := filepath.Join(t.TempDir(), "schema_manifest.json")
	require.NoError(t, m.Save(path))

	_, err := feature.LoadManifest(path)
	assert.ErrorContains(t, err, "does not match")
}

func TestBuildMatrix_UsesDefaultsForAbsentColumns(t *testing.T) {
	f := derivedFixture(t)
	m := feature.SelectSchema(f)
	m.Features = append(m.Features, feature.ManifestFeature{Name: "engine_size", Default: 1500})

	rows := feature.BuildMatrix(f, m)

	require.Len(t, rows, f.Len())
	for _, row := range rows {
		require.Len(t, row, m.Width())
		assert.Equal(t, 1500.0, row[len(row)-1])
	}
}
