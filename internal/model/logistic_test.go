package model_test

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/marrowdrift/road-risk-service/internal/domain"
	"github.com/marrowdrift/road-risk-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trainedOnSeparableData(t *testing.T) *model.Logistic {
	t.Helper()
	m := model.NewLogistic([]string{"speed_risk_score", "is_night"})
	rows := [][]float64{
		{0.3, 0}, {0.4, 0}, {0.2, 0}, {0.5, 0},
		{0.9, 1}, {1.0, 1}, {0.8, 1}, {0.95, 1},
	}
	labels := []float64{0, 0, 0, 0, 1, 1, 1, 1}
	require.NoError(t, m.Fit(rows, labels, model.FitOptions{}))
	return m
}

func TestLogistic_FitSeparatesClasses(t *testing.T) {
	m := trainedOnSeparableData(t)

	lowP, err := m.PredictProbability([]float64{0.3, 0})
	require.NoError(t, err)
	highP, err := m.PredictProbability([]float64{0.95, 1})
	require.NoError(t, err)

	assert.Less(t, lowP, 0.5)
	assert.Greater(t, highP, 0.5)

	cls, err := m.Predict([]float64{0.95, 1})
	require.NoError(t, err)
	assert.Equal(t, 1, cls)
}

func TestLogistic_WidthMismatch(t *testing.T) {
	m := trainedOnSeparableData(t)

	_, err := m.PredictProbability([]float64{0.5})
	require.Error(t, err)
	assert.True(t, domain.IsWidthMismatch(err))
}

func TestLogistic_FitRejectsEmptyData(t *testing.T) {
	m := model.NewLogistic([]string{"a"})
	err := m.Fit(nil, nil, model.FitOptions{})
	assert.ErrorIs(t, err, domain.ErrNoAccidentData)
}

func TestLogistic_SaveLoadRoundTrip(t *testing.T) {
	m := trainedOnSeparableData(t)
	path := filepath.Join(t.TempDir(), "risk_model.json")
	require.NoError(t, m.Save(path))

	loaded, err := model.Load(path, 2)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(m, loaded))
	assert.Equal(t, "logistic_regression", loaded.ModelType())
}

func TestLoad_WidthAgainstManifest(t *testing.T) {
	m := trainedOnSeparableData(t)
	path := filepath.Join(t.TempDir(), "risk_model.json")
	require.NoError(t, m.Save(path))

	_, err := model.Load(path, 40)
	require.Error(t, err)
	assert.True(t, domain.IsWidthMismatch(err))
}
