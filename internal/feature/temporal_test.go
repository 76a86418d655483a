package feature_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/marrowdrift/road-risk-service/internal/dataset"
	"github.com/marrowdrift/road-risk-service/internal/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numAt(t *testing.T, f *dataset.Frame, name string, i int) float64 {
	t.Helper()
	require.True(t, f.Has(name), "missing column %s", name)
	v, ok := f.Num(name, i)
	require.True(t, ok, "missing value in %s[%d]", name, i)
	return v
}

func TestDeriveTemporal_HourFlags(t *testing.T) {
	f := dataset.NewFrame()
	f.SetText(dataset.ColTimeOfDay, []string{"23:15", "08:30", "13:00", "18:45"}, nil)
	f.SetText(dataset.ColDayOfWeek, []string{"Saturday", "Monday", "Wednesday", "Friday"}, nil)
	f.SetText(dataset.ColMonth, []string{"7", "1", "4", "11"}, nil)

	feature.DeriveTemporal(f, rand.New(rand.NewSource(1)))

	assert.Equal(t, 23.0, numAt(t, f, dataset.ColHour, 0))
	assert.Equal(t, 1.0, numAt(t, f, "is_night", 0))
	assert.Equal(t, 0.0, numAt(t, f, "is_night", 1))
	assert.Equal(t, 1.0, numAt(t, f, "is_morning_rush", 1))
	assert.Equal(t, 1.0, numAt(t, f, "is_rush_hour", 1))
	assert.Equal(t, 1.0, numAt(t, f, "is_afternoon", 2))
	assert.Equal(t, 1.0, numAt(t, f, "is_evening", 3))
	assert.Equal(t, 1.0, numAt(t, f, "is_evening_rush", 3))

	assert.Equal(t, 1.0, numAt(t, f, "is_weekend", 0))
	assert.Equal(t, 0.0, numAt(t, f, "is_weekend", 1))
	assert.Equal(t, 1.0, numAt(t, f, "is_monday", 1))
	assert.Equal(t, 1.0, numAt(t, f, "is_friday", 3))

	assert.Equal(t, 1.0, numAt(t, f, "is_monsoon", 0))
	assert.Equal(t, 1.0, numAt(t, f, "is_winter", 1))
	assert.Equal(t, 1.0, numAt(t, f, "is_summer", 2))
	assert.Equal(t, 1.0, numAt(t, f, "is_post_monsoon", 3))
}

func TestDeriveTemporal_CyclicalIdentity(t *testing.T) {
	f := dataset.NewFrame()
	f.SetText(dataset.ColTimeOfDay, []string{"00:00", "06:00", "12:00", "18:00"}, nil)
	f.SetText(dataset.ColMonth, []string{"1", "4", "7", "10"}, nil)
	f.SetText(dataset.ColDayOfWeek, []string{"0", "2", "4", "6"}, nil)

	feature.DeriveTemporal(f, rand.New(rand.NewSource(1)))

	for i := 0; i < f.Len(); i++ {
		for _, pair := range [][2]string{
			{"hour_sin", "hour_cos"},
			{"month_sin", "month_cos"},
			{"day_sin", "day_cos"},
		} {
			s := numAt(t, f, pair[0], i)
			c := numAt(t, f, pair[1], i)
			assert.InDelta(t, 1.0, s*s+c*c, 1e-9)
		}
	}

	// Noon maps onto the opposite side of the cycle from midnight.
	assert.InDelta(t, 1.0, numAt(t, f, "hour_cos", 0), 1e-9)
	assert.InDelta(t, -1.0, numAt(t, f, "hour_cos", 2), 1e-9)
}

func TestDeriveTemporal_MissingColumnsGetDefaults(t *testing.T) {
	f := dataset.NewFrame()
	f.SetText(dataset.ColState, []string{"Karnataka", "Bihar"}, nil)

	feature.DeriveTemporal(f, rand.New(rand.NewSource(7)))

	// Placeholder hour and day are still valid calendar values.
	for i := 0; i < f.Len(); i++ {
		h := numAt(t, f, dataset.ColHour, i)
		assert.GreaterOrEqual(t, h, 0.0)
		assert.Less(t, h, 24.0)
		d := numAt(t, f, "day_of_week_num", i)
		assert.GreaterOrEqual(t, d, 0.0)
		assert.Less(t, d, 7.0)
		assert.Equal(t, 6.0, numAt(t, f, dataset.ColMonth, i))
	}
}

func TestDeriveTemporal_UnparsableTimeFallsBackToPlaceholder(t *testing.T) {
	f := dataset.NewFrame()
	f.SetText(dataset.ColTimeOfDay, []string{"noonish"}, nil)

	feature.DeriveTemporal(f, rand.New(rand.NewSource(3)))

	h := numAt(t, f, dataset.ColHour, 0)
	assert.False(t, math.IsNaN(h))
	assert.GreaterOrEqual(t, h, 0.0)
	assert.Less(t, h, 24.0)
}
