package dataset_test

import (
	"strings"
	"testing"

	"github.com/marrowdrift/road-risk-service/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV_Quirks(t *testing.T) {
	raw := ` "State Name" ,Speed Limit (km/h),Notes
Maharashtra,100,
Karnataka,,short row follows
Delhi
`
	f, err := dataset.ReadCSVFrom(strings.NewReader(raw), ',')
	require.NoError(t, err)

	require.Equal(t, 3, f.Len())
	s, ok := f.Str("State Name", 0)
	require.True(t, ok)
	assert.Equal(t, "Maharashtra", s)

	// Empty cells and padded short rows read as missing.
	_, ok = f.Str("Speed Limit (km/h)", 1)
	assert.False(t, ok)
	_, ok = f.Str("Notes", 2)
	assert.False(t, ok)
}

func TestCanonicalizeDetailed_RowCountPreserved(t *testing.T) {
	raw := `State Name,City Name,Accident Severity,Weather Conditions,Speed Limit (km/h),Unmapped Column
Maharashtra,Mumbai,Fatal,Rainy,100,junk
Karnataka,Bangalore,Minor,Clear,50,junk
`
	src, err := dataset.ReadCSVFrom(strings.NewReader(raw), ',')
	require.NoError(t, err)

	f := dataset.CanonicalizeDetailed(src)

	assert.Equal(t, src.Len(), f.Len())
	assert.True(t, f.Has(dataset.ColState))
	assert.True(t, f.Has(dataset.ColSpeedLimit))
	assert.False(t, f.Has("Unmapped Column"))

	sev, ok := f.Str(dataset.ColSeverity, 0)
	require.True(t, ok)
	assert.Equal(t, "Fatal", sev)
}

func TestCanonicalizeCombined_HourFromHHMM(t *testing.T) {
	raw := `state,severity,hrmn,driver_sex
MAHARASHTRA,Serious,2310,Male
KARNATAKA,Slight,930,Female
DELHI,Fatal,5,Male
GOA,Slight,9999,Female
`
	src, err := dataset.ReadCSVFrom(strings.NewReader(raw), ',')
	require.NoError(t, err)

	f := dataset.CanonicalizeCombined(src)

	h, ok := f.Num(dataset.ColHour, 0)
	require.True(t, ok)
	assert.Equal(t, 23.0, h)
	h, _ = f.Num(dataset.ColHour, 1)
	assert.Equal(t, 9.0, h)
	h, _ = f.Num(dataset.ColHour, 2)
	assert.Equal(t, 0.0, h)
	_, ok = f.Num(dataset.ColHour, 3)
	assert.False(t, ok, "out-of-range HHMM reads as missing")

	g, ok := f.Str(dataset.ColDriverGender, 1)
	require.True(t, ok)
	assert.Equal(t, "Female", g)
}

func TestCombineAccidentSources(t *testing.T) {
	a := dataset.NewFrame()
	a.SetText(dataset.ColState, []string{"Maharashtra", "Maharashtra"}, nil)
	a.SetText(dataset.ColSeverity, []string{"Fatal", "Fatal"}, nil)
	a.SetText(dataset.ColCity, []string{"Mumbai", "Mumbai"}, nil)

	b := dataset.NewFrame()
	b.SetText(dataset.ColState, []string{"Karnataka", ""}, []bool{false, true})
	b.SetText(dataset.ColSeverity, []string{"Slight", "Slight"}, nil)
	b.SetText(dataset.ColVehicleType, []string{"Car", "Truck"}, nil)

	combined, err := dataset.CombineAccidentSources(a, b)
	require.NoError(t, err)

	// Exact duplicate and missing-state rows drop; column set is the union.
	assert.Equal(t, 2, combined.Len())
	assert.True(t, combined.Has(dataset.ColCity))
	assert.True(t, combined.Has(dataset.ColVehicleType))
}

func TestCombineAccidentSources_EmptyIsFatal(t *testing.T) {
	_, err := dataset.CombineAccidentSources()
	assert.Error(t, err)
}

func TestAggregateDailyRainfall(t *testing.T) {
	raw := `state,district,month,1st,2nd,3rd,4th
Maharashtra,Mumbai,7,12.5,0,110.2,4.1
Karnataka,Bangalore,1,0,0,0.5,0
`
	src, err := dataset.ReadCSVFrom(strings.NewReader(raw), ',')
	require.NoError(t, err)

	f := dataset.AggregateDailyRainfall(src)
	require.Equal(t, 2, f.Len())

	total, _ := f.Num(dataset.ColTotalRainfall, 0)
	assert.InDelta(t, 126.8, total, 1e-9)
	avg, _ := f.Num(dataset.ColAvgDailyRainfall, 0)
	assert.InDelta(t, 31.7, avg, 1e-9)
	max, _ := f.Num(dataset.ColMaxDailyRainfall, 0)
	assert.InDelta(t, 110.2, max, 1e-9)
	rainy, _ := f.Num(dataset.ColRainyDaysCount, 0)
	assert.Equal(t, 3.0, rainy)
	intensity, _ := f.Num(dataset.ColRainfallIntensity, 0)
	assert.InDelta(t, 110.2/(31.7+0.001), intensity, 1e-9)

	flood, _ := f.Num(dataset.ColFloodRisk, 0)
	assert.Equal(t, 1.0, flood)
	drought, _ := f.Num(dataset.ColDroughtRisk, 0)
	assert.Equal(t, 0.0, drought)

	// Second district: 0.5mm total is drought, no flood.
	drought, _ = f.Num(dataset.ColDroughtRisk, 1)
	assert.Equal(t, 1.0, drought)
	flood, _ = f.Num(dataset.ColFloodRisk, 1)
	assert.Equal(t, 0.0, flood)
}

func TestExpandRainfallNormals(t *testing.T) {
	raw := `STATE_UT_NAME,DISTRICT,JAN,JUL,ANNUAL,Jun-Sep
DELHI,NEW DELHI,19,210,757,640
`
	src, err := dataset.ReadCSVFrom(strings.NewReader(raw), ',')
	require.NoError(t, err)

	f := dataset.ExpandRainfallNormals(src)
	require.Equal(t, 2, f.Len())

	m, _ := f.Num(dataset.ColMonth, 1)
	assert.Equal(t, 7.0, m)
	normal, _ := f.Num(dataset.ColNormalRainfall, 1)
	assert.Equal(t, 210.0, normal)
	season, ok := f.Str(dataset.ColSeason, 1)
	require.True(t, ok)
	assert.Equal(t, "monsoon", season)
	annual, _ := f.Num(dataset.ColAnnualRainfall, 0)
	assert.Equal(t, 757.0, annual)
	monsoon, _ := f.Num(dataset.ColMonsoonRainfall, 0)
	assert.Equal(t, 640.0, monsoon)
}

func TestMergeAccidentWeather_ByStateAndMonth(t *testing.T) {
	accidents := dataset.NewFrame()
	accidents.SetText(dataset.ColState, []string{"Maharashtra", "MAHARASHTRA", "Goa"}, nil)
	accidents.SetText(dataset.ColMonth, []string{"7", "1", "7"}, nil)
	accidents.SetText(dataset.ColSeverity, []string{"Fatal", "Minor", "Minor"}, nil)

	weather := dataset.NewFrame()
	weather.SetText(dataset.ColState, []string{"MAHARASHTRA"}, nil)
	weather.SetNumeric(dataset.ColMonth, []float64{7}, nil)
	weather.SetNumeric(dataset.ColTotalRainfall, []float64{126.8}, nil)

	merged := dataset.MergeAccidentWeather(accidents, weather)

	require.Equal(t, 3, merged.Len())
	total, ok := merged.Num(dataset.ColTotalRainfall, 0)
	require.True(t, ok, "case-insensitive state match in month 7")
	assert.InDelta(t, 126.8, total, 1e-9)

	_, ok = merged.Num(dataset.ColTotalRainfall, 1)
	assert.False(t, ok, "month mismatch leaves weather missing")
	_, ok = merged.Num(dataset.ColTotalRainfall, 2)
	assert.False(t, ok, "unknown state leaves weather missing")
}

func TestMergeAccidentWeather_StateFallbackWithoutMonth(t *testing.T) {
	accidents := dataset.NewFrame()
	accidents.SetText(dataset.ColState, []string{"Delhi"}, nil)

	weather := dataset.NewFrame()
	weather.SetText(dataset.ColState, []string{"DELHI", "DELHI"}, nil)
	weather.SetNumeric(dataset.ColAnnualRainfall, []float64{757, 999}, nil)

	merged := dataset.MergeAccidentWeather(accidents, weather)

	annual, ok := merged.Num(dataset.ColAnnualRainfall, 0)
	require.True(t, ok)
	assert.Equal(t, 757.0, annual, "first aggregate per state wins")
}

func TestMergeAccidentWeather_EmptyWeatherPassesThrough(t *testing.T) {
	accidents := dataset.NewFrame()
	accidents.SetText(dataset.ColState, []string{"Delhi"}, nil)

	merged := dataset.MergeAccidentWeather(accidents, dataset.NewFrame())
	assert.Equal(t, accidents, merged)
}

func TestFrame_CoerceAndStats(t *testing.T) {
	f := dataset.NewFrame()
	f.SetText("speed", []string{"40", "sixty", "80", ""}, []bool{false, false, false, true})

	failed := f.CoerceNumeric("speed")
	assert.Equal(t, 1, failed)

	// Empirical quantile: the first value whose CDF reaches 0.5.
	med, ok := f.Median("speed")
	require.True(t, ok)
	assert.Equal(t, 40.0, med)

	f.FillNumeric("speed", 50)
	v, ok := f.Num("speed", 1)
	require.True(t, ok)
	assert.Equal(t, 50.0, v)
}

func TestFrame_ConcatUnionsColumns(t *testing.T) {
	a := dataset.NewFrame()
	a.SetText("x", []string{"1"}, nil)
	b := dataset.NewFrame()
	b.SetText("y", []string{"2"}, nil)

	c := dataset.Concat(a, b)
	require.Equal(t, 2, c.Len())
	_, ok := c.Str("y", 0)
	assert.False(t, ok)
	v, ok := c.Str("y", 1)
	require.True(t, ok)
	assert.Equal(t, "2", v)
}
