// Package feature derives the model feature set from a merged accident
// table and owns the schema manifest both vector producers validate
// against. Derivation runs as an ordered sequence of passes; each pass
// only adds or overwrites columns, never removes them.
package feature

import (
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/marrowdrift/road-risk-service/internal/dataset"
)

// Hour-window boundaries for the temporal indicator features.
const (
	nightStartHour   = 22
	nightEndHour     = 5
	defaultHour      = 12
	defaultMonth     = 6
	defaultDayOfWeek = 1
)

var dayNameIndex = map[string]int{
	"monday": 0, "tuesday": 1, "wednesday": 2, "thursday": 3,
	"friday": 4, "saturday": 5, "sunday": 6,
	"mon": 0, "tue": 1, "wed": 2, "thu": 3, "fri": 4, "sat": 5, "sun": 6,
}

// DeriveTemporal adds hour, day-of-week, month, seasonal, and cyclical
// features. rng feeds the placeholder hour used when no time information
// exists at all; that placeholder is a known modeling weakness kept so a
// dataset without time columns still flows through the pipeline.
func DeriveTemporal(f *dataset.Frame, rng *rand.Rand) {
	deriveHour(f, rng)

	addHourFlag(f, "is_night", func(h float64) bool { return h >= nightStartHour || h <= nightEndHour })
	addHourFlag(f, "is_evening", func(h float64) bool { return h >= 18 && h <= 21 })
	addHourFlag(f, "is_morning", func(h float64) bool { return h >= 6 && h <= 9 })
	addHourFlag(f, "is_afternoon", func(h float64) bool { return h >= 10 && h <= 17 })
	addHourFlag(f, "is_morning_rush", func(h float64) bool { return h >= 7 && h <= 9 })
	addHourFlag(f, "is_evening_rush", func(h float64) bool { return h >= 17 && h <= 19 })
	addHourFlag(f, "is_rush_hour", func(h float64) bool {
		return (h >= 7 && h <= 9) || (h >= 17 && h <= 19)
	})

	deriveDayOfWeek(f, rng)
	addNumFlag(f, "day_of_week_num", "is_weekend", func(d float64) bool { return d == 5 || d == 6 })
	addNumFlag(f, "day_of_week_num", "is_weekday", func(d float64) bool { return d >= 0 && d <= 4 })
	addNumFlag(f, "day_of_week_num", "is_friday", func(d float64) bool { return d == 4 })
	addNumFlag(f, "day_of_week_num", "is_monday", func(d float64) bool { return d == 0 })

	deriveMonth(f)
	addNumFlag(f, dataset.ColMonth, "is_winter", func(m float64) bool { return m == 12 || m == 1 || m == 2 })
	addNumFlag(f, dataset.ColMonth, "is_summer", func(m float64) bool { return m >= 3 && m <= 5 })
	addNumFlag(f, dataset.ColMonth, "is_monsoon", func(m float64) bool { return m >= 6 && m <= 9 })
	addNumFlag(f, dataset.ColMonth, "is_post_monsoon", func(m float64) bool { return m == 10 || m == 11 })

	// Default remaining missing hours immediately before the trigonometric
	// encoding so no missing cell reaches the math.
	f.FillNumeric(dataset.ColHour, defaultHour)
	f.FillNumeric("day_of_week_num", defaultDayOfWeek)

	addCyclical(f, dataset.ColHour, "hour_sin", "hour_cos", 24)
	addCyclical(f, dataset.ColMonth, "month_sin", "month_cos", 12)
	addCyclical(f, "day_of_week_num", "day_sin", "day_cos", 7)
}

// deriveHour establishes the hour column: parsed from time_of_day when
// that column exists, else the preexisting hour column, else a uniform
// random placeholder in [0,24).
func deriveHour(f *dataset.Frame, rng *rand.Rand) {
	n := f.Len()
	switch {
	case f.Has(dataset.ColTimeOfDay):
		hours := make([]float64, n)
		miss := make([]bool, n)
		for i := 0; i < n; i++ {
			s, ok := f.Str(dataset.ColTimeOfDay, i)
			if !ok {
				miss[i] = true
				continue
			}
			h, ok := parseClockHour(s)
			if !ok {
				miss[i] = true
				continue
			}
			hours[i] = float64(h)
		}
		f.SetNumeric(dataset.ColHour, hours, miss)
	case f.Has(dataset.ColHour):
		f.CoerceNumeric(dataset.ColHour)
	default:
		hours := make([]float64, n)
		for i := range hours {
			hours[i] = float64(rng.Intn(24))
		}
		f.SetNumeric(dataset.ColHour, hours, nil)
	}
}

// parseClockHour extracts the hour from an "HH:MM" string.
func parseClockHour(s string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}

// deriveDayOfWeek resolves day_of_week into day_of_week_num 0-6 (Monday 0)
// via the name table, with numeric fallback and a default of 1.
func deriveDayOfWeek(f *dataset.Frame, rng *rand.Rand) {
	n := f.Len()
	if !f.Has(dataset.ColDayOfWeek) {
		days := make([]float64, n)
		for i := range days {
			days[i] = float64(rng.Intn(7))
		}
		f.SetNumeric("day_of_week_num", days, nil)
		return
	}

	c := f.Col(dataset.ColDayOfWeek)
	days := make([]float64, n)
	miss := make([]bool, n)
	for i := 0; i < n; i++ {
		switch {
		case c.Miss[i]:
			days[i] = defaultDayOfWeek
		case c.Kind == dataset.Numeric:
			days[i] = c.Nums[i]
		default:
			s := strings.ToLower(strings.TrimSpace(c.Strs[i]))
			if d, ok := dayNameIndex[s]; ok {
				days[i] = float64(d)
			} else if v, err := strconv.ParseFloat(s, 64); err == nil {
				days[i] = v
			} else {
				days[i] = defaultDayOfWeek
			}
		}
	}
	f.SetNumeric("day_of_week_num", days, miss)
}

// deriveMonth makes month numeric and defaulted before the seasonal
// flags read it; a frame without a month column gets the constant default.
func deriveMonth(f *dataset.Frame) {
	if f.Has(dataset.ColMonth) {
		f.CoerceNumeric(dataset.ColMonth)
		f.FillNumeric(dataset.ColMonth, defaultMonth)
		return
	}
	months := make([]float64, f.Len())
	for i := range months {
		months[i] = defaultMonth
	}
	f.SetNumeric(dataset.ColMonth, months, nil)
}

// addHourFlag adds a 0/1 column from an hour predicate; missing hours
// yield 0, not a missing flag.
func addHourFlag(f *dataset.Frame, name string, pred func(h float64) bool) {
	addNumFlag(f, dataset.ColHour, name, pred)
}

func addNumFlag(f *dataset.Frame, src, name string, pred func(v float64) bool) {
	n := f.Len()
	flags := make([]float64, n)
	for i := 0; i < n; i++ {
		if v, ok := f.Num(src, i); ok && pred(v) {
			flags[i] = 1
		}
	}
	f.SetNumeric(name, flags, nil)
}

func addCyclical(f *dataset.Frame, src, sinName, cosName string, period float64) {
	n := f.Len()
	sins := make([]float64, n)
	coss := make([]float64, n)
	for i := 0; i < n; i++ {
		v, _ := f.Num(src, i)
		angle := 2 * math.Pi * v / period
		sins[i] = math.Sin(angle)
		coss[i] = math.Cos(angle)
	}
	f.SetNumeric(sinName, sins, nil)
	f.SetNumeric(cosName, coss, nil)
}
