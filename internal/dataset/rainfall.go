package dataset

import (
	"strconv"
	"strings"
)

// Weather aggregate column names.
const (
	ColDistrict            = "district"
	ColTotalRainfall       = "total_rainfall"
	ColAvgDailyRainfall    = "avg_daily_rainfall"
	ColMaxDailyRainfall    = "max_daily_rainfall"
	ColRainyDaysCount      = "rainy_days_count"
	ColRainfallIntensity   = "rainfall_intensity"
	ColDroughtRisk         = "drought_risk"
	ColFloodRisk           = "flood_risk"
	ColNormalRainfall      = "normal_rainfall"
	ColSeason              = "season"
	ColAnnualRainfall      = "annual_rainfall"
	ColMonsoonRainfall     = "monsoon_rainfall"
	ColWinterRainfall      = "winter_rainfall"
	ColSummerRainfall      = "summer_rainfall"
	ColPostMonsoonRainfall = "post_monsoon_rainfall"
)

// Fixed rainfall thresholds (mm).
const (
	droughtTotalMM   = 10
	floodDailyMaxMM  = 100
	rainyDayMM       = 0.1
	intensityEpsilon = 0.001
)

// SeasonForMonth maps a month to the Indian meteorological season.
func SeasonForMonth(m int) string {
	switch {
	case m == 12 || m == 1 || m == 2:
		return "winter"
	case m >= 3 && m <= 5:
		return "summer"
	case m >= 6 && m <= 9:
		return "monsoon"
	default:
		return "post_monsoon"
	}
}

// AggregateDailyRainfall reduces district-wise daily measurements into one
// row per source row: totals, averages, maxima, rainy-day counts, and the
// derived intensity and drought/flood flags. Non-numeric or missing daily
// values count as 0.
func AggregateDailyRainfall(src *Frame) *Frame {
	dailyCols := dailyValueColumns(src)
	n := src.Len()

	state := make([]string, n)
	stateMiss := make([]bool, n)
	district := make([]string, n)
	districtMiss := make([]bool, n)
	month := make([]float64, n)
	monthMiss := make([]bool, n)
	total := make([]float64, n)
	avg := make([]float64, n)
	maxv := make([]float64, n)
	rainy := make([]float64, n)
	intensity := make([]float64, n)
	drought := make([]float64, n)
	flood := make([]float64, n)

	idx := columnIndex(src)
	for i := 0; i < n; i++ {
		state[i], stateMiss[i] = textAt(src, idx, "state", i)
		district[i], districtMiss[i] = textAt(src, idx, "district", i)
		if s, miss := textAt(src, idx, "month", i); !miss {
			if m, err := strconv.ParseFloat(s, 64); err == nil {
				month[i] = m
			} else {
				monthMiss[i] = true
			}
		} else {
			monthMiss[i] = true
		}

		var sum, mx float64
		var rainyDays int
		for _, col := range dailyCols {
			v := numericOrZero(src, col, i)
			sum += v
			if v > mx {
				mx = v
			}
			if v > rainyDayMM {
				rainyDays++
			}
		}
		count := len(dailyCols)
		var mean float64
		if count > 0 {
			mean = sum / float64(count)
		}

		total[i] = sum
		avg[i] = mean
		maxv[i] = mx
		rainy[i] = float64(rainyDays)
		intensity[i] = mx / (mean + intensityEpsilon)
		if sum < droughtTotalMM {
			drought[i] = 1
		}
		if mx > floodDailyMaxMM {
			flood[i] = 1
		}
	}

	out := NewFrame()
	out.SetText(ColState, state, stateMiss)
	out.SetText(ColDistrict, district, districtMiss)
	out.SetNumeric(ColMonth, month, monthMiss)
	out.SetNumeric(ColTotalRainfall, total, nil)
	out.SetNumeric(ColAvgDailyRainfall, avg, nil)
	out.SetNumeric(ColMaxDailyRainfall, maxv, nil)
	out.SetNumeric(ColRainyDaysCount, rainy, nil)
	out.SetNumeric(ColRainfallIntensity, intensity, nil)
	out.SetNumeric(ColDroughtRisk, drought, nil)
	out.SetNumeric(ColFloodRisk, flood, nil)
	return out
}

// dailyValueColumns finds per-day measurement columns: ordinal suffixes
// ("1st", "22nd") or plain digits.
func dailyValueColumns(src *Frame) []string {
	var cols []string
	for _, name := range src.Names() {
		trimmed := strings.TrimSpace(name)
		lower := strings.ToLower(trimmed)
		if strings.HasSuffix(lower, "st") || strings.HasSuffix(lower, "nd") ||
			strings.HasSuffix(lower, "rd") || strings.HasSuffix(lower, "th") {
			if _, err := strconv.Atoi(strings.TrimRight(lower, "stndrdth")); err == nil {
				cols = append(cols, name)
				continue
			}
		}
		if _, err := strconv.Atoi(trimmed); err == nil {
			cols = append(cols, name)
		}
	}
	// "state"/"district" never match; ordinal parsing already filtered the rest.
	return cols
}

func textAt(src *Frame, idx map[string]string, norm string, i int) (string, bool) {
	orig, ok := idx[norm]
	if !ok {
		return "", true
	}
	c := src.Col(orig)
	if c.Kind != Text || c.Miss[i] {
		return "", true
	}
	return c.Strs[i], false
}

func numericOrZero(src *Frame, col string, i int) float64 {
	c := src.Col(col)
	if c == nil || c.Miss[i] {
		return 0
	}
	if c.Kind == Numeric {
		return c.Nums[i]
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(c.Strs[i]), 64)
	if err != nil {
		return 0
	}
	return v
}

var monthColumns = []string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN",
	"JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// ExpandRainfallNormals turns the wide per-month normals table into one
// row per (state, district, month) with a season label and the seasonal
// totals carried through. Missing seasonal totals default to 0.
func ExpandRainfallNormals(src *Frame) *Frame {
	idx := columnIndex(src)
	n := src.Len()

	var (
		state, district        []string
		stateMiss, distMiss    []bool
		month, normal          []float64
		season                 []string
		annual, monsoon        []float64
		winter, summer, postMn []float64
	)

	for i := 0; i < n; i++ {
		st, stMiss := textAt(src, idx, "state_ut_name", i)
		if stMiss {
			st, stMiss = textAt(src, idx, "state", i)
		}
		di, diMiss := textAt(src, idx, "district", i)

		for m, monthCol := range monthColumns {
			orig, ok := idx[normalizeHeader(monthCol)]
			if !ok {
				continue
			}
			c := src.Col(orig)
			if c.Miss[i] {
				continue
			}
			rainfall := numericOrZero(src, orig, i)
			monthNum := m + 1

			state = append(state, st)
			stateMiss = append(stateMiss, stMiss)
			district = append(district, di)
			distMiss = append(distMiss, diMiss)
			month = append(month, float64(monthNum))
			normal = append(normal, rainfall)
			season = append(season, SeasonForMonth(monthNum))
			annual = append(annual, lookupOrZero(src, idx, "annual", i))
			monsoon = append(monsoon, lookupOrZero(src, idx, "jun-sep", i))
			winter = append(winter, lookupOrZero(src, idx, "jan-feb", i))
			summer = append(summer, lookupOrZero(src, idx, "mar-may", i))
			postMn = append(postMn, lookupOrZero(src, idx, "oct-dec", i))
		}
	}

	out := NewFrame()
	out.SetText(ColState, state, stateMiss)
	out.SetText(ColDistrict, district, distMiss)
	out.SetNumeric(ColMonth, month, nil)
	out.SetNumeric(ColNormalRainfall, normal, nil)
	out.SetText(ColSeason, season, nil)
	out.SetNumeric(ColAnnualRainfall, annual, nil)
	out.SetNumeric(ColMonsoonRainfall, monsoon, nil)
	out.SetNumeric(ColWinterRainfall, winter, nil)
	out.SetNumeric(ColSummerRainfall, summer, nil)
	out.SetNumeric(ColPostMonsoonRainfall, postMn, nil)
	return out
}

func lookupOrZero(src *Frame, idx map[string]string, norm string, i int) float64 {
	orig, ok := idx[norm]
	if !ok {
		return 0
	}
	return numericOrZero(src, orig, i)
}

// CombineWeatherSources concatenates the daily and normals aggregates and
// de-duplicates on (state, district, month), keeping the most recently
// processed row on conflict. A nil result is never returned; no weather
// data yields an empty frame, which downstream merging tolerates.
func CombineWeatherSources(sources ...*Frame) *Frame {
	usable := make([]*Frame, 0, len(sources))
	for _, s := range sources {
		if s != nil && s.Len() > 0 {
			usable = append(usable, s)
		}
	}
	if len(usable) == 0 {
		return NewFrame()
	}

	combined := Concat(usable...)
	return dedupeKeepLast(combined, ColState, ColDistrict, ColMonth)
}

// dedupeKeepLast keeps only the last row for each key tuple.
func dedupeKeepLast(f *Frame, keys ...string) *Frame {
	n := f.Len()
	last := make(map[string]int, n)
	for i := 0; i < n; i++ {
		last[subsetKey(f, keys, i)] = i
	}
	return f.Filter(func(i int) bool {
		return last[subsetKey(f, keys, i)] == i
	})
}

func subsetKey(f *Frame, keys []string, i int) string {
	var sb strings.Builder
	for _, name := range keys {
		c := f.Col(name)
		if c == nil || c.Miss[i] {
			sb.WriteString("\x00|")
			continue
		}
		if c.Kind == Numeric {
			sb.WriteString(strconv.FormatFloat(c.Nums[i], 'g', -1, 64))
		} else {
			sb.WriteString(c.Strs[i])
		}
		sb.WriteByte('|')
	}
	return sb.String()
}
