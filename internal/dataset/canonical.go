package dataset

import (
	"strconv"
	"strings"

	"github.com/marrowdrift/road-risk-service/internal/domain"
)

// Canonical attribute names shared by every accident source.
const (
	ColState            = "state"
	ColCity             = "city"
	ColYear             = "year"
	ColMonth            = "month"
	ColDayOfWeek        = "day_of_week"
	ColTimeOfDay        = "time_of_day"
	ColHour             = "hour"
	ColSeverity         = "severity"
	ColVehiclesInvolved = "vehicles_involved"
	ColCasualties       = "casualties"
	ColFatalities       = "fatalities"
	ColWeather          = "weather"
	ColRoadType         = "road_type"
	ColRoadCondition    = "road_condition"
	ColLighting         = "lighting"
	ColSpeedLimit       = "speed_limit"
	ColDriverAge        = "driver_age"
	ColDriverGender     = "driver_gender"
	ColAlcoholInvolved  = "alcohol_involved"
	ColVehicleType      = "vehicle_type"
	ColEngineSize       = "engine_size"
	ColCarAge           = "car_age"
	ColCasualtySeverity = "casualty_severity"
	ColCasualtyAge      = "casualty_age"
)

// normalizeHeader canonicalizes a raw column name: trimmed, lowercased,
// spaces to underscores, parentheses dropped.
func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "(", "")
	name = strings.ReplaceAll(name, ")", "")
	return name
}

// columnIndex maps normalized header names back to the frame's columns.
func columnIndex(f *Frame) map[string]string {
	idx := make(map[string]string, len(f.Names()))
	for _, name := range f.Names() {
		norm := normalizeHeader(name)
		if _, taken := idx[norm]; !taken {
			idx[norm] = name
		}
	}
	return idx
}

// pick copies the first recognized source column onto the canonical name.
// Unrecognized source columns are simply never picked; unknown data drops
// out rather than blocking processing.
func pick(dst, src *Frame, idx map[string]string, canonical string, candidates ...string) {
	for _, cand := range candidates {
		orig, ok := idx[cand]
		if !ok {
			continue
		}
		c := src.Col(orig)
		strs := make([]string, len(c.Strs))
		miss := make([]bool, len(c.Miss))
		copy(strs, c.Strs)
		copy(miss, c.Miss)
		dst.SetText(canonical, strs, miss)
		return
	}
}

// CanonicalizeDetailed maps the detailed accident-prediction schema onto
// the canonical attribute set.
func CanonicalizeDetailed(src *Frame) *Frame {
	idx := columnIndex(src)
	dst := NewFrame()

	pick(dst, src, idx, ColState, "state_name", "state")
	pick(dst, src, idx, ColCity, "city_name", "city")
	pick(dst, src, idx, ColYear, "year")
	pick(dst, src, idx, ColMonth, "month")
	pick(dst, src, idx, ColDayOfWeek, "day_of_week")
	pick(dst, src, idx, ColTimeOfDay, "time_of_day")
	pick(dst, src, idx, ColSeverity, "accident_severity", "severity")
	pick(dst, src, idx, ColVehiclesInvolved, "number_of_vehicles_involved")
	pick(dst, src, idx, ColCasualties, "number_of_casualties")
	pick(dst, src, idx, ColFatalities, "number_of_fatalities")
	pick(dst, src, idx, ColWeather, "weather_conditions")
	pick(dst, src, idx, ColRoadType, "road_type")
	pick(dst, src, idx, ColRoadCondition, "road_condition")
	pick(dst, src, idx, ColLighting, "lighting_conditions")
	pick(dst, src, idx, ColSpeedLimit, "speed_limit_km/h", "speed_limit")
	pick(dst, src, idx, ColDriverAge, "driver_age")
	pick(dst, src, idx, ColDriverGender, "driver_gender")
	pick(dst, src, idx, ColAlcoholInvolved, "alcohol_involvement")

	return dst
}

// CanonicalizeCombined maps the combined accident schema onto the
// canonical attribute set. The hrmn column (HHMM) is reduced to an hour.
func CanonicalizeCombined(src *Frame) *Frame {
	idx := columnIndex(src)
	dst := NewFrame()

	pick(dst, src, idx, ColState, "state")
	pick(dst, src, idx, ColSeverity, "severity")
	pick(dst, src, idx, ColWeather, "weather")
	pick(dst, src, idx, ColDayOfWeek, "week_day")
	pick(dst, src, idx, ColLighting, "lum")
	pick(dst, src, idx, ColVehicleType, "vehicle_type")
	pick(dst, src, idx, ColEngineSize, "engine_size")
	pick(dst, src, idx, ColDriverAge, "driver_age")
	pick(dst, src, idx, ColCarAge, "car_age")
	pick(dst, src, idx, ColCasualtySeverity, "casualty_severity")
	pick(dst, src, idx, ColCasualtyAge, "casualty_age")
	pick(dst, src, idx, ColDriverGender, "driver_sex")

	if orig, ok := idx["hrmn"]; ok {
		c := src.Col(orig)
		hours := make([]float64, len(c.Strs))
		miss := make([]bool, len(c.Miss))
		for i, s := range c.Strs {
			if c.Miss[i] {
				miss[i] = true
				continue
			}
			h, ok := hourFromHHMM(s)
			if !ok {
				miss[i] = true
				continue
			}
			hours[i] = float64(h)
		}
		dst.SetNumeric(ColHour, hours, miss)
	}

	return dst
}

// hourFromHHMM extracts the hour from an HHMM string, zero-padding short
// values ("930" → 09:30).
func hourFromHHMM(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 4 {
		return 0, false
	}
	for len(s) < 4 {
		s = "0" + s
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}

// CombineAccidentSources concatenates canonicalized sources, removes exact
// duplicates, and drops rows lacking state or severity. It fails only when
// no source yields any rows at all.
func CombineAccidentSources(sources ...*Frame) (*Frame, error) {
	usable := sources[:0]
	for _, s := range sources {
		if s != nil && s.Len() > 0 {
			usable = append(usable, s)
		}
	}
	if len(usable) == 0 {
		return nil, domain.ErrNoAccidentData
	}

	combined := Concat(usable...)
	combined = combined.DropDuplicates()
	combined = combined.DropMissing(ColState, ColSeverity)
	if combined.Len() == 0 {
		return nil, domain.ErrNoAccidentData
	}
	return combined, nil
}
