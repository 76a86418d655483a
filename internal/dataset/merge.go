package dataset

import (
	"strconv"
	"strings"
)

// NormalizeState canonicalizes a state name for joining: uppercased,
// trimmed.
func NormalizeState(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// MergeAccidentWeather left-joins weather aggregates onto canonical
// accident rows. When both sides carry a month column the join key is
// (normalized state, month); month values that fail numeric coercion
// become missing and simply never match. Otherwise the join falls back to
// state only, using the first weather aggregate per state. Accident rows
// without a weather match keep missing weather fields.
func MergeAccidentWeather(accidents, weather *Frame) *Frame {
	if weather == nil || weather.Len() == 0 {
		return accidents
	}

	byMonth := accidents.Has(ColMonth) && weather.Has(ColMonth)
	accidents.CoerceNumeric(ColMonth)
	weather.CoerceNumeric(ColMonth)

	// First match per key: weather rows are unique per (state, district,
	// month), so per (state, month) the first district stands in for the
	// state, matching the state-only fallback's "first aggregate" rule.
	lookup := make(map[string]int, weather.Len())
	for i := 0; i < weather.Len(); i++ {
		key := mergeKey(weather, i, byMonth)
		if key == "" {
			continue
		}
		if _, ok := lookup[key]; !ok {
			lookup[key] = i
		}
	}

	n := accidents.Len()
	matched := make([]int, n)
	for i := 0; i < n; i++ {
		matched[i] = -1
		key := mergeKey(accidents, i, byMonth)
		if key == "" {
			continue
		}
		if j, ok := lookup[key]; ok {
			matched[i] = j
		}
	}

	out := NewFrame()
	copyColumns(out, accidents, "", nil)

	skip := map[string]bool{ColState: true}
	if byMonth {
		skip[ColMonth] = true
	}
	copyJoined(out, weather, matched, skip)
	return out
}

func mergeKey(f *Frame, i int, byMonth bool) string {
	state, ok := f.Str(ColState, i)
	if !ok {
		return ""
	}
	key := NormalizeState(state)
	if !byMonth {
		return key
	}
	m, ok := f.Num(ColMonth, i)
	if !ok {
		return ""
	}
	return key + "|" + strconv.FormatFloat(m, 'g', -1, 64)
}

// copyColumns clones every column of src into dst, renaming collisions
// with the given suffix.
func copyColumns(dst, src *Frame, suffix string, only map[string]bool) {
	for _, name := range src.Names() {
		if only != nil && !only[name] {
			continue
		}
		target := name
		if dst.Has(target) {
			target = name + suffix
			if suffix == "" || dst.Has(target) {
				continue
			}
		}
		c := src.Col(name)
		miss := append([]bool(nil), c.Miss...)
		switch c.Kind {
		case Numeric:
			dst.SetNumeric(target, append([]float64(nil), c.Nums...), miss)
		case Text:
			dst.SetText(target, append([]string(nil), c.Strs...), miss)
		}
	}
}

// copyJoined projects weather columns through the match index, leaving
// missing cells for unmatched rows.
func copyJoined(dst, weather *Frame, matched []int, skip map[string]bool) {
	n := len(matched)
	for _, name := range weather.Names() {
		if skip[name] {
			continue
		}
		target := name
		if dst.Has(target) {
			target = name + "_weather"
			if dst.Has(target) {
				continue
			}
		}
		c := weather.Col(name)
		miss := make([]bool, n)
		switch c.Kind {
		case Numeric:
			nums := make([]float64, n)
			for i, j := range matched {
				if j < 0 || c.Miss[j] {
					miss[i] = true
					continue
				}
				nums[i] = c.Nums[j]
			}
			dst.SetNumeric(target, nums, miss)
		case Text:
			strs := make([]string, n)
			for i, j := range matched {
				if j < 0 || c.Miss[j] {
					miss[i] = true
					continue
				}
				strs[i] = c.Strs[j]
			}
			dst.SetText(target, strs, miss)
		}
	}
}
