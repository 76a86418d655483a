package feature

import (
	"sort"
	"strings"

	"github.com/marrowdrift/road-risk-service/internal/dataset"
)

// categoricalColumns is the fixed attribute set that gets Unknown-filled
// and integer-encoded.
var categoricalColumns = []string{
	dataset.ColState, dataset.ColCity, dataset.ColWeather,
	dataset.ColRoadType, dataset.ColRoadCondition, dataset.ColLighting,
	dataset.ColVehicleType, dataset.ColDriverGender, dataset.ColSeason,
}

// substringFlags maps a categorical column to the binary flag columns
// derived from case-insensitive substring matches.
var substringFlags = map[string][]struct {
	name    string
	needles []string
}{
	dataset.ColWeather: {
		{"weather_clear", []string{"clear"}},
		{"weather_rainy", []string{"rain"}},
		{"weather_foggy", []string{"fog"}},
		{"weather_stormy", []string{"storm"}},
	},
	dataset.ColLighting: {
		{"lighting_daylight", []string{"day"}},
		{"lighting_dark", []string{"dark", "night"}},
		{"lighting_twilight", []string{"twilight", "dusk"}},
	},
	dataset.ColRoadType: {
		{"road_highway", []string{"highway", "national"}},
		{"road_urban", []string{"urban", "city"}},
		{"road_rural", []string{"rural", "village"}},
	},
}

// DeriveCategorical fills missing categorical values with "Unknown",
// integer-encodes each categorical column, and derives the fixed substring
// indicator flags.
func DeriveCategorical(f *dataset.Frame) {
	for _, col := range categoricalColumns {
		if !f.Has(col) {
			continue
		}
		f.FillText(col, "Unknown")
		encodeColumn(f, col)

		for _, flag := range substringFlags[col] {
			addSubstringFlag(f, col, flag.name, flag.needles)
		}
	}
}

// encodeColumn adds <col>_encoded: a stable integer encoding fit on the
// full column, classes ordered lexicographically so the same data always
// yields the same codes.
func encodeColumn(f *dataset.Frame, col string) {
	c := f.Col(col)
	if c.Kind != dataset.Text {
		return
	}

	classes := make(map[string]int)
	for i, s := range c.Strs {
		if !c.Miss[i] {
			classes[s] = 0
		}
	}
	ordered := make([]string, 0, len(classes))
	for s := range classes {
		ordered = append(ordered, s)
	}
	sort.Strings(ordered)
	for code, s := range ordered {
		classes[s] = code
	}

	n := f.Len()
	encoded := make([]float64, n)
	for i := 0; i < n; i++ {
		if !c.Miss[i] {
			encoded[i] = float64(classes[c.Strs[i]])
		}
	}
	f.SetNumeric(col+"_encoded", encoded, nil)
}

func addSubstringFlag(f *dataset.Frame, col, name string, needles []string) {
	n := f.Len()
	flags := make([]float64, n)
	for i := 0; i < n; i++ {
		s, ok := f.Str(col, i)
		if !ok {
			continue
		}
		lower := strings.ToLower(s)
		for _, needle := range needles {
			if strings.Contains(lower, needle) {
				flags[i] = 1
				break
			}
		}
	}
	f.SetNumeric(name, flags, nil)
}
