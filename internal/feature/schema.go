package feature

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"strconv"
	"strings"

	"github.com/marrowdrift/road-risk-service/internal/dataset"
)

// Feature caps for the trained schema. The selector trims to
// maxPriorityFeatures through the priority lists whenever the raw
// candidate set exceeds maxRawFeatures.
const (
	maxRawFeatures      = 80
	maxPriorityFeatures = 70
)

// targetColumns never enter the feature schema; they are labels or leak
// the label directly.
var targetColumns = map[string]struct{}{
	"risk_score":                {},
	"severity_level":            {},
	"high_risk":                 {},
	"severe_accident":           {},
	dataset.ColSeverity:         {},
	dataset.ColCasualtySeverity: {},
}

// binaryFragments and mathFragments identify engineered columns that are
// re-admitted after the raw numeric sweep, so derived flags survive even
// when their source column was text.
var binaryFragments = []string{
	"_low", "_high", "_risk", "_clear", "_rainy", "_foggy", "_stormy",
	"_daylight", "_dark", "_twilight", "_highway", "_urban", "_rural",
	"is_", "multi_", "young_", "elderly_", "high_", "night_", "rush_",
}

var mathFragments = []string{"_sin", "_cos", "_score", "_dependency", "_intensity", "_count"}

// priorityOriginal and priorityEngineered order the keep list when the
// candidate set overflows. Originals first, then the engineered core,
// then whatever else fits.
var priorityOriginal = []string{
	"state_encoded", "city_encoded", "year", "month", "vehicles_involved",
	"casualties", "fatalities", "weather_encoded", "road_type_encoded",
	"road_condition_encoded", "lighting_encoded", "speed_limit",
	"driver_age", "driver_gender_encoded", "hour", "vehicle_type_encoded",
	"engine_size", "car_age", "casualty_age", "total_rainfall",
	"avg_daily_rainfall", "max_daily_rainfall", "drought_risk",
	"flood_risk", "normal_rainfall", "annual_rainfall", "monsoon_rainfall",
}

var priorityEngineered = []string{
	"is_night", "is_weekend", "is_rush_hour", "weather_severity_score",
	"vehicle_risk_score", "speed_risk_score", "combined_risk_score",
	"hour_sin", "hour_cos", "month_sin", "month_cos", "day_sin", "day_cos",
}

// onlineDefaults supplies per-feature fill values for serving-time
// vectors when live input cannot carry the feature. Features outside the
// table default to zero.
var onlineDefaults = map[string]float64{
	"vehicles_involved":      1,
	"speed_limit":            50,
	"driver_age":             35,
	"driver_gender_encoded":  1,
	"vehicle_type_encoded":   1,
	"engine_size":            1500,
	"car_age":                5,
	"casualty_age":           35,
	"road_type_encoded":      1,
	"road_condition_encoded": 1,
	"year":                   2023,
	"urban_area":             1,
	"road_risk_score":        0.5,
	"state_risk_score":       0.5,
	"vehicle_risk_score":     0.5,
	"speed_risk_score":       1.0,
	"combined_risk_score":    0.3,
}

// ManifestFeature is one ordered slot of the serving schema.
type ManifestFeature struct {
	Name    string  `json:"name"`
	Default float64 `json:"default"`
}

// Manifest pins the exact feature order a model was trained against.
// Version embeds a hash of the ordered names so a stale manifest paired
// with a retrained model is detectable.
type Manifest struct {
	Version  string            `json:"version"`
	Features []ManifestFeature `json:"features"`
}

// FeatureNames returns the slot names in manifest order.
func (m *Manifest) FeatureNames() []string {
	names := make([]string, len(m.Features))
	for i, f := range m.Features {
		names[i] = f.Name
	}
	return names
}

// Width is the expected vector length.
func (m *Manifest) Width() int { return len(m.Features) }

// Save writes the manifest as indented JSON.
func (m *Manifest) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling schema manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing schema manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a manifest back and verifies its version hash.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing schema manifest: %w", err)
	}
	if want := manifestVersion(m.FeatureNames()); m.Version != want {
		return nil, fmt.Errorf("schema manifest version %q does not match feature list (want %q)", m.Version, want)
	}
	return &m, nil
}

// SelectSchema derives the ordered feature list for training from the
// fully derived frame and wraps it in a versioned manifest.
func SelectSchema(f *dataset.Frame) *Manifest {
	var candidates []string
	seen := make(map[string]struct{})
	add := func(name string) {
		if _, dup := seen[name]; dup {
			return
		}
		if _, excluded := targetColumns[name]; excluded {
			return
		}
		seen[name] = struct{}{}
		candidates = append(candidates, name)
	}

	for _, name := range f.Names() {
		if _, excluded := targetColumns[name]; excluded {
			continue
		}
		if f.IsNumeric(name) {
			add(name)
			continue
		}
		if f.Has(name + "_encoded") {
			add(name + "_encoded")
			continue
		}
		// Text columns without an encoded companion are kept when they
		// hold numbers that the CSV reader left as strings. A column
		// with no parseable cell at all stays out of the schema.
		if hasNumericValues(f, name) {
			f.CoerceNumeric(name)
			add(name)
		}
	}
	for _, name := range f.Names() {
		if !f.IsNumeric(name) {
			continue
		}
		if strings.HasSuffix(name, "_encoded") || hasFragment(name, binaryFragments) || hasFragment(name, mathFragments) {
			add(name)
		}
	}

	if len(candidates) > maxRawFeatures {
		candidates = prioritize(candidates)
	}

	features := make([]ManifestFeature, len(candidates))
	for i, name := range candidates {
		features[i] = ManifestFeature{Name: name, Default: onlineDefaults[name]}
	}
	return &Manifest{Version: manifestVersion(candidates), Features: features}
}

// BuildMatrix extracts the design matrix in manifest order. Absent
// columns fill with the manifest default for every row.
func BuildMatrix(f *dataset.Frame, m *Manifest) [][]float64 {
	n := f.Len()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, m.Width())
	}
	for j, feat := range m.Features {
		if !f.Has(feat.Name) || !f.IsNumeric(feat.Name) {
			for i := range rows {
				rows[i][j] = feat.Default
			}
			continue
		}
		for i := 0; i < n; i++ {
			if v, ok := f.Num(feat.Name, i); ok {
				rows[i][j] = v
			} else {
				rows[i][j] = feat.Default
			}
		}
	}
	return rows
}

func prioritize(candidates []string) []string {
	inCandidates := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		inCandidates[c] = struct{}{}
	}
	var kept []string
	seen := make(map[string]struct{})
	take := func(name string) {
		if _, ok := inCandidates[name]; !ok {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		kept = append(kept, name)
	}
	for _, name := range priorityOriginal {
		take(name)
	}
	for _, name := range priorityEngineered {
		take(name)
	}
	for _, name := range candidates {
		if len(kept) >= maxPriorityFeatures {
			break
		}
		take(name)
	}
	if len(kept) > maxPriorityFeatures {
		kept = kept[:maxPriorityFeatures]
	}
	return kept
}

// hasNumericValues reports whether any non-missing cell of a text column
// parses as a number.
func hasNumericValues(f *dataset.Frame, name string) bool {
	for i := 0; i < f.Len(); i++ {
		s, ok := f.Str(name, i)
		if !ok {
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return true
		}
	}
	return false
}

func hasFragment(name string, fragments []string) bool {
	for _, frag := range fragments {
		if strings.Contains(name, frag) {
			return true
		}
	}
	return false
}

func manifestVersion(names []string) string {
	h := fnv.New32a()
	for _, name := range names {
		h.Write([]byte(name))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("v1-%08x", h.Sum32())
}
