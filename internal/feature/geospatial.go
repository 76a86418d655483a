package feature

import (
	"strings"

	"github.com/marrowdrift/road-risk-service/internal/dataset"
)

// stateRiskMap carries historical accident-density weights per state.
// States outside the table score the national baseline of 0.5.
var stateRiskMap = map[string]float64{
	"Uttar Pradesh":  0.9,
	"Maharashtra":    0.8,
	"Tamil Nadu":     0.7,
	"Karnataka":      0.7,
	"Rajasthan":      0.6,
	"Gujarat":        0.6,
	"West Bengal":    0.6,
	"Andhra Pradesh": 0.5,
	"Bihar":          0.8,
	"Madhya Pradesh": 0.7,
	"Delhi":          0.9,
	"Punjab":         0.5,
}

const defaultStateRisk = 0.5

var highRiskStates = map[string]struct{}{
	"Uttar Pradesh": {},
	"Maharashtra":   {},
	"Tamil Nadu":    {},
	"Karnataka":     {},
	"Rajasthan":     {},
}

var majorCities = map[string]struct{}{
	"Mumbai":    {},
	"Delhi":     {},
	"Bangalore": {},
	"Chennai":   {},
	"Kolkata":   {},
	"Hyderabad": {},
	"Pune":      {},
	"Ahmedabad": {},
	"Jaipur":    {},
	"Lucknow":   {},
}

// nonUrbanCities are city values that mark a record as outside an urban
// area. Everything else, including Unknown-free real names, counts as urban.
var nonUrbanCities = map[string]struct{}{
	"Unknown": {},
	"Rural":   {},
	"Village": {},
}

// DeriveGeospatial adds state and city level risk features. State matching
// is case-insensitive against the canonical table keys.
func DeriveGeospatial(f *dataset.Frame) {
	if f.Has(dataset.ColState) {
		n := f.Len()
		scores := make([]float64, n)
		flags := make([]float64, n)
		for i := 0; i < n; i++ {
			scores[i] = defaultStateRisk
			s, ok := f.Str(dataset.ColState, i)
			if !ok {
				continue
			}
			if v, mapped := lookupStateRisk(s); mapped {
				scores[i] = v
			}
			if _, hot := highRiskStates[titleState(s)]; hot {
				flags[i] = 1
			}
		}
		f.SetNumeric("state_risk_score", scores, nil)
		f.SetNumeric("high_risk_state", flags, nil)
	}

	if f.Has(dataset.ColCity) {
		n := f.Len()
		major := make([]float64, n)
		urban := make([]float64, n)
		for i := 0; i < n; i++ {
			s, ok := f.Str(dataset.ColCity, i)
			if !ok {
				continue
			}
			if _, big := majorCities[s]; big {
				major[i] = 1
			}
			if _, rural := nonUrbanCities[s]; !rural {
				urban[i] = 1
			}
		}
		f.SetNumeric("major_city", major, nil)
		f.SetNumeric("urban_area", urban, nil)
	}
}

func lookupStateRisk(s string) (float64, bool) {
	if v, ok := stateRiskMap[s]; ok {
		return v, true
	}
	v, ok := stateRiskMap[titleState(s)]
	return v, ok
}

// titleState folds state names to the table's Title Case spelling so
// upstream normalization to upper case still matches.
func titleState(s string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
