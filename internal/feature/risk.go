package feature

import (
	"math"

	"github.com/marrowdrift/road-risk-service/internal/dataset"
)

// Driver/speed risk boundaries.
const (
	highSpeedLimit    = 80
	lowSpeedLimit     = 30
	youngDriverAge    = 25
	elderlyDriverAge  = 65
	noviceDriverAge   = 22
	defaultVehicles   = 1
	defaultSpeedLimit = 50
	defaultDriverAge  = 35
)

// roadConditionRisk is the fixed severity table for road surface state;
// unmapped conditions score 0.5.
var roadConditionRisk = map[string]float64{
	"Good":               0.1,
	"Fair":               0.3,
	"Poor":               0.7,
	"Under Construction": 0.8,
	"Damaged":            0.9,
}

// DeriveRisk adds vehicle, speed, driver, alcohol, road-condition, and
// visibility risk features.
func DeriveRisk(f *dataset.Frame) {
	if f.Has(dataset.ColVehiclesInvolved) {
		f.CoerceNumeric(dataset.ColVehiclesInvolved)
		f.FillNumeric(dataset.ColVehiclesInvolved, defaultVehicles)
		addNumFlag(f, dataset.ColVehiclesInvolved, "multi_vehicle", func(v float64) bool { return v > 1 })
		addDerived(f, dataset.ColVehiclesInvolved, "vehicle_risk_score", func(v float64) float64 {
			return math.Log1p(v)
		})
	}

	if f.Has(dataset.ColSpeedLimit) {
		f.CoerceNumeric(dataset.ColSpeedLimit)
		f.FillNumeric(dataset.ColSpeedLimit, defaultSpeedLimit)
		addNumFlag(f, dataset.ColSpeedLimit, "high_speed", func(v float64) bool { return v >= highSpeedLimit })
		addNumFlag(f, dataset.ColSpeedLimit, "low_speed", func(v float64) bool { return v <= lowSpeedLimit })
		addDerived(f, dataset.ColSpeedLimit, "speed_risk_score", func(v float64) float64 { return v / 100 })
	}

	if f.Has(dataset.ColDriverAge) {
		f.CoerceNumeric(dataset.ColDriverAge)
		f.FillNumeric(dataset.ColDriverAge, defaultDriverAge)
		addNumFlag(f, dataset.ColDriverAge, "young_driver", func(v float64) bool { return v <= youngDriverAge })
		addNumFlag(f, dataset.ColDriverAge, "elderly_driver", func(v float64) bool { return v >= elderlyDriverAge })
		addNumFlag(f, dataset.ColDriverAge, "inexperienced_driver", func(v float64) bool { return v <= noviceDriverAge })
	}

	if f.Has(dataset.ColAlcoholInvolved) {
		deriveAlcoholRisk(f)
	}

	if f.Has(dataset.ColRoadCondition) {
		n := f.Len()
		scores := make([]float64, n)
		for i := 0; i < n; i++ {
			scores[i] = 0.5
			if s, ok := f.Str(dataset.ColRoadCondition, i); ok {
				if v, mapped := roadConditionRisk[s]; mapped {
					scores[i] = v
				}
			}
		}
		f.SetNumeric("road_risk_score", scores, nil)
	}

	if f.Has("lighting_dark") {
		n := f.Len()
		vis := make([]float64, n)
		for i := 0; i < n; i++ {
			dark, _ := f.Num("lighting_dark", i)
			foggy, _ := f.Num("weather_foggy", i)
			vis[i] = dark*0.6 + foggy*0.4
		}
		f.SetNumeric("visibility_risk", vis, nil)
	}
}

// deriveAlcoholRisk normalizes alcohol involvement to a 0/1 alcohol_risk
// column through the shared Yes/No table with numeric fallback.
func deriveAlcoholRisk(f *dataset.Frame) {
	c := f.Col(dataset.ColAlcoholInvolved)
	n := f.Len()
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		if c.Miss[i] {
			continue
		}
		if c.Kind == dataset.Numeric {
			if c.Nums[i] != 0 {
				vals[i] = 1
			}
			continue
		}
		if v, ok := yesNoValues[c.Strs[i]]; ok {
			vals[i] = v
		}
	}
	f.SetNumeric("alcohol_risk", vals, nil)
}

func addDerived(f *dataset.Frame, src, name string, fn func(v float64) float64) {
	n := f.Len()
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		v, _ := f.Num(src, i)
		vals[i] = fn(v)
	}
	f.SetNumeric(name, vals, nil)
}
