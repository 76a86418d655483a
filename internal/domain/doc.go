// Package domain models road-accident risk data shared by the offline
// feature pipeline and the online risk scorer.
//
// # Data Sources
//
// Accident records come from two public tabular datasets with independent
// column vocabularies:
//
//	Detailed schema: State Name, City Name, Year, Month, Day of Week,
//	  Time of Day (HH:MM), Accident Severity, Number of Vehicles Involved,
//	  Number of Casualties, Number of Fatalities, Weather Conditions,
//	  Road Type, Road Condition, Lighting Conditions, Speed Limit (km/h),
//	  Driver Age, Driver Gender, Alcohol Involvement.
//	Combined schema: state, severity, weather, week_day, hrmn (HHMM),
//	  lum (lighting), vehicle_type, engine_size, driver_age, car_age,
//	  casualty_severity, casualty_age, driver_sex.
//
// Rainfall data likewise arrives in two shapes: district-wise daily
// measurements (one column per day of month) and district-wise monthly
// normals (one column per month, JAN..DEC, plus seasonal totals).
//
// # Conventions
//
// Seasons follow the Indian meteorological calendar used by the rainfall
// normals dataset:
//
//	months {12,1,2}  → winter
//	months {3,4,5}   → summer
//	months {6,7,8,9} → monsoon
//	months {10,11}   → post_monsoon
//
// Rainfall thresholds: totals below 10 mm flag drought risk, daily maxima
// above 100 mm flag flood risk. Rainfall intensity is max/(avg+0.001); the
// epsilon guards division by zero on dry months.
//
// Severity vocabulary maps onto three levels:
//
//	Minor, Slight     → 0
//	Moderate, Serious → 1
//	Severe, Fatal     → 2
//
// # Risk Levels
//
// Continuous risk scores live in [0.15, 0.95] after contextual adjustment.
// Online thresholds expose three bands: ≥0.70 high, ≥0.45 moderate, else
// low. A fourth label, severe, exists in the training vocabulary but is
// never produced by the online thresholds; it is kept for artifact
// compatibility, not reachable behavior.
package domain
