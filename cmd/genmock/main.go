// Command genmock writes small synthetic raw CSVs in all four source
// shapes, for local pipeline runs without the real datasets.
//
// Usage:
//
//	go run ./cmd/genmock -out data/raw -rows 200
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
)

var (
	states = []string{"Maharashtra", "Uttar Pradesh", "Karnataka", "Tamil Nadu", "Delhi", "Rajasthan", "Bihar", "Goa"}
	cities = map[string][]string{
		"Maharashtra":   {"Mumbai", "Pune", "Nagpur"},
		"Uttar Pradesh": {"Lucknow", "Kanpur", "Agra"},
		"Karnataka":     {"Bangalore", "Mysore"},
		"Tamil Nadu":    {"Chennai", "Coimbatore"},
		"Delhi":         {"Delhi"},
		"Rajasthan":     {"Jaipur", "Jodhpur"},
		"Bihar":         {"Patna"},
		"Goa":           {"Panaji", "Village"},
	}
	severities = []string{"Minor", "Moderate", "Severe", "Fatal"}
	weathers   = []string{"Clear", "Rainy", "Foggy", "Stormy", "Hazy"}
	roadTypes  = []string{"National Highway", "State Highway", "Urban Road", "Rural Road"}
	roadConds  = []string{"Good", "Fair", "Poor", "Under Construction", "Damaged"}
	lightings  = []string{"Daylight", "Darkness - no lights", "Darkness - lights lit", "Dusk"}
	days       = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	vehicles   = []string{"Car", "Motorcycle", "Truck", "Bus", "Auto Rickshaw"}
)

func main() {
	outDir := flag.String("out", "data/raw", "output directory for mock CSVs")
	rows := flag.Int("rows", 200, "rows per accident dataset")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}
	rng := rand.New(rand.NewSource(*seed))

	writeCSV(*outDir, "india_road_accidents.csv", ',', detailedRows(rng, *rows))
	writeCSV(*outDir, "accidents_combined.csv", ',', combinedRows(rng, *rows))
	// Daily measurement exports are semicolon-separated.
	writeCSV(*outDir, "rainfall_daily.csv", ';', dailyRainfallRows(rng))
	writeCSV(*outDir, "district_rainfall_normals.csv", ',', normalsRows(rng))

	fmt.Printf("mock datasets written to %s\n", *outDir)
}

func detailedRows(rng *rand.Rand, n int) [][]string {
	rows := [][]string{{
		"State Name", "City Name", "Year", "Month", "Day of Week", "Time of Day",
		"Accident Severity", "Number of Vehicles Involved", "Number of Casualties",
		"Number of Fatalities", "Weather Conditions", "Road Type", "Road Condition",
		"Lighting Conditions", "Speed Limit (km/h)", "Driver Age", "Driver Gender",
		"Alcohol Involvement",
	}}
	for i := 0; i < n; i++ {
		state := pickFrom(rng, states)
		alcohol := "No"
		if rng.Float64() < 0.15 {
			alcohol = "Yes"
		}
		rows = append(rows, []string{
			state,
			pickFrom(rng, cities[state]),
			strconv.Itoa(2019 + rng.Intn(5)),
			strconv.Itoa(1 + rng.Intn(12)),
			pickFrom(rng, days),
			fmt.Sprintf("%02d:%02d", rng.Intn(24), rng.Intn(60)),
			pickFrom(rng, severities),
			strconv.Itoa(1 + rng.Intn(4)),
			strconv.Itoa(rng.Intn(6)),
			strconv.Itoa(rng.Intn(3)),
			pickFrom(rng, weathers),
			pickFrom(rng, roadTypes),
			pickFrom(rng, roadConds),
			pickFrom(rng, lightings),
			strconv.Itoa(30 + 10*rng.Intn(8)),
			strconv.Itoa(18 + rng.Intn(60)),
			pickFrom(rng, []string{"Male", "Female"}),
			alcohol,
		})
	}
	return rows
}

func combinedRows(rng *rand.Rand, n int) [][]string {
	rows := [][]string{{
		"state", "severity", "weather", "week_day", "hrmn", "lum", "vehicle_type",
		"engine_size", "driver_age", "car_age", "casualty_severity", "casualty_age",
		"driver_sex",
	}}
	for i := 0; i < n; i++ {
		sev := pickFrom(rng, []string{"Slight", "Serious", "Fatal"})
		rows = append(rows, []string{
			pickFrom(rng, states),
			sev,
			pickFrom(rng, []string{"Clear", "Rain", "Fog", "Snow"}),
			pickFrom(rng, days),
			fmt.Sprintf("%d%02d", rng.Intn(24), rng.Intn(60)),
			pickFrom(rng, []string{"Daylight", "Night", "Twilight"}),
			pickFrom(rng, vehicles),
			strconv.Itoa(100 + 100*rng.Intn(50)),
			strconv.Itoa(18 + rng.Intn(60)),
			strconv.Itoa(rng.Intn(20)),
			sev,
			strconv.Itoa(5 + rng.Intn(75)),
			pickFrom(rng, []string{"Male", "Female"}),
		})
	}
	return rows
}

func dailyRainfallRows(rng *rand.Rand) [][]string {
	header := []string{"state", "district", "month"}
	for d := 1; d <= 31; d++ {
		header = append(header, ordinal(d))
	}
	rows := [][]string{header}
	for _, state := range states {
		for _, district := range cities[state] {
			for month := 1; month <= 12; month++ {
				row := []string{state, district, strconv.Itoa(month)}
				for d := 0; d < 31; d++ {
					row = append(row, fmt.Sprintf("%.1f", monthlyRain(rng, month)))
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func normalsRows(rng *rand.Rand) [][]string {
	rows := [][]string{{
		"STATE_UT_NAME", "DISTRICT", "JAN", "FEB", "MAR", "APR", "MAY", "JUN",
		"JUL", "AUG", "SEP", "OCT", "NOV", "DEC", "ANNUAL", "Jan-Feb", "Mar-May",
		"Jun-Sep", "Oct-Dec",
	}}
	for _, state := range states {
		for _, district := range cities[state] {
			var monthly [12]float64
			var annual float64
			for m := range monthly {
				monthly[m] = 30 * monthlyRain(rng, m+1)
				annual += monthly[m]
			}
			row := []string{state, district}
			for _, v := range monthly {
				row = append(row, fmt.Sprintf("%.0f", v))
			}
			row = append(row,
				fmt.Sprintf("%.0f", annual),
				fmt.Sprintf("%.0f", monthly[0]+monthly[1]),
				fmt.Sprintf("%.0f", monthly[2]+monthly[3]+monthly[4]),
				fmt.Sprintf("%.0f", monthly[5]+monthly[6]+monthly[7]+monthly[8]),
				fmt.Sprintf("%.0f", monthly[9]+monthly[10]+monthly[11]),
			)
			rows = append(rows, row)
		}
	}
	return rows
}

// monthlyRain skews daily rainfall toward the monsoon months.
func monthlyRain(rng *rand.Rand, month int) float64 {
	base := rng.Float64() * 3
	if month >= 6 && month <= 9 {
		base += rng.Float64() * 25
	}
	return base
}

func ordinal(d int) string {
	switch {
	case d%10 == 1 && d != 11:
		return strconv.Itoa(d) + "st"
	case d%10 == 2 && d != 12:
		return strconv.Itoa(d) + "nd"
	case d%10 == 3 && d != 13:
		return strconv.Itoa(d) + "rd"
	default:
		return strconv.Itoa(d) + "th"
	}
}

func pickFrom(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}

func writeCSV(dir, name string, sep rune, rows [][]string) {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = sep
	if err := w.WriteAll(rows); err != nil {
		log.Fatalf("write %s: %v", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("flush %s: %v", path, err)
	}
}
