package feature

import "github.com/marrowdrift/road-risk-service/internal/dataset"

// outlierColumns are the only columns subject to IQR capping. Flag and
// score columns are bounded by construction and stay untouched.
var outlierColumns = []string{
	dataset.ColDriverAge,
	dataset.ColSpeedLimit,
	dataset.ColVehiclesInvolved,
	dataset.ColTotalRainfall,
	dataset.ColAnnualRainfall,
}

const iqrFenceFactor = 1.5

// Impute fills remaining missing cells in place. Numeric columns take
// their column median, text columns their mode, or "Unknown" when a text
// column is entirely missing.
func Impute(f *dataset.Frame) {
	for _, name := range f.Names() {
		if f.IsNumeric(name) {
			if med, ok := f.Median(name); ok {
				f.FillNumeric(name, med)
			} else {
				f.FillNumeric(name, 0)
			}
			continue
		}
		if mode, ok := f.Mode(name); ok {
			f.FillText(name, mode)
		} else {
			f.FillText(name, "Unknown")
		}
	}
}

// CapOutliers clamps the designated columns to the Tukey fences at 1.5
// times the interquartile range. Missing cells are left alone.
func CapOutliers(f *dataset.Frame) {
	for _, name := range outlierColumns {
		if !f.Has(name) || !f.IsNumeric(name) {
			continue
		}
		q1, ok1 := f.Quantile(name, 0.25)
		q3, ok3 := f.Quantile(name, 0.75)
		if !ok1 || !ok3 {
			continue
		}
		iqr := q3 - q1
		lo := q1 - iqrFenceFactor*iqr
		hi := q3 + iqrFenceFactor*iqr
		c := f.Col(name)
		for i := range c.Nums {
			if c.Miss[i] {
				continue
			}
			if c.Nums[i] < lo {
				c.Nums[i] = lo
			} else if c.Nums[i] > hi {
				c.Nums[i] = hi
			}
		}
	}
}
