// Package dataset turns raw, schema-inconsistent accident and rainfall
// tables into one merged table ready for feature derivation. The Frame
// type is a small column store: ordered named columns, numeric or text,
// with an explicit missing mask so absent values stay distinguishable
// from zeros.
package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Kind distinguishes numeric columns from text columns.
type Kind int

const (
	Numeric Kind = iota
	Text
)

// Column holds one column's values. Exactly one of Nums/Strs is populated
// depending on Kind; Miss marks missing cells in either case.
type Column struct {
	Kind Kind
	Nums []float64
	Strs []string
	Miss []bool
}

func (c *Column) len() int {
	if c.Kind == Numeric {
		return len(c.Nums)
	}
	return len(c.Strs)
}

// Frame is an ordered collection of equal-length columns.
type Frame struct {
	names []string
	cols  map[string]*Column
}

// NewFrame creates an empty frame.
func NewFrame() *Frame {
	return &Frame{cols: make(map[string]*Column)}
}

// Len returns the row count.
func (f *Frame) Len() int {
	if len(f.names) == 0 {
		return 0
	}
	return f.cols[f.names[0]].len()
}

// Names returns column names in insertion order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Has reports whether a column exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Col returns a column or nil.
func (f *Frame) Col(name string) *Column {
	return f.cols[name]
}

// IsNumeric reports whether the named column exists and is numeric.
func (f *Frame) IsNumeric(name string) bool {
	c, ok := f.cols[name]
	return ok && c.Kind == Numeric
}

// SetNumeric adds or replaces a numeric column. A nil miss mask means no
// missing values. Panics on a length mismatch with existing columns;
// column construction bugs should fail loudly, not corrupt the table.
func (f *Frame) SetNumeric(name string, vals []float64, miss []bool) {
	f.checkLen(name, len(vals))
	if miss == nil {
		miss = make([]bool, len(vals))
	}
	if _, ok := f.cols[name]; !ok {
		f.names = append(f.names, name)
	}
	f.cols[name] = &Column{Kind: Numeric, Nums: vals, Miss: miss}
}

// SetText adds or replaces a text column.
func (f *Frame) SetText(name string, vals []string, miss []bool) {
	f.checkLen(name, len(vals))
	if miss == nil {
		miss = make([]bool, len(vals))
	}
	if _, ok := f.cols[name]; !ok {
		f.names = append(f.names, name)
	}
	f.cols[name] = &Column{Kind: Text, Strs: vals, Miss: miss}
}

func (f *Frame) checkLen(name string, n int) {
	if len(f.names) == 0 {
		return
	}
	if got := f.Len(); n != got {
		panic(fmt.Sprintf("dataset: column %q has %d rows, frame has %d", name, n, got))
	}
}

// Num returns the numeric value at row i, with ok=false when the column is
// absent, non-numeric, or the cell is missing.
func (f *Frame) Num(name string, i int) (float64, bool) {
	c, exists := f.cols[name]
	if !exists || c.Kind != Numeric || c.Miss[i] {
		return 0, false
	}
	return c.Nums[i], true
}

// Str returns the text value at row i, with ok=false when absent or missing.
func (f *Frame) Str(name string, i int) (string, bool) {
	c, exists := f.cols[name]
	if !exists || c.Kind != Text || c.Miss[i] {
		return "", false
	}
	return c.Strs[i], true
}

// CoerceNumeric converts a text column to numeric in place. Unparsable or
// missing cells become missing. Numeric columns are left untouched.
// Returns the count of cells that failed coercion.
func (f *Frame) CoerceNumeric(name string) int {
	c, ok := f.cols[name]
	if !ok || c.Kind == Numeric {
		return 0
	}
	nums := make([]float64, len(c.Strs))
	miss := make([]bool, len(c.Strs))
	failed := 0
	for i, s := range c.Strs {
		if c.Miss[i] {
			miss[i] = true
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			miss[i] = true
			failed++
			continue
		}
		nums[i] = v
	}
	f.cols[name] = &Column{Kind: Numeric, Nums: nums, Miss: miss}
	return failed
}

// FillNumeric replaces missing cells of a numeric column with def.
func (f *Frame) FillNumeric(name string, def float64) {
	c, ok := f.cols[name]
	if !ok || c.Kind != Numeric {
		return
	}
	for i := range c.Nums {
		if c.Miss[i] {
			c.Nums[i] = def
			c.Miss[i] = false
		}
	}
}

// FillText replaces missing cells of a text column with def.
func (f *Frame) FillText(name string, def string) {
	c, ok := f.cols[name]
	if !ok || c.Kind != Text {
		return
	}
	for i := range c.Strs {
		if c.Miss[i] {
			c.Strs[i] = def
			c.Miss[i] = false
		}
	}
}

// nonMissing returns the present values of a numeric column, sorted.
func (f *Frame) nonMissing(name string) []float64 {
	c, ok := f.cols[name]
	if !ok || c.Kind != Numeric {
		return nil
	}
	vals := make([]float64, 0, len(c.Nums))
	for i, v := range c.Nums {
		if !c.Miss[i] && !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	sort.Float64s(vals)
	return vals
}

// Median returns the median of a numeric column's present values.
func (f *Frame) Median(name string) (float64, bool) {
	return f.Quantile(name, 0.5)
}

// Quantile returns the p-quantile of a numeric column's present values.
func (f *Frame) Quantile(name string, p float64) (float64, bool) {
	vals := f.nonMissing(name)
	if len(vals) == 0 {
		return 0, false
	}
	return stat.Quantile(p, stat.Empirical, vals, nil), true
}

// Mode returns the most frequent present value of a text column.
func (f *Frame) Mode(name string) (string, bool) {
	c, ok := f.cols[name]
	if !ok || c.Kind != Text {
		return "", false
	}
	counts := make(map[string]int)
	for i, s := range c.Strs {
		if !c.Miss[i] {
			counts[s]++
		}
	}
	best, bestN := "", 0
	for s, n := range counts {
		if n > bestN || (n == bestN && s < best) {
			best, bestN = s, n
		}
	}
	return best, bestN > 0
}

// Concat appends other's rows to f, taking the union of columns. Cells
// absent on either side become missing.
func Concat(frames ...*Frame) *Frame {
	out := NewFrame()
	var names []string
	seen := make(map[string]bool)
	total := 0
	for _, fr := range frames {
		total += fr.Len()
		for _, n := range fr.names {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}

	for _, name := range names {
		kind := Text
		for _, fr := range frames {
			if c := fr.cols[name]; c != nil {
				kind = c.Kind
				break
			}
		}
		miss := make([]bool, 0, total)
		switch kind {
		case Numeric:
			nums := make([]float64, 0, total)
			for _, fr := range frames {
				n := fr.Len()
				c := fr.cols[name]
				for i := 0; i < n; i++ {
					if c == nil || c.Kind != Numeric || c.Miss[i] {
						nums = append(nums, 0)
						miss = append(miss, true)
						continue
					}
					nums = append(nums, c.Nums[i])
					miss = append(miss, false)
				}
			}
			out.SetNumeric(name, nums, miss)
		case Text:
			strs := make([]string, 0, total)
			for _, fr := range frames {
				n := fr.Len()
				c := fr.cols[name]
				for i := 0; i < n; i++ {
					if c == nil || c.Kind != Text || c.Miss[i] {
						strs = append(strs, "")
						miss = append(miss, true)
						continue
					}
					strs = append(strs, c.Strs[i])
					miss = append(miss, false)
				}
			}
			out.SetText(name, strs, miss)
		}
	}
	return out
}

// Filter returns a new frame keeping only rows where keep(i) is true.
func (f *Frame) Filter(keep func(i int) bool) *Frame {
	n := f.Len()
	idx := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	out := NewFrame()
	for _, name := range f.names {
		c := f.cols[name]
		miss := make([]bool, len(idx))
		switch c.Kind {
		case Numeric:
			nums := make([]float64, len(idx))
			for j, i := range idx {
				nums[j] = c.Nums[i]
				miss[j] = c.Miss[i]
			}
			out.SetNumeric(name, nums, miss)
		case Text:
			strs := make([]string, len(idx))
			for j, i := range idx {
				strs[j] = c.Strs[i]
				miss[j] = c.Miss[i]
			}
			out.SetText(name, strs, miss)
		}
	}
	return out
}

// DropDuplicates removes rows whose every cell equals an earlier row's.
func (f *Frame) DropDuplicates() *Frame {
	seen := make(map[string]bool, f.Len())
	return f.Filter(func(i int) bool {
		key := f.rowKey(i)
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
}

// DropMissing removes rows missing any of the named columns. A column that
// does not exist at all counts as missing for every row.
func (f *Frame) DropMissing(names ...string) *Frame {
	return f.Filter(func(i int) bool {
		for _, name := range names {
			c, ok := f.cols[name]
			if !ok || c.Miss[i] {
				return false
			}
		}
		return true
	})
}

func (f *Frame) rowKey(i int) string {
	var sb strings.Builder
	for _, name := range f.names {
		c := f.cols[name]
		if c.Miss[i] {
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
