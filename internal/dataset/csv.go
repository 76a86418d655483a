package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadCSV parses a delimited file into an all-text Frame. Empty cells
// become missing. Short rows are padded with missing cells rather than
// rejected; real-world exports are ragged.
func ReadCSV(path string, sep rune) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return ReadCSVFrom(f, sep)
}

// ReadCSVFrom parses CSV data from a reader with the same semantics as
// ReadCSV.
func ReadCSVFrom(r io.Reader, sep rune) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return NewFrame(), nil
	}

	header := rows[0]
	for i, h := range header {
		header[i] = strings.Trim(strings.TrimSpace(h), `"`)
	}

	n := len(rows) - 1
	cols := make([][]string, len(header))
	miss := make([][]bool, len(header))
	for j := range header {
		cols[j] = make([]string, n)
		miss[j] = make([]bool, n)
	}

	for i, row := range rows[1:] {
		for j := range header {
			if j >= len(row) || strings.TrimSpace(row[j]) == "" {
				miss[j][i] = true
				continue
			}
			cols[j][i] = strings.TrimSpace(row[j])
		}
	}

	frame := NewFrame()
	for j, name := range header {
		if name == "" || frame.Has(name) {
			continue
		}
		frame.SetText(name, cols[j], miss[j])
	}
	return frame, nil
}
