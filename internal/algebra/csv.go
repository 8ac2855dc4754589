package algebra

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadCSV reads a headerless CSV of numbers, one matrix row per record.
// Blank input yields an empty matrix.
func ReadCSV(r io.Reader) (Matrix[float64], error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading matrix CSV: %w", err)
	}

	m := make(Matrix[float64], 0, len(records))
	for i, rec := range records {
		if len(m) > 0 && len(rec) != len(m[0]) {
			return nil, fmt.Errorf("row %d: %w: expected %d fields, got %d", i+1, ErrRagged, len(m[0]), len(rec))
		}
		row := make([]float64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %d: parsing %q: %w", i+1, j+1, field, err)
			}
			row[j] = v
		}
		m = append(m, row)
	}
	return m, nil
}

// WriteCSV writes m as a headerless CSV, one record per row.
func WriteCSV(w io.Writer, m Matrix[float64]) error {
	if _, _, err := shape(m); err != nil {
		return fmt.Errorf("writing matrix CSV: %w", err)
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, row := range m {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
