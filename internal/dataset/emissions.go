// Package dataset reads per-position emission class probabilities for one
// sequence from CSV: one row per residue, one column per observed class.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"memtopo/internal/grammar"
)

// EmissionOptions controls emission CSV parsing.
type EmissionOptions struct {
	// HasHeader skips the first row.
	HasHeader bool
	// LogSpace treats cell values as log-probabilities and exponentiates
	// them, the form a neural sequence model writes.
	LogSpace bool
}

// ReadEmissions parses r into probability vectors suitable for decoding.
// Every row must carry exactly one value per observed class; probabilities
// must be nonnegative (log-space values must not be positive).
func ReadEmissions(r io.Reader, opts EmissionOptions) ([][]float64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	row := 0
	if opts.HasHeader {
		if _, err := reader.Read(); err == io.EOF {
			return nil, fmt.Errorf("dataset: emission file is empty")
		} else if err != nil {
			return nil, fmt.Errorf("dataset: read emission header: %w", err)
		}
		row++
	}

	var probs [][]float64
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: read emission row %d: %w", row, err)
		}
		row++
		if len(record) != grammar.NumClasses {
			return nil, fmt.Errorf("dataset: emission row %d has %d columns, want %d",
				row, len(record), grammar.NumClasses)
		}
		p := make([]float64, grammar.NumClasses)
		for c, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: emission row %d column %d: %w", row, c, err)
			}
			if opts.LogSpace {
				if v > 0 {
					return nil, fmt.Errorf("dataset: emission row %d column %d: log-probability %g is positive", row, c, v)
				}
				v = math.Exp(v)
			} else if v < 0 {
				return nil, fmt.Errorf("dataset: emission row %d column %d: probability %g is negative", row, c, v)
			}
			p[c] = v
		}
		probs = append(probs, p)
	}
	if len(probs) == 0 {
		return nil, fmt.Errorf("dataset: emission file has no data rows")
	}
	return probs, nil
}
