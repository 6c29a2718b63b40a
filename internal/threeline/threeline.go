// Package threeline reads transmembrane "3line" datasets: records of a
// ">name" header line followed by one residue-sequence line and one
// topology-label line of equal length.
package threeline

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"memtopo/internal/grammar"
)

// Record is one parsed 3line entry. Labels holds the ground-truth coarse
// topology per residue.
type Record struct {
	Name     string
	Sequence string
	Labels   []grammar.Label
}

// Filter mirrors the reference loader's length configuration; -1 disables a
// bound. Truncate trims both the sequence and its labels.
type Filter struct {
	MinLen   int
	MaxLen   int
	Truncate int
}

// NoFilter keeps every record at full length.
func NoFilter() Filter {
	return Filter{MinLen: -1, MaxLen: -1, Truncate: -1}
}

// Parse reads every record from r with no length filtering.
func Parse(r io.Reader) ([]Record, error) {
	return ParseFiltered(r, NoFilter())
}

// ParseFiltered reads records from r, dropping those outside the filter's
// length bounds. Sequence and label lines are uppercased before decoding;
// an unrecognized label letter or a sequence/label length mismatch is a
// hard error naming the record.
func ParseFiltered(r io.Reader, f Filter) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var records []Record
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, ">") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(line, ">"))

		if !sc.Scan() {
			return nil, fmt.Errorf("threeline: record %q: missing sequence line", name)
		}
		sequence := strings.ToUpper(strings.TrimSpace(sc.Text()))
		if !sc.Scan() {
			return nil, fmt.Errorf("threeline: record %q: missing label line", name)
		}
		labelLine := strings.ToUpper(strings.TrimSpace(sc.Text()))

		if len(labelLine) != len(sequence) {
			return nil, fmt.Errorf("threeline: record %q: sequence length %d does not match label length %d",
				name, len(sequence), len(labelLine))
		}

		if f.MinLen != -1 && len(sequence) < f.MinLen {
			continue
		}
		if f.MaxLen != -1 && len(sequence) > f.MaxLen {
			continue
		}
		if f.Truncate != -1 && len(sequence) > f.Truncate {
			sequence = sequence[:f.Truncate]
			labelLine = labelLine[:f.Truncate]
		}

		labels, err := grammar.ParseLabels(labelLine)
		if err != nil {
			return nil, fmt.Errorf("threeline: record %q: %w", name, err)
		}

		records = append(records, Record{Name: name, Sequence: sequence, Labels: labels})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("threeline: %w", err)
	}
	return records, nil
}
