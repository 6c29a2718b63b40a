// Package region extracts membrane-helix regions from coarse topology label
// sequences and scores predicted region lists against ground truth.
package region

import (
	"fmt"

	"memtopo/internal/grammar"
)

// Region is a maximal contiguous run of the membrane label, as the
// half-open position interval [Start, End).
type Region struct {
	Start int
	End   int
}

func (r Region) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Len returns the number of positions the region covers.
func (r Region) Len() int {
	return r.End - r.Start
}

// Extract scans labels left to right and returns the maximal membrane runs
// in increasing order. A run is closed when the label changes or the
// sequence ends, including a run that starts at position 0.
func Extract(labels []grammar.Label) []Region {
	var regions []Region
	start := -1
	for i, l := range labels {
		switch {
		case l == grammar.Membrane && start < 0:
			start = i
		case l != grammar.Membrane && start >= 0:
			regions = append(regions, Region{Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		regions = append(regions, Region{Start: start, End: len(labels)})
	}
	return regions
}

// ExtractLegacy reproduces the reference extractor bit for bit, including
// its boundary quirk: the run-closing test is "start > 0", so a membrane
// run starting at position 0 is never closed and, by leaving the run marker
// set, suppresses every later region as well. Only use this when comparing
// against evaluation results produced by the reference implementation.
func ExtractLegacy(labels []grammar.Label) []Region {
	var regions []Region
	start := -1
	for i, l := range labels {
		switch {
		case l == grammar.Membrane && start < 0:
			start = i
		case l != grammar.Membrane && start > 0:
			regions = append(regions, Region{Start: start, End: i})
			start = -1
		}
	}
	if start > 0 {
		regions = append(regions, Region{Start: start, End: len(labels)})
	}
	return regions
}

// MinOverlap is the minimum number of shared positions for a predicted
// region to count as matching a true region.
const MinOverlap = 5

// Match reports whether pred correctly identifies the membrane regions in
// truth: the lists must have the same length, and each predicted region
// must overlap its positional counterpart by at least MinOverlap positions.
// Both lists must already be sorted and disjoint, which Extract guarantees.
func Match(pred, truth []Region) bool {
	if len(pred) != len(truth) {
		return false
	}
	for i, p := range pred {
		t := truth[i]
		if p.End <= t.Start || t.End <= p.Start {
			return false
		}
		if overlap(p, t) < MinOverlap {
			return false
		}
	}
	return true
}

func overlap(a, b Region) int {
	s := max(a.Start, b.Start)
	e := min(a.End, b.End)
	return e - s
}
