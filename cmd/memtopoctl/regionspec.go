package main

import (
	"fmt"
	"strconv"
	"strings"

	"memtopo/internal/region"
)

// parseRegionList parses "start:end" pairs separated by commas, e.g.
// "2:10,15:40". Regions must be well-formed, increasing, and disjoint, the
// shape the extractor produces and the matcher requires.
func parseRegionList(spec string) ([]region.Region, error) {
	parts := strings.Split(spec, ",")
	regions := make([]region.Region, 0, len(parts))
	prevEnd := 0
	for _, part := range parts {
		part = strings.TrimSpace(part)
		bounds := strings.Split(part, ":")
		if len(bounds) != 2 {
			return nil, fmt.Errorf("region %q is not start:end", part)
		}
		start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", part, err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", part, err)
		}
		if start < 0 || end <= start {
			return nil, fmt.Errorf("region %q: want 0 <= start < end", part)
		}
		if len(regions) > 0 && start < prevEnd {
			return nil, fmt.Errorf("region %q overlaps or precedes the previous region", part)
		}
		regions = append(regions, region.Region{Start: start, End: end})
		prevEnd = end
	}
	return regions, nil
}
