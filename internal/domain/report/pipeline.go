package report

import (
	"sort"
	"strings"

	"github.com/labreport/labreport/internal/domain/record"
)

// ApplyFilters runs the include/exclude, date-window, sort and cap steps
// over each test's readings. Tests whose readings are all filtered out are
// dropped entirely. The input map is not modified.
func ApplyFilters(series map[string][]record.Reading, opts Options) map[string][]record.Reading {
	includeAll := containsWildcard(opts.IncludeTests)
	includeSet := toSet(opts.IncludeTests)
	excludeSet := toSet(opts.ExcludeTests)

	out := make(map[string][]record.Reading)
	for name, readings := range series {
		if _, excluded := excludeSet[name]; excluded {
			continue
		}
		if !includeAll {
			if _, ok := includeSet[name]; !ok {
				continue
			}
		}

		kept := make([]record.Reading, 0, len(readings))
		for _, r := range readings {
			if opts.DateStart != nil && r.Date.Before(*opts.DateStart) {
				continue
			}
			if opts.DateEnd != nil && r.Date.After(*opts.DateEnd) {
				continue
			}
			kept = append(kept, r)
		}
		if len(kept) == 0 {
			continue
		}

		sortReadings(kept, opts.Sort)

		if opts.MaxReadingsPerTest > 0 && len(kept) > opts.MaxReadingsPerTest {
			kept = kept[:opts.MaxReadingsPerTest]
		}
		out[name] = kept
	}
	return out
}

func sortReadings(readings []record.Reading, strategy SortStrategy) {
	switch strategy {
	case SortDateAsc:
		sort.SliceStable(readings, func(i, j int) bool {
			return readings[i].Date.Before(readings[j].Date)
		})
	case SortValueAsc:
		sort.SliceStable(readings, func(i, j int) bool {
			return valueLess(readings[i].Value, readings[j].Value)
		})
	case SortValueDesc:
		sort.SliceStable(readings, func(i, j int) bool {
			return valueLess(readings[j].Value, readings[i].Value)
		})
	default:
		sort.SliceStable(readings, func(i, j int) bool {
			return readings[j].Date.Before(readings[i].Date)
		})
	}
}

// valueLess compares raw values case-insensitively, falling back to the
// original strings so equal-folded values still order deterministically.
func valueLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

func containsWildcard(names []string) bool {
	for _, n := range names {
		if n == "*" {
			return true
		}
	}
	return false
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
