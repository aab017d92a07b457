package report

import (
	"sort"
	"strings"
)

// ResolveOrder computes the display order of the surviving tests: names
// from the preference sequence first, in sequence order, then the rest
// case-insensitively alphabetical. Duplicate sequence entries are no-ops.
// The result is a permutation of the surviving name set.
func ResolveOrder(surviving []string, sequence []string) []string {
	present := make(map[string]bool, len(surviving))
	for _, name := range surviving {
		present[name] = true
	}

	ordered := make([]string, 0, len(surviving))
	placed := make(map[string]bool, len(sequence))
	for _, name := range sequence {
		if present[name] && !placed[name] {
			ordered = append(ordered, name)
			placed[name] = true
		}
	}

	rest := make([]string, 0, len(surviving))
	for _, name := range surviving {
		if !placed[name] {
			rest = append(rest, name)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		li, lj := strings.ToLower(rest[i]), strings.ToLower(rest[j])
		if li != lj {
			return li < lj
		}
		return rest[i] < rest[j]
	})

	return append(ordered, rest...)
}
