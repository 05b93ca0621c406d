package rules

import (
	"cmp"
	"slices"
)

// ExtractDuplicates returns every rule with a count above one, ordered by
// descending count and then by ascending rule text.
func ExtractDuplicates(counts map[string]int) []string {
	dups := make([]string, 0)
	for rule, n := range counts {
		if n > 1 {
			dups = append(dups, rule)
		}
	}
	slices.SortFunc(dups, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return dups
}
