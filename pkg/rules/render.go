package rules

import (
	"fmt"
	"strings"
	"time"
)

// TimestampFormat is the layout of the generation time in report headers.
const TimestampFormat = "2006-01-02 15:04:05 MST"

// Summary carries the counts printed in the merged list header.
type Summary struct {
	Total      int
	Duplicates int
}

// RenderMerged formats the merged list: a '!' header, a blank line and one
// rule per line. Rules are written in the order given.
func RenderMerged(rules []string, sources []Source, ts time.Time, summary Summary) string {
	aliases := make([]string, len(sources))
	for i, src := range sources {
		aliases[i] = src.Alias
	}

	var b strings.Builder
	b.WriteString("! Title: Merged block list\n")
	fmt.Fprintf(&b, "! Sources: %s\n", strings.Join(aliases, ", "))
	fmt.Fprintf(&b, "! Generated: %s\n", ts.Format(TimestampFormat))
	fmt.Fprintf(&b, "! Total rules: %d\n", summary.Total)
	fmt.Fprintf(&b, "! Duplicate rules: %d\n", summary.Duplicates)
	b.WriteString("\n")
	for _, rule := range rules {
		b.WriteString(rule)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderDuplicates formats the duplicate report. Each rule line has the form
// "<rule> [<count>] (<alias>, <alias>)".
func RenderDuplicates(duplicates []string, counts map[string]int, aliases map[string][]string, sources []Source, ts time.Time) string {
	var b strings.Builder
	b.WriteString("! Title: Duplicate rules across sources\n")
	fmt.Fprintf(&b, "! Generated: %s\n", ts.Format(TimestampFormat))
	fmt.Fprintf(&b, "! Duplicate rules: %d\n", len(duplicates))
	b.WriteString("! Format: <rule> [<count>] (<sources>)\n")
	b.WriteString("! Sources:\n")
	for _, src := range sources {
		fmt.Fprintf(&b, "!   %s = %s\n", src.Alias, src.ID)
	}
	b.WriteString("\n")
	for _, rule := range duplicates {
		fmt.Fprintf(&b, "%s [%d] (%s)\n", rule, counts[rule], strings.Join(aliases[rule], ", "))
	}
	return b.String()
}

// Render produces both artifacts for a finished aggregation.
func (r *Result) Render(ts time.Time) (merged, duplicates string) {
	dups := r.Duplicates()
	merged = RenderMerged(r.Rules(), r.Sources, ts, Summary{Total: r.Len(), Duplicates: len(dups)})
	duplicates = RenderDuplicates(dups, r.Counts, r.Aliases, r.Sources, ts)
	return merged, duplicates
}
