package rules

import (
	"slices"
	"strings"
)

// Source identifies one input list and its resolved display label.
type Source struct {
	ID    string
	Alias string
}

// SourceLines pairs a source identifier with the raw lines fetched for it.
// A source that could not be fetched carries no lines.
type SourceLines struct {
	ID    string
	Lines []string
}

// SourceStats summarises how the lines of one source were classified.
type SourceStats struct {
	Source   Source
	Lines    int
	Rules    int
	Comments int
	Blank    int
	Filtered int
}

// Options configures an aggregation pass.
type Options struct {
	// Aliases maps source identifiers to display labels.
	Aliases map[string]string
	// Allowed restricts accepted rules by first character. Nil accepts all.
	Allowed PrefixSet
}

// Result holds the outcome of one aggregation pass. It must not be modified
// after Aggregate returns.
type Result struct {
	Sources []Source
	Stats   []SourceStats
	Counts  map[string]int
	Aliases map[string][]string
}

// Aggregate classifies every line of every source, in order, and records an
// occurrence count plus the first-seen ordered list of distinct source aliases
// for each rule.
func Aggregate(inputs []SourceLines, opts Options) *Result {
	res := &Result{
		Sources: make([]Source, 0, len(inputs)),
		Stats:   make([]SourceStats, 0, len(inputs)),
		Counts:  make(map[string]int),
		Aliases: make(map[string][]string),
	}

	for _, input := range inputs {
		src := Source{ID: input.ID, Alias: ResolveAlias(input.ID, opts.Aliases)}
		stats := SourceStats{Source: src}

		for _, raw := range input.Lines {
			stats.Lines++
			line := Classify(raw, opts.Allowed)
			switch line.Kind {
			case KindBlank:
				stats.Blank++
				continue
			case KindComment:
				stats.Comments++
				continue
			case KindFiltered:
				stats.Filtered++
				continue
			}
			stats.Rules++
			res.Counts[line.Text]++
			if !slices.Contains(res.Aliases[line.Text], src.Alias) {
				res.Aliases[line.Text] = append(res.Aliases[line.Text], src.Alias)
			}
		}

		res.Sources = append(res.Sources, src)
		res.Stats = append(res.Stats, stats)
	}

	return res
}

// Rules returns every unique rule in ascending byte order.
func (r *Result) Rules() []string {
	out := make([]string, 0, len(r.Counts))
	for rule := range r.Counts {
		out = append(out, rule)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of unique rules.
func (r *Result) Len() int {
	return len(r.Counts)
}

// Duplicates returns the rules seen more than once, see ExtractDuplicates.
func (r *Result) Duplicates() []string {
	return ExtractDuplicates(r.Counts)
}

// AliasNames returns the source aliases in source order.
func (r *Result) AliasNames() []string {
	names := make([]string, len(r.Sources))
	for i, src := range r.Sources {
		names[i] = src.Alias
	}
	return names
}

// RepeatedSources lists identifiers that occur more than once in the input,
// in order of their second appearance. Such sources are still counted
// independently, so their rules show up as duplicates of themselves.
func (r *Result) RepeatedSources() []string {
	seen := make(map[string]int, len(r.Sources))
	var repeated []string
	for _, src := range r.Sources {
		id := strings.TrimSpace(src.ID)
		seen[id]++
		if seen[id] == 2 {
			repeated = append(repeated, id)
		}
	}
	return repeated
}
