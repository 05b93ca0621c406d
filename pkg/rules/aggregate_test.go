package rules

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func endToEndInputs() []SourceLines {
	return []SourceLines{
		{ID: "https://one.example.com/list.txt", Lines: []string{"! c", "rule1", "rule2"}},
		{ID: "https://two.example.net/dns.txt", Lines: []string{"#c", "rule2", "rule3"}},
	}
}

func TestAggregateEndToEnd(t *testing.T) {
	res := Aggregate(endToEndInputs(), Options{})

	if diff := cmp.Diff([]string{"rule1", "rule2", "rule3"}, res.Rules()); diff != "" {
		t.Errorf("Rules() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int{"rule1": 1, "rule2": 2, "rule3": 1}, res.Counts); diff != "" {
		t.Errorf("Counts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"rule2"}, res.Duplicates()); diff != "" {
		t.Errorf("Duplicates() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"one.example.com", "two.example.net"}, res.Aliases["rule2"]); diff != "" {
		t.Errorf("Aliases[rule2] mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"one.example.com", "two.example.net"}, res.AliasNames()); diff != "" {
		t.Errorf("AliasNames() mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateIsDeterministic(t *testing.T) {
	inputs := []SourceLines{
		{ID: "https://a.example/list", Lines: []string{"||x^", "||y^", "||z^", "||x^"}},
		{ID: "https://b.example/list", Lines: []string{"||z^", "||y^", "@@||ok^"}},
		{ID: "https://c.example/list", Lines: []string{"||y^", "! header", "||w^"}},
	}
	opts := Options{Aliases: map[string]string{"https://b.example/list": "B"}}

	first := Aggregate(inputs, opts)
	second := Aggregate(inputs, opts)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("aggregation not deterministic (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a.example", "B", "c.example"}, first.Aliases["||y^"]); diff != "" {
		t.Errorf("alias order mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateUnionIsOrderIndependent(t *testing.T) {
	s1 := SourceLines{ID: "https://s1.example/l", Lines: []string{"a", "b", "# c", "", "b"}}
	s2 := SourceLines{ID: "https://s2.example/l", Lines: []string{"b", "c", "! d"}}

	forward := Aggregate([]SourceLines{s1, s2}, Options{})
	reverse := Aggregate([]SourceLines{s2, s1}, Options{})

	union := append(Aggregate([]SourceLines{s1}, Options{}).Rules(), Aggregate([]SourceLines{s2}, Options{}).Rules()...)
	slices.Sort(union)
	union = slices.Compact(union)

	if diff := cmp.Diff(union, forward.Rules()); diff != "" {
		t.Errorf("forward rules differ from union (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(forward.Rules(), reverse.Rules()); diff != "" {
		t.Errorf("rules depend on source order (-forward +reverse):\n%s", diff)
	}
	if diff := cmp.Diff(forward.Counts, reverse.Counts); diff != "" {
		t.Errorf("counts depend on source order (-forward +reverse):\n%s", diff)
	}
}

func TestAggregateEmptySource(t *testing.T) {
	res := Aggregate([]SourceLines{
		{ID: "S1", Lines: []string{}},
		{ID: "S2", Lines: []string{"r1"}},
	}, Options{})

	if diff := cmp.Diff([]string{"r1"}, res.Rules()); diff != "" {
		t.Errorf("Rules() mismatch (-want +got):\n%s", diff)
	}
	if len(res.Sources) != 2 {
		t.Errorf("expected both sources to be recorded, got %d", len(res.Sources))
	}
	if res.Stats[0].Lines != 0 || res.Stats[0].Rules != 0 {
		t.Errorf("expected empty stats for S1, got %+v", res.Stats[0])
	}
}

func TestAggregateRepeatsWithinSource(t *testing.T) {
	res := Aggregate([]SourceLines{
		{ID: "https://only.example/list", Lines: []string{"||dup^", "  ||dup^  ", "||single^"}},
	}, Options{})

	if got := res.Counts["||dup^"]; got != 2 {
		t.Errorf("expected raw count 2, got %d", got)
	}
	if diff := cmp.Diff([]string{"only.example"}, res.Aliases["||dup^"]); diff != "" {
		t.Errorf("alias list should be de-duplicated per source (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"||dup^"}, res.Duplicates()); diff != "" {
		t.Errorf("Duplicates() mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateStrictPrefixes(t *testing.T) {
	res := Aggregate([]SourceLines{
		{ID: "https://mixed.example/list", Lines: []string{"||ads^", "@@||ok^", "plain.example", "0.0.0.0 host", "! note", ""}},
	}, Options{Allowed: NewPrefixSet("|@")})

	if diff := cmp.Diff([]string{"@@||ok^", "||ads^"}, res.Rules()); diff != "" {
		t.Errorf("Rules() mismatch (-want +got):\n%s", diff)
	}
	want := SourceStats{
		Source:   Source{ID: "https://mixed.example/list", Alias: "mixed.example"},
		Lines:    6,
		Rules:    2,
		Comments: 1,
		Blank:    1,
		Filtered: 2,
	}
	if diff := cmp.Diff(want, res.Stats[0]); diff != "" {
		t.Errorf("Stats mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateRepeatedSources(t *testing.T) {
	res := Aggregate([]SourceLines{
		{ID: "https://a.example/l", Lines: []string{"r"}},
		{ID: "https://b.example/l", Lines: []string{"q"}},
		{ID: "https://a.example/l", Lines: []string{"r"}},
		{ID: "https://a.example/l", Lines: []string{"r"}},
	}, Options{})

	if diff := cmp.Diff([]string{"https://a.example/l"}, res.RepeatedSources()); diff != "" {
		t.Errorf("RepeatedSources() mismatch (-want +got):\n%s", diff)
	}
	if got := res.Counts["r"]; got != 3 {
		t.Errorf("repeated sources are counted independently, expected 3, got %d", got)
	}
	if diff := cmp.Diff([]string{"a.example"}, res.Aliases["r"]); diff != "" {
		t.Errorf("Aliases[r] mismatch (-want +got):\n%s", diff)
	}
}
