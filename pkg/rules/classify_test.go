package rules

import "testing"

func TestClassify(t *testing.T) {
	strict := NewPrefixSet("|@")
	tests := []struct {
		name    string
		line    string
		allowed PrefixSet
		want    Line
	}{
		{"empty", "", nil, Line{Kind: KindBlank}},
		{"whitespace", "   \t", nil, Line{Kind: KindBlank}},
		{"bang comment", "! comment", nil, Line{Kind: KindComment, Text: "! comment"}},
		{"hash comment", "#comment", nil, Line{Kind: KindComment, Text: "#comment"}},
		{"cosmetic marker", "##.banner", nil, Line{Kind: KindComment, Text: "##.banner"}},
		{"indented comment", "   ! indented", strict, Line{Kind: KindComment, Text: "! indented"}},
		{"rule unrestricted", "||example.com^", nil, Line{Kind: KindRule, Text: "||example.com^"}},
		{"rule trimmed", "  ||example.com^\r\n", nil, Line{Kind: KindRule, Text: "||example.com^"}},
		{"plain domain unrestricted", "example.com", nil, Line{Kind: KindRule, Text: "example.com"}},
		{"exception strict", "@@allow.com", strict, Line{Kind: KindRule, Text: "@@allow.com"}},
		{"pipe strict", "||ads.example^", strict, Line{Kind: KindRule, Text: "||ads.example^"}},
		{"plain domain strict", "example.com", strict, Line{Kind: KindFiltered, Text: "example.com"}},
		{"invalid utf8 unrestricted", "\xff||x^", nil, Line{Kind: KindRule, Text: "\xff||x^"}},
		{"invalid utf8 strict", "\xff||x^", strict, Line{Kind: KindFiltered, Text: "\xff||x^"}},
		{"invalid utf8 after prefix", "||\xfe.example^", strict, Line{Kind: KindRule, Text: "||\xfe.example^"}},
		{"empty set is unrestricted", "example.com", PrefixSet{}, Line{Kind: KindRule, Text: "example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.line, tt.allowed)
			if got != tt.want {
				t.Errorf("Classify(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestNewPrefixSet(t *testing.T) {
	if set := NewPrefixSet(""); set != nil {
		t.Errorf("NewPrefixSet(\"\") = %v, want nil", set)
	}
	if set := NewPrefixSet(" , "); set != nil {
		t.Errorf("NewPrefixSet(\" , \") = %v, want nil", set)
	}

	set := NewPrefixSet("| @,")
	if len(set) != 2 {
		t.Fatalf("expected 2 prefixes, got %d", len(set))
	}
	for _, r := range []rune{'|', '@'} {
		if !set.Allows(r) {
			t.Errorf("expected %q to be allowed", r)
		}
	}
	if set.Allows('e') {
		t.Error("did not expect 'e' to be allowed")
	}
}

func TestKindString(t *testing.T) {
	kinds := map[Kind]string{
		KindBlank:    "blank",
		KindComment:  "comment",
		KindFiltered: "filtered",
		KindRule:     "rule",
		Kind(42):     "unknown",
	}
	for kind, want := range kinds {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %s, want %s", int(kind), got, want)
		}
	}
}
