// Package rules merges block-list sources into one deduplicated rule set and
// tracks which sources contributed each rule.
package rules

import (
	"strings"
	"unicode/utf8"
)

// Kind is the outcome of classifying a single raw line.
type Kind int

const (
	// KindBlank is an empty or whitespace-only line.
	KindBlank Kind = iota
	// KindComment is a line starting with '!' or '#'.
	KindComment
	// KindFiltered is a candidate rule rejected by the allowed prefix set.
	KindFiltered
	// KindRule is an accepted rule.
	KindRule
)

func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindComment:
		return "comment"
	case KindFiltered:
		return "filtered"
	case KindRule:
		return "rule"
	default:
		return "unknown"
	}
}

// Line is a classified line. Text holds the trimmed line.
type Line struct {
	Kind Kind
	Text string
}

// IsRule reports whether the line was accepted as a rule.
func (l Line) IsRule() bool {
	return l.Kind == KindRule
}

// PrefixSet restricts rules to those starting with one of its characters.
// A nil or empty set accepts every non-comment line.
type PrefixSet map[rune]struct{}

// NewPrefixSet builds a PrefixSet from the characters of chars.
// Whitespace and commas are ignored so "|@", "| @" and "|,@" are equivalent.
func NewPrefixSet(chars string) PrefixSet {
	set := make(PrefixSet)
	for _, r := range chars {
		if r == ',' || r == ' ' || r == '\t' {
			continue
		}
		set[r] = struct{}{}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

// Allows reports whether r is permitted as the first character of a rule.
func (p PrefixSet) Allows(r rune) bool {
	if len(p) == 0 {
		return true
	}
	_, ok := p[r]
	return ok
}

// Classify trims line and decides whether it is a rule. It never fails; a
// first byte that is not valid UTF-8 matches no prefix.
func Classify(line string, allowed PrefixSet) Line {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Line{Kind: KindBlank}
	}
	if isComment(trimmed) {
		return Line{Kind: KindComment, Text: trimmed}
	}
	first, _ := utf8.DecodeRuneInString(trimmed)
	if !allowed.Allows(first) {
		return Line{Kind: KindFiltered, Text: trimmed}
	}
	return Line{Kind: KindRule, Text: trimmed}
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "!") || strings.HasPrefix(line, "#")
}
