package rules

import "strings"

// ResolveAlias returns the display label for a source identifier.
// Mapped identifiers use the table value; everything else falls back to the
// host portion of the identifier.
func ResolveAlias(sourceID string, table map[string]string) string {
	if alias, ok := table[sourceID]; ok {
		return strings.TrimSpace(alias)
	}
	return hostOf(sourceID)
}

func hostOf(sourceID string) string {
	id := strings.TrimSpace(sourceID)
	_, rest, found := strings.Cut(id, "//")
	if !found {
		return id
	}
	host, _, _ := strings.Cut(rest, "/")
	return host
}
