package sources

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// ReadList reads source identifiers from a newline-delimited file. Blank lines
// and lines starting with '#' are ignored. Order is preserved and repeated
// entries are kept.
func ReadList(path string) ([]string, error) {
	file, err := os.Open(path) // #nosec G304 -- path is provided via config.
	if err != nil {
		return nil, fmt.Errorf("open source list: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			slog.Default().Warn("failed to close source list", "path", path, "error", err)
		}
	}()

	return parseList(file)
}

func parseList(r io.Reader) ([]string, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, fmt.Errorf("scan source list: %w", err)
	}
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	return ids, nil
}

// ReadAliases reads a key=value alias table. A missing file yields an empty
// table. Lines without '=' are skipped; later entries override earlier ones.
func ReadAliases(path string, log *slog.Logger) (map[string]string, error) {
	if log == nil {
		log = slog.Default()
	}
	if path == "" {
		return map[string]string{}, nil
	}

	file, err := os.Open(path) // #nosec G304 -- path is provided via config.
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug("alias file not found, using derived aliases", "path", path)
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("open alias file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Warn("failed to close alias file", "path", path, "error", err)
		}
	}()

	return parseAliases(file, log)
}

func parseAliases(r io.Reader, log *slog.Logger) (map[string]string, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, fmt.Errorf("scan alias file: %w", err)
	}
	table := make(map[string]string)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, value, found := strings.Cut(trimmed, "=")
		if !found {
			log.Debug("skipping alias line without '='", "line", i+1)
			continue
		}
		table[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return table, nil
}

// BuildSources turns the identifiers from the source list and the inline
// list tables into sources. Inline lists follow the file entries, ordered by
// alias, and their alias is recorded in aliases.
func BuildSources(ids []string, lists map[string]ListConfig, aliases map[string]string) []Source {
	out := make([]Source, 0, len(ids)+len(lists))
	for _, id := range ids {
		out = append(out, Source{ID: id})
	}

	names := make([]string, 0, len(lists))
	for name := range lists {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		cfg := lists[name]
		location := strings.TrimSpace(cfg.URL)
		if location == "" {
			continue
		}
		out = append(out, Source{
			ID: location,
			Auth: AuthConfig{
				Username: cfg.Username,
				Password: cfg.Password,
				Token:    cfg.Token,
				Header:   cfg.Header,
				Scheme:   cfg.Scheme,
			},
		})
		if aliases != nil {
			aliases[location] = name
		}
	}
	return out
}

func readLines(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return splitLines(data), nil
}

// splitLines splits data on '\n' with no limit on line length. A trailing
// '\r' is dropped from every line, and a leading byte order mark from the
// first one.
func splitLines(data []byte) []string {
	text := strings.TrimPrefix(string(data), "\ufeff")
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
