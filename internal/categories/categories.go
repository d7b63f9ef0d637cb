// Package categories provides the list of category suggestions offered when
// entering a transaction. Suggestions never restrict what may be stored.
package categories

import (
	"bufio"
	"os"
	"strings"
)

// Defaults are offered when no seed file is configured or it is unreadable.
var Defaults = []string{"Food", "Rent", "Entertainment", "Other"}

// Load reads one category per line from path, skipping blanks and # comments.
// An empty path or a file without entries yields Defaults.
func Load(path string) []string {
	if path == "" {
		return append([]string(nil), Defaults...)
	}
	cats := readLines(path)
	if len(cats) == 0 {
		return append([]string(nil), Defaults...)
	}
	return cats
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

// dedupe keeps the first occurrence of each entry, preserving input order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
