package tsconfig

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-buildopts/pkg/fsutil"
)

// Extensions probed, in order, when an alias target names a module without
// its file extension.
var Extensions = []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs", ".json"}

// Candidates expands specifier into the absolute paths its best matching
// alias pattern points at, in declaration order. It returns nil when no
// pattern matches.
func (t AliasTable) Candidates(specifier string) []string {
	if t.Empty() || isRelative(specifier) {
		return nil
	}
	pattern, captured, ok := t.bestMatch(specifier)
	if !ok {
		return nil
	}
	targets := t.Paths[pattern]
	out := make([]string, 0, len(targets))
	for _, target := range targets {
		substituted := strings.Replace(target, "*", captured, 1)
		out = append(out, filepath.Join(t.BaseURL, substituted))
	}
	return out
}

// Resolve returns the first existing module file for specifier, probing
// extensions and index files for every candidate.
func (t AliasTable) Resolve(ctx context.Context, fs fsutil.FS, specifier string) (string, bool) {
	for _, candidate := range t.Candidates(specifier) {
		if found, ok := probe(ctx, fs, candidate); ok {
			return found, true
		}
	}
	return "", false
}

// Patterns lists alias patterns from most to least specific.
func (t AliasTable) Patterns() []string {
	patterns := make([]string, 0, len(t.Paths))
	for pattern := range t.Paths {
		patterns = append(patterns, pattern)
	}
	sort.Slice(patterns, func(i, j int) bool {
		pi, pj := prefixLen(patterns[i]), prefixLen(patterns[j])
		if pi == pj {
			return patterns[i] < patterns[j]
		}
		return pi > pj
	})
	return patterns
}

func (t AliasTable) bestMatch(specifier string) (string, string, bool) {
	for _, pattern := range t.Patterns() {
		star := strings.IndexByte(pattern, '*')
		if star < 0 {
			if pattern == specifier {
				return pattern, "", true
			}
			continue
		}
		prefix, suffix := pattern[:star], pattern[star+1:]
		if len(specifier) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(specifier, prefix) &&
			strings.HasSuffix(specifier, suffix) {
			return pattern, specifier[len(prefix) : len(specifier)-len(suffix)], true
		}
	}
	return "", "", false
}

func prefixLen(pattern string) int {
	if star := strings.IndexByte(pattern, '*'); star >= 0 {
		return star
	}
	// exact patterns outrank any wildcard sharing their text
	return len(pattern) + 1
}

func probe(ctx context.Context, fs fsutil.FS, candidate string) (string, bool) {
	if filepath.Ext(candidate) != "" && fs.Exists(ctx, candidate) {
		return candidate, true
	}
	for _, ext := range Extensions {
		if fs.Exists(ctx, candidate+ext) {
			return candidate + ext, true
		}
	}
	for _, ext := range Extensions {
		index := filepath.Join(candidate, "index"+ext)
		if fs.Exists(ctx, index) {
			return index, true
		}
	}
	return "", false
}

func isRelative(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") ||
		specifier == "." || specifier == ".." || filepath.IsAbs(specifier)
}
