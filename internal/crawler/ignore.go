package crawler

import (
	"path/filepath"
	"strings"
)

// matchIgnore reports the first pattern matching any component of rel, a
// path relative to the hot folder.
func matchIgnore(rel string, patterns []string) (string, bool) {
	for part := range strings.SplitSeq(filepath.ToSlash(rel), "/") {
		for _, pattern := range patterns {
			if ok, err := filepath.Match(pattern, part); err == nil && ok {
				return pattern, true
			}
		}
	}

	return "", false
}
