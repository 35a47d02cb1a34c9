package crawler

import (
	"net/url"
	"path"
	"strings"
)

// ignored reports whether the path of link matches any of the glob patterns.
func ignored(patterns []string, link string) bool {
	if len(patterns) == 0 {
		return false
	}
	u, err := url.Parse(link)
	if err != nil {
		return true
	}
	p := u.Path
	if p == "" {
		p = "/"
	}
	for _, pattern := range patterns {
		if matchPattern(pattern, p) {
			return true
		}
	}
	return false
}

// matchPattern checks if a URL path matches a glob pattern.
// Patterns can use:
//   - "/dir/*" to match the directory and everything below it
//   - "*.ext" to match a file extension at any depth
//   - * and ? with path.Match semantics otherwise
//
// Matching is case-insensitive.
func matchPattern(pattern, p string) bool {
	pattern = strings.ToLower(pattern)
	p = strings.ToLower(p)

	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}

	if ext, ok := strings.CutPrefix(pattern, "*."); ok && !strings.Contains(ext, "/") {
		if strings.HasSuffix(p, "."+ext) {
			return true
		}
	}

	if matched, err := path.Match(pattern, p); err == nil && matched {
		return true
	}

	// Bare globs such as "cv*" are matched against the last path segment.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := path.Match(pattern, path.Base(p)); err == nil && matched {
			return true
		}
	}

	return false
}
