package extract

import (
	"regexp"
	"strings"
)

// Normalizer extracts email addresses from free text.
// A Normalizer is safe for concurrent use.
type Normalizer struct {
	// emailRegex matches local@domain.tld tokens. The domain ends on a
	// label so that a sentence-final period is not captured.
	emailRegex *regexp.Regexp

	// obfuscationRegex matches the "at"/"dot" spellings used to hide addresses.
	obfuscationRegex *regexp.Regexp
}

// NewNormalizer creates a new Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		emailRegex: regexp.MustCompile(`[a-zA-Z0-9_.+\-]+@[a-zA-Z0-9\-]+(?:\.[a-zA-Z0-9\-]+)+`),
		obfuscationRegex: regexp.MustCompile(
			`(?i)\s*\[\s*at\s*\]\s*|\s*\(\s*at\s*\)\s*|\s+at\s+|\s*\[\s*dot\s*\]\s*|\s*\(\s*dot\s*\)\s*|\s+dot\s+`,
		),
	}
}

// Deobfuscate rewrites obfuscated "at" and "dot" spellings into "@" and ".".
func (n *Normalizer) Deobfuscate(text string) string {
	return n.obfuscationRegex.ReplaceAllStringFunc(text, func(match string) string {
		if strings.Contains(strings.ToLower(match), "at") {
			return "@"
		}
		return "."
	})
}

// Extract returns the distinct email addresses in text, in first-seen order.
func (n *Normalizer) Extract(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	matches := n.emailRegex.FindAllString(n.Deobfuscate(text), -1)
	return Unique(matches)
}

// Unique removes duplicates from values, keeping the first occurrence.
func Unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

var defaultNormalizer = NewNormalizer()

// Emails extracts email addresses from text with a shared Normalizer.
func Emails(text string) []string {
	return defaultNormalizer.Extract(text)
}

// Deobfuscate rewrites obfuscated spellings with a shared Normalizer.
func Deobfuscate(text string) string {
	return defaultNormalizer.Deobfuscate(text)
}
