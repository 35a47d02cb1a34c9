package guess

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Emails returns the guessed addresses for fullName at domain, sorted.
// It returns an empty slice when either input is empty or the name has
// no letters left after folding.
func Emails(fullName, domain string) []string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" || strings.TrimSpace(fullName) == "" {
		return []string{}
	}

	bases := LocalParts(fullName)
	out := make([]string, 0, len(bases))
	for _, b := range bases {
		out = append(out, b+"@"+domain)
	}
	slices.Sort(out)
	return out
}

// LocalParts returns the distinct local-part patterns for fullName.
func LocalParts(fullName string) []string {
	tokens := Tokens(fullName)
	if len(tokens) == 0 {
		return []string{}
	}

	first := tokens[0]
	last := ""
	if len(tokens) > 1 {
		last = tokens[len(tokens)-1]
	}

	bases := []string{first}
	if last != "" {
		fl := first[:1]
		ll := last[:1]
		bases = append(bases,
			first+"."+last,
			first+last,
			fl+last,
			first+ll,
			first+"_"+last,
			first+"-"+last,
		)
	}

	slices.Sort(bases)
	return slices.Compact(bases)
}

// Tokens folds name to lower-case ASCII letters and splits it on whitespace.
// Diacritics are removed; every other non-letter is dropped.
func Tokens(name string) []string {
	folded := fold(name)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

// fold strips combining marks after canonical decomposition.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
