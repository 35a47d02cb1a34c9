package domains

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Classifier decides whether a domain is an aggregator, a social
// platform, a placeholder, or (by elimination) a personal domain.
// A Classifier is immutable after construction and safe for concurrent use.
type Classifier struct {
	aggregators  map[string]struct{}
	social       map[string]struct{}
	placeholders []string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithAggregators adds aggregator domains to the default set.
func WithAggregators(domains ...string) Option {
	return func(c *Classifier) {
		addAll(c.aggregators, domains)
	}
}

// WithSocial adds social platform domains to the default set.
func WithSocial(domains ...string) Option {
	return func(c *Classifier) {
		addAll(c.social, domains)
	}
}

// WithPlaceholders adds placeholder domains to the default set.
func WithPlaceholders(domains ...string) Option {
	return func(c *Classifier) {
		for _, d := range domains {
			if d = normalizeDomain(d); d != "" {
				c.placeholders = append(c.placeholders, d)
			}
		}
	}
}

// NewClassifier creates a Classifier seeded with the default lists.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		aggregators:  make(map[string]struct{}),
		social:       make(map[string]struct{}),
		placeholders: append([]string(nil), DefaultPlaceholders...),
	}
	addAll(c.aggregators, DefaultAggregators)
	addAll(c.social, DefaultSocial)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

func addAll(set map[string]struct{}, domains []string) {
	for _, d := range domains {
		if d = normalizeDomain(d); d != "" {
			set[d] = struct{}{}
		}
	}
}

func normalizeDomain(d string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(d)), ".")
}

// DomainOf returns the registrable domain of rawURL.
// It returns false for input that is not a URL, has no host, names an IP
// address, or ends in a suffix the public suffix list does not know.
// Scheme-less input such as "janedoe.dev/about" is read as an http URL.
func DomainOf(rawURL string) (string, bool) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" || strings.ContainsAny(raw, " \t\r\n") {
		return "", false
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + strings.TrimPrefix(raw, "//")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	host := normalizeDomain(u.Hostname())
	if host == "" || net.ParseIP(host) != nil {
		return "", false
	}

	suffix, icann := publicsuffix.PublicSuffix(host)
	if !icann && !strings.Contains(suffix, ".") {
		return "", false
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil || domain == "" {
		return "", false
	}
	return domain, true
}

// DomainOf returns the registrable domain of rawURL.
func (c *Classifier) DomainOf(rawURL string) (string, bool) {
	return DomainOf(rawURL)
}

// IsAggregator reports whether domain is a link-in-bio or shortener domain.
func (c *Classifier) IsAggregator(domain string) bool {
	_, ok := c.aggregators[normalizeDomain(domain)]
	return ok
}

// IsSocial reports whether domain is a social platform.
func (c *Classifier) IsSocial(domain string) bool {
	_, ok := c.social[normalizeDomain(domain)]
	return ok
}

// IsAggregatorOrSocial reports whether domain can never be a personal domain.
func (c *Classifier) IsAggregatorOrSocial(domain string) bool {
	return c.IsAggregator(domain) || c.IsSocial(domain)
}

// IsPlaceholder reports whether domain is, or is a subdomain of, a
// placeholder domain.
func (c *Classifier) IsPlaceholder(domain string) bool {
	d := normalizeDomain(domain)
	if d == "" {
		return false
	}
	for _, p := range c.placeholders {
		if d == p || strings.HasSuffix(d, "."+p) {
			return true
		}
	}
	return false
}

// ValidAddress reports whether addr is usable as a contact address:
// exactly one "@", a non-empty local part and domain, and a domain that
// is not a placeholder.
func (c *Classifier) ValidAddress(addr string) bool {
	addr = strings.TrimSpace(addr)
	if strings.Count(addr, "@") != 1 {
		return false
	}
	local, domain, ok := SplitAddress(addr)
	if !ok || local == "" || domain == "" {
		return false
	}
	return !c.IsPlaceholder(domain)
}

// SplitAddress splits an email address on its last "@".
// ok is false when either side is empty.
func SplitAddress(addr string) (local, domain string, ok bool) {
	i := strings.LastIndex(addr, "@")
	if i <= 0 || i == len(addr)-1 {
		return "", "", false
	}
	return addr[:i], addr[i+1:], true
}
