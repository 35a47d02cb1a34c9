package config

import "time"

// File represents the structure of the .contactscan configuration file.
type File struct {
	// Defaults overrides built-in tunables. Absent keys keep the defaults.
	Defaults Tunables `yaml:"defaults,omitempty"`

	// Domains extends the built-in domain lists.
	Domains DomainLists `yaml:"domains,omitempty"`

	// Crawl holds deep crawl settings.
	Crawl CrawlSettings `yaml:"crawl,omitempty"`
}

// Tunables mirrors the numeric and string settings of Config.
// Pointers distinguish an explicit zero from an absent key.
type Tunables struct {
	MaxSiteBytes             *int64         `yaml:"maxSiteBytes,omitempty"`
	MaxDeepLinks             *int           `yaml:"maxDeepLinks,omitempty"`
	SMTPVerify               *bool          `yaml:"smtpVerify,omitempty"`
	InterRequestDelaySeconds *float64       `yaml:"interRequestDelaySeconds,omitempty"`
	Concurrency              *int           `yaml:"concurrency,omitempty"`
	DeepConcurrency          *int           `yaml:"deepConcurrency,omitempty"`
	HeadTimeout              *time.Duration `yaml:"headTimeout,omitempty"`
	FetchTimeout             *time.Duration `yaml:"fetchTimeout,omitempty"`
	DNSTimeout               *time.Duration `yaml:"dnsTimeout,omitempty"`
	SMTPTimeout              *time.Duration `yaml:"smtpTimeout,omitempty"`
	SMTPPort                 *int           `yaml:"smtpPort,omitempty"`
	SMTPFrom                 *string        `yaml:"smtpFrom,omitempty"`
	HELOName                 *string        `yaml:"heloName,omitempty"`
	DNSServer                *string        `yaml:"dnsServer,omitempty"`
	SMTPProxy                *string        `yaml:"smtpProxy,omitempty"`
	UserAgent                *string        `yaml:"userAgent,omitempty"`
}

// DomainLists adds domains to the classifier sets.
type DomainLists struct {
	// Aggregator are link-in-bio and URL-shortener domains.
	Aggregator []string `yaml:"aggregator,omitempty"`

	// Social are social platform domains.
	Social []string `yaml:"social,omitempty"`

	// Placeholder are sandbox domains whose addresses are never kept.
	Placeholder []string `yaml:"placeholder,omitempty"`
}

// CrawlSettings holds deep crawl settings.
type CrawlSettings struct {
	// IgnorePatterns are URL patterns to skip during the deep crawl.
	// Patterns are matched against the URL path using glob syntax.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`
}

// ApplyTo copies every setting present in the file into c.
// Domain lists and ignore patterns are appended.
func (f *File) ApplyTo(c *Config) {
	d := f.Defaults
	setIf(&c.MaxSiteBytes, d.MaxSiteBytes)
	setIf(&c.MaxDeepLinks, d.MaxDeepLinks)
	setIf(&c.SMTPVerify, d.SMTPVerify)
	if d.InterRequestDelaySeconds != nil {
		c.InterRequestDelay = time.Duration(*d.InterRequestDelaySeconds * float64(time.Second))
	}
	setIf(&c.Concurrency, d.Concurrency)
	setIf(&c.DeepConcurrency, d.DeepConcurrency)
	setIf(&c.HeadTimeout, d.HeadTimeout)
	setIf(&c.FetchTimeout, d.FetchTimeout)
	setIf(&c.DNSTimeout, d.DNSTimeout)
	setIf(&c.SMTPTimeout, d.SMTPTimeout)
	setIf(&c.SMTPPort, d.SMTPPort)
	setIf(&c.SMTPFrom, d.SMTPFrom)
	setIf(&c.HELOName, d.HELOName)
	setIf(&c.DNSServer, d.DNSServer)
	setIf(&c.SMTPProxy, d.SMTPProxy)
	setIf(&c.UserAgent, d.UserAgent)

	c.AggregatorDomains = append(c.AggregatorDomains, f.Domains.Aggregator...)
	c.SocialDomains = append(c.SocialDomains, f.Domains.Social...)
	c.PlaceholderDomains = append(c.PlaceholderDomains, f.Domains.Placeholder...)
	c.IgnorePatterns = append(c.IgnorePatterns, f.Crawl.IgnorePatterns...)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
